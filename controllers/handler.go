// Package controllers holds the gin handlers of the catalog API.
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/config"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/middleware"
	"github.com/princinho/storecatalog/models"
	"github.com/princinho/storecatalog/utils"
)

// Handler carries what the endpoints need. Every handler method returns a
// gin.HandlerFunc.
type Handler struct {
	Products   database.ProductStore
	Categories database.CategoryStore
	Users      database.UserStore
	Storage    utils.ObjectStore
	Media      *utils.MediaValidator
	JWT        config.JWTConfig
	MaxImages  int
	LoginLimit gin.HandlerFunc
	Log        *zap.Logger
}

// Register mounts every endpoint on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	login := []gin.HandlerFunc{h.Login()}
	if h.LoginLimit != nil {
		login = append([]gin.HandlerFunc{h.LoginLimit}, login...)
	}
	api.POST("/auth/login", login...)
	api.GET("/products", h.GetProducts())
	api.GET("/products/:id/fbt", h.GetFBT())
	api.GET("/store/categories", h.GetCategories())

	auth := api.Group("", middleware.AuthMiddleware(h.JWT.Secret))
	auth.PATCH("/products/:id/fbt", h.UpdateFBT())

	auth.POST("/store/categories", h.AddCategory())
	auth.PATCH("/store/categories/:id", h.UpdateCategory())
	auth.DELETE("/store/categories/:id", h.DeleteCategory())

	auth.GET("/store/product", h.GetStoreProducts())
	auth.POST("/store/product", h.AddProduct())
	auth.PUT("/store/product", h.UpdateProduct())
	auth.DELETE("/store/product", h.DeleteProduct())
	auth.POST("/store/stock-toggle", h.ToggleStock())
	auth.POST("/store/fast-delivery-toggle", h.ToggleFastDelivery())
	auth.POST("/store/upload-image", h.UploadImage())
}

func (h *Handler) maxImages() int {
	if h.MaxImages <= 0 {
		return models.MaxProductImages
	}
	return h.MaxImages
}

// respondError answers with {"error": message} and the matching status.
// Unexpected failures are logged and their details withheld.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	body := gin.H{"error": apperrors.Message(err)}
	if field := apperrors.Field(err); field != "" {
		body["field"] = field
	}
	c.JSON(status, body)
}

func parseProductID(raw string) (bson.ObjectID, error) {
	if raw == "" {
		return bson.ObjectID{}, apperrors.InvalidField("productId", "productId is required")
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, apperrors.InvalidField("productId", "invalid product id")
	}
	return id, nil
}
