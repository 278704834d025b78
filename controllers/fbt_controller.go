package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/middleware"
	"github.com/princinho/storecatalog/models"
)

// GetFBT returns the frequently-bought-together configuration of a product
// with its selected products expanded, in selection order.
func (h *Handler) GetFBT() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		product, err := h.Products.Get(ctx, id)
		if err != nil {
			h.respondError(c, err)
			return
		}

		ids := make([]bson.ObjectID, 0, len(product.FBTProductIDs))
		for _, raw := range product.FBTProductIDs {
			if oid, err := bson.ObjectIDFromHex(raw); err == nil {
				ids = append(ids, oid)
			}
		}
		related, err := h.Products.FindByIDs(ctx, ids)
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.FBTResponse{
			EnableFBT:      product.EnableFBT,
			Products:       related,
			BundlePrice:    product.FBTBundlePrice,
			BundleDiscount: product.FBTBundleDiscount,
		})
	}
}

// UpdateFBT replaces the configuration. Disabling clears the selection and
// both prices.
func (h *Handler) UpdateFBT() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		var body dto.FBTPatch
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cfg, err := h.fbtConfig(c, id, body)
		if err != nil {
			h.respondError(c, err)
			return
		}

		product, err := h.Products.SetFBT(ctx, id, middleware.StoreID(c), cfg)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":           "FBT configuration updated",
			"enableFBT":         product.EnableFBT,
			"fbtProductIds":     product.FBTProductIDs,
			"fbtBundlePrice":    product.FBTBundlePrice,
			"fbtBundleDiscount": product.FBTBundleDiscount,
		})
	}
}

func (h *Handler) fbtConfig(c *gin.Context, self bson.ObjectID, body dto.FBTPatch) (database.FBTConfig, error) {
	if !body.EnableFBT {
		return database.FBTConfig{ProductIDs: []string{}}, nil
	}

	ids := dedupe(body.FBTProductIDs)
	if len(ids) > models.MaxFBTProducts {
		return database.FBTConfig{}, apperrors.InvalidField("fbtProductIds",
			fmt.Sprintf("at most %d products can be bought together", models.MaxFBTProducts))
	}
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, raw := range ids {
		oid, err := bson.ObjectIDFromHex(raw)
		if err != nil {
			return database.FBTConfig{}, apperrors.InvalidField("fbtProductIds", fmt.Sprintf("invalid product id %q", raw))
		}
		if oid == self {
			return database.FBTConfig{}, apperrors.InvalidField("fbtProductIds", "a product cannot be bought together with itself")
		}
		oids = append(oids, oid)
	}

	found, err := h.Products.FindByIDs(c.Request.Context(), oids)
	if err != nil {
		return database.FBTConfig{}, err
	}
	if len(found) != len(oids) {
		return database.FBTConfig{}, apperrors.InvalidField("fbtProductIds", "unknown product in fbtProductIds")
	}

	if p := body.FBTBundlePrice; p != nil && *p < 0 {
		return database.FBTConfig{}, apperrors.InvalidField("fbtBundlePrice", "bundle price must not be negative")
	}
	if d := body.FBTBundleDiscount; d != nil && (*d < 0 || *d > 100) {
		return database.FBTConfig{}, apperrors.InvalidField("fbtBundleDiscount", "bundle discount must be between 0 and 100")
	}

	return database.FBTConfig{
		Enabled:        true,
		ProductIDs:     ids,
		BundlePrice:    body.FBTBundlePrice,
		BundleDiscount: body.FBTBundleDiscount,
	}, nil
}
