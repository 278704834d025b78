package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/database"
	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/middleware"
	"github.com/princinho/storecatalog/models"
	"github.com/princinho/storecatalog/utils"
)

// GetProducts is the public listing, newest first.
func (h *Handler) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		inStock, err := utils.ParseBoolQuery(c.Query("inStock"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "inStock must be true or false"})
			return
		}
		limit := utils.ParseIntDefault(c.Query("limit"), 0)
		if limit < 0 {
			limit = 0
		}
		if limit > 200 {
			limit = 200
		}

		products, err := h.Products.List(c.Request.Context(), database.ProductFilter{
			InStock: inStock,
			Limit:   int64(limit),
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ProductsResponse{Products: products})
	}
}

// GetStoreProducts lists every product of the caller's store, in stock or not.
func (h *Handler) GetStoreProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := h.Products.List(c.Request.Context(), database.ProductFilter{
			StoreID: middleware.StoreID(c),
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ProductsResponse{Products: products})
	}
}

func (h *Handler) AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		f, err := readProductForm(c.Request, h.Media.MaxSize())
		if err != nil {
			h.respondError(c, err)
			return
		}

		product := &models.Product{
			StoreID:          middleware.StoreID(c),
			InStock:          true,
			AllowReturn:      true,
			AllowReplacement: true,
			FBTProductIDs:    []string{},
			BulkPricing:      []map[string]any{},
			ImageAspectRatio: models.DefaultAspectRatio,
		}
		if err := f.applyTo(product); err != nil {
			h.respondError(c, err)
			return
		}

		uploaded, err := h.storeMedia(ctx, f, product)
		if err != nil {
			h.respondError(c, err)
			return
		}

		if err := h.Products.Create(ctx, product); err != nil {
			// the product never referenced the new objects
			utils.DeleteByURLs(ctx, h.Storage, uploaded, h.Log)
			h.respondError(c, err)
			return
		}

		h.Log.Info("product created", zap.String("productId", product.ID.Hex()), zap.String("storeId", product.StoreID))
		c.JSON(http.StatusCreated, dto.ProductResponse{Message: "Product added successfully", Product: *product})
	}
}

// UpdateProduct accepts either the full multipart form, or a JSON body
// that replaces the image list only.
func (h *Handler) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() == gin.MIMEJSON {
			h.updateImages(c)
			return
		}

		ctx := c.Request.Context()
		storeID := middleware.StoreID(c)

		f, err := readProductForm(c.Request, h.Media.MaxSize())
		if err != nil {
			h.respondError(c, err)
			return
		}
		rawID, _ := f.value("productId")
		id, err := parseProductID(rawID)
		if err != nil {
			h.respondError(c, err)
			return
		}

		existing, err := h.Products.GetForStore(ctx, id, storeID)
		if err != nil {
			h.respondError(c, err)
			return
		}

		product := *existing
		if err := f.applyTo(&product); err != nil {
			h.respondError(c, err)
			return
		}

		uploaded, err := h.storeMedia(ctx, f, &product)
		if err != nil {
			h.respondError(c, err)
			return
		}

		if err := h.Products.Replace(ctx, &product); err != nil {
			utils.DeleteByURLs(ctx, h.Storage, uploaded, h.Log)
			h.respondError(c, err)
			return
		}

		// the database no longer references these
		utils.DeleteByURLs(ctx, h.Storage, utils.RemovedImages(mediaURLs(existing), mediaURLs(&product)), h.Log)

		c.JSON(http.StatusOK, dto.ProductResponse{Message: "Product updated successfully", Product: product})
	}
}

func (h *Handler) updateImages(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.ImagesUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := parseProductID(body.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	images := dedupe(body.Images)
	if len(images) > h.maxImages() {
		h.respondError(c, apperrors.InvalidField("images", fmt.Sprintf("Max %d images", h.maxImages())))
		return
	}

	storeID := middleware.StoreID(c)
	existing, err := h.Products.GetForStore(ctx, id, storeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	product, err := h.Products.SetImages(ctx, id, storeID, images)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.DeleteByURLs(ctx, h.Storage, utils.RemovedImages(existing.Images, product.Images), h.Log)
	c.JSON(http.StatusOK, dto.ProductResponse{Message: "Product images updated", Product: *product})
}

func (h *Handler) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := parseProductID(c.Query("productId"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		product, err := h.Products.Delete(ctx, id, middleware.StoreID(c))
		if err != nil {
			h.respondError(c, err)
			return
		}

		utils.DeleteByURLs(ctx, h.Storage, mediaURLs(product), h.Log)
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Product deleted successfully"})
	}
}

func (h *Handler) ToggleStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ToggleDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := parseProductID(body.ProductID)
		if err != nil {
			h.respondError(c, err)
			return
		}

		inStock, err := h.Products.ToggleStock(c.Request.Context(), id, middleware.StoreID(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.StockToggleResponse{Message: "Product stock updated successfully", InStock: inStock})
	}
}

func (h *Handler) ToggleFastDelivery() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ToggleDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := parseProductID(body.ProductID)
		if err != nil {
			h.respondError(c, err)
			return
		}

		fast, err := h.Products.ToggleFastDelivery(c.Request.Context(), id, middleware.StoreID(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		msg := "Fast delivery disabled"
		if fast {
			msg = "Fast delivery enabled"
		}
		c.JSON(http.StatusOK, dto.FastDeliveryToggleResponse{Message: msg, FastDelivery: fast})
	}
}

// UploadImage stores one image or video, used for description media and
// review pictures, and returns its URL.
func (h *Handler) UploadImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if fh.Size > h.Media.MaxSize() {
			h.respondError(c, apperrors.InvalidInputf("file too large (max %d MB)", h.Media.MaxSize()>>20))
			return
		}

		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, h.Media.MaxSize()+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}

		mimeType, err := h.Media.Validate(fh.Filename, data)
		if err != nil {
			h.respondError(c, apperrors.InvalidField("image", err.Error()))
			return
		}

		url, err := h.Storage.Upload(c.Request.Context(), utils.UploadObjectName(fh.Filename), mimeType, bytes.NewReader(data))
		if err != nil {
			h.respondError(c, apperrors.Internal(err))
			return
		}
		c.JSON(http.StatusOK, dto.UploadImageResponse{URL: url})
	}
}

// storeMedia uploads the new files of f and fills p.Images in slot order and
// the review images. It returns the URLs it created so a failed write can
// remove them again.
func (h *Handler) storeMedia(ctx context.Context, f *productForm, p *models.Product) ([]string, error) {
	if len(f.images) == 0 {
		return nil, apperrors.InvalidField("images", "please upload at least one product image")
	}
	if len(f.images) > h.maxImages() {
		return nil, apperrors.InvalidField("images", fmt.Sprintf("Max %d images", h.maxImages()))
	}

	images := h.Media.ImagesOnly()
	var uploaded []string
	put := func(up *upload, objectName string, v *utils.MediaValidator) (string, error) {
		mimeType, err := v.Validate(up.Filename, up.Data)
		if err != nil {
			return "", apperrors.InvalidField("images", fmt.Sprintf("%s: %v", up.Filename, err))
		}
		url, err := h.Storage.Upload(ctx, objectName, mimeType, bytes.NewReader(up.Data))
		if err != nil {
			return "", apperrors.Internal(err)
		}
		uploaded = append(uploaded, url)
		return url, nil
	}
	fail := func(err error) ([]string, error) {
		utils.DeleteByURLs(ctx, h.Storage, uploaded, h.Log)
		return nil, err
	}

	urls := make([]string, 0, len(f.images))
	for _, ref := range f.images {
		if ref.File == nil {
			urls = append(urls, ref.URL)
			continue
		}
		url, err := put(ref.File, utils.ProductObjectName(p.Slug, ref.File.Filename), images)
		if err != nil {
			return fail(err)
		}
		urls = append(urls, url)
	}
	p.Images = urls

	for i := range p.Reviews {
		ref, ok := f.reviewImages[i]
		if !ok || ref.File == nil {
			continue
		}
		url, err := put(ref.File, utils.UploadObjectName(ref.File.Filename), images)
		if err != nil {
			return fail(err)
		}
		p.Reviews[i].Image = url
	}
	return uploaded, nil
}

// mediaURLs lists every stored object a product references.
func mediaURLs(p *models.Product) []string {
	urls := append([]string(nil), p.Images...)
	for _, r := range p.Reviews {
		if r.Image != "" {
			urls = append(urls, r.Image)
		}
	}
	return urls
}
