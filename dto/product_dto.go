package dto

import "github.com/princinho/storecatalog/models"

type ProductResponse struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
}

type ProductsResponse struct {
	Products []models.Product `json:"products"`
}

// ImagesUpdateDTO is the JSON form of PUT /api/store/product. It replaces
// the image list only and leaves every other field untouched.
type ImagesUpdateDTO struct {
	ProductID string   `json:"productId" binding:"required"`
	Images    []string `json:"images"`
}

type ToggleDTO struct {
	ProductID string `json:"productId" binding:"required"`
}

type StockToggleResponse struct {
	Message string `json:"message"`
	InStock bool   `json:"inStock"`
}

type FastDeliveryToggleResponse struct {
	Message      string `json:"message"`
	FastDelivery bool   `json:"fastDelivery"`
}

type UploadImageResponse struct {
	URL string `json:"url"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
