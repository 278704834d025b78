package dto

import "github.com/princinho/storecatalog/models"

// CreateCategoryDTO is the JSON body of a category create.
type CreateCategoryDTO struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"` // auto-generated from Name if empty
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
	ImageUrl    string `json:"imageUrl"`
}

// UpdateCategoryDTO is a partial update; nil fields are left unchanged.
type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	ImageUrl    *string `json:"imageUrl"`
}

type CategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}
