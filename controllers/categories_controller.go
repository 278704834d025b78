package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/models"
	"github.com/princinho/storecatalog/slug"
)

func (h *Handler) AddCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Slug = strings.TrimSpace(body.Slug)
		if body.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty", "field": "name"})
			return
		}
		if body.Slug == "" {
			body.Slug = slug.Fold(body.Name)
		}

		cat := models.Category{
			Name:        body.Name,
			Slug:        body.Slug,
			Description: strings.TrimSpace(body.Description),
			IsActive:    body.IsActive == nil || *body.IsActive,
			ImageUrl:    strings.TrimSpace(body.ImageUrl),
		}
		if err := h.Categories.Create(c.Request.Context(), &cat); err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": cat.Id, "category": cat})
	}
}

// GetCategories lists categories by name. q filters names case-insensitively.
func (h *Handler) GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.Categories.List(c.Request.Context(), strings.TrimSpace(c.Query("q")))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: items})
	}
}

func (h *Handler) UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}

		var body dto.UpdateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		set := bson.M{}
		if body.Name != nil {
			v := strings.TrimSpace(*body.Name)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			set["name"] = v
		}
		if body.Slug != nil {
			v := strings.TrimSpace(*body.Slug)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
				return
			}
			set["slug"] = v
		}
		if body.Description != nil {
			set["description"] = strings.TrimSpace(*body.Description)
		}
		if body.IsActive != nil {
			set["isActive"] = *body.IsActive
		}
		if body.ImageUrl != nil {
			set["imageUrl"] = strings.TrimSpace(*body.ImageUrl)
		}

		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no updates provided"})
			return
		}

		if err := h.Categories.Update(c.Request.Context(), id, set); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (h *Handler) DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}

		if err := h.Categories.Delete(c.Request.Context(), id); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
