package dto

import "github.com/princinho/storecatalog/models"

// FBTResponse is the frequently-bought-together configuration of a product,
// with the selected products expanded.
type FBTResponse struct {
	EnableFBT      bool             `json:"enableFBT"`
	Products       []models.Product `json:"products"`
	BundlePrice    *float64         `json:"bundlePrice"`
	BundleDiscount *float64         `json:"bundleDiscount"`
}

// FBTPatch replaces the whole configuration. A disabled patch carries no
// product IDs and null prices.
type FBTPatch struct {
	EnableFBT         bool     `json:"enableFBT"`
	FBTProductIDs     []string `json:"fbtProductIds"`
	FBTBundlePrice    *float64 `json:"fbtBundlePrice"`
	FBTBundleDiscount *float64 `json:"fbtBundleDiscount"`
}
