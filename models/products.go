package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	VariantTypeBulkBundles = "bulk_bundles"

	BundleTagMostPopular = "MOST_POPULAR"
	BundleTagBestValue   = "BEST_VALUE"

	DefaultAspectRatio = "1:1"
	MaxProductImages   = 8
	MaxFBTProducts     = 4
)

// Badges is the fixed vocabulary merchants can pin on a product card.
var Badges = []string{
	"Price Lower Than Usual",
	"Hot Deal",
	"Best Seller",
	"New Arrival",
	"Limited Stock",
	"Free Shipping",
}

var AspectRatios = []string{"1:1", "4:5", "3:4", "16:9"}

type Product struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	StoreID          string        `bson:"storeId" json:"storeId"`
	Name             string        `bson:"name" json:"name"`
	Slug             string        `bson:"slug" json:"slug"`
	Brand            string        `bson:"brand" json:"brand"`
	ShortDescription string        `bson:"shortDescription" json:"shortDescription"`
	Description      string        `bson:"description" json:"description"`
	MRP              float64       `bson:"mrp" json:"mrp"`
	Price            float64       `bson:"price" json:"price"`
	SKU              string        `bson:"sku,omitempty" json:"sku,omitempty"`
	StockQuantity    int           `bson:"stockQuantity" json:"stockQuantity"`
	InStock          bool          `bson:"inStock" json:"inStock"`

	// Category is the deprecated single-category reference. It is still read
	// for old documents but never written by the admin.
	Category   string   `bson:"category,omitempty" json:"category,omitempty"`
	Categories []string `bson:"categories" json:"categories"`

	Tags             []string `bson:"tags" json:"tags"`
	Colors           []string `bson:"colors" json:"colors"`
	Sizes            []string `bson:"sizes" json:"sizes"`
	Images           []string `bson:"images" json:"images"`
	ImageAspectRatio string   `bson:"imageAspectRatio" json:"imageAspectRatio"`

	FastDelivery     bool `bson:"fastDelivery" json:"fastDelivery"`
	AllowReturn      bool `bson:"allowReturn" json:"allowReturn"`
	AllowReplacement bool `bson:"allowReplacement" json:"allowReplacement"`

	HasVariants    bool             `bson:"hasVariants" json:"hasVariants"`
	Variants       []Variant        `bson:"variants" json:"variants"`
	Attributes     Attributes       `bson:"attributes" json:"attributes"`
	HasBulkPricing bool             `bson:"hasBulkPricing" json:"hasBulkPricing"`
	BulkPricing    []map[string]any `bson:"bulkPricing" json:"bulkPricing"`

	Reviews []Review `bson:"reviews" json:"reviews"`

	EnableFBT         bool     `bson:"enableFBT" json:"enableFBT"`
	FBTProductIDs     []string `bson:"fbtProductIds" json:"fbtProductIds"`
	FBTBundlePrice    *float64 `bson:"fbtBundlePrice" json:"fbtBundlePrice"`
	FBTBundleDiscount *float64 `bson:"fbtBundleDiscount" json:"fbtBundleDiscount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CategoryIDs returns the product's categories, falling back to the legacy
// single category for documents written before multi-category support.
func (p Product) CategoryIDs() []string {
	if len(p.Categories) > 0 {
		return append([]string(nil), p.Categories...)
	}
	if p.Category != "" {
		return []string{p.Category}
	}
	return []string{}
}

// VariantOptions holds both attribute keys (color, size, image) and bundle
// keys (bundleQty). A stored array never mixes the two.
type VariantOptions struct {
	Color     string `bson:"color,omitempty" json:"color,omitempty"`
	Size      string `bson:"size,omitempty" json:"size,omitempty"`
	Title     string `bson:"title,omitempty" json:"title,omitempty"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
	BundleQty *int   `bson:"bundleQty,omitempty" json:"bundleQty,omitempty"`
	Tag       string `bson:"tag,omitempty" json:"tag,omitempty"`
}

type Variant struct {
	Options VariantOptions `bson:"options" json:"options"`
	Price   float64        `bson:"price" json:"price"`
	MRP     *float64       `bson:"mrp,omitempty" json:"mrp,omitempty"`
	Stock   int            `bson:"stock" json:"stock"`
	SKU     string         `bson:"sku,omitempty" json:"sku,omitempty"`
	Tag     string         `bson:"tag,omitempty" json:"tag,omitempty"`
}

type Attributes struct {
	Brand            string   `bson:"brand" json:"brand"`
	ShortDescription string   `bson:"shortDescription" json:"shortDescription"`
	Badges           []string `bson:"badges" json:"badges"`
	VariantType      string   `bson:"variantType,omitempty" json:"variantType,omitempty"`
}

type Review struct {
	Name    string `bson:"name" json:"name"`
	Rating  int    `bson:"rating" json:"rating"`
	Comment string `bson:"comment" json:"comment"`
	Image   string `bson:"image,omitempty" json:"image,omitempty"`
}

func IsValidBadge(b string) bool {
	return contains(Badges, b)
}

func IsValidAspectRatio(r string) bool {
	return contains(AspectRatios, r)
}

func IsValidBundleTag(t string) bool {
	return t == "" || t == BundleTagMostPopular || t == BundleTagBestValue
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
