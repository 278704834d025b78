// Package form holds the editable working copy of a product during an admin
// edit session and reduces it to the payloads the catalog backend accepts.
//
// State is a plain value. Every change goes through Reduce, which returns a
// new State and never mutates its input.
package form

import (
	"github.com/princinho/storecatalog/models"
)

// ImageSlots is the number of image positions the editor exposes.
const ImageSlots = models.MaxProductImages

var (
	ColorOptions = []string{"Red", "Blue", "Green", "Black", "White", "Yellow", "Purple"}
	SizeOptions  = []string{"S", "M", "L", "XL", "XXL"}
)

// Upload is a locally selected file that has not been sent anywhere yet.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageSlot holds either a previously persisted URL or a new upload.
type ImageSlot struct {
	URL    string
	Upload *Upload
}

func (s ImageSlot) Empty() bool {
	return s.URL == "" && s.Upload == nil
}

// BulkRow is one line of the bundle editor. Prices stay as entered text
// until submission.
type BulkRow struct {
	Title string
	Qty   int
	Price string
	MRP   string
	Stock int
	Tag   string
}

type ReviewDraft struct {
	models.Review
	// Upload replaces Review.Image when set.
	Upload *Upload
}

// Candidate is a product that can be attached as a frequently-bought-together item.
type Candidate struct {
	ID    string
	Name  string
	SKU   string
	Price float64
	Image string
}

func CandidateFrom(p models.Product) Candidate {
	c := Candidate{ID: p.ID.Hex(), Name: p.Name, SKU: p.SKU, Price: p.Price}
	if len(p.Images) > 0 {
		c.Image = p.Images[0]
	}
	return c
}

type FBTState struct {
	Enabled        bool
	Selected       []Candidate
	BundlePrice    string
	BundleDiscount string
}

type State struct {
	// ProductID is empty while creating a new product.
	ProductID   string
	initialized bool

	Name             string
	Slug             string
	Brand            string
	ShortDescription string
	Description      string
	MRP              string
	Price            string
	SKU              string
	StockQuantity    int
	Colors           []string
	Sizes            []string
	FastDelivery     bool
	AllowReturn      bool
	AllowReplacement bool
	ImageAspectRatio string

	Categories []string
	Tags       []string
	Badges     []string
	Reviews    []ReviewDraft
	Images     [ImageSlots]ImageSlot

	HasVariants bool
	Variants    []AttributeVariant
	BulkEnabled bool
	BulkRows    []BulkRow

	FBT FBTState
}

// New returns the state of an empty "add product" form.
func New() State {
	return State{
		Colors:           []string{},
		Sizes:            []string{},
		AllowReturn:      true,
		AllowReplacement: true,
		ImageAspectRatio: models.DefaultAspectRatio,
		Categories:       []string{},
		Tags:             []string{},
		Badges:           []string{},
		Reviews:          []ReviewDraft{},
		Variants:         []AttributeVariant{},
		BulkRows:         DefaultBulkRows(),
		FBT:              FBTState{Selected: []Candidate{}},
	}
}

func DefaultBulkRows() []BulkRow {
	return []BulkRow{
		{Title: "Buy 1", Qty: 1},
		{Title: "Bundle of 2", Qty: 2, Tag: models.BundleTagMostPopular},
		{Title: "Bundle of 3", Qty: 3},
	}
}

// Initialized reports whether the state was hydrated from ProductID and has
// not been closed since.
func (s State) Initialized() bool {
	return s.initialized
}

// Editing reports whether the form edits an existing product.
func (s State) Editing() bool {
	return s.ProductID != ""
}

// PersistedImages returns the URLs of slots that still point at stored images,
// in slot order.
func (s State) PersistedImages() []string {
	out := make([]string, 0, ImageSlots)
	for _, slot := range s.Images {
		if slot.Upload == nil && slot.URL != "" {
			out = append(out, slot.URL)
		}
	}
	return out
}

func (s State) clone() State {
	c := s
	c.Colors = cloneStrings(s.Colors)
	c.Sizes = cloneStrings(s.Sizes)
	c.Categories = cloneStrings(s.Categories)
	c.Tags = cloneStrings(s.Tags)
	c.Badges = cloneStrings(s.Badges)
	c.Reviews = append([]ReviewDraft{}, s.Reviews...)
	c.Variants = append([]AttributeVariant{}, s.Variants...)
	c.BulkRows = append([]BulkRow{}, s.BulkRows...)
	c.FBT.Selected = append([]Candidate{}, s.FBT.Selected...)
	return c
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func toggle(list []string, v string) []string {
	if i := indexOf(list, v); i >= 0 {
		return append(list[:i:i], list[i+1:]...)
	}
	return append(list, v)
}
