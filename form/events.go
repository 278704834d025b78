package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/models"
	"github.com/princinho/storecatalog/slug"
)

var (
	ErrFBTLimit         = fmt.Errorf("you can select up to %d products", models.MaxFBTProducts)
	ErrFBTSelf          = errors.New("a product cannot be bought together with itself")
	ErrSlotOutOfRange   = fmt.Errorf("image slot must be between 1 and %d", ImageSlots)
	ErrIndexOutOfRange  = errors.New("row index out of range")
	ErrUnknownBadge     = errors.New("unknown badge")
	ErrUnknownBundleTag = errors.New("bundle tag must be MOST_POPULAR or BEST_VALUE")
	ErrInvalidAspect    = errors.New("unsupported image aspect ratio")
	ErrReviewIncomplete = errors.New("please fill all review fields")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNegativeStock    = errors.New("stock cannot be negative")
	ErrUnknownTextField = errors.New("unknown text field")
	ErrUnknownFlagField = errors.New("unknown flag field")
	ErrUnknownOption    = errors.New("unknown color or size")
)

// Event is a single user or network-completion action on the form.
type Event interface {
	apply(s *State) error
}

// Reduce applies ev to a copy of s. On error the original state is returned
// unchanged alongside the error.
func Reduce(s State, ev Event) (State, error) {
	next := s.clone()
	if err := ev.apply(&next); err != nil {
		return s, err
	}
	return next, nil
}

// Hydrate loads an existing product into the form exactly once per identity.
type Hydrate struct {
	Product models.Product
}

func (e Hydrate) apply(s *State) error {
	id := e.Product.ID.Hex()
	if s.initialized && s.ProductID == id {
		return nil
	}
	*s = hydrate(e.Product)
	return nil
}

// Close ends the edit session. The next Hydrate re-reads the product.
type Close struct{}

func (Close) apply(s *State) error {
	s.initialized = false
	return nil
}

type TextField int

const (
	FieldName TextField = iota
	FieldBrand
	FieldShortDescription
	FieldDescription
	FieldMRP
	FieldPrice
	FieldSKU
	FieldImageAspectRatio
)

// SetText edits a text input. Changing the name re-derives the slug; the
// slug has no field of its own.
type SetText struct {
	Field TextField
	Value string
}

func (e SetText) apply(s *State) error {
	switch e.Field {
	case FieldName:
		s.Name = e.Value
		s.Slug = slug.Generate(e.Value)
	case FieldBrand:
		s.Brand = e.Value
	case FieldShortDescription:
		s.ShortDescription = e.Value
	case FieldDescription:
		s.Description = e.Value
	case FieldMRP:
		s.MRP = e.Value
	case FieldPrice:
		s.Price = e.Value
	case FieldSKU:
		s.SKU = e.Value
	case FieldImageAspectRatio:
		if !models.IsValidAspectRatio(e.Value) {
			return ErrInvalidAspect
		}
		s.ImageAspectRatio = e.Value
	default:
		return ErrUnknownTextField
	}
	return nil
}

type SetStockQuantity struct {
	Quantity int
}

func (e SetStockQuantity) apply(s *State) error {
	if e.Quantity < 0 {
		return ErrNegativeStock
	}
	s.StockQuantity = e.Quantity
	return nil
}

type FlagField int

const (
	FlagFastDelivery FlagField = iota
	FlagAllowReturn
	FlagAllowReplacement
)

type SetFlag struct {
	Flag  FlagField
	Value bool
}

func (e SetFlag) apply(s *State) error {
	switch e.Flag {
	case FlagFastDelivery:
		s.FastDelivery = e.Value
	case FlagAllowReturn:
		s.AllowReturn = e.Value
	case FlagAllowReplacement:
		s.AllowReplacement = e.Value
	default:
		return ErrUnknownFlagField
	}
	return nil
}

type ToggleColor struct{ Color string }

func (e ToggleColor) apply(s *State) error {
	if indexOf(ColorOptions, e.Color) < 0 {
		return ErrUnknownOption
	}
	s.Colors = toggle(s.Colors, e.Color)
	return nil
}

type ToggleSize struct{ Size string }

func (e ToggleSize) apply(s *State) error {
	if indexOf(SizeOptions, e.Size) < 0 {
		return ErrUnknownOption
	}
	s.Sizes = toggle(s.Sizes, e.Size)
	return nil
}

type ToggleCategory struct{ ID string }

func (e ToggleCategory) apply(s *State) error {
	if e.ID == "" {
		return nil
	}
	s.Categories = toggle(s.Categories, e.ID)
	return nil
}

// AddTag appends a trimmed tag. Blank and duplicate tags are ignored.
type AddTag struct{ Tag string }

func (e AddTag) apply(s *State) error {
	tag := strings.TrimSpace(e.Tag)
	if tag == "" || indexOf(s.Tags, tag) >= 0 {
		return nil
	}
	s.Tags = append(s.Tags, tag)
	return nil
}

type RemoveTag struct{ Index int }

func (e RemoveTag) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.Tags) {
		return ErrIndexOutOfRange
	}
	s.Tags = append(s.Tags[:e.Index:e.Index], s.Tags[e.Index+1:]...)
	return nil
}

type ToggleBadge struct{ Badge string }

func (e ToggleBadge) apply(s *State) error {
	if !models.IsValidBadge(e.Badge) {
		return ErrUnknownBadge
	}
	s.Badges = toggle(s.Badges, e.Badge)
	return nil
}

// SetImage puts a newly selected file into a 1-based slot.
type SetImage struct {
	Slot   int
	Upload Upload
}

func (e SetImage) apply(s *State) error {
	if e.Slot < 1 || e.Slot > ImageSlots {
		return ErrSlotOutOfRange
	}
	up := e.Upload
	s.Images[e.Slot-1] = ImageSlot{Upload: &up}
	return nil
}

type ClearImage struct{ Slot int }

func (e ClearImage) apply(s *State) error {
	if e.Slot < 1 || e.Slot > ImageSlots {
		return ErrSlotOutOfRange
	}
	s.Images[e.Slot-1] = ImageSlot{}
	return nil
}

type AddReview struct {
	Name    string
	Rating  int
	Comment string
	Image   *Upload
}

func (e AddReview) apply(s *State) error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Comment) == "" {
		return ErrReviewIncomplete
	}
	if e.Rating < 1 || e.Rating > 5 {
		return ErrInvalidRating
	}
	s.Reviews = append(s.Reviews, ReviewDraft{
		Review: models.Review{Name: e.Name, Rating: e.Rating, Comment: e.Comment},
		Upload: e.Image,
	})
	return nil
}

type RemoveReview struct{ Index int }

func (e RemoveReview) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.Reviews) {
		return ErrIndexOutOfRange
	}
	s.Reviews = append(s.Reviews[:e.Index:e.Index], s.Reviews[e.Index+1:]...)
	return nil
}

type SetHasVariants struct{ Enabled bool }

func (e SetHasVariants) apply(s *State) error {
	s.HasVariants = e.Enabled
	return nil
}

type AddVariant struct{ Variant AttributeVariant }

func (e AddVariant) apply(s *State) error {
	s.Variants = append(s.Variants, e.Variant)
	return nil
}

type UpdateVariant struct {
	Index   int
	Variant AttributeVariant
}

func (e UpdateVariant) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.Variants) {
		return ErrIndexOutOfRange
	}
	s.Variants[e.Index] = e.Variant
	return nil
}

type RemoveVariant struct{ Index int }

func (e RemoveVariant) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.Variants) {
		return ErrIndexOutOfRange
	}
	s.Variants = append(s.Variants[:e.Index:e.Index], s.Variants[e.Index+1:]...)
	return nil
}

// SetBulkEnabled switches between bundle pricing and attribute variants.
// Turning bundles on also turns variants on.
type SetBulkEnabled struct{ Enabled bool }

func (e SetBulkEnabled) apply(s *State) error {
	s.BulkEnabled = e.Enabled
	if e.Enabled {
		s.HasVariants = true
	}
	return nil
}

type AddBulkRow struct{}

func (AddBulkRow) apply(s *State) error {
	s.BulkRows = append(s.BulkRows, BulkRow{Qty: 1})
	return nil
}

type UpdateBulkRow struct {
	Index int
	Row   BulkRow
}

func (e UpdateBulkRow) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.BulkRows) {
		return ErrIndexOutOfRange
	}
	if !models.IsValidBundleTag(e.Row.Tag) {
		return ErrUnknownBundleTag
	}
	s.BulkRows[e.Index] = e.Row
	return nil
}

type RemoveBulkRow struct{ Index int }

func (e RemoveBulkRow) apply(s *State) error {
	if e.Index < 0 || e.Index >= len(s.BulkRows) {
		return ErrIndexOutOfRange
	}
	s.BulkRows = append(s.BulkRows[:e.Index:e.Index], s.BulkRows[e.Index+1:]...)
	return nil
}

// LoadFBT applies the cross-sell configuration fetched for the product.
type LoadFBT struct{ Config dto.FBTResponse }

func (e LoadFBT) apply(s *State) error {
	s.FBT = FBTState{Enabled: e.Config.EnableFBT, Selected: []Candidate{}}
	if e.Config.BundlePrice != nil && *e.Config.BundlePrice != 0 {
		s.FBT.BundlePrice = formatNumber(*e.Config.BundlePrice)
	}
	if e.Config.BundleDiscount != nil && *e.Config.BundleDiscount != 0 {
		s.FBT.BundleDiscount = formatNumber(*e.Config.BundleDiscount)
	}
	for _, p := range e.Config.Products {
		s.FBT.Selected = append(s.FBT.Selected, CandidateFrom(p))
	}
	return nil
}

type SetFBTEnabled struct{ Enabled bool }

func (e SetFBTEnabled) apply(s *State) error {
	s.FBT.Enabled = e.Enabled
	return nil
}

// SelectFBTProduct adds a cross-sell candidate. A fifth selection and the
// product being edited are rejected.
type SelectFBTProduct struct{ Candidate Candidate }

func (e SelectFBTProduct) apply(s *State) error {
	if s.ProductID != "" && e.Candidate.ID == s.ProductID {
		return ErrFBTSelf
	}
	for _, c := range s.FBT.Selected {
		if c.ID == e.Candidate.ID {
			return nil
		}
	}
	if len(s.FBT.Selected) >= models.MaxFBTProducts {
		return ErrFBTLimit
	}
	s.FBT.Selected = append(s.FBT.Selected, e.Candidate)
	return nil
}

type RemoveFBTProduct struct{ ID string }

func (e RemoveFBTProduct) apply(s *State) error {
	kept := s.FBT.Selected[:0:0]
	for _, c := range s.FBT.Selected {
		if c.ID != e.ID {
			kept = append(kept, c)
		}
	}
	s.FBT.Selected = kept
	return nil
}

type SetFBTPricing struct {
	BundlePrice    string
	BundleDiscount string
}

func (e SetFBTPricing) apply(s *State) error {
	s.FBT.BundlePrice = e.BundlePrice
	s.FBT.BundleDiscount = e.BundleDiscount
	return nil
}

func hydrate(p models.Product) State {
	s := New()
	s.ProductID = p.ID.Hex()
	s.initialized = true

	s.Name = p.Name
	s.Slug = p.Slug
	s.Brand = p.Brand
	s.ShortDescription = p.ShortDescription
	s.Description = p.Description
	s.MRP = numberOrBlank(p.MRP)
	s.Price = numberOrBlank(p.Price)
	s.SKU = p.SKU
	s.StockQuantity = p.StockQuantity
	s.Colors = cloneStrings(p.Colors)
	s.Sizes = cloneStrings(p.Sizes)
	s.FastDelivery = p.FastDelivery
	s.AllowReturn = p.AllowReturn
	s.AllowReplacement = p.AllowReplacement
	if p.ImageAspectRatio != "" {
		s.ImageAspectRatio = p.ImageAspectRatio
	}
	s.Categories = p.CategoryIDs()
	s.Tags = cloneStrings(p.Tags)
	s.Badges = cloneStrings(p.Attributes.Badges)
	for _, r := range p.Reviews {
		s.Reviews = append(s.Reviews, ReviewDraft{Review: r})
	}
	for i, url := range p.Images {
		if i >= ImageSlots {
			break
		}
		s.Images[i] = ImageSlot{URL: url}
	}

	s.HasVariants = p.HasVariants
	set := DecodeVariants(p.Variants)
	switch set.Kind {
	case VariantBundle:
		s.BulkEnabled = true
		s.BulkRows = bulkRowsFrom(set.Bundles)
	case VariantAttribute:
		s.Variants = set.Attributes
	}
	return s
}

func numberOrBlank(f float64) string {
	if f == 0 {
		return ""
	}
	return formatNumber(f)
}
