package form

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/princinho/storecatalog/models"
)

type VariantKind int

const (
	VariantNone VariantKind = iota
	VariantAttribute
	VariantBundle
)

func (k VariantKind) String() string {
	switch k {
	case VariantAttribute:
		return "attribute"
	case VariantBundle:
		return "bundle"
	default:
		return "none"
	}
}

// AttributeVariant is a price/stock tier keyed by product attributes.
type AttributeVariant struct {
	Title string
	Color string
	Size  string
	Image string
	SKU   string
	Price float64
	MRP   float64
	Stock int
}

// BundleVariant is a price tier keyed by purchase quantity.
type BundleVariant struct {
	Qty   int
	Title string
	Tag   string
	Price float64
	// MRP is nil when the stored row carries none.
	MRP   *float64
	Stock int
}

// VariantSet is the decoded form of a stored variant array. Exactly one of
// Attributes and Bundles is populated, as named by Kind.
type VariantSet struct {
	Kind       VariantKind
	Attributes []AttributeVariant
	Bundles    []BundleVariant
}

// IsBundle reports whether a stored variant array is bundle-shaped: it is
// non-empty and every entry carries a bundleQty and neither color nor size.
// An attribute array with no color or size but a bundleQty on each entry is
// indistinguishable and classified as bundle too.
func IsBundle(vs []models.Variant) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if v.Options.BundleQty == nil || v.Options.Color != "" || v.Options.Size != "" {
			return false
		}
	}
	return true
}

// DecodeVariants classifies a stored variant array.
func DecodeVariants(vs []models.Variant) VariantSet {
	switch {
	case len(vs) == 0:
		return VariantSet{Kind: VariantNone}
	case IsBundle(vs):
		set := VariantSet{Kind: VariantBundle, Bundles: make([]BundleVariant, 0, len(vs))}
		for _, v := range vs {
			tag := v.Tag
			if tag == "" {
				tag = v.Options.Tag
			}
			set.Bundles = append(set.Bundles, BundleVariant{
				Qty:   *v.Options.BundleQty,
				Title: v.Options.Title,
				Tag:   tag,
				Price: v.Price,
				MRP:   v.MRP,
				Stock: v.Stock,
			})
		}
		return set
	default:
		set := VariantSet{Kind: VariantAttribute, Attributes: make([]AttributeVariant, 0, len(vs))}
		for _, v := range vs {
			set.Attributes = append(set.Attributes, AttributeVariant{
				Title: v.Options.Title,
				Color: v.Options.Color,
				Size:  v.Options.Size,
				Image: v.Options.Image,
				SKU:   v.SKU,
				Price: v.Price,
				MRP:   mrpOr(v.MRP, 0),
				Stock: v.Stock,
			})
		}
		return set
	}
}

// Encode turns the set back into the storage shape.
func (s VariantSet) Encode() []models.Variant {
	out := []models.Variant{}
	switch s.Kind {
	case VariantBundle:
		for _, b := range s.Bundles {
			qty := b.Qty
			out = append(out, models.Variant{
				Options: models.VariantOptions{BundleQty: &qty, Title: b.Title, Tag: b.Tag},
				Price:   b.Price,
				MRP:     b.MRP,
				Stock:   b.Stock,
			})
		}
	case VariantAttribute:
		for _, a := range s.Attributes {
			mrp := a.MRP
			out = append(out, models.Variant{
				Options: models.VariantOptions{Color: a.Color, Size: a.Size, Title: a.Title, Image: a.Image},
				Price:   a.Price,
				MRP:     &mrp,
				Stock:   a.Stock,
				SKU:     a.SKU,
			})
		}
	}
	return out
}

// bulkRowsFrom projects bundle variants into editor rows sorted by quantity.
func bulkRowsFrom(bundles []BundleVariant) []BulkRow {
	rows := make([]BulkRow, 0, len(bundles))
	for _, b := range bundles {
		qty := b.Qty
		if qty <= 0 {
			qty = 1
		}
		title := b.Title
		if title == "" {
			title = defaultBundleTitle(qty)
		}
		mrp := mrpOr(b.MRP, b.Price)
		rows = append(rows, BulkRow{
			Title: title,
			Qty:   qty,
			Price: formatNumber(b.Price),
			MRP:   formatNumber(mrp),
			Stock: b.Stock,
			Tag:   b.Tag,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Qty < rows[j].Qty })
	return rows
}

func defaultBundleTitle(qty int) string {
	if qty == 1 {
		return "Buy 1"
	}
	return fmt.Sprintf("Bundle of %d", qty)
}

// projectBulkRows converts editor rows into bundle variants. Rows without a
// positive quantity and a positive numeric price are dropped silently.
func projectBulkRows(rows []BulkRow) []BundleVariant {
	out := []BundleVariant{}
	for _, r := range rows {
		price, ok := parseNumber(r.Price)
		if r.Qty <= 0 || !ok || price <= 0 {
			continue
		}
		mrp, ok := parseNumber(r.MRP)
		if strings.TrimSpace(r.MRP) == "" || !ok {
			mrp = price
		}
		stock := r.Stock
		if stock < 0 {
			stock = 0
		}
		out = append(out, BundleVariant{
			Qty:   r.Qty,
			Title: strings.TrimSpace(r.Title),
			Tag:   r.Tag,
			Price: price,
			MRP:   &mrp,
			Stock: stock,
		})
	}
	return out
}

// parseNumber reads a price as typed. Blank counts as zero.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// mrpOr falls back to def only when no MRP was stored; a stored zero is kept.
func mrpOr(mrp *float64, def float64) float64 {
	if mrp == nil {
		return def
	}
	return *mrp
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
