package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/princinho/storecatalog/form"
)

// productFile is the JSON document accepted by "catalogctl save". Absent
// fields keep the value of the product being edited.
type productFile struct {
	Name             *string `json:"name"`
	Brand            *string `json:"brand"`
	ShortDescription *string `json:"shortDescription"`
	Description      *string `json:"description"`
	MRP              *string `json:"mrp"`
	Price            *string `json:"price"`
	SKU              *string `json:"sku"`
	StockQuantity    *int    `json:"stockQuantity"`
	ImageAspectRatio *string `json:"imageAspectRatio"`

	FastDelivery     *bool `json:"fastDelivery"`
	AllowReturn      *bool `json:"allowReturn"`
	AllowReplacement *bool `json:"allowReplacement"`

	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Badges     []string `json:"badges"`

	// Images are local files placed in slots 1..n, replacing what was there.
	Images  []string      `json:"images"`
	Reviews []reviewEntry `json:"reviews"`
	Bundles []bundleEntry `json:"bundles"`
	FBT     *fbtEntry     `json:"fbt"`
}

type reviewEntry struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Image   string `json:"image"`
}

type bundleEntry struct {
	Title string `json:"title"`
	Qty   int    `json:"qty"`
	Price string `json:"price"`
	MRP   string `json:"mrp"`
	Stock int    `json:"stock"`
	Tag   string `json:"tag"`
}

type fbtEntry struct {
	Enabled        bool     `json:"enabled"`
	ProductIDs     []string `json:"productIds"`
	BundlePrice    string   `json:"bundlePrice"`
	BundleDiscount string   `json:"bundleDiscount"`
}

func readProductFile(path string) (*productFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf productFile
	if err := json.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pf, nil
}

func readUpload(path string) (form.Upload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return form.Upload{}, err
	}
	return form.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        b,
	}, nil
}

// planEvents turns pf into form events against the current state s. FBT
// product selection is left to the caller since it needs the candidate list.
func planEvents(s form.State, pf *productFile, open func(string) (form.Upload, error)) ([]form.Event, error) {
	var evs []form.Event

	texts := []struct {
		field form.TextField
		value *string
	}{
		{form.FieldName, pf.Name},
		{form.FieldBrand, pf.Brand},
		{form.FieldShortDescription, pf.ShortDescription},
		{form.FieldDescription, pf.Description},
		{form.FieldMRP, pf.MRP},
		{form.FieldPrice, pf.Price},
		{form.FieldSKU, pf.SKU},
		{form.FieldImageAspectRatio, pf.ImageAspectRatio},
	}
	for _, t := range texts {
		if t.value != nil {
			evs = append(evs, form.SetText{Field: t.field, Value: *t.value})
		}
	}
	if pf.StockQuantity != nil {
		evs = append(evs, form.SetStockQuantity{Quantity: *pf.StockQuantity})
	}

	flags := []struct {
		flag  form.FlagField
		value *bool
	}{
		{form.FlagFastDelivery, pf.FastDelivery},
		{form.FlagAllowReturn, pf.AllowReturn},
		{form.FlagAllowReplacement, pf.AllowReplacement},
	}
	for _, f := range flags {
		if f.value != nil {
			evs = append(evs, form.SetFlag{Flag: f.flag, Value: *f.value})
		}
	}

	if pf.Categories != nil {
		for _, id := range symmetricDiff(s.Categories, pf.Categories) {
			evs = append(evs, form.ToggleCategory{ID: id})
		}
	}
	if pf.Badges != nil {
		for _, b := range symmetricDiff(s.Badges, pf.Badges) {
			evs = append(evs, form.ToggleBadge{Badge: b})
		}
	}
	if pf.Tags != nil {
		for i := len(s.Tags) - 1; i >= 0; i-- {
			evs = append(evs, form.RemoveTag{Index: i})
		}
		for _, t := range pf.Tags {
			evs = append(evs, form.AddTag{Tag: t})
		}
	}

	for i, path := range pf.Images {
		up, err := open(path)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		evs = append(evs, form.SetImage{Slot: i + 1, Upload: up})
	}

	if pf.Reviews != nil {
		for i := len(s.Reviews) - 1; i >= 0; i-- {
			evs = append(evs, form.RemoveReview{Index: i})
		}
		for _, r := range pf.Reviews {
			ev := form.AddReview{Name: r.Name, Rating: r.Rating, Comment: r.Comment}
			if r.Image != "" {
				up, err := open(r.Image)
				if err != nil {
					return nil, fmt.Errorf("review image: %w", err)
				}
				ev.Image = &up
			}
			evs = append(evs, ev)
		}
	}

	if pf.Bundles != nil {
		evs = append(evs, form.SetBulkEnabled{Enabled: len(pf.Bundles) > 0})
		for i := len(s.BulkRows) - 1; i >= 0; i-- {
			evs = append(evs, form.RemoveBulkRow{Index: i})
		}
		for i, b := range pf.Bundles {
			evs = append(evs,
				form.AddBulkRow{},
				form.UpdateBulkRow{Index: i, Row: form.BulkRow(b)},
			)
		}
	}

	if pf.FBT != nil {
		evs = append(evs,
			form.SetFBTEnabled{Enabled: pf.FBT.Enabled},
			form.SetFBTPricing{BundlePrice: pf.FBT.BundlePrice, BundleDiscount: pf.FBT.BundleDiscount},
		)
		for _, c := range s.FBT.Selected {
			evs = append(evs, form.RemoveFBTProduct{ID: c.ID})
		}
	}
	return evs, nil
}

// symmetricDiff lists the values to toggle so that have becomes want.
func symmetricDiff(have, want []string) []string {
	inHave := map[string]bool{}
	for _, h := range have {
		inHave[h] = true
	}
	inWant := map[string]bool{}
	for _, w := range want {
		inWant[w] = true
	}
	var out []string
	for _, h := range have {
		if !inWant[h] {
			out = append(out, h)
		}
	}
	for _, w := range want {
		if !inHave[w] {
			out = append(out, w)
			inHave[w] = true
		}
	}
	return out
}
