package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/form"
	"github.com/princinho/storecatalog/models"
	"github.com/princinho/storecatalog/slug"
)

const maxFieldBytes = 1 << 20

type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// mediaRef is one image position: a URL already stored, or a new file.
type mediaRef struct {
	URL  string
	File *upload
}

// productForm is a product multipart body read in part order, so URLs and
// new files under "images" keep the slot order the client sent.
type productForm struct {
	fields       map[string]string
	images       []mediaRef
	reviewImages map[int]mediaRef
}

func readProductForm(r *http.Request, maxFileBytes int64) (*productForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperrors.InvalidInput("invalid multipart form")
	}

	f := &productForm{fields: map[string]string{}, reviewImages: map[int]mediaRef{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.InvalidInput("invalid multipart form")
		}

		ref, err := readPart(part.FileName(), part.Header.Get("Content-Type"), part, maxFileBytes)
		part.Close()
		if err != nil {
			return nil, err
		}

		name := part.FormName()
		switch {
		case name == form.FieldImages:
			if ref.File != nil || ref.URL != "" {
				f.images = append(f.images, ref)
			}
		case strings.HasPrefix(name, form.ReviewImagePrefix):
			i, err := strconv.Atoi(strings.TrimPrefix(name, form.ReviewImagePrefix))
			if err != nil || i < 0 {
				return nil, apperrors.InvalidInputf("invalid review image field %q", name)
			}
			f.reviewImages[i] = ref
		case ref.File != nil:
			return nil, apperrors.InvalidInputf("unexpected file in field %q", name)
		default:
			if _, dup := f.fields[name]; !dup {
				f.fields[name] = ref.URL
			}
		}
	}
	return f, nil
}

// readPart returns file parts as File and text parts as URL, the only text
// a media field carries.
func readPart(filename, contentType string, r io.Reader, maxFileBytes int64) (mediaRef, error) {
	if filename == "" {
		b, err := io.ReadAll(io.LimitReader(r, maxFieldBytes+1))
		if err != nil {
			return mediaRef{}, apperrors.InvalidInput("invalid multipart form")
		}
		if len(b) > maxFieldBytes {
			return mediaRef{}, apperrors.InvalidInput("form field too large")
		}
		return mediaRef{URL: strings.TrimSpace(string(b))}, nil
	}

	b, err := io.ReadAll(io.LimitReader(r, maxFileBytes+1))
	if err != nil {
		return mediaRef{}, apperrors.InvalidInput("invalid multipart form")
	}
	if int64(len(b)) > maxFileBytes {
		return mediaRef{}, apperrors.InvalidInputf("file too large (max %d MB)", maxFileBytes>>20)
	}
	return mediaRef{File: &upload{Filename: filename, ContentType: contentType, Data: b}}, nil
}

func (f *productForm) value(name string) (string, bool) {
	v, ok := f.fields[name]
	return v, ok
}

// decodeJSON fills dst from a JSON text field. A missing or blank field
// leaves dst untouched.
func (f *productForm) decodeJSON(name string, dst any) error {
	raw, ok := f.fields[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return apperrors.InvalidField(name, fmt.Sprintf("invalid %s json", name))
	}
	return nil
}

func (f *productForm) boolField(name string, dst *bool) error {
	raw, ok := f.fields[name]
	if !ok || raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return apperrors.InvalidField(name, fmt.Sprintf("%s must be true or false", name))
	}
	*dst = b
	return nil
}

func positiveNumber(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		return 0, apperrors.InvalidField(name, fmt.Sprintf("%s must be a positive number", name))
	}
	return v, nil
}

// applyTo writes every text field of the form onto p. Images and review
// images are resolved by the caller because new files must be stored first.
func (f *productForm) applyTo(p *models.Product) error {
	name, _ := f.value("name")
	p.Name = strings.TrimSpace(name)
	if p.Name == "" {
		return apperrors.InvalidField("name", "name is required")
	}

	s, _ := f.value("slug")
	p.Slug = strings.TrimSpace(s)
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Name)
	}
	if p.Slug == "" {
		return apperrors.InvalidField("slug", "slug is required")
	}

	p.Brand, _ = f.value("brand")
	p.ShortDescription, _ = f.value("shortDescription")
	p.Description, _ = f.value("description")
	p.SKU, _ = f.value("sku")

	var err error
	price, _ := f.value("price")
	if p.Price, err = positiveNumber("price", price); err != nil {
		return err
	}
	mrp, _ := f.value("mrp")
	if p.MRP, err = positiveNumber("mrp", mrp); err != nil {
		return err
	}

	if raw, _ := f.value("stockQuantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return apperrors.InvalidField("stockQuantity", "stockQuantity must be a non-negative integer")
		}
		p.StockQuantity = n
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"colors", &p.Colors},
		{"sizes", &p.Sizes},
		{"tags", &p.Tags},
	}
	for _, l := range lists {
		if err := f.decodeJSON(l.name, l.dst); err != nil {
			return err
		}
		*l.dst = nonNil(*l.dst)
	}
	p.Tags = dedupe(p.Tags)

	if _, ok := f.value("categories"); ok {
		var cats []string
		if err := f.decodeJSON("categories", &cats); err != nil {
			return err
		}
		p.Categories = nonNil(cats)
		p.Category = ""
	}
	p.Categories = nonNil(p.Categories)

	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"fastDelivery", &p.FastDelivery},
		{"allowReturn", &p.AllowReturn},
		{"allowReplacement", &p.AllowReplacement},
	} {
		if err := f.boolField(b.name, b.dst); err != nil {
			return err
		}
	}

	if err := f.applyReviews(p); err != nil {
		return err
	}

	var badges []string
	if err := f.decodeJSON("badges", &badges); err != nil {
		return err
	}
	for _, b := range badges {
		if !models.IsValidBadge(b) {
			return apperrors.InvalidField("badges", fmt.Sprintf("unknown badge %q", b))
		}
	}

	ratio, _ := f.value("imageAspectRatio")
	if ratio == "" {
		ratio = models.DefaultAspectRatio
	}
	if !models.IsValidAspectRatio(ratio) {
		return apperrors.InvalidField("imageAspectRatio", fmt.Sprintf("unsupported image aspect ratio %q", ratio))
	}
	p.ImageAspectRatio = ratio

	attrs := models.Attributes{}
	if err := f.decodeJSON("attributes", &attrs); err != nil {
		return err
	}
	attrs.Brand = p.Brand
	attrs.ShortDescription = p.ShortDescription
	attrs.Badges = nonNil(badges)
	p.Attributes = attrs

	return f.applyVariants(p)
}

func (f *productForm) applyReviews(p *models.Product) error {
	var reviews []models.Review
	if err := f.decodeJSON("reviews", &reviews); err != nil {
		return err
	}
	for i := range reviews {
		r := &reviews[i]
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Comment) == "" {
			return apperrors.InvalidField("reviews", "every review needs a name and a comment")
		}
		if r.Rating < 1 || r.Rating > 5 {
			return apperrors.InvalidField("reviews", "review rating must be between 1 and 5")
		}
		r.Image = ""
		if ref, ok := f.reviewImages[i]; ok && ref.File == nil {
			r.Image = ref.URL
		}
	}
	p.Reviews = reviewsOrEmpty(reviews)
	return nil
}

func (f *productForm) applyVariants(p *models.Product) error {
	if err := f.boolField("hasVariants", &p.HasVariants); err != nil {
		return err
	}
	p.Variants = []models.Variant{}
	if !p.HasVariants {
		return nil
	}

	var variants []models.Variant
	if err := f.decodeJSON("variants", &variants); err != nil {
		return err
	}
	for _, v := range variants {
		if !models.IsValidBundleTag(v.Tag) || !models.IsValidBundleTag(v.Options.Tag) {
			return apperrors.InvalidField("variants", "bundle tag must be MOST_POPULAR or BEST_VALUE")
		}
		if v.Price < 0 || (v.MRP != nil && *v.MRP < 0) || v.Stock < 0 {
			return apperrors.InvalidField("variants", "variant prices and stock must not be negative")
		}
	}
	if variants != nil {
		p.Variants = variants
	}
	return nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func reviewsOrEmpty(in []models.Review) []models.Review {
	if in == nil {
		return []models.Review{}
	}
	return in
}

// dedupe drops blank and repeated entries, keeping first occurrences.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
