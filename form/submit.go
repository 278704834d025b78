package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/princinho/storecatalog/dto"
	"github.com/princinho/storecatalog/models"
)

// ErrNoImage is returned by Normalize before anything is sent.
var ErrNoImage = errors.New("please upload at least one product image")

// Multipart field names shared with the backend.
const (
	FieldImages       = "images"
	FieldProductID    = "productId"
	ReviewImagePrefix = "reviewImages_"
	defaultUploadType = "application/octet-stream"
)

// Part is one multipart field: a text value or a file.
type Part struct {
	Name   string
	Value  string
	Upload *Upload
}

// Submission is the reduced form: the product write and the cross-sell patch
// that follows it.
type Submission struct {
	ProductID string
	Parts     []Part
	FBT       dto.FBTPatch
}

// Update reports whether the submission targets an existing product.
func (s *Submission) Update() bool {
	return s.ProductID != ""
}

// Value returns the first text value stored under name.
func (s *Submission) Value(name string) (string, bool) {
	for _, p := range s.Parts {
		if p.Name == name && p.Upload == nil {
			return p.Value, true
		}
	}
	return "", false
}

// Parts named name, in order.
func (s *Submission) Named(name string) []Part {
	var out []Part
	for _, p := range s.Parts {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (s *Submission) add(name, value string) {
	s.Parts = append(s.Parts, Part{Name: name, Value: value})
}

// set replaces the first text value under name in place, or appends it.
func (s *Submission) set(name, value string) {
	for i, p := range s.Parts {
		if p.Name == name && p.Upload == nil {
			s.Parts[i].Value = value
			return
		}
	}
	s.add(name, value)
}

func (s *Submission) addJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	s.add(name, string(b))
	return nil
}

// Normalize reduces the form state to the product payload and the cross-sell
// patch. It fails before producing anything when no image slot is filled.
func Normalize(s State) (*Submission, error) {
	hasImage := false
	for _, slot := range s.Images {
		if !slot.Empty() {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return nil, ErrNoImage
	}

	sub := &Submission{ProductID: s.ProductID}

	type strippedReview struct {
		Name    string `json:"name"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	reviews := make([]strippedReview, 0, len(s.Reviews))
	for _, r := range s.Reviews {
		reviews = append(reviews, strippedReview{Name: r.Name, Rating: r.Rating, Comment: r.Comment})
	}

	sub.add("name", s.Name)
	sub.add("slug", strings.TrimSpace(s.Slug))
	sub.add("brand", s.Brand)
	sub.add("shortDescription", s.ShortDescription)
	sub.add("description", s.Description)
	sub.add("mrp", strings.TrimSpace(s.MRP))
	sub.add("price", strings.TrimSpace(s.Price))
	sub.add("sku", s.SKU)
	sub.add("stockQuantity", strconv.Itoa(s.StockQuantity))
	if err := sub.addJSON("colors", nonNil(s.Colors)); err != nil {
		return nil, err
	}
	if err := sub.addJSON("sizes", nonNil(s.Sizes)); err != nil {
		return nil, err
	}
	sub.add("fastDelivery", strconv.FormatBool(s.FastDelivery))
	sub.add("allowReturn", strconv.FormatBool(s.AllowReturn))
	sub.add("allowReplacement", strconv.FormatBool(s.AllowReplacement))
	if err := sub.addJSON("reviews", reviews); err != nil {
		return nil, err
	}
	if err := sub.addJSON("badges", nonNil(s.Badges)); err != nil {
		return nil, err
	}
	sub.add("imageAspectRatio", s.ImageAspectRatio)
	if err := sub.addJSON("tags", nonNil(s.Tags)); err != nil {
		return nil, err
	}
	if err := sub.addJSON("categories", nonNil(s.Categories)); err != nil {
		return nil, err
	}

	attrs := models.Attributes{
		Brand:            s.Brand,
		ShortDescription: s.ShortDescription,
		Badges:           nonNil(s.Badges),
	}
	if s.BulkEnabled {
		attrs.VariantType = models.VariantTypeBulkBundles
	}
	if err := sub.addJSON("attributes", attrs); err != nil {
		return nil, err
	}

	set, hasVariants := effectiveVariants(s)
	if set.Kind == VariantBundle && len(set.Bundles) > 0 &&
		(strings.TrimSpace(s.Price) == "" || strings.TrimSpace(s.MRP) == "") {
		sub.set("price", formatNumber(set.Bundles[0].Price))
		sub.set("mrp", formatNumber(mrpOr(set.Bundles[0].MRP, set.Bundles[0].Price)))
	}
	sub.add("hasVariants", strconv.FormatBool(hasVariants))
	if hasVariants {
		if err := sub.addJSON("variants", set.Encode()); err != nil {
			return nil, err
		}
	}

	for _, slot := range s.Images {
		switch {
		case slot.Upload != nil:
			sub.Parts = append(sub.Parts, Part{Name: FieldImages, Upload: slot.Upload})
		case slot.URL != "":
			sub.add(FieldImages, slot.URL)
		}
	}

	for i, r := range s.Reviews {
		name := ReviewImagePrefix + strconv.Itoa(i)
		switch {
		case r.Upload != nil:
			sub.Parts = append(sub.Parts, Part{Name: name, Upload: r.Upload})
		case r.Image != "":
			sub.add(name, r.Image)
		}
	}

	if s.ProductID != "" {
		sub.add(FieldProductID, s.ProductID)
	}

	fbt, err := fbtPatch(s.FBT)
	if err != nil {
		return nil, err
	}
	sub.FBT = fbt
	return sub, nil
}

// effectiveVariants resolves which variant array is sent and whether the
// product has variants at all.
func effectiveVariants(s State) (VariantSet, bool) {
	if s.BulkEnabled {
		bundles := projectBulkRows(s.BulkRows)
		return VariantSet{Kind: VariantBundle, Bundles: bundles}, len(bundles) > 0
	}
	return VariantSet{Kind: VariantAttribute, Attributes: s.Variants}, s.HasVariants
}

// fbtPatch builds the cross-sell write. A disabled configuration clears the
// product list and both prices.
func fbtPatch(f FBTState) (dto.FBTPatch, error) {
	patch := dto.FBTPatch{EnableFBT: f.Enabled, FBTProductIDs: []string{}}
	if !f.Enabled {
		return patch, nil
	}
	for _, c := range f.Selected {
		patch.FBTProductIDs = append(patch.FBTProductIDs, c.ID)
	}
	var err error
	if patch.FBTBundlePrice, err = optionalNumber(f.BundlePrice); err != nil {
		return dto.FBTPatch{}, fmt.Errorf("bundle price: %w", err)
	}
	if patch.FBTBundleDiscount, err = optionalNumber(f.BundleDiscount); err != nil {
		return dto.FBTPatch{}, fmt.Errorf("bundle discount: %w", err)
	}
	return patch, nil
}

func optionalNumber(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f, ok := parseNumber(s)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &f, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// WriteMultipart encodes the product payload. The caller closes mw.
func (s *Submission) WriteMultipart(mw *multipart.Writer) error {
	for _, p := range s.Parts {
		if p.Upload == nil {
			if err := mw.WriteField(p.Name, p.Value); err != nil {
				return fmt.Errorf("write field %s: %w", p.Name, err)
			}
			continue
		}
		w, err := CreateFilePart(mw, p.Name, p.Upload.Filename, p.Upload.ContentType)
		if err != nil {
			return err
		}
		if _, err := w.Write(p.Upload.Data); err != nil {
			return fmt.Errorf("write file %s: %w", p.Name, err)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// CreateFilePart is multipart.Writer.CreateFormFile with an explicit content type.
func CreateFilePart(mw *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		contentType = defaultUploadType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create part %s: %w", field, err)
	}
	return w, nil
}
