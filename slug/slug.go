package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// RE2 \s is ASCII only, so Unicode spaces are listed explicitly.
	disallowed = regexp.MustCompile(`[^\w\s\p{Z}\x{0B}\x{FEFF}-]`)
	spaces     = regexp.MustCompile(`[\s\p{Z}\x{0B}\x{FEFF}]+`)
	hyphens    = regexp.MustCompile(`-+`)
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate derives a product slug from its display name.
//
// Examples:
//   - "Men's T-Shirt!!  2.0" → "mens-t-shirt-20"
//   - "  Summer -- Sale " → "summer-sale"
func Generate(name string) string {
	s := strings.ToLower(name)
	s = disallowed.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Fold is the accent-folding variant used for category slugs:
// "Électroménager & Maison" → "electromenager-maison".
func Fold(name string) string {
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
