package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// đ has no decomposition, so it is mapped before the accents are stripped.
var letterReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// Generate creates a URL-friendly slug from the given name. Vietnamese
// letters are folded to their unaccented ASCII base.
//
// Examples:
//   - "Trái Cây Việt Nam" → "trai-cay-viet-nam"
//   - "Đồ Uống" → "do-uong"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	slug := strings.ToLower(Fold(strings.TrimSpace(name)))

	// Replace any non-alphanumeric characters with hyphens
	slug = slugRegexp.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// Fold removes diacritics, keeping case: "Táo Đỏ" becomes "Tao Do".
func Fold(s string) string {
	s = letterReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
