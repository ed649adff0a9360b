package utils

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRegex   = regexp.MustCompile(`[^A-Z0-9]+`)
	unsafeNameRegex = regexp.MustCompile(`[\\/:*?"<>|]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	dotsSpacesRegex = regexp.MustCompile(`[.\s]+`)
)

// NormText normalizes free text for tolerant comparisons: uppercase, accents
// stripped, and every non-alphanumeric run collapsed to a single space.
// "Cód. Próveedor " and "COD PROVEEDOR" normalize to the same string.
func NormText(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // drop combining marks left by the decomposition
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(nonAlnumRegex.ReplaceAllString(b.String(), " "))
}

// SafeName sanitizes a string for use as a file or folder name.
// Characters invalid on common filesystems become spaces; whitespace runs collapse.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeNameRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsBlankCell reports whether a spreadsheet cell value should be treated as empty.
// Covers the artifacts exported spreadsheets tend to carry ("nan", "None").
func IsBlankCell(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "nan") || t == "None"
}

// RefVariants generates robust spellings of a supplier reference for searching:
// the raw reference plus versions without hyphens, dots and spaces.
// Order is deterministic and duplicates are removed.
func RefVariants(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	candidates := []string{
		ref,
		strings.ReplaceAll(ref, "-", ""),
		dotsSpacesRegex.ReplaceAllString(ref, ""),
		strings.ReplaceAll(ref, " ", ""),
		strings.ReplaceAll(ref, ".", ""),
	}

	seen := make(map[string]bool, len(candidates))
	var variants []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
	}
	return variants
}

// HostOf extracts the lowercased host of a URL, or "" when it cannot be parsed.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
