// Package update implements the AUR R-package update detection engine.
package update

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error variables for version normalization errors
var (
	// ErrMalformedVersion is returned when a version field is not purely numeric
	ErrMalformedVersion = errors.New("malformed version")
	// ErrEmptyVersion is returned when a version string is empty
	ErrEmptyVersion = errors.New("empty version string")
)

// upstreamSeparators are the separator characters folded to dots when
// normalizing versions scraped from repository pages. Upstream pages may
// embed epoch-like (":") or date-like ("-") separators that have to collapse
// to dot-separated numeric fields.
// https://wiki.archlinux.org/index.php/R_package_guidelines
const upstreamSeparators = ":-_"

// Clean strips the pkgrel suffix from an AUR version string and folds
// underscores to dots. "2.1.0-3" becomes "2.1.0", "1_2_3" becomes "1.2.3".
// The result is the display form used in report lines.
func Clean(raw string) string {
	base, _, _ := strings.Cut(raw, "-")
	return strings.ReplaceAll(base, "_", ".")
}

// CleanUpstream folds every upstream separator in a scraped version string
// to a dot, producing a dot-separated numeric form for comparison.
func CleanUpstream(raw string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(upstreamSeparators, r) {
			return '.'
		}
		return r
	}, raw)
}

// Normalize canonicalizes an AUR version string into a sequence of
// non-negative integers suitable for ordered comparison.
// A field that is not purely numeric is a hard stop: the error wraps
// ErrMalformedVersion and the caller must not truncate or zero-fill.
func Normalize(raw string) ([]int, error) {
	return parseFields(Clean(raw))
}

// NormalizeUpstream canonicalizes a version string scraped from a
// repository page. Unlike Normalize it folds ":" and "-" as well, since
// there is no pkgrel suffix to discard on the upstream side.
func NormalizeUpstream(raw string) ([]int, error) {
	return parseFields(CleanUpstream(raw))
}

// parseFields splits a dot-separated version string and parses each field
// as a base-10 non-negative integer.
func parseFields(v string) ([]int, error) {
	if v == "" {
		return nil, ErrEmptyVersion
	}

	fields := strings.Split(v, ".")
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: field %q in %q is not numeric", ErrMalformedVersion, f, v)
		}
		nums[i] = n
	}

	return nums, nil
}

// Compare orders two normalized version tuples lexicographically.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
// When one tuple is a proper prefix of the other the shorter compares
// lower, so [1,2] < [1,2,0]. Missing trailing fields are treated as
// absent, not as zero.
func Compare(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
