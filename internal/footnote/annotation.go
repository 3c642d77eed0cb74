package footnote

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sentinel is the token the rewriting service emits inside an annotation when
// it could not resolve a marker's definition. Matching is case-insensitive.
const Sentinel = "MISSING"

// InlinePattern matches an inline footnote annotation of the form
// {FOOTNOTE [n]: text}. It tolerates embedded newlines in the text.
var InlinePattern = regexp.MustCompile(`(?s)\{FOOTNOTE\s*\[(\d+)\]\s*:\s*(.+?)\}`)

// referencePattern matches a bare [n] citation in running text.
var referencePattern = regexp.MustCompile(`\[(\d+)\]`)

// Occurrence is a single inline annotation found in rewritten text.
type Occurrence struct {
	Marker int
	Text   string
}

// Annotation renders the inline form for a marker and its text.
func Annotation(marker int, text string) string {
	return fmt.Sprintf("{FOOTNOTE [%d]: %s}", marker, text)
}

// FindOccurrences extracts every inline annotation in source order.
func FindOccurrences(text string) []Occurrence {
	matches := InlinePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	occs := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		marker, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		occs = append(occs, Occurrence{Marker: marker, Text: strings.TrimSpace(m[2])})
	}
	return occs
}

// ReferencedMarkers returns the distinct markers cited in text, ascending.
func ReferencedMarkers(text string) []int {
	seen := make(map[int]bool)
	for _, m := range referencePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[n] = true
	}
	markers := make([]int, 0, len(seen))
	for n := range seen {
		markers = append(markers, n)
	}
	sort.Ints(markers)
	return markers
}

// HasSentinel reports whether an annotation's text carries the missing-content
// sentinel.
func HasSentinel(text string) bool {
	return strings.Contains(strings.ToUpper(text), Sentinel)
}

// normalizeSpace collapses whitespace runs to single spaces and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
