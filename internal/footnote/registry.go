package footnote

import (
	"sort"
	"strconv"
)

// DefaultTruncationRatio is the fraction of the ground-truth length below
// which a linked annotation is treated as truncated and backfilled.
const DefaultTruncationRatio = 0.6

// Status says where a registry entry's text came from.
type Status string

const (
	// StatusLinked means the rewriting service produced usable inline content.
	StatusLinked Status = "linked"
	// StatusBackfilled means the scanner's ground-truth definition was
	// substituted for absent, sentinel-flagged, or truncated output.
	StatusBackfilled Status = "backfilled"
)

// Record is one reconciled footnote.
type Record struct {
	Marker int    `json:"marker"`
	Text   string `json:"text"`
	Status Status `json:"status"`
}

// Registry maps marker to its single authoritative record.
type Registry map[int]Record

// Merge folds one annotation occurrence into the registry. Precedence per
// occurrence against the current winner for its marker:
//   - no entry yet: accept as linked
//   - existing text is a sentinel and the new one is not: replace
//   - neither is a sentinel and the new text is strictly longer: replace
//   - otherwise: keep the existing entry
//
// The fold is per-marker order-independent, so occurrences may be merged in
// any batch completion order.
func (r Registry) Merge(o Occurrence) {
	existing, ok := r[o.Marker]
	switch {
	case !ok:
		r[o.Marker] = Record{Marker: o.Marker, Text: o.Text, Status: StatusLinked}
	case HasSentinel(existing.Text) && !HasSentinel(o.Text):
		r[o.Marker] = Record{Marker: o.Marker, Text: o.Text, Status: StatusLinked}
	case !HasSentinel(existing.Text) && !HasSentinel(o.Text) && len(o.Text) > len(existing.Text):
		r[o.Marker] = Record{Marker: o.Marker, Text: o.Text, Status: StatusLinked}
	}
}

// Records returns the registry entries sorted by marker ascending.
func (r Registry) Records() []Record {
	records := make([]Record, 0, len(r))
	for _, rec := range r {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Marker < records[j].Marker })
	return records
}

// Reconcile builds the final registry from the concatenated rewritten text
// and the scanner's ground-truth definitions. Every ground-truth marker ends
// up in the registry: absent, sentinel-flagged, or truncated entries are
// backfilled from ground truth. Sentinel annotations are also corrected in
// the returned text so downstream consumers of the raw rewritten text see
// the fix. Malformed or missing annotations are never an error.
func Reconcile(rewritten string, defs map[int]string, truncationRatio float64) (Registry, string) {
	if truncationRatio <= 0 || truncationRatio >= 1 {
		truncationRatio = DefaultTruncationRatio
	}

	reg := make(Registry)
	for _, occ := range FindOccurrences(rewritten) {
		reg.Merge(occ)
	}

	markers := make([]int, 0, len(defs))
	for marker := range defs {
		markers = append(markers, marker)
	}
	sort.Ints(markers)

	for _, marker := range markers {
		truth := defs[marker]
		rec, ok := reg[marker]
		switch {
		case !ok:
			reg[marker] = Record{Marker: marker, Text: truth, Status: StatusBackfilled}
		case HasSentinel(rec.Text):
			reg[marker] = Record{Marker: marker, Text: truth, Status: StatusBackfilled}
			rewritten = replaceSentinel(rewritten, marker, truth)
		case float64(len(rec.Text)) < truncationRatio*float64(len(truth)):
			reg[marker] = Record{Marker: marker, Text: truth, Status: StatusBackfilled}
		}
	}

	return reg, rewritten
}

// replaceSentinel rewrites every sentinel annotation for marker with the
// ground-truth text.
func replaceSentinel(text string, marker int, truth string) string {
	return InlinePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := InlinePattern.FindStringSubmatch(match)
		n, err := strconv.Atoi(sub[1])
		if err != nil || n != marker || !HasSentinel(sub[2]) {
			return match
		}
		return Annotation(marker, truth)
	})
}
