package footnote

import (
	"fmt"
	"regexp"
	"strings"
)

// Batching defaults. A section is a contiguous slice of the document sent to
// the rewriting service in one call.
const (
	DefaultMaxSectionSize     = 6000
	DefaultSmallDocMultiplier = 1.5
)

// pageTrailerPattern locates page trailer lines anywhere in the document.
// The trailer belongs to the page body that precedes it.
var pageTrailerPattern = regexp.MustCompile(`(?m)^Page \d+/\d+[ \t]*$`)

// Section is a contiguous slice of the source document.
type Section struct {
	Index int
	Text  string
}

// SplitSections partitions raw text into size-bounded sections that never end
// mid-page. Adjacent pages are merged greedily until adding the next page
// would exceed maxSize. Documents within smallDocMult times maxSize are
// returned whole to avoid needless external calls. A single page larger than
// maxSize is kept intact; the rewriting service receives it oversized rather
// than truncated.
func SplitSections(text string, maxSize int, smallDocMult float64) []Section {
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSectionSize
	}
	if smallDocMult <= 0 {
		smallDocMult = DefaultSmallDocMultiplier
	}

	if float64(len(text)) <= smallDocMult*float64(maxSize) {
		return []Section{{Index: 0, Text: text}}
	}

	pages := splitPages(text)

	var sections []Section
	var current strings.Builder
	emit := func() {
		if current.Len() == 0 {
			return
		}
		sections = append(sections, Section{Index: len(sections), Text: current.String()})
		current.Reset()
	}

	for _, page := range pages {
		if current.Len() > 0 && current.Len()+len(page) > maxSize {
			emit()
		}
		current.WriteString(page)
	}
	emit()

	return sections
}

// splitPages cuts text immediately after each page trailer line, trailer
// included with its page body. Concatenating the pieces reproduces the input
// exactly.
func splitPages(text string) []string {
	marks := pageTrailerPattern.FindAllStringIndex(text, -1)
	if len(marks) == 0 {
		return []string{text}
	}

	var pages []string
	start := 0
	for _, m := range marks {
		end := m[1]
		// Include the newline that terminates the trailer line.
		if end < len(text) && text[end] == '\n' {
			end++
		}
		pages = append(pages, text[start:end])
		start = end
	}
	if start < len(text) {
		pages = append(pages, text[start:])
	}
	return pages
}

// appendixHeader delimits the injected reference block so the rewriting
// service can tell appendix material from document body.
const appendixHeader = "--- FOOTNOTE REFERENCE APPENDIX ---"

// InjectAppendix appends the known definitions of every marker cited in the
// section body, in ascending marker order. Sections citing no known marker
// are returned unchanged. This keeps a definition visible to the rewriting
// service even when batching separated it from its citation.
func InjectAppendix(section string, defs map[int]string) string {
	var lines []string
	for _, marker := range ReferencedMarkers(section) {
		if def, ok := defs[marker]; ok {
			lines = append(lines, fmt.Sprintf("[%d] %s", marker, def))
		}
	}
	if len(lines) == 0 {
		return section
	}
	return section + "\n\n" + appendixHeader + "\n" + strings.Join(lines, "\n") + "\n"
}
