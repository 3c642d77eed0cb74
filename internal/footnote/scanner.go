package footnote

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// definitionPattern matches the start of a footnote definition line: [n] text.
	definitionPattern = regexp.MustCompile(`^\[(\d+)\]\s+(.*)`)

	// pageMarkerPattern matches a page trailer line, e.g. "Page 3/8".
	pageMarkerPattern = regexp.MustCompile(`^Page \d+/\d+$`)

	// bannerPattern matches a confidentiality banner line.
	bannerPattern = regexp.MustCompile(`^CONFIDENTIAL`)
)

// ScanDefinitions extracts the ground-truth footnote definitions from a raw
// document. A definition starts at a line-initial [n] marker and runs until
// the next marker, a page trailer, a confidentiality banner, or end of input.
// Embedded newlines are collapsed to single spaces. When a marker is defined
// more than once, the longest candidate wins.
func ScanDefinitions(text string) map[int]string {
	defs := make(map[int]string)

	marker := -1
	var lines []string

	flush := func() {
		if marker < 0 {
			return
		}
		def := normalizeSpace(strings.Join(lines, " "))
		if def != "" && len(def) > len(defs[marker]) {
			defs[marker] = def
		}
		marker = -1
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := definitionPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			marker = n
			lines = []string{m[2]}
			continue
		}
		if pageMarkerPattern.MatchString(trimmed) || bannerPattern.MatchString(trimmed) {
			flush()
			continue
		}
		if marker >= 0 {
			lines = append(lines, trimmed)
		}
	}
	flush()

	return defs
}
