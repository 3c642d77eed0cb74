// Package splitter produces overlapping fixed-size chunks from enriched text
// using a hierarchical separator-based strategy (paragraph, line, sentence,
// word, character). Inline footnote annotations are treated as atomic: no
// chunk boundary ever falls inside one.
package splitter

import (
	"strings"

	"github.com/dgallion1/fnstitch/internal/footnote"
)

// Config controls chunking behavior. Sizes are in characters.
type Config struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:  800,
		Overlap:    100,
		Separators: []string{"\n\n", "\n", ". ", " ", ""},
	}
}

// Splitter splits text recursively by separator preference.
type Splitter struct {
	cfg Config
}

// New builds a Splitter, filling in defaults for zero-value fields.
func New(cfg Config) *Splitter {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = def.Overlap
		if cfg.Overlap >= cfg.ChunkSize {
			cfg.Overlap = cfg.ChunkSize / 8
		}
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = def.Separators
	}
	return &Splitter{cfg: cfg}
}

// Split chunks text into overlapping pieces of at most ChunkSize characters,
// except where a single atomic unit (an annotation span or an unbreakable
// word) exceeds it.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(ProtectAnnotations(text), s.cfg.Separators)
}

// ProtectAnnotations collapses newlines inside inline footnote annotations to
// plain spaces so the newline-based separators cannot fracture a span. The
// transform is lossy for whitespace only.
func ProtectAnnotations(text string) string {
	return footnote.InlinePattern.ReplaceAllStringFunc(text, func(span string) string {
		return strings.ReplaceAll(span, "\n", " ")
	})
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the first separator present in the text; the rest are kept for
	// recursion into oversized pieces.
	sep := separators[len(separators)-1]
	var rest []string
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	pieces := splitOutsideSpans(text, sep)

	var chunks []string
	var small []string
	flush := func() {
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small)...)
			small = nil
		}
	}

	for _, piece := range pieces {
		if len(piece) <= s.cfg.ChunkSize {
			small = append(small, piece)
			continue
		}
		flush()
		if len(rest) == 0 {
			// An atomic unit larger than the chunk size (e.g. a huge
			// annotation span) is emitted whole rather than fractured.
			chunks = append(chunks, strings.TrimSpace(piece))
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	flush()

	return chunks
}

// merge greedily packs adjacent pieces into chunks of at most ChunkSize,
// seeding each new chunk with trailing pieces of the previous one up to the
// overlap budget. Pieces are emitted whole, so boundaries only ever fall
// between pieces.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	emit := func() {
		if c := strings.TrimSpace(strings.Join(current, "")); c != "" {
			chunks = append(chunks, c)
		}
	}

	for _, piece := range pieces {
		if currentLen+len(piece) > s.cfg.ChunkSize && currentLen > 0 {
			emit()
			// Drop leading pieces until the retained tail fits the overlap
			// budget and leaves room for the incoming piece.
			for currentLen > s.cfg.Overlap ||
				(currentLen+len(piece) > s.cfg.ChunkSize && currentLen > 0) {
				currentLen -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		currentLen += len(piece)
	}
	emit()

	return chunks
}

// splitOutsideSpans splits text on sep, skipping separator occurrences that
// fall inside an annotation span. Separators stay attached to the preceding
// piece. An empty sep degrades to per-rune units with spans kept whole.
func splitOutsideSpans(text, sep string) []string {
	spans := footnote.InlinePattern.FindAllStringIndex(text, -1)

	if sep == "" {
		var units []string
		pos := 0
		for _, span := range spans {
			for _, r := range text[pos:span[0]] {
				units = append(units, string(r))
			}
			units = append(units, text[span[0]:span[1]])
			pos = span[1]
		}
		for _, r := range text[pos:] {
			units = append(units, string(r))
		}
		return units
	}

	var pieces []string
	start := 0
	search := 0
	for {
		i := strings.Index(text[search:], sep)
		if i < 0 {
			break
		}
		cut := search + i
		if inSpan(spans, cut, cut+len(sep)) {
			search = cut + 1
			continue
		}
		pieces = append(pieces, text[start:cut+len(sep)])
		start = cut + len(sep)
		search = start
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// inSpan reports whether the interval [from, to) overlaps the interior of any
// span. A cut exactly at a span edge is allowed.
func inSpan(spans [][]int, from, to int) bool {
	for _, span := range spans {
		if from < span[1] && to > span[0] {
			return true
		}
	}
	return false
}
