package splitter

import (
	"strings"
	"testing"

	"github.com/dgallion1/fnstitch/internal/footnote"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := New(Config{ChunkSize: 800, Overlap: 100})
	chunks := s.Split("A short paragraph that easily fits in one chunk.")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s := New(DefaultConfig())
	if chunks := s.Split("   \n\n  "); chunks != nil {
		t.Errorf("expected nil for blank input, got %v", chunks)
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("This is sentence number one of a longer paragraph. ")
		if i%6 == 5 {
			sb.WriteString("\n\n")
		}
	}

	s := New(Config{ChunkSize: 400, Overlap: 50})
	chunks := s.Split(sb.String())

	if len(chunks) < 5 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 400 {
			t.Errorf("chunk %d has %d chars, exceeds 400", i, len(c))
		}
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 40)

	s := New(Config{ChunkSize: 300, Overlap: 80})
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		// The head of each chunk should repeat material from its predecessor.
		head := chunks[i][:20]
		if !strings.Contains(chunks[i-1], head) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestSplit_NoBoundaryInsideAnnotation(t *testing.T) {
	annotation := "{FOOTNOTE [7]: A qualification that runs long enough to sit near a chunk boundary and tempt the splitter. It keeps going for a while.}"
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("Plain narrative sentence to pad out the document body. ")
		if i == 12 || i == 25 {
			sb.WriteString(annotation)
			sb.WriteString(" ")
		}
	}

	s := New(Config{ChunkSize: 250, Overlap: 40})
	chunks := s.Split(sb.String())

	for i, c := range chunks {
		opens := strings.Count(c, "{FOOTNOTE")
		closes := strings.Count(c, "}")
		if opens != closes {
			t.Errorf("chunk %d fractures an annotation span:\n%s", i, c)
		}
		// Every annotation present must be complete and parseable.
		if opens > 0 && len(footnote.FindOccurrences(c)) != opens {
			t.Errorf("chunk %d contains a partial annotation:\n%s", i, c)
		}
	}
}

func TestSplit_OversizedAnnotationKeptWhole(t *testing.T) {
	annotation := "{FOOTNOTE [1]: " + strings.Repeat("very long footnote content ", 30) + "}"
	text := "Before. " + annotation + " After."

	s := New(Config{ChunkSize: 200, Overlap: 20})
	chunks := s.Split(text)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, annotation) {
			found = true
		}
		if strings.Contains(c, "{FOOTNOTE") && !strings.Contains(c, "}") {
			t.Errorf("oversized annotation fractured across chunks:\n%s", c)
		}
	}
	if !found {
		t.Error("oversized annotation must appear whole in exactly one chunk")
	}
}

func TestSplit_DeterministicBoundaries(t *testing.T) {
	text := strings.Repeat("Stable input gives stable output, every time. ", 50)
	s := New(Config{ChunkSize: 350, Overlap: 60})

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestProtectAnnotations_CollapsesInternalNewlines(t *testing.T) {
	text := "Claim {FOOTNOTE [2]: spans\nmultiple\nlines} remains.\nPlain newline stays."
	out := ProtectAnnotations(text)

	if !strings.Contains(out, "{FOOTNOTE [2]: spans multiple lines}") {
		t.Errorf("annotation newlines not collapsed: %q", out)
	}
	if !strings.Contains(out, "remains.\nPlain newline stays.") {
		t.Errorf("newlines outside annotations must be preserved: %q", out)
	}
}

func TestSplit_ParagraphPreferredOverSentence(t *testing.T) {
	para := strings.Repeat("One sentence here. ", 10)
	text := para + "\n\n" + para + "\n\n" + para

	s := New(Config{ChunkSize: len(para) + 10, Overlap: 0})
	chunks := s.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 paragraph-aligned chunks, got %d", len(chunks))
	}
}
