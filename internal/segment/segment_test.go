package segment

import "testing"

func TestSentences_BasicSplitting(t *testing.T) {
	text := "Revenue grew thirty-four percent this quarter. Margins improved across all segments. Risks remain elevated in two regions."
	got := Sentences(text, 10)

	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "Revenue grew thirty-four percent this quarter." {
		t.Errorf("unexpected first sentence: %q", got[0])
	}
}

func TestSentences_ShortFragmentMergedIntoPrevious(t *testing.T) {
	text := "The outlook for the coming fiscal year remains cautiously optimistic. Yes. Really."
	got := Sentences(text, 30)

	if len(got) != 1 {
		t.Fatalf("expected fragments merged into 1 sentence, got %d: %v", len(got), got)
	}
	want := "The outlook for the coming fiscal year remains cautiously optimistic. Yes. Really."
	if got[0] != want {
		t.Errorf("expected %q, got %q", want, got[0])
	}
}

func TestSentences_LeadingShortFragmentKept(t *testing.T) {
	text := "Ok. Then a considerably longer sentence follows the short opener."
	got := Sentences(text, 30)

	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "Ok." {
		t.Errorf("leading fragment has no predecessor to merge into, got %q", got[0])
	}
}

func TestSentences_WhitespaceNormalized(t *testing.T) {
	text := "A sentence wrapped\nacross three\n  lines in the source. Another follows here directly."
	got := Sentences(text, 10)

	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "A sentence wrapped across three lines in the source." {
		t.Errorf("newlines not normalized: %q", got[0])
	}
}

func TestSentences_EmptyInput(t *testing.T) {
	if got := Sentences("   \n  ", 30); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestSentences_NoTerminator(t *testing.T) {
	got := Sentences("a single unterminated clause without punctuation", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(got))
	}
}
