package footnote

import "testing"

func TestScanDefinitions_SingleDefinition(t *testing.T) {
	input := "Revenue grew 34% in Q3. [1]\n\n[1] Includes a one-time insurance payout of $2.1M.\n"
	defs := ScanDefinitions(input)

	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	want := "Includes a one-time insurance payout of $2.1M."
	if defs[1] != want {
		t.Errorf("expected %q, got %q", want, defs[1])
	}
}

func TestScanDefinitions_MultiLineCollapsed(t *testing.T) {
	input := "[2] Growth expectations assume the\npending merger closes\nin Q4.\n"
	defs := ScanDefinitions(input)

	want := "Growth expectations assume the pending merger closes in Q4."
	if defs[2] != want {
		t.Errorf("expected %q, got %q", want, defs[2])
	}
}

func TestScanDefinitions_TerminatedByNextMarker(t *testing.T) {
	input := "[1] First note.\n[2] Second note.\n"
	defs := ScanDefinitions(input)

	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[1] != "First note." {
		t.Errorf("definition 1: expected %q, got %q", "First note.", defs[1])
	}
	if defs[2] != "Second note." {
		t.Errorf("definition 2: expected %q, got %q", "Second note.", defs[2])
	}
}

func TestScanDefinitions_TerminatedByPageTrailer(t *testing.T) {
	input := "[3] Capacity figures exclude the Fremont line.\nPage 4/8\nThis paragraph is page body, not footnote text.\n"
	defs := ScanDefinitions(input)

	want := "Capacity figures exclude the Fremont line."
	if defs[3] != want {
		t.Errorf("expected %q, got %q", want, defs[3])
	}
}

func TestScanDefinitions_TerminatedByBanner(t *testing.T) {
	input := "[4] Subject to regulatory approval.\nCONFIDENTIAL -- Acme Corp -- Q3 Earnings Report\nMore body text.\n"
	defs := ScanDefinitions(input)

	want := "Subject to regulatory approval."
	if defs[4] != want {
		t.Errorf("expected %q, got %q", want, defs[4])
	}
}

func TestScanDefinitions_LongestCandidateWins(t *testing.T) {
	input := "[5] Short.\n\nSome body text.\n\n[5] The longer, more complete definition of note five.\n"
	defs := ScanDefinitions(input)

	want := "The longer, more complete definition of note five."
	if defs[5] != want {
		t.Errorf("expected longest candidate %q, got %q", want, defs[5])
	}
}

func TestScanDefinitions_LongestWinsRegardlessOfOrder(t *testing.T) {
	input := "[5] The longer, more complete definition of note five.\n[5] Short.\n"
	defs := ScanDefinitions(input)

	want := "The longer, more complete definition of note five."
	if defs[5] != want {
		t.Errorf("expected longest candidate %q, got %q", want, defs[5])
	}
}

func TestScanDefinitions_NoMatches(t *testing.T) {
	defs := ScanDefinitions("Plain prose with a bracketed citation [1] but no definition lines.")
	if len(defs) != 0 {
		t.Errorf("expected empty mapping, got %d entries", len(defs))
	}
}

func TestScanDefinitions_EmptyInput(t *testing.T) {
	defs := ScanDefinitions("")
	if len(defs) != 0 {
		t.Errorf("expected empty mapping, got %d entries", len(defs))
	}
}

func TestScanDefinitions_InlineCitationNotADefinition(t *testing.T) {
	// A [n] in the middle of a line is a citation, not a definition start.
	input := "Margins improved [6] versus last quarter.\n[6] Excluding restructuring charges.\n"
	defs := ScanDefinitions(input)

	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[6] != "Excluding restructuring charges." {
		t.Errorf("expected %q, got %q", "Excluding restructuring charges.", defs[6])
	}
}
