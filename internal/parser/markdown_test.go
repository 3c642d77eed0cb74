package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_FlattensHeadingsAndBlocks(t *testing.T) {
	input := `# Quarterly Report

Revenue grew 34%. [1]

## Notes

[1] Includes a one-time item.
`
	p := &MarkdownParser{}
	text, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Quarterly Report", "Revenue grew 34%. [1]", "Notes", "[1] Includes a one-time item."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got %q", want, text)
		}
	}

	// Definition lines must start a block so the line-wise definition
	// scanner sees the marker at a line start.
	if !strings.Contains(text, "\n\n[1] Includes a one-time item.") {
		t.Errorf("expected definition line at a block start, got %q", text)
	}
}

func TestMarkdownParser_CodeBlocksKept(t *testing.T) {
	input := "Intro.\n\n```\nGET /api/enrich\n```\n\nAfter code.\n"
	p := &MarkdownParser{}
	text, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "GET /api/enrich") {
		t.Errorf("expected code block content kept, got %q", text)
	}
	if !strings.Contains(text, "After code.") {
		t.Errorf("expected post-code text kept, got %q", text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	text, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty output, got %q", text)
	}
}

func TestHTMLParser_FlattensContent(t *testing.T) {
	input := `<html><head><title>Report</title><style>p{}</style></head>
<body><h1>Overview</h1><p>Margins improved. [2]</p>
<p>[2] Excludes restructuring costs.</p>
<script>ignored()</script></body></html>`

	p := &HTMLParser{}
	text, err := p.Parse(strings.NewReader(input), "report.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Overview", "Margins improved. [2]", "[2] Excludes restructuring costs."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got %q", want, text)
		}
	}
	if strings.Contains(text, "ignored()") || strings.Contains(text, "p{}") {
		t.Errorf("expected script/style content dropped, got %q", text)
	}
}

func TestJoinPagesWithTrailers(t *testing.T) {
	text := joinPagesWithTrailers([]string{"First page body.", "", "Third page body."})

	if !strings.Contains(text, "First page body.\nPage 1/3\n") {
		t.Errorf("expected page 1 trailer, got %q", text)
	}
	// Blank page 2 is skipped but still counted.
	if strings.Contains(text, "Page 2/3") {
		t.Errorf("blank page must not emit a trailer, got %q", text)
	}
	if !strings.Contains(text, "Third page body.\nPage 3/3\n") {
		t.Errorf("expected page 3 trailer with original numbering, got %q", text)
	}
}
