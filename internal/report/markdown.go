// Package report renders the side-by-side comparison of baseline and
// footnote-enriched summaries as Markdown, with an HTML view for browsers.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/fnstitch/internal/footnote"
)

// Input carries everything a rendered report shows.
type Input struct {
	SourceName     string
	GeneratedAt    time.Time
	RewriteModel   string
	EmbeddingModel string
	ChunkSize      int
	TopK           int

	RawSummary      string
	EnrichedSummary string
	RawChunkCount   int
	EnrichedChunks  int
	SectionCount    int

	Registry []footnote.Record

	// Sentences present in only one of the two summaries.
	NovelRaw      []string
	NovelEnriched []string
}

// Markdown renders the comparison report.
func Markdown(in Input) string {
	var b strings.Builder

	b.WriteString("# Footnote-Aware Summary Comparison Report\n\n")

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| **Source Document** | `%s` |\n", in.SourceName)
	fmt.Fprintf(&b, "| **Generated** | %s |\n", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "| **Rewrite Model** | `%s` |\n", in.RewriteModel)
	fmt.Fprintf(&b, "| **Embedding Model** | `%s` |\n", in.EmbeddingModel)
	fmt.Fprintf(&b, "| **Chunk Size** | %d chars |\n", in.ChunkSize)
	fmt.Fprintf(&b, "| **Top-K Retrieval** | %d |\n", in.TopK)
	fmt.Fprintf(&b, "| **Sections Rewritten** | %d |\n", in.SectionCount)
	fmt.Fprintf(&b, "| **Chunks (raw / enriched)** | %d / %d |\n", in.RawChunkCount, in.EnrichedChunks)

	b.WriteString("\n---\n\n")
	b.WriteString("## 1. Baseline Summary (Without Footnote Stitching)\n\n")
	b.WriteString("> Raw text is chunked and summarized directly. Footnotes may be\n")
	b.WriteString("> separated from the text they qualify.\n\n")
	b.WriteString(orNA(in.RawSummary))

	b.WriteString("\n\n---\n\n")
	b.WriteString("## 2. Enriched Summary (With Footnote Stitching)\n\n")
	b.WriteString("> Footnote definitions are first inlined next to citing sentences,\n")
	b.WriteString("> then the enriched text is chunked and summarized.\n\n")
	b.WriteString(orNA(in.EnrichedSummary))

	b.WriteString("\n\n---\n\n")
	b.WriteString("## 3. Semantic Differences\n\n")
	writeNovelList(&b, "Only in the baseline summary", in.NovelRaw)
	writeNovelList(&b, "Only in the enriched summary", in.NovelEnriched)
	if len(in.NovelRaw) == 0 && len(in.NovelEnriched) == 0 {
		b.WriteString("The two summaries are semantically equivalent at the sentence level.\n")
	}

	b.WriteString("\n---\n\n")
	b.WriteString("## 4. Discovered Footnotes\n\n")
	b.WriteString("| Marker | Footnote Text | Status |\n|---|---|---|\n")
	if len(in.Registry) == 0 {
		b.WriteString("| — | No footnotes detected | — |\n")
	}
	linked, backfilled := 0, 0
	for _, rec := range in.Registry {
		fmt.Fprintf(&b, "| [%d] | %s | %s |\n", rec.Marker, escapeCell(rec.Text), rec.Status)
		switch rec.Status {
		case footnote.StatusLinked:
			linked++
		case footnote.StatusBackfilled:
			backfilled++
		}
	}
	if len(in.Registry) > 0 {
		fmt.Fprintf(&b, "\n**Scorecard:** %d linked, %d backfilled.\n", linked, backfilled)
	}

	return b.String()
}

func writeNovelList(b *strings.Builder, heading string, sentences []string) {
	if len(sentences) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", heading)
	for _, s := range sentences {
		fmt.Fprintf(b, "- %s\n", s)
	}
	b.WriteString("\n")
}

func orNA(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	return s
}

// escapeCell keeps footnote text from breaking the Markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
