package rewrite

import "fmt"

// StitchSystemPrompt instructs the rewriting service to inline footnote
// definitions next to the sentences that cite them. The output contract is
// the {FOOTNOTE [n]: ...} annotation the reconciler parses; MISSING is the
// required admission when a definition cannot be resolved.
const StitchSystemPrompt = `You are a meticulous document librarian. You receive a section of a financial or technical report in which sentences cite footnotes with bare [n] markers, while the footnote definitions may sit elsewhere in the section, in a trailing notes block, or in a "FOOTNOTE REFERENCE APPENDIX" after the section body.

Rewrite the section so that every cited footnote's full definition appears inline, immediately after the citing sentence, wrapped exactly as:

{FOOTNOTE [n]: <full definition text>}

Rules:
- Reproduce the section body faithfully. Do not summarize, reorder, or drop sentences.
- Keep the original [n] markers in place; add the inline annotation after the citing sentence.
- Use the appendix block only as reference material; do not copy the appendix itself into the output.
- If you cannot find a definition for a cited marker anywhere, write {FOOTNOTE [n]: MISSING}.
- Never invent footnote content.
- Output plain text only, no code fences.`

// StitchUserPrompt wraps one document section for the stitching call.
func StitchUserPrompt(section string) string {
	return "Source_Text:\n\n" + section
}

// SummaryQueries are the topical retrieval queries whose results are merged
// and deduplicated before summarization.
var SummaryQueries = []string{
	"key financial metrics, revenue and growth figures",
	"operational status, capacity and production",
	"risks, contingencies and forward-looking caveats",
}

// SummarySystemPrompt frames the summarization call for baseline chunks.
const SummarySystemPrompt = `You are a financial analyst. Summarize the provided document sections into a clear, accurate executive summary. Cover revenue, operational status, and risks. Be concise but thorough.`

// EnrichedSummarySystemPrompt additionally forces the model to honor inline
// footnote annotations, which may qualify or contradict headline claims.
const EnrichedSummarySystemPrompt = SummarySystemPrompt + `

IMPORTANT: The text contains inline {FOOTNOTE [n]: ...} annotations. These footnotes provide critical context; they may qualify, limit, or even contradict the main text claims. You MUST incorporate footnote information into your summary. Do NOT present a claim as unqualified fact if a footnote adds conditions or exceptions.`

// SummaryUserPrompt assembles the retrieved context for a summarization call.
func SummaryUserPrompt(context string) string {
	return fmt.Sprintf("DOCUMENT SECTIONS:\n\n%s", context)
}
