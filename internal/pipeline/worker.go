package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/fnstitch/internal/config"
	"github.com/dgallion1/fnstitch/internal/footnote"
	"github.com/dgallion1/fnstitch/internal/parser"
	"github.com/dgallion1/fnstitch/internal/report"
	"github.com/dgallion1/fnstitch/internal/retrieval"
	"github.com/dgallion1/fnstitch/internal/rewrite"
	"github.com/dgallion1/fnstitch/internal/segment"
	"github.com/dgallion1/fnstitch/internal/semantic"
	"github.com/dgallion1/fnstitch/internal/splitter"
)

// Result is the finished output of one enrichment run.
type Result struct {
	RawSummary      string
	EnrichedSummary string

	Registry      []footnote.Record
	NovelRaw      []string
	NovelEnriched []string

	SectionCount   int
	RawChunkCount  int
	EnrichedChunks int

	ReportMarkdown string
}

// Worker processes a single document job end to end: parse, scan, batch,
// rewrite, reconcile, chunk, index, summarize, compare, report.
type Worker struct {
	completer rewrite.Completer
	embedder  semantic.Embedder
	log       *slog.Logger
	cfg       config.Config
}

func NewWorker(completer rewrite.Completer, embedder semantic.Embedder, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		completer: completer,
		embedder:  embedder,
		log:       log,
		cfg:       cfg,
	}
}

// Process runs the full enrichment pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.cfg.PDFFallbackPdftotext
	}

	rawText, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if strings.TrimSpace(rawText) == "" {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.ContentHash = ContentHashHex([]byte(rawText))

	// Phase 2: Scan ground-truth footnote definitions.
	job.SetStatus(StatusScanning, "scanning")
	defs := footnote.ScanDefinitions(rawText)
	log.Info("scanned definitions", "count", len(defs))

	// Phase 3: Batch into page-aligned sections and inject appendices.
	sections := footnote.SplitSections(rawText, w.cfg.MaxSectionSize, w.cfg.SmallDocMultiplier)
	job.SetTotalSections(len(sections))
	log.Info("split sections", "sections", len(sections))

	// Phase 4: Rewrite sections with bounded concurrency. A section whose
	// rewrite fails after retries falls back to its original text so the
	// document is never silently shortened.
	job.SetStatus(StatusRewriting, "rewriting")
	outputs := make([]string, len(sections))
	var hadErrors atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.MaxConcurrentRewrite)
	for i, sec := range sections {
		g.Go(func() error {
			prompt := rewrite.StitchUserPrompt(footnote.InjectAppendix(sec.Text, defs))
			out, err := w.completeWithRetry(gctx, rewrite.StitchSystemPrompt, prompt, log.With("section", i))
			if err != nil {
				log.Error("section rewrite failed", "section", i, "error", err)
				job.AddError(fmt.Sprintf("section %d: %s", i, err))
				outputs[i] = sec.Text
				hadErrors.Store(true)
			} else {
				outputs[i] = out
			}
			job.IncrSectionsRewritten()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("rewrite phase canceled", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rewriting")
		return
	}

	// Phase 5: Reconcile per-section output into one registry.
	job.SetStatus(StatusReconciling, "reconciling")
	registry, enriched := footnote.Reconcile(strings.Join(outputs, "\n\n"), defs, w.cfg.TruncationRatio)
	records := registry.Records()
	linked, backfilled := 0, 0
	for _, rec := range records {
		switch rec.Status {
		case footnote.StatusLinked:
			linked++
		case footnote.StatusBackfilled:
			backfilled++
		}
	}
	job.SetFootnoteCounts(linked, backfilled)
	log.Info("reconciled registry", "linked", linked, "backfilled", backfilled)

	// Phase 6: Chunk both variants.
	job.SetStatus(StatusChunking, "chunking")
	sp := splitter.New(splitter.Config{ChunkSize: w.cfg.ChunkSize, Overlap: w.cfg.ChunkOverlap})
	rawChunks := sp.Split(rawText)
	enrichedChunks := sp.Split(enriched)
	log.Info("chunked document", "raw_chunks", len(rawChunks), "enriched_chunks", len(enrichedChunks))

	// Phase 7: Index and retrieve summarization context for both variants.
	job.SetStatus(StatusIndexing, "indexing")
	rawContext, err := w.buildContext(ctx, rawChunks)
	if err != nil {
		log.Error("raw index failed", "error", err)
		job.AddError(fmt.Sprintf("index raw: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}
	enrichedContext, err := w.buildContext(ctx, enrichedChunks)
	if err != nil {
		log.Error("enriched index failed", "error", err)
		job.AddError(fmt.Sprintf("index enriched: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}

	// Phase 8: Summarize both variants.
	job.SetStatus(StatusSummarizing, "summarizing")
	var rawSummary, enrichedSummary string
	sg, sgctx := errgroup.WithContext(ctx)
	sg.Go(func() error {
		out, err := w.completeWithRetry(sgctx, rewrite.SummarySystemPrompt, rewrite.SummaryUserPrompt(rawContext), log.With("summary", "raw"))
		if err != nil {
			return fmt.Errorf("raw summary: %w", err)
		}
		rawSummary = out
		return nil
	})
	sg.Go(func() error {
		out, err := w.completeWithRetry(sgctx, rewrite.EnrichedSummarySystemPrompt, rewrite.SummaryUserPrompt(enrichedContext), log.With("summary", "enriched"))
		if err != nil {
			return fmt.Errorf("enriched summary: %w", err)
		}
		enrichedSummary = out
		return nil
	})
	if err := sg.Wait(); err != nil {
		log.Error("summarization failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "summarizing")
		return
	}

	// Phase 9: Classify sentence novelty between the two summaries.
	job.SetStatus(StatusReporting, "comparing")
	rawSentences := segment.Sentences(rawSummary, w.cfg.MinFragment)
	enrichedSentences := segment.Sentences(enrichedSummary, w.cfg.MinFragment)
	classifier := &semantic.Classifier{Embedder: w.embedder, Threshold: w.cfg.NoveltyThreshold}
	novelty, err := classifier.Classify(ctx, rawSentences, enrichedSentences)
	if err != nil {
		log.Error("novelty classification failed", "error", err)
		job.AddError(fmt.Sprintf("novelty: %s", err))
		job.SetStatus(StatusFailed, "comparing")
		return
	}

	result := &Result{
		RawSummary:      rawSummary,
		EnrichedSummary: enrichedSummary,
		Registry:        records,
		NovelRaw:        selectNovel(rawSentences, novelty.NovelA),
		NovelEnriched:   selectNovel(enrichedSentences, novelty.NovelB),
		SectionCount:    len(sections),
		RawChunkCount:   len(rawChunks),
		EnrichedChunks:  len(enrichedChunks),
	}
	result.ReportMarkdown = report.Markdown(report.Input{
		SourceName:      job.Filename,
		GeneratedAt:     time.Now(),
		RewriteModel:    w.cfg.AnthropicModel,
		EmbeddingModel:  w.cfg.EmbeddingModel,
		ChunkSize:       w.cfg.ChunkSize,
		TopK:            w.cfg.TopK,
		RawSummary:      result.RawSummary,
		EnrichedSummary: result.EnrichedSummary,
		RawChunkCount:   result.RawChunkCount,
		EnrichedChunks:  result.EnrichedChunks,
		SectionCount:    result.SectionCount,
		Registry:        result.Registry,
		NovelRaw:        result.NovelRaw,
		NovelEnriched:   result.NovelEnriched,
	})
	job.SetResult(result)

	if hadErrors.Load() {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("enrichment complete", "status", job.Snapshot().Status)
}

// buildContext indexes the chunks, runs the topical queries, and joins the
// deduplicated results into one summarization context.
func (w *Worker) buildContext(ctx context.Context, chunks []string) (string, error) {
	idx, err := retrieval.NewIndex(ctx, w.embedder, chunks)
	if err != nil {
		return "", err
	}
	candidates, err := retrieval.MergeQueries(ctx, idx, rewrite.SummaryQueries, w.cfg.TopK)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}

// completeWithRetry retries transient completion failures with backoff.
func (w *Worker) completeWithRetry(ctx context.Context, system, prompt string, log *slog.Logger) (string, error) {
	var out string
	var lastErr error
	for attempt := range MaxRetries {
		out, lastErr = w.completer.Complete(ctx, system, prompt)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable completion error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return out, lastErr
}

func selectNovel(sentences []string, mask []bool) []string {
	var novel []string
	for i, s := range sentences {
		if i < len(mask) && mask[i] {
			novel = append(novel, s)
		}
	}
	return novel
}
