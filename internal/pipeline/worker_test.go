package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/fnstitch/internal/config"
	"github.com/dgallion1/fnstitch/internal/footnote"
	"github.com/dgallion1/fnstitch/internal/rewrite"
)

const sampleDoc = `Revenue grew 34%. [1]

Margins improved. [2]

[1] Includes a one-time insurance payout.
[2] Excludes restructuring costs.
`

// scriptedCompleter routes on the system prompt: stitching calls return a
// canned enriched section, summary calls return canned summaries.
type scriptedCompleter struct {
	stitchOutput string
	failStitch   error
}

func (c *scriptedCompleter) Complete(_ context.Context, system, _ string) (string, error) {
	switch system {
	case rewrite.StitchSystemPrompt:
		if c.failStitch != nil {
			return "", c.failStitch
		}
		return c.stitchOutput, nil
	case rewrite.EnrichedSummarySystemPrompt:
		return "Revenue grew strongly. The growth includes a one-time payout from insurance.", nil
	default:
		return "Revenue grew strongly.", nil
	}
}

// vectorEmbedder returns fixed vectors for known texts and a shared
// fallback vector otherwise, so chunk ranking stays deterministic.
type vectorEmbedder struct{}

func (vectorEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		switch t {
		case "Revenue grew strongly.":
			out[i] = []float64{1, 0, 0}
		case "The growth includes a one-time payout from insurance.":
			out[i] = []float64{0, 1, 0}
		default:
			out[i] = []float64{0.5, 0.5, 0.7}
		}
	}
	return out, nil
}

func testConfig() config.Config {
	return config.Config{
		AnthropicModel:       "test-model",
		EmbeddingModel:       "test-embed",
		WorkerCount:          1,
		MaxQueueSize:         4,
		MaxConcurrentRewrite: 2,
		ChunkSize:            800,
		ChunkOverlap:         100,
		TopK:                 4,
		MaxSectionSize:       6000,
		SmallDocMultiplier:   1.5,
		TruncationRatio:      0.6,
		NoveltyThreshold:     0.82,
		MinFragment:          30,
		JobTTL:               time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWorkerProcess_EndToEnd(t *testing.T) {
	completer := &scriptedCompleter{
		stitchOutput: "Revenue grew 34%. [1] {FOOTNOTE [1]: Includes a one-time insurance payout.} " +
			"Margins improved. [2] {FOOTNOTE [2]: MISSING}",
	}
	w := NewWorker(completer, vectorEmbedder{}, discardLogger(), testConfig())

	job := &Job{ID: "e2e", Filename: "report.txt", Status: StatusQueued, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	job.SetFileData([]byte(sampleDoc))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status completed, got %q (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalSections != 1 || snap.Progress.SectionsRewritten != 1 {
		t.Errorf("expected 1 section rewritten, got %+v", snap.Progress)
	}
	if snap.Progress.FootnotesLinked != 1 || snap.Progress.FootnotesBackfilled != 1 {
		t.Errorf("expected 1 linked + 1 backfilled, got %+v", snap.Progress)
	}

	result := job.Result()
	if result == nil {
		t.Fatal("expected a result on the completed job")
	}

	if len(result.Registry) != 2 {
		t.Fatalf("expected 2 registry records, got %d", len(result.Registry))
	}
	if result.Registry[0].Marker != 1 || result.Registry[0].Status != footnote.StatusLinked {
		t.Errorf("expected marker 1 linked, got %+v", result.Registry[0])
	}
	if result.Registry[1].Marker != 2 || result.Registry[1].Status != footnote.StatusBackfilled {
		t.Errorf("expected marker 2 backfilled, got %+v", result.Registry[1])
	}
	if result.Registry[1].Text != "Excludes restructuring costs." {
		t.Errorf("expected sentinel backfilled from scanned definition, got %q", result.Registry[1].Text)
	}

	if len(result.NovelRaw) != 0 {
		t.Errorf("expected no novel raw sentences, got %v", result.NovelRaw)
	}
	if len(result.NovelEnriched) != 1 || !strings.Contains(result.NovelEnriched[0], "one-time payout") {
		t.Errorf("expected the payout sentence as novel enriched, got %v", result.NovelEnriched)
	}

	for _, want := range []string{"Baseline Summary", "Enriched Summary", "| [1] |", "| [2] |", "backfilled"} {
		if !strings.Contains(result.ReportMarkdown, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}

func TestWorkerProcess_StitchFailureFallsBackToOriginal(t *testing.T) {
	completer := &scriptedCompleter{failStitch: errors.New("model unavailable")}
	w := NewWorker(completer, vectorEmbedder{}, discardLogger(), testConfig())

	job := &Job{ID: "fallback", Filename: "report.txt", Status: StatusQueued, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	job.SetFileData([]byte(sampleDoc))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected status partial, got %q", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected the rewrite failure to be recorded")
	}

	// The original section carried no annotations, so every scanned
	// definition is backfilled.
	result := job.Result()
	if result == nil {
		t.Fatal("expected a result despite the rewrite failure")
	}
	for _, rec := range result.Registry {
		if rec.Status != footnote.StatusBackfilled {
			t.Errorf("expected marker %d backfilled, got %q", rec.Marker, rec.Status)
		}
	}
}

func TestWorkerProcess_UnsupportedExtension(t *testing.T) {
	w := NewWorker(&scriptedCompleter{}, vectorEmbedder{}, discardLogger(), testConfig())
	job := &Job{ID: "bad-ext", Filename: "report.xlsx", Status: StatusQueued, UpdatedAt: time.Now()}
	job.SetFileData([]byte("irrelevant"))

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected status failed, got %q", job.Snapshot().Status)
	}
}

func TestWorkerProcess_EmptyDocument(t *testing.T) {
	w := NewWorker(&scriptedCompleter{}, vectorEmbedder{}, discardLogger(), testConfig())
	job := &Job{ID: "empty", Filename: "empty.txt", Status: StatusQueued, UpdatedAt: time.Now()}
	job.SetFileData([]byte("   \n  \n"))

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected status failed for empty document, got %q", job.Snapshot().Status)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&rewrite.RetryableError{StatusCode: 429, Message: "rate limited"}) {
		t.Error("expected 429 to be retryable")
	}
	if IsRetryable(errors.New("bad request")) {
		t.Error("expected plain error to be non-retryable")
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below base", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above cap plus jitter", attempt, d)
		}
	}
}
