// Command fnstitch runs the enrichment pipeline on a single document and
// writes the comparison report next to the input file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/dgallion1/fnstitch/internal/config"
	"github.com/dgallion1/fnstitch/internal/pipeline"
	"github.com/dgallion1/fnstitch/internal/rewrite"
	"github.com/dgallion1/fnstitch/internal/semantic"
)

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: fnstitch run <file>")
	}

	cfg := config.Load()
	if cmd.Int("chunk-size") > 0 {
		cfg.ChunkSize = int(cmd.Int("chunk-size"))
	}
	if cmd.Int("overlap") > 0 {
		cfg.ChunkOverlap = int(cmd.Int("overlap"))
	}
	if cmd.Int("top-k") > 0 {
		cfg.TopK = int(cmd.Int("top-k"))
	}
	if cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	logLevel := slog.LevelInfo
	if cmd.Bool("quiet") {
		logLevel = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	completer := rewrite.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, nil)
	defer completer.Close()
	embedder := semantic.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	defer embedder.Close()

	now := time.Now()
	job := &pipeline.Job{
		ID:        "cli",
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filepath.Base(path),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	w := pipeline.NewWorker(completer, embedder, log, cfg)
	w.Process(ctx, job)

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusPartial:
		log.Warn("finished with errors", "errors", snap.Progress.Errors)
	default:
		return fmt.Errorf("enrichment failed (%s): %s", snap.Phase, strings.Join(snap.Progress.Errors, "; "))
	}

	result := job.Result()
	if result == nil {
		return fmt.Errorf("pipeline produced no result")
	}

	out := cmd.String("output")
	if out == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out = filepath.Join(filepath.Dir(path), fmt.Sprintf("summary_report_%s.md", stem))
	}
	if err := os.WriteFile(out, []byte(result.ReportMarkdown), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("report written to %s (%d footnotes, %d sections)\n", out, len(result.Registry), result.SectionCount)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "fnstitch",
		Usage: "Footnote-aware document enrichment and summary comparison",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Enrich one document and write its comparison report",
				ArgsUsage: "<file>",
				Action:    run,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Chunk overlap in characters",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Chunks retrieved per query",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Report output path",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Only log errors",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("fnstitch error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
