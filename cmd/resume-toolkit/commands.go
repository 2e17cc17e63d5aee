package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/processor"
	"github.com/supersokol/workua-resume-toolkit/internal/storage"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// Raw HTML payloads can run into megabytes per line.
const maxLineBytes = 16 * 1024 * 1024

// outputLine is one processed record in the NDJSON output.
type outputLine struct {
	SourceURL string                 `json:"source_url"`
	Record    *types.ProcessedResume `json:"record"`
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// runProcess streams NDJSON payloads through the pipeline. Malformed
// lines and unkeyed payloads are logged and skipped; with --store the
// Redis dedup set short-circuits payloads whose cleaned text was
// already processed.
func runProcess(ctx context.Context, cfg *config.Config) error {
	in, err := openInput(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := openOutput(outPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	var store *storage.Storage
	if storeFlag {
		if store, err = storage.NewStorage(cfg, false); err != nil {
			return err
		}
		defer store.Close()
	}

	proc := processor.New(processor.WithMatcher(buildMatcher(cfg)))
	enc := json.NewEncoder(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var processed, skipped, duplicates int
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if limitFlag > 0 && processed+skipped+duplicates >= limitFlag {
			break
		}

		var payload types.ResumePayload
		if err := json.Unmarshal(line, &payload); err != nil {
			logger.Warn().Err(err).Msg("skipping malformed payload line")
			skipped++
			continue
		}

		record, handled, err := handlePayload(ctx, proc, store, &payload)
		if err != nil {
			logger.Warn().Err(err).Str("source_url", payload.SourceURL).Msg("skipping payload")
			skipped++
			continue
		}
		if !handled {
			duplicates++
			continue
		}

		if err := enc.Encode(outputLine{SourceURL: payload.SourceURL, Record: record}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	logger.Info().
		Int("processed", processed).
		Int("skipped", skipped).
		Int("duplicates", duplicates).
		Msg("processing finished")
	return ctx.Err()
}

// handlePayload runs one payload end to end. The bool result is false
// when the payload was deduplicated away.
func handlePayload(ctx context.Context, proc *processor.Processor, store *storage.Storage, payload *types.ResumePayload) (*types.ProcessedResume, bool, error) {
	if store != nil && payload.CleanedText != "" {
		seen, err := store.Redis.CheckAndAddCleanedTextMD5(ctx, storage.MD5Hex(payload.CleanedText))
		if err != nil {
			return nil, false, err
		}
		if seen {
			logger.Debug().Str("source_url", payload.SourceURL).Msg("duplicate cleaned text, skipping")
			return nil, false, nil
		}
	}

	record, err := proc.Process(ctx, payload)
	if err != nil {
		return nil, false, err
	}

	if store != nil {
		if err := store.MySQL.UpsertPayload(ctx, payload); err != nil {
			return nil, false, fmt.Errorf("store payload: %w", err)
		}
		if err := store.MySQL.SetProcessed(ctx, payload.SourceURL, record); err != nil {
			return nil, false, fmt.Errorf("store record: %w", err)
		}
	}
	return record, true, nil
}

// runWorker consumes payloads from the queue, stores the results and
// publishes processed events. Runs until the context is cancelled.
func runWorker(ctx context.Context, cfg *config.Config) error {
	store, err := storage.NewStorage(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	proc := processor.New(processor.WithMatcher(buildMatcher(cfg)))

	err = store.Queue.ConsumePayloads(ctx, cfg.Processing.Concurrency, func(body []byte) bool {
		var payload types.ResumePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			logger.Warn().Err(err).Msg("dropping malformed payload message")
			return false
		}

		record, handled, err := handlePayload(ctx, proc, store, &payload)
		if err != nil {
			if errors.Is(err, processor.ErrMissingSourceURL) {
				logger.Warn().Msg("dropping payload without source URL")
				return false
			}
			logger.Error().Err(err).Str("source_url", payload.SourceURL).Msg("payload handling failed")
			return false
		}
		if !handled {
			// Duplicate content is done work, not a failure.
			return true
		}

		if err := store.Queue.PublishProcessed(ctx, payload.SourceURL, record); err != nil {
			logger.Error().Err(err).Str("source_url", payload.SourceURL).Msg("publish failed")
			return false
		}
		return true
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runMigrate creates or updates the schema and exits.
func runMigrate(cfg *config.Config) error {
	db, err := storage.NewMySQL(&cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	logger.Info().Msg("schema migrated")
	return nil
}

// runStats prints store counters as a single JSON object.
func runStats(ctx context.Context, cfg *config.Config) error {
	db, err := storage.NewMySQL(&cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
