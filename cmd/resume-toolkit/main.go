// Command resume-toolkit runs the resume processing pipeline: parse
// scraped work.ua payloads into structured career records, either over
// NDJSON files or as a queue worker, with optional MySQL/Redis
// persistence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/semantic"
)

var (
	configPath  string
	inPath      string
	outPath     string
	storeFlag   bool
	useSemantic bool
	limitFlag   int
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: resume-toolkit [flags] <command>

Commands:
  process   read payloads as NDJSON (--in), write processed records as NDJSON (--out)
  worker    consume payloads from RabbitMQ, store and publish results
  migrate   create or update the MySQL schema
  stats     print resume store counters as JSON

Flags:
`)
	pflag.PrintDefaults()
}

func main() {
	pflag.StringVarP(&configPath, "config", "c", "", "path to config file (default: probe config.yaml)")
	pflag.StringVarP(&inPath, "in", "i", "-", "NDJSON input file, - for stdin")
	pflag.StringVarP(&outPath, "out", "o", "-", "NDJSON output file, - for stdout")
	pflag.BoolVar(&storeFlag, "store", false, "persist payloads and records in MySQL, dedup through Redis")
	pflag.BoolVar(&useSemantic, "semantic", false, "cluster titles through the embedding endpoint")
	pflag.IntVar(&limitFlag, "limit", 0, "stop after this many payloads (0 = no limit)")
	pflag.Usage = usage
	pflag.Parse()

	command := pflag.Arg(0)
	if command == "" {
		command = "process"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "process":
		err = runProcess(ctx, cfg)
	case "worker":
		err = runWorker(ctx, cfg)
	case "migrate":
		err = runMigrate(cfg)
	case "stats":
		err = runStats(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
	if err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

// buildMatcher picks the similarity backend. Without --semantic, or
// without a configured endpoint, a nil matcher keeps clustering on
// exact normalized keys.
func buildMatcher(cfg *config.Config) semantic.Matcher {
	if !useSemantic {
		return nil
	}
	if cfg.Embedding.BaseURL == "" {
		logger.Warn().Msg("--semantic set but embedding.base_url is empty, falling back to exact matching")
		return nil
	}
	m, err := semantic.NewEmbeddingMatcher(semantic.EmbeddingConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("embedding matcher unavailable, falling back to exact matching")
		return nil
	}
	return semantic.NewCachedMatcher(m, cfg.Processing.SimilarityCacheSize)
}
