package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"reviewpipe/internal/core/records"
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/platform/logger"

	analyzemod "reviewpipe/internal/services/analyze/module"
	analyzesvc "reviewpipe/internal/services/analyze/service"
)

func main() { os.Exit(run(os.Args[1:])) }

func run(args []string) int {
	fs := flag.NewFlagSet("reviewpipe-eda", flag.ContinueOnError)
	var (
		fConfig      = fs.String("config", "", "YAML config overlay (defaults to CONFIG_FILE)")
		fIn          = fs.String("in", "data/cleaned_reviews.csv", "cleaned CSV input")
		fOut         = fs.String("out", "", "chart directory (defaults to EDA_OUTPUT_DIR)")
		fText        = fs.String("text-column", "review_text", "text column for the top terms chart")
		fPredictions = fs.Bool("predictions", false, "render sentiment distribution and trends instead")
		fDate        = fs.String("date-column", "review_date", "date column (-predictions)")
		fSentiment   = fs.String("sentiment-column", "sentiment", "sentiment column (-predictions)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*fConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	logger.Init(logger.FromConf(cfg.Raw()))
	defer func() { _ = logger.Close() }()
	l := logger.Get()

	set, err := records.LoadCSV(*fIn)
	if err != nil {
		l.Error().Err(err).Str("path", *fIn).Msg("load cleaned data")
		return 1
	}

	m := analyzemod.New(modkit.Deps{Cfg: cfg, Log: *l}, analyzesvc.Config{OutputDir: *fOut})
	an := modkit.MustPortsOf[analyzemod.Ports](m).Analyzer
	ctx := context.Background()

	if *fPredictions {
		art, err := an.AnalyzePredictions(ctx, set, *fDate, *fSentiment)
		if err != nil {
			l.Error().Err(err).Msg("prediction charts failed")
			return 1
		}
		l.Info().Strs("files", art.Files).Msg("prediction charts complete")
		return 0
	}
	art, err := an.Analyze(ctx, set, *fText)
	if err != nil {
		l.Error().Err(err).Msg("EDA failed")
		return 1
	}
	l.Info().Strs("files", art.Files).Strs("skipped", art.Skipped).Msg("EDA complete")
	return 0
}
