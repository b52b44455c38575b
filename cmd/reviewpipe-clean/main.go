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

	cleanmod "reviewpipe/internal/services/clean/module"
)

func main() { os.Exit(run(os.Args[1:])) }

func run(args []string) int {
	fs := flag.NewFlagSet("reviewpipe-clean", flag.ContinueOnError)
	var (
		fConfig = fs.String("config", "", "YAML config overlay (defaults to CONFIG_FILE)")
		fIn     = fs.String("in", "data/raw_reviews.csv", "raw CSV input")
		fOut    = fs.String("out", "data/cleaned_reviews.csv", "cleaned CSV output")
		fColumn = fs.String("column", "", "text column (defaults to CLEAN_TEXT_COLUMN)")
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

	m := cleanmod.New(modkit.Deps{Cfg: cfg, Log: *l})
	column := *fColumn
	if column == "" {
		column = m.Options().TextColumn
	}

	raw, err := records.LoadCSV(*fIn)
	if err != nil {
		l.Error().Err(err).Str("path", *fIn).Msg("load raw data")
		return 1
	}
	cleaned, err := modkit.MustPortsOf[cleanmod.Ports](m).Preprocessor.Preprocess(context.Background(), raw, column)
	if err != nil {
		l.Error().Err(err).Str("column", column).Msg("cleaning failed")
		return 1
	}
	if err := records.SaveCSV(*fOut, cleaned); err != nil {
		l.Error().Err(err).Str("path", *fOut).Msg("save cleaned data")
		return 1
	}
	l.Info().Int("rows", cleaned.Len()).Str("path", *fOut).Msg("data cleaning complete")
	return 0
}
