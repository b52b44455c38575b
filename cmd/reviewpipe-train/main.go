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

	trainmod "reviewpipe/internal/services/train/module"
)

func main() { os.Exit(run(os.Args[1:])) }

func run(args []string) int {
	fs := flag.NewFlagSet("reviewpipe-train", flag.ContinueOnError)
	var (
		fConfig = fs.String("config", "", "YAML config overlay (defaults to CONFIG_FILE)")
		fIn     = fs.String("in", "data/cleaned_reviews.csv", "cleaned CSV input")
		fModel  = fs.String("model", "both", "linear | transformer | both")
		fText   = fs.String("text-column", "review_text", "text column")
		fLabel  = fs.String("label-column", "sentiment", "label column")
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

	m := trainmod.New(modkit.Deps{Cfg: cfg, Log: *l})
	tr := modkit.MustPortsOf[trainmod.Ports](m).Trainer
	ctx := context.Background()
	failed := false

	if *fModel == "linear" || *fModel == "both" {
		if _, err := tr.TrainLinear(ctx, set, *fText, *fLabel); err != nil {
			failed = true
		} else {
			l.Info().Msg("logistic regression model training complete")
		}
	}
	if *fModel == "transformer" || *fModel == "both" {
		switch {
		case !m.TransformerConfigured():
			l.Warn().Msg("transformer encoder not configured; set TRANSFORMER_MODEL_PATH or TRANSFORMER_ENCODER=hash")
			failed = failed || *fModel == "transformer"
		default:
			art, err := tr.FineTuneTransformer(ctx, set, *fText, *fLabel)
			if err != nil {
				failed = true
				break
			}
			_ = art.Close()
			l.Info().Msg("transformer head training complete")
		}
	}
	if failed {
		return 1
	}
	return 0
}
