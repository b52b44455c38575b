package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/platform/logger"

	pipemod "reviewpipe/internal/services/pipeline/module"
)

const defaultQuery = "SELECT * FROM customer_reviews"

func main() { os.Exit(run(os.Args[1:])) }

func run(args []string) int {
	fs := flag.NewFlagSet("reviewpipe-run", flag.ContinueOnError)
	var (
		fConfig = fs.String("config", "", "YAML config overlay (defaults to CONFIG_FILE)")
		fQuery  = fs.String("query", defaultQuery, "SQL query selecting the reviews to process")
		fReport = fs.String("report", "", "write the run report as JSON to this path (- for stdout)")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack := pipemod.Assemble(modkit.Deps{Cfg: cfg, Log: *l})
	rep, runErr := modkit.MustPortsOf[pipemod.Ports](stack.Pipeline).Runner.Run(ctx, *fQuery)

	if *fReport != "" {
		if err := writeReport(*fReport, rep); err != nil {
			l.Error().Err(err).Str("path", *fReport).Msg("write run report")
		}
	}
	if runErr != nil || rep.Failed() {
		return 1
	}
	return 0
}

func writeReport(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
