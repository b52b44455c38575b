package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/platform/logger"
	phttp "reviewpipe/internal/platform/net/http"

	"github.com/go-chi/chi/v5"

	pipemod "reviewpipe/internal/services/pipeline/module"
	schedmod "reviewpipe/internal/services/scheduler/module"
)

func main() {
	var (
		fConfig = flag.String("config", "", "YAML config overlay (defaults to CONFIG_FILE)")
		fHTTP   = flag.String("http", "", "serve the ops API on this address, e.g. :8080 (empty disables)")
		fNow    = flag.Bool("run-now", false, "trigger one run immediately before waiting for the daily slot")
	)
	flag.Parse()

	cfg, err := config.Load(*fConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger.Init(logger.FromConf(cfg.Raw()))
	defer func() { _ = logger.Close() }()
	l := logger.Get()

	deps := modkit.Deps{Cfg: cfg, Log: *l}
	stack := pipemod.Assemble(deps)
	sched := schedmod.New(deps, modkit.WithPorts(modkit.MustPortsOf[pipemod.Ports](stack.Pipeline).Runner))
	s := modkit.MustPortsOf[schedmod.Ports](sched).Scheduler

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *fHTTP != "" {
		hc := cfg.Prefix("HTTP_")
		srv := phttp.NewServer(phttp.ServerOptions{
			Addr:           *fHTTP,
			AllowedOrigins: hc.MayCSV("ALLOWED_ORIGINS", nil),
			SlowRequest:    hc.MayDuration("SLOW_REQUEST", 2*time.Second),
		}, func(m *chi.Mux) { sched.MountRoutes(m) })
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("ops server stopped")
				stop()
			}
		}()
	}

	if *fNow {
		if err := s.Trigger(ctx, ""); err != nil {
			l.Warn().Err(err).Msg("initial run not started")
		}
	}

	if err := s.Start(ctx); err != nil {
		l.Error().Err(err).Msg("scheduler failed")
	}
	s.Wait()
	if last, ok := s.Last(); ok && last.Report.Error != nil {
		l.Warn().Str("run_id", last.Report.RunID).Str("error", last.Report.Error.Message).Msg("last run ended with an error")
	}
}
