package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/eventim-report/internal/report/app"
	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(os.LookupEnv)
	if err != nil {
		return configFailure(app.BootstrapLogger(os.LookupEnv, os.Stderr), err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return configFailure(app.BootstrapLogger(os.LookupEnv, os.Stderr), err)
	}

	res := application.Run(ctx)
	return exitCode(res)
}

func configFailure(logger *slog.Logger, err error) int {
	var cerr *domain.ConfigurationError
	if errors.As(err, &cerr) {
		logger.Error("configuration error", "error", err, "missing", cerr.Missing, "invalid", cerr.Invalid)
		return exitConfig
	}
	logger.Error("startup failed", "error", err)
	return exitFailed
}

func exitCode(res domain.RunResult) int {
	switch res.Status {
	case domain.RunSucceeded, domain.RunNoData:
		return exitOK
	default:
		return exitFailed
	}
}
