package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"forecast-cli/config"
	"forecast-cli/internal/controllers/cli"
	"forecast-cli/internal/models"
	"forecast-cli/internal/repositories"
	"forecast-cli/internal/services/forecast"
	"forecast-cli/pkg/logger"
	"forecast-cli/pkg/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 1
	}

	units, err := models.ParseUnits(cnf.Units)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 1
	}

	writers := []io.Writer{os.Stderr}

	var hook *observe.SentryHook
	if cnf.SentryDSN != "" && cnf.IsReportingEnv() {
		if hook, err = observe.NewSentryHook(cnf.AppEnv, cnf.AppName, cnf.SentryDSN, false); err != nil {
			fmt.Fprintln(os.Stderr, "error reporting disabled:", err)
		} else {
			writers = append(writers, hook)
		}
	}

	l := logger.NewZapLogger(cnf.AppName, cnf.AppEnv, logger.ParseLevel(cnf.LogLevel), writers...)
	defer func() {
		_ = l.Stop()
		if hook != nil {
			hook.Flush()
		}
	}()

	repo, err := repositories.NewOpenWeatherMapRepository(
		cnf.BaseURL,
		cnf.APIKey,
		units,
		l,
		&http.Client{Timeout: cnf.RequestTimeout},
	)
	if err != nil {
		l.Error(err)
		return 1
	}

	service := forecast.NewService(repo, forecast.Options{
		MaxAttempts:   cnf.MaxAttempts,
		RetryDelay:    cnf.RetryDelay,
		MaxRetryDelay: cnf.RetryMaxDelay,
	}, l)

	handler := cli.NewHandler(service, units, os.Stdin, os.Stdout, l)

	l.Debug("application started", map[string]any{"units": units, "maxAttempts": cnf.MaxAttempts})

	if err := handler.Run(ctx); err != nil {
		l.Debug("run finished with error", map[string]any{"err": err.Error()})
		return 1
	}

	return 0
}
