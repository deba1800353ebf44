package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwhite7112/woodpantry-pickle/internal/clients"
	"github.com/mwhite7112/woodpantry-pickle/internal/config"
	"github.com/mwhite7112/woodpantry-pickle/internal/events"
	"github.com/mwhite7112/woodpantry-pickle/internal/metrics"
	"github.com/mwhite7112/woodpantry-pickle/internal/secrets"
	"github.com/mwhite7112/woodpantry-pickle/internal/service"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pickle",
		Short:         "Answer whether an item can be pickled",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newCheckCommand())

	return root
}

func newLogger(w io.Writer, level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}

// buildChecker resolves the provider credential and wires the checker with
// its optional event publisher. The returned func releases the publisher.
func buildChecker(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*service.PickleChecker, func(), error) {
	apiKey, err := secrets.Resolve(ctx, cfg.Credential)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve api key: %w", err)
	}

	httpClient := clients.NewHTTPClient(cfg.OpenAI.Timeout)
	completer := clients.NewOpenAIClient(cfg.OpenAI.BaseURL, apiKey, cfg.OpenAI.Model, httpClient)

	opts := []service.Option{service.WithLogger(logger)}
	if m != nil {
		opts = append(opts, service.WithRecorder(m))
	}

	cleanup := func() {}
	if cfg.Events.RabbitMQURL != "" {
		publisher, err := events.NewPickleCheckedPublisher(cfg.Events.RabbitMQURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create event publisher: %w", err)
		}
		opts = append(opts, service.WithPublisher(publisher))
		cleanup = func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("close event publisher", "error", err)
			}
		}
	}

	return service.NewPickleChecker(completer, opts...), cleanup, nil
}
