package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/coding-rules-query-go/config"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/httpapi"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/oteladapters"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/postgresengine"
)

type serveFlags struct {
	listenAddr   string
	createSchema bool
}

func serveCmd(flags *globalFlags) *cobra.Command {
	serve := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rules search API",
		Long: `Serves the rules search API backed by PostgreSQL until SIGINT or SIGTERM.

Configuration is read from the RULESQUERY_* environment variables, optionally
loaded from the file given with --env-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags, serve)
		},
	}

	cmd.Flags().StringVar(&serve.listenAddr, "listen", "", "Listen address, overrides "+config.EnvListenAddr)
	cmd.Flags().BoolVar(&serve.createSchema, "create-schema", false, "Create the rules tables if they don't exist")

	return cmd
}

func runServe(cmd *cobra.Command, flags *globalFlags, serve *serveFlags) error {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return err
	}

	if serve.listenAddr != "" {
		cfg.ListenAddr = serve.listenAddr
	}

	logger, err := flags.logger(cmd, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers := config.NewObservabilityProviders(appName, nil, nil)
	defer func() {
		if shutdownErr := providers.Shutdown(); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr.Error())
		}
	}()

	metrics := oteladapters.NewMetricsCollector(otel.Meter(appName))

	store, closeStore, err := config.OpenRuleStore(
		ctx,
		cfg,
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(appName)),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(appName))),
	)
	if err != nil {
		return err
	}
	defer closeStore()

	if serve.createSchema {
		if err := store.CreateSchema(ctx); err != nil {
			return err
		}
	}

	serverOptions := []httpapi.Option{
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(metrics),
		httpapi.WithCacheTTL(cfg.CacheTTL),
	}
	if cfg.CacheSize > 0 {
		serverOptions = append(serverOptions, httpapi.WithCacheSize(cfg.CacheSize))
	}

	server, err := httpapi.NewServer(store, serverOptions...)
	if err != nil {
		return err
	}

	logger.Info("starting "+appName, slog.String("version", Version), slog.String("adapter", cfg.Adapter))

	return server.ListenAndServe(ctx, cfg.ListenAddr)
}
