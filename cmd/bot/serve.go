package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/cache"
	"riskToleranceBot/internal/config"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/metrics"
	"riskToleranceBot/internal/openai"
	"riskToleranceBot/internal/server"
	"riskToleranceBot/internal/storage"
	"riskToleranceBot/internal/telegram"
)

func serveCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the telegram webhook, JSON API and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireBot(); err != nil {
		return err
	}

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.DB.Path + "?_fk=1")
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("path", cfg.DB.Path).Msg("db: opened sqlite")
	if err := storage.InitSchema(db); err != nil {
		return err
	}
	log.Info().Msg("db: schema ensured (sessions table)")

	src, closeCache, err := priceSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	rec := metrics.New(prometheus.DefaultRegisterer)
	svc := assessment.NewService(src, assessment.WithBenchmark(cfg.Benchmark), assessment.WithRecorder(rec))

	deps := telegram.Deps{Store: storage.NewStore(db), Service: svc, Recorder: rec}
	if cfg.OpenAI.APIKey != "" {
		deps.Advisor = openai.NewAdvisor(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Warn().Msg("openai: OPENAI_API_KEY not set, /explain disabled")
	}

	tg, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.WebhookPublicURL, deps)
	if err != nil {
		return err
	}
	log.Info().Str("webhook", cfg.Telegram.WebhookPublicURL).Msg("telegram: bot initialized")

	e := server.New(server.NewAPI(svc), tg.WebhookHandler, prometheus.DefaultGatherer)
	return server.ListenAndServe(ctx, e, ":"+cfg.Server.Port, cfg.Server.ShutdownTimeout)
}

// priceSource builds the Yahoo client and wraps it in the configured cache.
func priceSource(ctx context.Context, cfg *config.Config) (finance.PriceSource, func(), error) {
	yahoo := finance.NewYahooSource(
		finance.WithYahooTimeout(cfg.Yahoo.Timeout),
		finance.WithYahooRateLimit(cfg.Yahoo.RatePerSecond, cfg.Yahoo.Burst),
	)
	noop := func() {}
	switch cfg.Cache.Backend {
	case "none":
		return yahoo, noop, nil
	case "redis":
		r := cfg.Cache.Redis
		store, err := cache.NewRedisStore(ctx, r.Addr, r.Password, r.DB, r.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		log.Info().Str("addr", r.Addr).Dur("ttl", cfg.Cache.TTL).Msg("cache: using redis")
		return finance.NewCachedSource(yahoo, store, cfg.Cache.TTL), func() { _ = store.Close() }, nil
	default:
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("cache: using memory")
		return finance.NewCachedSource(yahoo, finance.NewMemoryPriceStore(), cfg.Cache.TTL), noop, nil
	}
}
