package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	"github.com/mohammed-shakir/geomcore/internal/cache/parsecache"
	"github.com/mohammed-shakir/geomcore/internal/cache/redisstore"
	"github.com/mohammed-shakir/geomcore/internal/core/config"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	"github.com/mohammed-shakir/geomcore/internal/core/router"
	"github.com/mohammed-shakir/geomcore/internal/core/server"
	"github.com/mohammed-shakir/geomcore/internal/ingest/kafkaconsumer"
	"github.com/mohammed-shakir/geomcore/internal/logger"
	h3mapper "github.com/mohammed-shakir/geomcore/internal/mapper/h3"
	"github.com/mohammed-shakir/geomcore/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "geomd",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mp := metrics.Init(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Addr:    cfg.Metrics.Addr,
		Path:    cfg.Metrics.Path,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	observability.Init(mp.Registerer(), cfg.Metrics.Enabled)
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = mp.Handler()
		go func() {
			if err := mp.Serve(ctx, appLog); err != nil {
				appLog.Error("metrics server exited", "err", err)
			}
		}()
	}

	appLog.Info("starting geomd",
		"addr", cfg.Addr,
		"version", Version,
		"h3_res", cfg.H3Res,
		"redis", cfg.RedisAddr,
		"ingest", cfg.Ingest.Enabled)

	parser, err := parsecache.New(cfg.ParseCacheSize)
	if err != nil {
		appLog.Error("parse cache setup failed", "err", err)
		return 1
	}
	cover := h3mapper.New(h3mapper.WithMaxCells(cfg.H3MaxCells))

	deps := server.Deps{Metrics: metricsHandler}
	var store *featurestore.Store
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		cli, err := redisstore.New(dialCtx, cfg.RedisAddr,
			redisstore.WithReadTimeout(cfg.RedisOpTimeout),
			redisstore.WithWriteTimeout(cfg.RedisOpTimeout),
		)
		cancel()
		if err != nil {
			appLog.Error("redis setup failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = cli.Close() }()

		store = featurestore.New(cli, cover, cfg.H3Res,
			featurestore.WithTTL(cfg.TTLFor),
			featurestore.WithParseCache(parser),
		)
		deps.Store = store
	} else {
		appLog.Warn("REDIS_ADDR is empty; layer routes disabled")
	}

	if cfg.Ingest.Enabled {
		if store == nil {
			appLog.Error("ingest requires the feature store (set REDIS_ADDR)")
			return 1
		}
		consumer := kafkaconsumer.New(kafkaconsumer.FromIngest(cfg.Ingest), appLog, store, parser)
		if err := consumer.Start(ctx); err != nil {
			appLog.Error("ingest consumer setup failed", "err", err)
			return 1
		}
		defer consumer.Stop()
		deps.Consumer = consumer
	}

	var features router.FeatureStore
	if store != nil {
		features = store
	}
	deps.Handlers = router.New(cfg, appLog, parser, cover, features)

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
