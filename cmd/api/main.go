package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"vidcap/internal/config"
	"vidcap/internal/delivery"
	"vidcap/internal/history"
	"vidcap/internal/httpapi"
	"vidcap/internal/httpapi/handlers"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/pkg/shutdown"
	"vidcap/internal/probe"
	"vidcap/internal/renderer"
)

func main() {
	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", "info"),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "vidcap-api",
		AddSource:   config.Env("LOG_SOURCE", "false") == "true",
	})

	log.Info("starting vidcap API", "version", handlers.Version)

	cfg := config.Load()
	ctx := context.Background()

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Optional PostgreSQL render-job ledger.
	var pool *pgxpool.Pool
	hist := history.Store(history.Nop{})
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL")
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.LogFatal("failed to connect to PostgreSQL", err)
		}
		shutdownMgr.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		if err := pool.Ping(ctx); err != nil {
			log.LogFatal("failed to ping PostgreSQL", err)
		}

		pg := history.NewPG(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.LogFatal("failed to ensure history schema", err)
		}
		hist = pg
		log.Info("render history enabled")
	}

	// Optional Redis probe cache.
	var rdb *redis.Client
	var prober probe.Prober = probe.NewFFProbe(cfg.FFProbePath)
	if cfg.RedisAddr != "" {
		log.Info("connecting to Redis")
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.LogFatal("failed to ping Redis", err)
		}

		prober = probe.NewCached(rdb, prober, cfg.ProbeCacheTTL)
		log.Info("probe cache enabled", "ttl", cfg.ProbeCacheTTL.String())
	}

	// Render engine sidecar.
	engine := renderer.NewHTTPClient(cfg.RendererURL)
	bundle := renderer.NewBundleCache(engine)
	log.Info("renderer configured", "url", cfg.RendererURL)

	// Delivery providers.
	dispatcher, err := delivery.Build(ctx, cfg, log)
	if err != nil {
		log.LogFatal("failed to initialize delivery providers", err)
	}
	log.Info("delivery configured",
		"cloudinary", cfg.Cloudinary.Configured(),
		"gdrive", cfg.Drive.Configured(),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Handlers: handlers.Deps{
			Engine:     engine,
			Bundle:     bundle,
			Dispatcher: dispatcher,
			Prober:     prober,
			History:    hist,
			OutDir:     cfg.OutDir,
			Log:        log,
			Pool:       pool,
			RDB:        rdb,
		},
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
		// Renders are synchronous; the write timeout must outlast them.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr, "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
