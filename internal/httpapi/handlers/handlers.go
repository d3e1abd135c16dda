package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"vidcap/internal/delivery"
	"vidcap/internal/history"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/probe"
	"vidcap/internal/renderer"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

type Deps struct {
	Engine     renderer.Engine
	Bundle     *renderer.BundleCache
	Dispatcher *delivery.Dispatcher
	Prober     probe.Prober
	History    history.Store
	OutDir     string
	Log        *logger.Logger

	// Pool and RDB are nil when the optional backends are not configured;
	// they are only used by the deep health check.
	Pool *pgxpool.Pool
	RDB  *redis.Client
}

type Handler struct {
	engine     renderer.Engine
	bundle     *renderer.BundleCache
	dispatcher *delivery.Dispatcher
	prober     probe.Prober
	history    history.Store
	outDir     string
	log        *logger.Logger

	pool *pgxpool.Pool
	rdb  *redis.Client
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	hist := d.History
	if hist == nil {
		hist = history.Nop{}
	}
	outDir := d.OutDir
	if outDir == "" {
		outDir = "out"
	}

	return &Handler{
		engine:     d.Engine,
		bundle:     d.Bundle,
		dispatcher: d.Dispatcher,
		prober:     d.Prober,
		history:    hist,
		outDir:     outDir,
		log:        log.WithComponent("httpapi"),
		pool:       d.Pool,
		rdb:        d.RDB,
	}
}
