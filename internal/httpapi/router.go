// Package httpapi wires the HTTP surface of the vidcap service.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidcap/internal/httpapi/handlers"
	"vidcap/internal/httpkit"
	"vidcap/internal/pkg/logger"
	"vidcap/internal/pkg/middleware"
)

type Deps struct {
	Handlers    handlers.Deps
	Log         *logger.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := handlers.New(d.Handlers)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Post("/render", h.PostRender)
	r.Post("/render-edit", h.PostRenderEdit)
	r.Get("/renders", h.ListRenders)

	return r
}
