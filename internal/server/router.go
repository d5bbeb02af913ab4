package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/TwigBush/keyguard/internal/guard"
	"github.com/TwigBush/keyguard/internal/handlers"
	mw2 "github.com/TwigBush/keyguard/internal/mw"
	"github.com/TwigBush/keyguard/internal/route"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	CORSOrigins    []string
	CredentialName string
	Timeout        time.Duration
	Logger         *slog.Logger
}

type Deps struct {
	Guard *guard.Guard
}

// Route is one entry of the route table. Tags are the route's metadata as the
// guard sees them.
type Route struct {
	Method  string
	Pattern string
	Tags    []string
	Handler http.HandlerFunc
}

// DefaultRoutes is the demo table: one open route, one carrying protectedTag.
func DefaultRoutes(protectedTag string) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/ping/{ping}", Handler: handlers.Ping},
		{Method: http.MethodGet, Pattern: "/protected/{name}", Tags: []string{protectedTag}, Handler: handlers.Greet},
	}
}

func BuildRouter(d Deps, opts Options, routes []Route) http.Handler {
	if opts.CredentialName == "" {
		opts.CredentialName = guard.DefaultCredentialName
	}

	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", opts.CredentialName},
			MaxAge:         300,
		}))
	}

	r.Use(mw2.Trace())
	r.Use(mw2.Logger(mw2.LogOpts{
		Logger:        opts.Logger,
		SkipPaths:     []string{"/healthz", "/version"},
		RedactHeaders: []string{opts.CredentialName},
		RedactQuery:   []string{opts.CredentialName},
	}))

	r.Get("/healthz", handlers.Health)
	r.Get("/version", handlers.Version)

	Mount(r, d.Guard, routes)
	return r
}

// Mount registers routes so that each request carries its route tags before
// the guard runs, and the guard runs before the handler.
func Mount(r chi.Router, g *guard.Guard, routes []Route) {
	for _, rt := range routes {
		chain := []func(http.Handler) http.Handler{route.Tagged(rt.Tags...)}
		if len(rt.Tags) > 0 {
			chain = append(chain, mw2.NoStore)
		}
		if g != nil {
			chain = append(chain, g.Middleware)
		}
		r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
	}
}
