package main

import (
	"context"
	"net/http"
	"time"

	"github.com/farxc/portal_tramites/internal/auth"
	"github.com/farxc/portal_tramites/internal/importer"
	"github.com/farxc/portal_tramites/internal/logger"
	"github.com/farxc/portal_tramites/internal/relay"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
)

type application struct {
	config    config
	store     store.Storage
	appLogger *logger.Logger
	verifier  *auth.Verifier
	relay     *relay.Relay
	importer  *importer.Importer
	db        pinger
}

// pinger is the part of *sqlx.DB the health check needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

type config struct {
	addr        string
	db          dbConfig
	jwtSecret   string
	corsOrigins []string
	relaySource string
	dev         bool
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.logRequests)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/tramites", func(r chi.Router) {
			r.Get("/", app.handleListPublicTramites)
			r.Get("/categorias", app.handleGetCategorias)
			r.Get("/{id}", app.handleGetPublicTramite)
		})
		r.Get("/dependencias/arbol", app.handleGetPublicTree)

		r.Route("/chat", func(r chi.Router) {
			r.Get("/config", app.handleGetChatConfig)
			r.Post("/", app.handleChat)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.authenticate)

			r.Route("/dependencias", func(r chi.Router) {
				r.Use(app.requireRole(store.RoleAdmin, store.RoleSupervisor))

				r.Get("/", app.handleListDependencias)
				r.Post("/", app.handleCreateDependencia)
				r.Get("/arbol", app.handleGetAdminTree)
				r.With(gzipResponses).Get("/export", app.handleExportDependencias)
				r.Get("/{id}", app.handleGetDependencia)
				r.Put("/{id}", app.handleUpdateDependencia)
				r.Patch("/{id}/estado", app.handleSetDependenciaEstado)
			})

			r.Route("/tramites", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(app.requireRole(store.RoleAdmin, store.RoleSupervisor, store.RoleFuncionario))

					r.Get("/", app.handleListTramites)
					r.Post("/", app.handleCreateTramite)
					r.Put("/{id}", app.handleUpdateTramite)
					r.Patch("/{id}/estado", app.handleSetTramiteEstado)
				})

				r.Group(func(r chi.Router) {
					r.Use(app.requireRole(store.RoleAdmin, store.RoleSupervisor))

					r.Post("/import", app.handleImportTramites)
					r.Get("/import/history", app.handleGetImportHistory)
					r.Get("/import/template", app.handleGetImportTemplate)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(app.requireRole(store.RoleAdmin))

				r.Get("/webhook", app.handleGetWebhookConfig)
				r.Put("/webhook", app.handleUpdateWebhookConfig)
				r.Get("/usuarios", app.handleListUsuarios)
				r.Patch("/usuarios/{id}/rol", app.handleUpdateUsuarioRol)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   app.config.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)
}

// gzipResponses adapts gzhttp, whose handler is an http.HandlerFunc, to chi middleware.
func gzipResponses(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info("API", "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
