package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/srivatsav-tech/hubspot-data/pkg/handlers/deals"
	hubspotmiddleware "github.com/srivatsav-tech/hubspot-data/pkg/server/middleware"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Catalog   *pipeline.StageCatalog
	Analysis  deals.AnalysisService
	Snapshots deals.SnapshotLister
	Refresher deals.Refresher
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	dealsHandler := deals.NewHandler(
		config.Dependencies.Catalog,
		config.Dependencies.Analysis,
		config.Dependencies.Snapshots,
		config.Dependencies.Refresher,
	)

	router := chi.NewRouter()

	router.Use(hubspotmiddleware.Logger(&config.Dependencies.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stages", dealsHandler.ListStages)
		r.Get("/snapshots", dealsHandler.ListSnapshots)
		r.Get("/snapshots/latest", dealsHandler.GetSnapshot)
		r.Post("/snapshots/refresh", dealsHandler.RefreshSnapshot)
		r.Get("/matrix", dealsHandler.GetMatrix)
		r.Get("/stagnation", dealsHandler.GetStagnation)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
