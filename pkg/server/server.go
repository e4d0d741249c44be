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
	accounthandler "github.com/seo-tools/site-atlas/pkg/handlers/account"
	sitehandler "github.com/seo-tools/site-atlas/pkg/handlers/site"
	siteatlasmiddleware "github.com/seo-tools/site-atlas/pkg/server/middleware"
	"github.com/seo-tools/site-atlas/pkg/services/charge"
	"github.com/seo-tools/site-atlas/pkg/services/embedding"
	"github.com/seo-tools/site-atlas/pkg/services/reprocess"
	creditstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/credit"
	profilestore "github.com/seo-tools/site-atlas/pkg/store/duckdb/profile"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Charger   *charge.Service
	Processor *reprocess.Service
	Searcher  *embedding.Searcher
	Profiles  profilestore.Store
	Raw       rawstore.Store
	Credit    creditstore.Store
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	siteHandler := sitehandler.NewHandler(deps.Charger, deps.Processor, deps.Searcher, deps.Profiles, deps.Raw)
	accountHandler := accounthandler.NewHandler(deps.Credit)

	router := chi.NewRouter()
	router.Use(siteatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/sources", siteHandler.ListSources)
		r.Get("/sites", siteHandler.ListSites)
		r.Post("/sites/{site}/sources/{source}/refresh", siteHandler.RefreshSource)
		r.Post("/sites/{site}/reprocess", siteHandler.Reprocess)
		r.Get("/sites/{site}/profile", siteHandler.GetProfile)
		r.Get("/sites/{site}/similar", siteHandler.Similar)
		r.Get("/accounts/{account}", accountHandler.GetAccount)
		r.Get("/accounts/{account}/ledger", accountHandler.GetLedger)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(config)

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
