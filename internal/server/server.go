// Package server exposes lineage and connection metadata as a JSON API for
// the browser dashboard.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/config"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CatalogOpener returns the catalog behind a saved connection
type CatalogOpener func(ctx context.Context, session *connector.Session, source models.SourceType, conn string) (catalog.Catalog, error)

// Server is the dashboard API server
type Server struct {
	Config      *config.Config
	Logger      *logrus.Logger
	OpenCatalog CatalogOpener

	keyOnce   sync.Once
	encryptor *connector.Encryptor
	keyErr    error
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, logger *logrus.Logger) *Server {
	return &Server{
		Config:      cfg,
		Logger:      logger,
		OpenCatalog: catalog.Open,
	}
}

// Encryptor loads the credential key once and shares it between requests
func (s *Server) Encryptor() (*connector.Encryptor, error) {
	s.keyOnce.Do(func() {
		s.encryptor, s.keyErr = connector.LoadEncryptor(s.Config.KeyPath)
	})
	return s.encryptor, s.keyErr
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.Logger, NoColor: true}),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: s.Config.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/sources", s.handleSources)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/connections/{source}", s.handleConnections)
			r.Get("/lineage/{source}/{conn}", s.handleLineage)
		})
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled
func (s *Server) Serve(ctx context.Context) error {
	if _, err := s.Encryptor(); err != nil {
		return fmt.Errorf("load credential key: %w", err)
	}

	addr := s.Config.Server.Addr
	s.Logger.Infof("Starting API server on %s", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.Logger.Debug("Shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
