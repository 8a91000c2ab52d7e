package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deeprag "deeprag/engine/core"

	"github.com/gorilla/mux"
)

var GlobalDebugEnabled bool

// Server exposes the deployment subsystem over HTTP: reservations, batch
// deploys and the network addresses the deployed specs answer at.
type Server struct {
	config     Config
	store      *DeploymentStore
	router     *mux.Router
	httpServer *http.Server
}

// New creates a deployment server.
func New(config Config) *Server {
	if config.DefaultLifetimeSeconds <= 0 {
		config.DefaultLifetimeSeconds = 3600
	}

	GlobalDebugEnabled = config.Debug
	deeprag.DebugLoggingEnabled = config.Debug

	baseURL := fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	return &Server{
		config: config,
		store:  NewDeploymentStore(baseURL),
		router: mux.NewRouter(),
	}
}

// Store exposes the deployment store for in-process callers; pair it with
// NewLocalReservationist to bypass HTTP.
func (s *Server) Store() *DeploymentStore {
	return s.store
}

// Start runs the HTTP server until a signal or Shutdown stops it.
func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-stop
		log.Printf("Received signal: %v. Shutting down server gracefully...\n", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v\n", err)
		}
	}()

	log.Printf("Deployment server starting on %s\n", addr)

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	log.Println("Server stopped")
	return nil
}

// Shutdown stops the HTTP listener and the deployment store.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.store.Close(); err != nil {
		log.Printf("Error closing deployment store: %v\n", err)
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
	w.WriteHeader(http.StatusOK)
}
