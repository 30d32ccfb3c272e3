package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

func NewRouter(handlers *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", handlers.Ping)

	mux.HandleFunc("POST /matches", handlers.CreateMatch)
	mux.HandleFunc("GET /matches/{id}", handlers.GetMatch)
	mux.HandleFunc("POST /matches/{id}/join", handlers.JoinMatch)
	mux.HandleFunc("POST /matches/{id}/move", handlers.MakeMove)
	mux.HandleFunc("POST /matches/{id}/keep-alive", handlers.KeepAlive)

	return mux
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) error {
	log := logger.With("component", "http_server")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			shutdownErr <- fmt.Errorf("failed to shut down server: %w", err)
			return
		}

		shutdownErr <- nil
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return <-shutdownErr
}
