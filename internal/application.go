package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-program/internal/config"
	"github.com/rocketscienceinc/tictactoe-program/internal/repository"
	"github.com/rocketscienceinc/tictactoe-program/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-program/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-program/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	if conf.SkipSignatureCheck {
		log.Warn("request signature verification is disabled")
	}

	matchRepo := repository.NewMatchRepository(redisStorage, conf.MatchTTL)
	matchManager := usecase.NewMatchManager(logger, matchRepo, conf.AbandonWindow)
	handlers := rest.NewHandlers(logger, matchManager, !conf.SkipSignatureCheck)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err = rest.Start(ctx, logger, conf.HTTPPort, rest.NewRouter(handlers)); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
