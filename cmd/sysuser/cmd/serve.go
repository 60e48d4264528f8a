package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/sysuser/internal/events"
	"github.com/Skotchmaster/sysuser/internal/handlers"
	"github.com/Skotchmaster/sysuser/internal/repo"
	"github.com/Skotchmaster/sysuser/internal/service"
	"github.com/Skotchmaster/sysuser/internal/token"
	httpserver "github.com/Skotchmaster/sysuser/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gdb, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer closeDatabase(gdb)

		tokens, err := token.New(token.Config{
			Secret:   []byte(cfg.JWT.Secret),
			Audience: cfg.JWT.Audience,
			Issuer:   cfg.JWT.Issuer,
			Lifetime: cfg.JWT.Lifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}

		prod := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka close error", "error", err)
			}
		}()
		if len(cfg.Kafka.Brokers) == 0 {
			logger.Warn("kafka brokers not configured, user events are discarded")
		}

		users := repo.New(gdb)
		e := httpserver.NewEcho(cfg.Server, logger)
		httpserver.Register(e, &httpserver.Deps{
			DB:          gdb,
			Tokens:      tokens,
			AuthHandler: &handlers.AuthHandler{Service: &service.AuthService{Repo: users, Tokens: tokens, Events: prod}},
			UserHandler: &handlers.UserHandler{Service: &service.UserService{Repo: users, Events: prod}},
		})

		srv := httpserver.NewServer(cfg.Server, e)
		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
		case <-ctx.Done():
		}

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}
