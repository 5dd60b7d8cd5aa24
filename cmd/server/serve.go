package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yamdb/internal/db"
	"yamdb/internal/router"
	"yamdb/internal/services"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if !skipMigrate {
		if err := db.Migrate(e.db, e.log); err != nil {
			return err
		}
	}

	if e.cfg.JWTSecret == "secret_key_change_me" {
		if e.cfg.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		e.log.Warn("Using the default JWT secret")
	}
	gin.SetMode(e.cfg.GinMode)

	mail := services.NewMailService(services.NewSMTPMailer(e.cfg.SMTP, e.log), e.log)
	tokens := services.NewTokenIssuer(e.cfg.JWTSecret, e.cfg.AccessTokenTTL)
	deps := router.NewDeps(e.db, tokens, mail, services.CryptoSource{}, e.log)
	deps.CORSOrigins = e.cfg.Origins()

	srv := &http.Server{
		Addr:              ":" + e.cfg.Port,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("YaMDb server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
