package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/asad/mailreg/internal/core"
	"github.com/asad/mailreg/internal/httpx"
	"github.com/asad/mailreg/internal/logging"
	"github.com/asad/mailreg/internal/services/accounts"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry over HTTP",
	Long: `Start an HTTP server on HTTP_PORT exposing the account registry.
Every change made through the API is saved to the registry file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe initializes the store and runs the HTTP server until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting mailreg",
		logging.String("version", Version),
		logging.Int("http_port", cfg.HTTPPort),
		logging.String("data_file", cfg.DataFile),
		logging.String("log_level", cfg.LogLevel),
	)

	store, err := accounts.NewFileAccountStore(cfg.DataFile, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize account store: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: newRouter(store, logger),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.String("address", server.Addr))
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newRouter builds the HTTP handler for the services backed by store.
func newRouter(store accounts.AccountStore, logger logging.Logger) http.Handler {
	services := []core.Service{
		accounts.NewAccountService(store, logger),
	}
	return httpx.NewEdgeRouter(services, logger)
}
