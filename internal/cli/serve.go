package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AshishJayaram/log-reader-backend/internal/config"
	"github.com/AshishJayaram/log-reader-backend/internal/handlers"
	"github.com/AshishJayaram/log-reader-backend/internal/logger"
	"github.com/AshishJayaram/log-reader-backend/internal/server"
	"github.com/AshishJayaram/log-reader-backend/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func runServe(opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Encoding)
	defer func() { _ = log.Sync() }()

	repos, closeStore, err := openRepository(cfg.Store)
	if err != nil {
		log.Errorw("store_open_failed", "driver", cfg.Store.Driver, "err", err)
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Errorw("store_close_failed", "err", cerr)
		}
	}()
	log.Infow("store_ready", "driver", cfg.Store.Driver)

	// wire dependencies
	services := service.NewService(repos, cfg.Query.MaxLimit)
	apiHandler := handlers.NewHandler(services, log, cfg.Upload.MaxBytes)

	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})
	errCh := runHTTPServer(srv, cfg.Port, apiHandler, log)

	return waitForShutdown(srv, errCh, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
// The channel receives the server's terminal error, if any.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http_server_starting", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure,
// then drains in-flight requests.
func waitForShutdown(srv *server.Server, errCh <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Errorw("http_server_failed", "err", err)
			return err
		}
		return nil
	case sig := <-quit:
		log.Infow("shutting down server...", "signal", sig.String())
	}

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return nil
}
