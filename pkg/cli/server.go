package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen",
		Value: serverPortDefault,
	}

	serverCmd = &cli.Command{
		Name:            "server",
		Aliases:         []string{"serve"},
		HideHelpCommand: true,
		Usage:           "Start local HTTP server exposing stored runs",
		Action:          cmdStartServer,
		Flags:           []cli.Flag{portFlag},
	}
)

func cmdStartServer(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	address := fmt.Sprintf("127.0.0.1:%d", cmd.Int(portFlag.Name))

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(db),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started", "address", "http://"+address)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/runs", runsAPIHandler(db))
	mux.HandleFunc("GET /api/runs/{id}", runAPIHandler(db))
	mux.HandleFunc("DELETE /api/runs/{id}", deleteRunAPIHandler(db))
	mux.HandleFunc("GET /api/runs/{id}/features", featuresAPIHandler(db))
	mux.HandleFunc("GET /api/runs/{id}/families", familiesAPIHandler(db))
	mux.HandleFunc("GET /api/runs/{id}/sizes", sizesAPIHandler(db))
	mux.HandleFunc("GET /api/runs/{id}/chart.png", chartAPIHandler(db))

	return mux
}
