package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the billing client.

The API provides endpoints for:
  - GET  /api/v1/status                          - Service status
  - GET  /api/v1/vouchers/last                   - Last authorized voucher
  - POST /api/v1/vouchers                        - Authorize a voucher
  - POST /api/v1/vouchers/next                   - Authorize the next voucher
  - GET  /api/v1/vouchers/:type/:sales_point/:n  - Voucher information
  - GET  /api/v1/params/:table                   - Reference tables
  - GET  /health                                 - Health check

Examples:
  # Start server on the configured address
  wsmtxca serve

  # Start on custom port in debug mode
  wsmtxca serve --address :9090 --debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: SERVER_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	billing, cfg, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	addr := cfg.ServerAddress
	if serverAddr != "" {
		addr = serverAddr
	}

	srv := server.NewServer(&server.Config{
		Address:        addr,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		RequestTimeout: cfg.Timeout + 10*time.Second,
		Debug:          serverDebug,
		Logger:         logger,
	}, billing)

	httpServer := srv.HTTPServer()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", addr),
			zap.String("endpoint", cfg.ServiceURL()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(os.Stderr, "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
