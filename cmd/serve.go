package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/config"
	"github.com/lehigh-university-libraries/scanview/internal/handlers"
	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/logging"
	"github.com/lehigh-university-libraries/scanview/internal/storage"
	"github.com/lehigh-university-libraries/scanview/internal/transport"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
	"github.com/lehigh-university-libraries/scanview/internal/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scan viewer web interface",
		Long: `Starts the scan viewer on the configured port.

The web interface uploads a selected image to the processing service,
shows upload progress, and displays the processed result next to the
original with zoom and pan controls.`,
		Example: `  # Start server on default port 8888
  scanview serve

  # Start server on custom port with a config file
  scanview serve --port 3000 --config scanview.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logging.Setup(&cfg.Logging, cmd.ErrOrStderr())

			store, err := blob.NewStore(cfg.Storage.BasePath, cfg.MaxUploadSizeBytes())
			if err != nil {
				return fmt.Errorf("failed to open local storage: %w", err)
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("Unable to release local files", "err", err)
				}
			}()

			pages, err := web.NewTemplateSet()
			if err != nil {
				return fmt.Errorf("failed to parse templates: %w", err)
			}
			translator, err := i18n.New(cfg.Locale)
			if err != nil {
				return fmt.Errorf("failed to load locales: %w", err)
			}

			// Uploads outlive the shutdown signal until drainUploads gives up.
			uploadCtx, cancelUploads := context.WithCancel(context.Background())
			defer cancelUploads()
			uploader := upload.NewUploader(
				transport.New(cfg.Service.BaseURL),
				upload.WithReleaser(store),
				upload.WithContext(uploadCtx),
				upload.WithObserver(func(s upload.Snapshot) {
					slog.Debug("Upload session changed", "status", s.Status, "progress", s.Progress, "error_code", s.ErrorCode)
				}),
			)
			handler := handlers.New(handlers.Options{
				Uploader:      uploader,
				Store:         store,
				Views:         storage.New(storage.DefaultCapacity),
				Pages:         pages,
				Translator:    translator,
				Flags:         cfg.Flags(),
				MaxUploadSize: cfg.MaxUploadSizeBytes(),
			})

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Scan viewer available", "addr", addr, "url", "http://localhost"+addr, "service", cfg.Service.BaseURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				drainUploads(uploader, cfg.ShutdownTimeoutDuration(), cancelUploads)
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}

// drainUploads lets an outstanding upload finish within timeout, then
// cancels it and waits for the session to settle.
func drainUploads(u *upload.Uploader, timeout time.Duration, cancel context.CancelFunc) {
	waitCtx, cancelWait := context.WithTimeout(context.Background(), timeout)
	defer cancelWait()
	if err := u.Wait(waitCtx); err == nil {
		return
	}

	slog.Warn("Upload still running at shutdown, cancelling", "timeout", timeout)
	cancel()
	settleCtx, cancelSettle := context.WithTimeout(context.Background(), timeout)
	defer cancelSettle()
	if err := u.Wait(settleCtx); err != nil {
		slog.Error("Upload did not stop after cancellation", "err", err)
	}
}
