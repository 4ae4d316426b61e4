package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/scanview/internal/config"
	"github.com/lehigh-university-libraries/scanview/internal/i18n"
	"github.com/lehigh-university-libraries/scanview/internal/logging"
	"github.com/lehigh-university-libraries/scanview/internal/transport"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

var errUploadFailed = errors.New("upload failed")

func newUploadCmd(configPath *string) *cobra.Command {
	var serviceURL string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Send an image to the processing service",
		Long: `Uploads a single image to the processing service, printing progress,
and prints the URL of the processed image on success.`,
		Example: `  scanview upload scan.png
  scanview upload scan.png --service-url http://backend:5000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("service-url") {
				cfg.Service.BaseURL = serviceURL
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid --service-url: %w", err)
				}
			}
			logging.Setup(&cfg.Logging, cmd.ErrOrStderr())

			translator, err := i18n.New(cfg.Locale)
			if err != nil {
				return fmt.Errorf("failed to load locales: %w", err)
			}
			ctx := i18n.WithLocalizer(cmd.Context(), translator.Localizer())

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			file := upload.File{
				Name: filepath.Base(path),
				Size: info.Size(),
				Open: func() (io.ReadCloser, error) {
					return os.Open(path)
				},
			}

			out := cmd.OutOrStdout()
			progress := newProgressPrinter(cmd.ErrOrStderr(), file)
			uploader := upload.NewUploader(
				transport.New(cfg.Service.BaseURL),
				upload.WithContext(ctx),
				upload.WithObserver(progress.print),
			)
			if err := uploader.SelectFile(file); err != nil {
				return err
			}
			if err := uploader.BeginUpload(); err != nil {
				return err
			}
			if err := uploader.Wait(ctx); err != nil {
				return err
			}

			snap := uploader.Snapshot()
			if snap.Status != upload.StatusSucceeded {
				return fmt.Errorf("%w: %s", errUploadFailed, i18n.Localize(ctx, i18n.MessageID(snap.ErrorCode)))
			}
			if snap.Result.Message != "" {
				fmt.Fprintln(out, snap.Result.Message)
			}
			fmt.Fprintln(out, snap.Result.Resource.Locator)
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceURL, "service-url", transport.DefaultBaseURL, "Base URL of the image processing service")

	return cmd
}

type progressPrinter struct {
	w    io.Writer
	name string
	size string
	last int
}

func newProgressPrinter(w io.Writer, f upload.File) *progressPrinter {
	return &progressPrinter{w: w, name: f.Name, size: units.HumanSize(float64(f.Size)), last: -1}
}

func (p *progressPrinter) print(s upload.Snapshot) {
	switch s.Status {
	case upload.StatusUploading:
		if s.Progress == p.last {
			return
		}
		p.last = s.Progress
		fmt.Fprintf(p.w, "\rUploading %s (%s): %3d%%", p.name, p.size, s.Progress)
	case upload.StatusSucceeded, upload.StatusFailed:
		if p.last >= 0 {
			fmt.Fprintln(p.w)
		}
	}
}
