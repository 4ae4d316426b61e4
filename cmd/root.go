package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "scanview",
		Short: "Upload scans for processing and inspect the results",
		Long: `Scanview sends scanned images to an image processing service and
displays the original and processed images side by side with zoom and pan.

Settings are read from scanview.yaml or scanview.toml in the working
directory, or from the file given with --config. SCANVIEW_* environment
variables override file values.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or TOML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newUploadCmd(&configPath))

	return cmd
}
