// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "go-asset-admin",
		Short: "GoAssetAdmin tracks client licenses and equipment and alerts before they lapse",
		Long: `GoAssetAdmin tracks the software licenses and the equipment of clients
and notifies staff and client users before a license expires or a device reaches end of life.`,
		Args:              cobra.OnlyValidArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Path to the configuration directory")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
