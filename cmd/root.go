package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sunassign",
	Short: "Region-to-station sunlight assignment pipeline",
	Long:  "Builds si/gun/gu reference points from the district shapefile, assigns each region to its nearest operating weather station per day, and exports daily, interval, and monthly sunlight series.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
