package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/centers"
)

var centersCmd = &cobra.Command{
	Use:   "centers",
	Short: "Build region reference points from the district shapefile",
	Long:  "Reads the si/gun/gu boundary shapefile, computes centroid and interior representative point per district in UTM-K, and writes the centers CSV consumed by the assign command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("centers"); err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Inputs.Centers
		}

		cs, err := centers.BuildFromShapefile(cfg.Inputs.Shapefile)
		if err != nil {
			return eris.Wrap(err, "centers")
		}

		if err := centers.WriteCSV(cs, out); err != nil {
			return eris.Wrap(err, "centers")
		}

		zap.L().Info("centers: wrote reference points",
			zap.Int("regions", len(cs)),
			zap.String("path", out))
		return nil
	},
}

func init() {
	centersCmd.Flags().String("out", "", "output CSV path (defaults to inputs.centers)")
	rootCmd.AddCommand(centersCmd)
}
