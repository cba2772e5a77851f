package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plexvault/internal/mediaserver"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the backup size of the source data directory",
	Long: "Estimate sums a fixed set of heavyweight subdirectories plus the " +
		"top-level files. It is quick but approximate; the authoritative size " +
		"is computed from the destination after each backup.",
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := mediaserver.QuickSize(cfg.SourceRoot)
		if err != nil {
			return fmt.Errorf("failed to estimate %s: %w", cfg.SourceRoot, err)
		}

		fmt.Printf("source:   %s\n", cfg.SourceRoot)
		fmt.Printf("estimate: %s (~%d bytes)\n", humanize.IBytes(uint64(size)), size)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}
