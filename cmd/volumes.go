package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plexvault/internal/volumes"
)

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List volumes usable as backup destinations",
	RunE: func(cmd *cobra.Command, args []string) error {
		vols, err := volumes.List()
		if err != nil {
			return err
		}

		if len(vols) == 0 {
			fmt.Println("no volumes found")
			return nil
		}

		fmt.Printf("%-24s %-12s %-12s %s\n", "PATH", "TOTAL", "FREE", "USED")
		for _, v := range vols {
			fmt.Printf("%-24s %-12s %-12s %s\n",
				v.Path,
				humanize.IBytes(v.TotalBytes),
				humanize.IBytes(v.FreeBytes),
				humanize.IBytes(v.UsedBytes))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(volumesCmd)
}
