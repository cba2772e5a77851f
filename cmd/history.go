package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plexvault/internal/model"
)

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past backup runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d", daemonURL("/history"), historyN)
		if historyFailed {
			url += "&failed=true"
		}
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var runs []model.Run
		if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no backup runs yet")
			return nil
		}

		for _, r := range runs {
			status := "✓"
			if r.State == model.StateFailed {
				status = "✗"
			}

			fmt.Printf("%s [%s] %-6s exit=%-3d %-10s %s\n",
				status,
				r.FinishedAt.Format("2006-01-02 15:04:05"),
				r.Operation,
				r.ExitCode,
				humanize.IBytes(uint64(r.SizeBytes)),
				r.DstPath,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show only failed runs")
	rootCmd.AddCommand(historyCmd)
}
