package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plexvault/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon and job status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var result struct {
			Busy bool               `json:"busy"`
			Job  *model.JobSnapshot `json:"job"`
			Runs *struct {
				Total     int64 `json:"total"`
				Succeeded int64 `json:"succeeded"`
				Failed    int64 `json:"failed"`
			} `json:"runs"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		if result.Runs != nil {
			fmt.Printf("runs:      %d total, %d succeeded, %d failed\n",
				result.Runs.Total, result.Runs.Succeeded, result.Runs.Failed)
		}

		if result.Job == nil {
			fmt.Println("no backup job")
			return nil
		}

		snap := result.Job
		fmt.Printf("job:       %s\n", snap.ID)
		fmt.Printf("operation: %s\n", snap.Operation)
		fmt.Printf("state:     %s (%d%%)\n", snap.State, snap.Progress)
		fmt.Printf("source:    %s\n", snap.SourcePath)
		fmt.Printf("dest:      %s\n", snap.DestPath)
		fmt.Printf("elapsed:   %s\n", time.Duration(snap.ElapsedSeconds*float64(time.Second)).Round(time.Second))

		if snap.ExitCode != nil {
			fmt.Printf("exit code: %d\n", *snap.ExitCode)
		}
		if snap.ResultSizeBytes != nil {
			fmt.Printf("size:      %s\n", humanize.IBytes(uint64(*snap.ResultSizeBytes)))
		}
		if snap.Error != "" {
			fmt.Printf("error:     %s\n", snap.Error)
		}
		fmt.Printf("log:       %s\n", snap.LogPath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
