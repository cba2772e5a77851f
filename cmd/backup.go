package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plexvault/internal/model"
)

var (
	backupMode        string
	backupLogPath     string
	backupStopService bool
	backupNoWait      bool
)

var backupCmd = &cobra.Command{
	Use:   "backup [destination]",
	Short: "Start a backup job to the given destination volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"operation":   backupMode,
			"destination": args[0],
		}
		if backupLogPath != "" {
			body["log_path"] = backupLogPath
		}
		if cmd.Flags().Changed("stop-service") {
			body["stop_service"] = backupStopService
		}

		payload, _ := json.Marshal(body)
		resp, err := http.Post(daemonURL("/backup"), "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusCreated {
			var result map[string]string
			_ = json.NewDecoder(resp.Body).Decode(&result)
			return fmt.Errorf("backup rejected: %s", result["error"])
		}

		var snap model.JobSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return err
		}

		fmt.Printf("backup started: id=%s operation=%s dst=%s\n", snap.ID, snap.Operation, snap.DestPath)

		if backupNoWait {
			return nil
		}

		return waitForResult(snap.ID)
	},
}

// waitForResult polls the daemon until the job reaches a terminal state,
// then prints the machine-readable result record.
func waitForResult(id string) error {
	lastProgress := -1

	for {
		time.Sleep(time.Second)

		snap, err := fetchSnapshot()
		if err != nil {
			return err
		}
		if snap.ID != id {
			return fmt.Errorf("job %s was replaced by %s", id, snap.ID)
		}

		if snap.Progress != lastProgress {
			lastProgress = snap.Progress
			fmt.Printf("  %3d%%  %s  elapsed %s\n",
				snap.Progress, snap.State, time.Duration(snap.ElapsedSeconds*float64(time.Second)).Round(time.Second))
		}

		if snap.State.Terminal() {
			if snap.ResultSizeBytes != nil {
				fmt.Printf("destination size: %s\n", humanize.IBytes(uint64(*snap.ResultSizeBytes)))
			}

			out, err := json.MarshalIndent(snap.Result(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if snap.State == model.StateFailed {
				return fmt.Errorf("backup failed: %s", snap.Error)
			}
			return nil
		}
	}
}

func fetchSnapshot() (model.JobSnapshot, error) {
	var snap model.JobSnapshot

	resp, err := http.Get(daemonURL("/backup"))
	if err != nil {
		return snap, fmt.Errorf("daemon not running: %w", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("no backup job")
	}

	err = json.NewDecoder(resp.Body).Decode(&snap)
	return snap, err
}

func init() {
	backupCmd.Flags().StringVarP(&backupMode, "mode", "m", "hot", "backup mode: hot, cold or smart")
	backupCmd.Flags().StringVar(&backupLogPath, "log", "", "mirror tool log file (default: under the daemon log dir)")
	backupCmd.Flags().BoolVar(&backupStopService, "stop-service", false, "stop the media server for the duration of the copy")
	backupCmd.Flags().BoolVar(&backupNoWait, "no-wait", false, "return immediately instead of waiting for completion")
	rootCmd.AddCommand(backupCmd)
}
