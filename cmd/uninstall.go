package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"plexvault/internal/autostart"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the daemon's autostart registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New()

		installed, err := as.IsInstalled()
		if err != nil {
			return err
		}
		if !installed {
			fmt.Println("plexvault daemon is not registered")
			return nil
		}

		if err := as.Uninstall(); err != nil {
			return err
		}

		fmt.Println("plexvault daemon unregistered")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
