package main

import (
	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/style"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove everything nojo installed",
	Long: `Remove every managed file that you have not modified. Modified files
and files nojo never wrote stay in place. When nothing tracked remains,
nojo's state files are removed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, _, err := newController()
		if err != nil {
			return err
		}
		result, err := ctl.Uninstall()
		if err != nil {
			return err
		}
		if result.Removed == 0 && !result.ManifestDeleted {
			style.Info("Nothing to uninstall")
			return nil
		}
		style.Success("Removed %d files", result.Removed)
		if result.ManifestDeleted {
			style.Info("All tracked files removed; nojo state deleted")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
