package main

import (
	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/lifecycle"
	"github.com/nojolabs/nojo/pkg/style"
)

var switchCmd = &cobra.Command{
	Use:   "switch <profile>",
	Short: "Switch the active profile",
	Long: `Switch to another profile. Managed, unmodified files of the previous
profile are removed first so stale content does not linger; your own edits
and additions always stay. With --keep-files only the active-profile
pointer changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keepFiles, _ := cmd.Flags().GetBool("keep-files")
		agent, _ := cmd.Flags().GetString("agent")

		ctl, _, err := newController()
		if err != nil {
			return err
		}
		result, err := ctl.Install(lifecycle.InstallOptions{
			Profile:     args[0],
			Agent:       agent,
			SkipCleanup: keepFiles,
		})
		if err != nil {
			return err
		}
		if result.CleanedUp > 0 {
			style.Info("Removed %d files of the previous profile", result.CleanedUp)
		}
		style.Success("Switched to profile %s: %d files installed, %d preserved",
			result.Profile, result.Counts.Installed, result.Counts.Preserved)
		return nil
	},
}

func init() {
	switchCmd.Flags().Bool("keep-files", false, "Only change the active profile, keep all installed files")
	switchCmd.Flags().String("agent", lifecycle.DefaultAgent, "Agent integration to configure")
	rootCmd.AddCommand(switchCmd)
}
