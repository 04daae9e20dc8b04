package main

import (
	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/lifecycle"
	"github.com/nojolabs/nojo/pkg/style"
)

var installCmd = &cobra.Command{
	Use:   "install [profile]",
	Short: "Install a profile into the assistant configuration",
	Long: `Install the named profile's skills, subagents, slash commands and
behavioral instructions into the assistant configuration directory.

Files you have edited since the last install are preserved, and files nojo
never wrote are left alone. When run against a pre-existing unmanaged
configuration, --strategy decides what happens to it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := ""
		if len(args) > 0 {
			profile = args[0]
		}
		strategy, _ := cmd.Flags().GetString("strategy")
		snapshotAs, _ := cmd.Flags().GetString("snapshot-as")
		agent, _ := cmd.Flags().GetString("agent")

		ctl, _, err := newController()
		if err != nil {
			return err
		}
		result, err := ctl.Install(lifecycle.InstallOptions{
			Profile:         profile,
			Agent:           agent,
			Strategy:        lifecycle.Strategy(strategy),
			SnapshotProfile: snapshotAs,
		})
		if err != nil {
			return err
		}
		style.Success("Profile %s installed: %d files installed, %d preserved",
			result.Profile, result.Counts.Installed, result.Counts.Preserved)
		return nil
	},
}

func init() {
	installCmd.Flags().String("strategy", "", "First-install strategy over an existing setup: preserve, create-profile or overwrite")
	installCmd.Flags().String("snapshot-as", "", "Profile name for the create-profile strategy")
	installCmd.Flags().String("agent", lifecycle.DefaultAgent, "Agent integration to configure")
	rootCmd.AddCommand(installCmd)
}
