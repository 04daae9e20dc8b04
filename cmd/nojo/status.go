package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/style"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installation state and file drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		showFiles, _ := cmd.Flags().GetBool("files")

		ctl, p, err := newController()
		if err != nil {
			return err
		}
		st, err := ctl.Status()
		if err != nil {
			return err
		}

		fmt.Println(style.Title("nojo status"))
		fmt.Printf("  install root: %s\n", p.InstallRoot())
		fmt.Printf("  state:        %s\n", st.State)
		for agent, profile := range st.AgentProfiles {
			fmt.Printf("  %s profile:   %s\n", agent, style.Accent(profile))
		}
		fmt.Printf("  tracked files: %d (%d modified, %d missing)\n",
			st.Tracked, st.Modified, st.Missing)

		if showFiles {
			for _, f := range st.Files {
				marker := " "
				switch {
				case f.Missing:
					marker = "!"
				case f.Modified:
					marker = "M"
				}
				fmt.Printf("  %s %s %s\n", marker, f.Path, style.Muted(string(f.Source)))
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("files", false, "List every tracked file with its drift state")
	rootCmd.AddCommand(statusCmd)
}
