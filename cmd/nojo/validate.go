package main

import (
	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/style"
)

var validateCmd = &cobra.Command{
	Use:   "validate <profile>",
	Short: "Check a profile's composed content for problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, _, err := newController()
		if err != nil {
			return err
		}
		issues, err := ctl.Validate(args[0])
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			style.Success("Profile %s is valid", args[0])
			return nil
		}
		for _, issue := range issues {
			if issue.Path != "" {
				style.Warning("[%s] %s: %s", issue.Feature, issue.Path, issue.Message)
			} else {
				style.Warning("[%s] %s", issue.Feature, issue.Message)
			}
		}
		style.Error("Profile %s has %d issues", args[0], len(issues))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
