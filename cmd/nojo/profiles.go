package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nojolabs/nojo/pkg/filesystem"
	"github.com/nojolabs/nojo/pkg/profiles"
	"github.com/nojolabs/nojo/pkg/style"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect available profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installable profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := newController()
		if err != nil {
			return err
		}
		found, err := profiles.Discover(filesystem.NewOS(), p.ProfilesDir())
		if err != nil {
			return err
		}
		if len(found) == 0 {
			style.Info("No profiles found in %s", p.ProfilesDir())
			return nil
		}
		for _, profile := range found {
			kind := "custom"
			if profile.Meta.Builtin {
				kind = "builtin"
			}
			fmt.Printf("  %s  %s  %s\n",
				style.Accent(profile.Name),
				style.Muted(kind),
				profile.Meta.Description)
		}
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show one profile's composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := newController()
		if err != nil {
			return err
		}
		fs := filesystem.NewOS()
		profile, err := profiles.Get(fs, p.ProfilesDir(), args[0])
		if err != nil {
			return err
		}
		composed, err := profiles.Compose(fs, p.ProfilesDir(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(style.Title(profile.Name))
		if profile.Meta.Description != "" {
			fmt.Printf("  %s\n", profile.Meta.Description)
		}
		if len(profile.Meta.Mixins) > 0 {
			fmt.Printf("  mixins: %s\n", strings.Join(profile.Meta.Mixins, ", "))
		}
		for _, category := range profiles.Categories {
			tree := composed.Tree(category)
			fmt.Printf("  %s: %d files\n", category, len(tree))
		}
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}
