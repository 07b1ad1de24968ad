package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/gitsnap"
	"github.com/burrowtool/burrow/pkg/vcs"
)

var snapshotRemote string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <profile>",
	Short: "Commit the profile's dotfiles tree, optionally pushing to a remote",
	Long: `Snapshot stages and commits any pending changes in the profile's
dotfiles tree. With --remote, origin is pointed at the given URL and
the current branch pushed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		git, ok := vcs.Detect()
		if !ok {
			return errors.New(errors.ErrVersionControl, "git is not installed").
				WithRemedy("install git and re-run")
		}
		result, err := gitsnap.Snapshot(git, resolver.DotfilesDir(args[0]), snapshotRemote)
		if err != nil {
			return err
		}
		switch {
		case result.Pushed:
			fmt.Println("Committed and pushed")
		case result.Committed:
			fmt.Println("Committed")
		default:
			fmt.Println("Nothing to commit")
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotRemote, "remote", "", "Remote URL to push to")
	rootCmd.AddCommand(snapshotCmd)
}
