package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/reconciler"
	"github.com/burrowtool/burrow/pkg/style"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <profile>",
	Short: "Create the dotfiles tree skeleton for a profile",
	Long: `Prepare ensures the profile's dotfiles tree exists with its .config
and .local/share subdirectories. It never touches the isolated
environment and is always safe to re-run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		r := reconciler.New(resolver)
		if err := r.Prepare(args[0]); err != nil {
			return err
		}
		fmt.Printf("Dotfiles tree ready at %s\n", resolver.DotfilesDir(args[0]))
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <profile>",
	Short: "Link the isolated .config into the dotfiles tree",
	Long: `Link replaces the profile's (absent) isolated .config with a symbolic
link into the dotfiles tree, making that tree the sole source of truth.
If the isolated .config already holds real data, use "burrow adopt"
instead; link never overwrites.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		r := reconciler.New(resolver)
		if err := r.LinkConfig(args[0]); err != nil {
			return err
		}
		fmt.Printf("Linked %s -> %s\n", resolver.ConfigDir(args[0]), resolver.DotfilesConfigDir(args[0]))
		return nil
	},
}

var adoptCmd = &cobra.Command{
	Use:   "adopt <profile>",
	Short: "Move an existing isolated .config into the dotfiles tree and link it",
	Long: `Adopt migrates a profile's real .config directory into the (empty)
dotfiles tree, then replaces the directory with a symbolic link. This
is a destructive move and asks for confirmation; pass --yes to skip
the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		r := reconciler.New(resolver)
		if !assumeYes {
			r = r.WithConfirm(style.Confirm)
		}
		result, err := r.AdoptConfig(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Adopted %d entries into %s\n", len(result.Moved), resolver.DotfilesConfigDir(args[0]))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <profile>",
	Short: "Show the link state of a profile's isolated .config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		state, err := reconciler.New(resolver).State(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", resolver.ConfigDir(args[0]), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(adoptCmd)
	rootCmd.AddCommand(statusCmd)
}
