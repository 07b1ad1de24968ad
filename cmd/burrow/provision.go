package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/provision"
	"github.com/burrowtool/burrow/pkg/style"
)

var provisionCmd = &cobra.Command{
	Use:   "provision <profile>",
	Short: "Create or refresh a profile's isolated environment and run its installer",
	Long: `Provision resolves the profile's source repository, ensures the
isolated home and its XDG directories exist, clones or fast-forwards
the repository, and runs its installer with HOME and the XDG variables
pointing into the fake home. Package and file changes are diffed and
reported. Safe to re-run at any time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		p := provision.New(reg, resolver, cfg, provision.WithOutput(os.Stdout))
		result, err := p.Provision(args[0])
		if result != nil {
			fmt.Println(style.RenderProvisionResult(result))
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}
