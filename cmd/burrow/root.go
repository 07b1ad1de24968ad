package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/config"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
	"github.com/burrowtool/burrow/pkg/registry"
)

// Set via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbosity int
	assumeYes bool

	rootCmd = &cobra.Command{
		Use:   "burrow",
		Short: "Isolated fake-home environments for desktop-environment installers",
		Long: `burrow provisions a separate "fake home" directory tree per profile, so
that third-party desktop-environment installers can run side by side
without touching your real home or each other. Every run is audited:
burrow reports which packages were installed and which files changed.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&assumeYes, "yes", false, "Assume yes for confirmation prompts")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("burrow version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// loadConfig resolves the configuration and the path resolver derived
// from it.
func loadConfig() (config.Config, paths.Resolver, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, paths.Resolver{}, err
	}
	return cfg, cfg.Resolver(), nil
}

// loadRegistry loads the profile registry from its per-user file.
func loadRegistry() (*registry.Registry, error) {
	return registry.Load(paths.RegistryFile())
}

// userConfigFile is where `burrow config init` writes.
func userConfigFile() string {
	return filepath.Join(paths.ToolConfigDir(), config.ConfigFileName)
}
