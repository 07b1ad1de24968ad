package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize burrow's configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(userConfigFile())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration as a starting point",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path := userConfigFile()
		if err := config.WriteDefault(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
