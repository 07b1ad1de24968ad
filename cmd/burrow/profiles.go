package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/style"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List registered profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		fmt.Println(style.RenderProfileList(reg.List()))
		return nil
	},
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Register a profile or override its source URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if err := reg.Add(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Registered %s -> %s\n", args[0], args[1])
		return nil
	},
}

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the effective registry as YAML to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		return reg.ExportYAML(os.Stdout)
	},
}

var profilesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import profiles from a YAML export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := reg.ImportYAML(f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d profiles\n", n)
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesAddCmd)
	profilesCmd.AddCommand(profilesExportCmd)
	profilesCmd.AddCommand(profilesImportCmd)
	rootCmd.AddCommand(profilesCmd)
}
