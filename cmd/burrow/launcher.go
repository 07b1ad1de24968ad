package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/burrowtool/burrow/pkg/launcher"
	"github.com/burrowtool/burrow/pkg/paths"
)

var launcherCmd = &cobra.Command{
	Use:   "launcher <profile> <command>...",
	Short: "Generate a launch script that starts a command inside the fake home",
	Long: `Launcher writes an executable script that rebinds HOME and the XDG
variables into the profile's isolated tree and execs the given command.
The script derives the isolated home from the same prefix+name formula
burrow itself uses.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, err := loadConfig()
		if err != nil {
			return err
		}
		command := strings.Join(args[1:], " ")
		path, err := launcher.WriteLaunchScript(paths.LauncherDir(), resolver, args[0], command)
		if err != nil {
			return err
		}
		fmt.Printf("Launch script written to %s\n", path)
		return nil
	},
}

var sessionDisplayName string

var sessionCmd = &cobra.Command{
	Use:   "session <profile>",
	Short: "Generate a display-manager session file for a profile",
	Long: `Session writes a .desktop session descriptor pointing at the profile's
generated launch script. The launch script must exist; run
"burrow launcher" first. Writing into the default session directory
usually requires root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		script := launcher.ScriptPath(paths.LauncherDir(), args[0])
		path, err := launcher.WriteSessionFile(cfg.Session.Dir, args[0], sessionDisplayName, script)
		if err != nil {
			return err
		}
		fmt.Printf("Session file written to %s\n", path)
		return nil
	},
}

func init() {
	sessionCmd.Flags().StringVar(&sessionDisplayName, "display-name", "", "Name shown by the display manager (default: profile name)")
	rootCmd.AddCommand(launcherCmd)
	rootCmd.AddCommand(sessionCmd)
}
