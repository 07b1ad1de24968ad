// Package style renders burrow's terminal output and hosts the
// interactive confirmation prompt.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/burrowtool/burrow/pkg/provision"
	"github.com/burrowtool/burrow/pkg/registry"
)

// Semantic styles used across commands.
var (
	TitleStyle = pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
	MutedStyle = pterm.NewStyle(pterm.FgGray)
	WarnStyle  = pterm.NewStyle(pterm.FgYellow)
)

var reportFrame = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("8")).
	Padding(0, 1)

// IsInteractive reports whether both ends of the terminal are ttys.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

// Confirm asks the operator a yes/no question. In a non-interactive
// context it refuses: destructive operations need an explicit flag
// there.
func Confirm(prompt string) bool {
	if !IsInteractive() {
		WarnStyle.Println("Not a terminal; re-run with --yes to confirm non-interactively")
		return false
	}
	ok, _ := pterm.DefaultInteractiveConfirm.Show(prompt)
	return ok
}

// RenderProfileList renders registry entries for `burrow profiles`.
func RenderProfileList(entries []registry.Entry) string {
	if len(entries) == 0 {
		return MutedStyle.Sprint("No profiles registered")
	}
	var sb strings.Builder
	sb.WriteString(TitleStyle.Sprint("Registered profiles") + "\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s %s\n", pterm.Bold.Sprint(e.Name), MutedStyle.Sprintf("(%s)", e.Origin)))
		sb.WriteString("    " + MutedStyle.Sprint(e.URL) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderProvisionResult renders a provisioning run summary.
func RenderProvisionResult(result *provision.Result) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Sprintf("Provisioned %s", result.Profile) + "\n")
	sb.WriteString(MutedStyle.Sprint("home: "+result.Home) + "\n")
	sb.WriteString(MutedStyle.Sprint("log:  "+result.LogFile) + "\n")
	if result.Installer == "" {
		sb.WriteString("installer: " + MutedStyle.Sprint("none (config-only repository)") + "\n")
	} else {
		sb.WriteString("installer: " + result.Installer + "\n")
	}

	if r := result.Report; r != nil {
		var body strings.Builder
		body.WriteString(fmt.Sprintf("new packages:  %d\n", len(r.NewPackages)))
		for _, p := range r.NewPackages {
			body.WriteString("  + " + p + "\n")
		}
		body.WriteString(fmt.Sprintf("changed files: %d\n", len(r.ChangedFiles)))
		for _, f := range r.ChangedFiles {
			body.WriteString("  ~ " + f + "\n")
		}
		if len(r.SystemChanged) > 0 {
			body.WriteString(fmt.Sprintf("system files:  %d\n", len(r.SystemChanged)))
			for _, f := range r.SystemChanged {
				body.WriteString("  ~ " + f + "\n")
			}
		}
		sb.WriteString(reportFrame.Render(strings.TrimRight(body.String(), "\n")) + "\n")
	}

	for _, w := range result.Warnings {
		sb.WriteString(WarnStyle.Sprint("warning: "+w) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
