// Package launcher generates the launch scripts and display-manager
// session files that start a desktop environment inside a profile's
// isolated home. Pure text templating; the only contract shared with
// the core is the prefix+name path-derivation formula, which generated
// scripts re-derive at run time.
package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
)

var launchScriptTmpl = template.Must(template.New("launch").Parse(`#!/bin/sh
# Generated by burrow. Starts {{.Command}} inside the isolated home of
# profile "{{.Name}}". Do not edit; re-run "burrow launcher" instead.

BURROW_PREFIX="{{.Prefix}}"
BURROW_HOME="${BURROW_PREFIX}{{.Name}}"

HOME="$BURROW_HOME"
XDG_CONFIG_HOME="$BURROW_HOME/.config"
XDG_DATA_HOME="$BURROW_HOME/.local/share"
XDG_CACHE_HOME="$BURROW_HOME/.cache"
XDG_STATE_HOME="$BURROW_HOME/.local/state"
export HOME XDG_CONFIG_HOME XDG_DATA_HOME XDG_CACHE_HOME XDG_STATE_HOME

cd "$BURROW_HOME" || exit 1
exec {{.Command}}
`))

// WriteLaunchScript generates an executable launch script for a profile
// into dir. The isolated home does not have to exist yet; a missing one
// only logs a warning since the script derives paths at run time.
func WriteLaunchScript(dir string, resolver paths.Resolver, name, command string) (string, error) {
	logger := logging.GetLogger("launcher")

	if err := paths.ValidateProfileName(name); err != nil {
		return "", err
	}
	if command == "" {
		return "", errors.New(errors.ErrInvalidInput, "launch command is empty")
	}

	if _, err := os.Stat(resolver.Home(name)); err != nil {
		logger.Warn().Str("profile", name).Str("home", resolver.Home(name)).
			Msg("Isolated home does not exist yet, script will still derive it at run time")
	}

	var buf bytes.Buffer
	err := launchScriptTmpl.Execute(&buf, struct {
		Prefix  string
		Name    string
		Command string
	}{
		Prefix:  resolver.Prefix(),
		Name:    name,
		Command: command,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render launch script")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create launcher directory")
	}
	path := ScriptPath(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to write launch script")
	}
	logger.Info().Str("profile", name).Str("path", path).Msg("Launch script generated")
	return path, nil
}

// ScriptPath returns the launch-script location for a profile in dir.
func ScriptPath(dir, name string) string {
	return filepath.Join(dir, "start-"+name)
}
