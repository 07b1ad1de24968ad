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

var sessionTmpl = template.Must(template.New("session").Parse(`[Desktop Entry]
Name={{.DisplayName}}
Comment=Isolated desktop session for the {{.Name}} burrow profile
Exec={{.Script}}
Type=Application
`))

// WriteSessionFile generates a display-manager session descriptor for a
// profile. The launch script must already exist and be executable.
func WriteSessionFile(sessionDir string, name, displayName, scriptPath string) (string, error) {
	logger := logging.GetLogger("launcher")

	if err := paths.ValidateProfileName(name); err != nil {
		return "", err
	}
	if displayName == "" {
		displayName = name
	}

	info, err := os.Stat(scriptPath)
	if err != nil || !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
		return "", errors.Newf(errors.ErrLaunchScriptMissing,
			"launch script %s does not exist or is not executable", scriptPath).
			WithRemedy("burrow launcher " + name + " <command>")
	}

	var buf bytes.Buffer
	err = sessionTmpl.Execute(&buf, struct {
		Name        string
		DisplayName string
		Script      string
	}{
		Name:        name,
		DisplayName: displayName,
		Script:      scriptPath,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render session file")
	}

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create session directory")
	}
	path := filepath.Join(sessionDir, "burrow-"+name+".desktop")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to write session file")
	}
	logger.Info().Str("profile", name).Str("path", path).Msg("Session file generated")
	return path, nil
}
