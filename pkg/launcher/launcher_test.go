// pkg/launcher/launcher_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp filesystem
// PURPOSE: Test launch-script and session-file generation and the
// shared path-derivation contract

package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLaunchScript(t *testing.T) {
	base := t.TempDir()
	res := paths.NewResolver(base+"/homes/", base+"/dotfiles", "src")
	outDir := filepath.Join(base, "bin")

	path, err := WriteLaunchScript(outDir, res, "omarchy", "Hyprland")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "start-omarchy"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111, "script must be executable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(data)

	// The script re-derives the isolated home from the same prefix and
	// name the resolver uses; the concatenation must match
	// byte-for-byte.
	assert.Contains(t, script, `BURROW_PREFIX="`+res.Prefix()+`"`)
	assert.Contains(t, script, `BURROW_HOME="${BURROW_PREFIX}omarchy"`)
	assert.Contains(t, script, res.Prefix()+"omarchy")
	assert.Equal(t, res.Home("omarchy"), res.Prefix()+"omarchy")

	assert.Contains(t, script, `XDG_CONFIG_HOME="$BURROW_HOME/.config"`)
	assert.Contains(t, script, `XDG_STATE_HOME="$BURROW_HOME/.local/state"`)
	assert.Contains(t, script, "exec Hyprland")
	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
}

func TestWriteLaunchScriptValidation(t *testing.T) {
	base := t.TempDir()
	res := paths.NewResolver(base+"/homes/", base+"/dotfiles", "src")

	_, err := WriteLaunchScript(base, res, "../evil", "Hyprland")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))

	_, err = WriteLaunchScript(base, res, "omarchy", "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))
}

func TestWriteSessionFileRequiresScript(t *testing.T) {
	base := t.TempDir()
	sessionDir := filepath.Join(base, "sessions")

	_, err := WriteSessionFile(sessionDir, "omarchy", "Omarchy", filepath.Join(base, "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLaunchScriptMissing))
	assert.Contains(t, errors.Remedy(err), "burrow launcher")

	// A present but non-executable script is still missing.
	flat := filepath.Join(base, "start-omarchy")
	require.NoError(t, os.WriteFile(flat, []byte("#!/bin/sh\n"), 0644))
	_, err = WriteSessionFile(sessionDir, "omarchy", "Omarchy", flat)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLaunchScriptMissing))
}

func TestWriteSessionFile(t *testing.T) {
	base := t.TempDir()
	res := paths.NewResolver(base+"/homes/", base+"/dotfiles", "src")

	script, err := WriteLaunchScript(filepath.Join(base, "bin"), res, "omarchy", "Hyprland")
	require.NoError(t, err)

	sessionDir := filepath.Join(base, "sessions")
	path, err := WriteSessionFile(sessionDir, "omarchy", "Omarchy (burrow)", script)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sessionDir, "burrow-omarchy.desktop"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[Desktop Entry]")
	assert.Contains(t, content, "Name=Omarchy (burrow)")
	assert.Contains(t, content, "Exec="+script)
	assert.Contains(t, content, "Type=Application")
}
