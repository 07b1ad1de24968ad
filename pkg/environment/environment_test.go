// pkg/environment/environment_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp filesystem
// PURPOSE: Test isolated-environment creation and env-var scoping

package environment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/burrowtool/burrow/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) paths.Resolver {
	t.Helper()
	base := t.TempDir()
	return paths.NewResolver(base+"/homes/", base+"/dotfiles", "src")
}

func TestEnsureCreatesLayout(t *testing.T) {
	env := New(testResolver(t), "omarchy")
	require.NoError(t, env.Ensure())

	for _, dir := range []string{env.Root, env.ConfigDir, env.DataDir, env.CacheDir, env.StateDir, env.LogDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "missing %s", dir)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	env := New(testResolver(t), "omarchy")
	require.NoError(t, env.Ensure())

	// Drop a file inside and re-run; shape must be unchanged and the
	// file untouched.
	marker := filepath.Join(env.ConfigDir, "keep.conf")
	require.NoError(t, os.WriteFile(marker, []byte("keep"), 0644))

	require.NoError(t, env.Ensure())

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestExists(t *testing.T) {
	env := New(testResolver(t), "omarchy")
	assert.False(t, env.Exists())
	require.NoError(t, env.Ensure())
	assert.True(t, env.Exists())
}

func TestEnvironScrubsRealHomeAndXDG(t *testing.T) {
	env := New(testResolver(t), "omarchy")

	base := []string{
		"HOME=/home/realuser",
		"XDG_CONFIG_HOME=/home/realuser/.config",
		"XDG_DATA_HOME=/home/realuser/.local/share",
		"XDG_RUNTIME_DIR=/run/user/1000",
		"PATH=/usr/bin",
		"TERM=xterm",
	}
	got := env.Environ(base)

	joined := map[string]string{}
	for _, kv := range got {
		k, v, ok := strings.Cut(kv, "=")
		require.True(t, ok)
		joined[k] = v
	}

	assert.Equal(t, env.Root, joined["HOME"])
	assert.Equal(t, env.ConfigDir, joined["XDG_CONFIG_HOME"])
	assert.Equal(t, env.DataDir, joined["XDG_DATA_HOME"])
	assert.Equal(t, env.CacheDir, joined["XDG_CACHE_HOME"])
	assert.Equal(t, env.StateDir, joined["XDG_STATE_HOME"])

	// The real values must not survive, not even under other XDG keys.
	assert.NotContains(t, joined, "XDG_RUNTIME_DIR")
	for _, v := range joined {
		assert.NotContains(t, v, "/home/realuser")
	}

	// Unrelated variables pass through.
	assert.Equal(t, "/usr/bin", joined["PATH"])
	assert.Equal(t, "xterm", joined["TERM"])
}
