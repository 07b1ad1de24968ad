// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test profile-name validation and the prefix+name path formula

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileName(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		wantErr bool
	}{
		{"simple", "omarchy", false},
		{"with digits", "end4", false},
		{"with dots and dashes", "jakoolit.arch-hyprland_v2", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash traversal", "../etc", true},
		{"embedded slash", "a/b", true},
		{"space", "my profile", true},
		{"tilde", "~root", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileName(tt.profile)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSourceURL(t *testing.T) {
	assert.NoError(t, ValidateSourceURL("https://example.test/Arch-Hyprland.git"))
	assert.NoError(t, ValidateSourceURL("git://example.test/repo.git"))
	assert.NoError(t, ValidateSourceURL("git@github.com:JaKooLit/Arch-Hyprland.git"))

	for _, bad := range []string{"", "bad-url", "example.test/repo"} {
		err := ValidateSourceURL(bad)
		require.Error(t, err, "url %q should be rejected", bad)
		assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))
	}
}

func TestResolverFormula(t *testing.T) {
	r := NewResolver("/base/envs/", "/base/dotfiles", "src")

	// The isolated home is a raw concatenation of prefix and name.
	assert.Equal(t, "/base/envs/omarchy", r.Home("omarchy"))

	assert.Equal(t, "/base/envs/omarchy/.config", r.ConfigDir("omarchy"))
	assert.Equal(t, "/base/envs/omarchy/.local/share", r.DataDir("omarchy"))
	assert.Equal(t, "/base/envs/omarchy/.cache", r.CacheDir("omarchy"))
	assert.Equal(t, "/base/envs/omarchy/.local/state", r.StateDir("omarchy"))
	assert.Equal(t, "/base/envs/omarchy/.burrow/logs", r.LogDir("omarchy"))
	assert.Equal(t, "/base/envs/omarchy/src", r.SourceDir("omarchy"))

	assert.Equal(t, "/base/dotfiles/omarchy", r.DotfilesDir("omarchy"))
	assert.Equal(t, "/base/dotfiles/omarchy/.config", r.DotfilesConfigDir("omarchy"))
	assert.Equal(t, "/base/dotfiles/omarchy/.local/share", r.DotfilesDataDir("omarchy"))
}

func TestResolverDefaults(t *testing.T) {
	r := NewResolver("", "", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home+string(os.PathSeparator), r.Prefix())
	assert.Equal(t, filepath.Join(home, "jakoolit"), r.Home("jakoolit"))
	assert.Equal(t, filepath.Join(home, DefaultDotfilesDirName, "jakoolit"), r.DotfilesDir("jakoolit"))
	assert.Equal(t, filepath.Join(home, "jakoolit", DefaultSourceDirName), r.SourceDir("jakoolit"))
}
