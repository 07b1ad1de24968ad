// pkg/reconciler/reconciler_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Temp filesystem (real symlinks)
// PURPOSE: Test the Absent/RealDirectory/Linked state machine and the
// link/adopt guards

package reconciler

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) paths.Resolver {
	t.Helper()
	base := t.TempDir()
	return paths.NewResolver(base+"/homes/", base+"/dotfiles", "src")
}

func TestStateDetection(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	state, err := r.State("omarchy")
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)

	require.NoError(t, os.MkdirAll(res.ConfigDir("omarchy"), 0755))
	state, err = r.State("omarchy")
	require.NoError(t, err)
	assert.Equal(t, StateRealDirectory, state)

	require.NoError(t, os.RemoveAll(res.ConfigDir("omarchy")))
	require.NoError(t, os.MkdirAll(res.DotfilesConfigDir("omarchy"), 0755))
	require.NoError(t, os.Symlink(res.DotfilesConfigDir("omarchy"), res.ConfigDir("omarchy")))
	state, err = r.State("omarchy")
	require.NoError(t, err)
	assert.Equal(t, StateLinked, state)

	_, err = r.State("../escape")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))
}

func TestPrepareIsRepeatable(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	require.NoError(t, r.Prepare("omarchy"))
	require.NoError(t, r.Prepare("omarchy"))

	for _, dir := range []string{res.DotfilesConfigDir("omarchy"), res.DotfilesDataDir("omarchy")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Prepare never touches the isolated environment.
	_, err := os.Stat(res.Home("omarchy"))
	assert.True(t, os.IsNotExist(err))
}

func TestLinkConfigFromAbsent(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	require.NoError(t, r.LinkConfig("omarchy"))

	target, err := os.Readlink(res.ConfigDir("omarchy"))
	require.NoError(t, err)
	assert.Equal(t, res.DotfilesConfigDir("omarchy"), target)
}

func TestLinkConfigTwiceYieldsAlreadyLinked(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	require.NoError(t, r.LinkConfig("omarchy"))
	linkTarget, err := os.Readlink(res.ConfigDir("omarchy"))
	require.NoError(t, err)

	err = r.LinkConfig("omarchy")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAlreadyLinked))

	// Filesystem state after call 2 equals the state after call 1.
	after, readErr := os.Readlink(res.ConfigDir("omarchy"))
	require.NoError(t, readErr)
	assert.Equal(t, linkTarget, after)
}

func TestLinkConfigRefusesRealDirectory(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	require.NoError(t, os.MkdirAll(res.ConfigDir("omarchy"), 0755))
	marker := filepath.Join(res.ConfigDir("omarchy"), "precious.conf")
	require.NoError(t, os.WriteFile(marker, []byte("data"), 0644))

	err := r.LinkConfig("omarchy")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnsafeOverwrite))
	assert.Contains(t, errors.Remedy(err), "burrow adopt")

	// The real data is untouched.
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestAdoptConfigMovesEverything(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	iso := res.ConfigDir("jakoolit")
	require.NoError(t, os.MkdirAll(filepath.Join(iso, "hypr"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(iso, "hypr", "hyprland.conf"), []byte("monitor"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(iso, ".hidden-rc"), []byte("hidden"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(iso, "kitty.conf"), []byte("font"), 0644))

	result, err := r.AdoptConfig("jakoolit")
	require.NoError(t, err)

	// Hidden entries move too.
	assert.Equal(t, []string{".hidden-rc", "hypr", "kitty.conf"}, result.Moved)

	// The isolated .config is now a symlink to the dotfiles tree.
	info, err := os.Lstat(iso)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	state, err := r.State("jakoolit")
	require.NoError(t, err)
	assert.Equal(t, StateLinked, state)

	// Moved files are byte-identical under the dotfiles tree, and
	// reachable through the symlink.
	target := res.DotfilesConfigDir("jakoolit")
	data, err := os.ReadFile(filepath.Join(target, "hypr", "hyprland.conf"))
	require.NoError(t, err)
	assert.Equal(t, "monitor", string(data))

	data, err = os.ReadFile(filepath.Join(iso, "kitty.conf"))
	require.NoError(t, err)
	assert.Equal(t, "font", string(data))

	// No data loss: the same set of names, just relocated.
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{".hidden-rc", "hypr", "kitty.conf"}, names)
}

func TestAdoptConfigRefusesNonEmptyDestination(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	iso := res.ConfigDir("jakoolit")
	require.NoError(t, os.MkdirAll(iso, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(iso, "mine.conf"), []byte("mine"), 0644))

	dest := res.DotfilesConfigDir("jakoolit")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "theirs.conf"), []byte("theirs"), 0644))

	_, err := r.AdoptConfig("jakoolit")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDestinationNotEmpty))

	// Both directories are completely untouched.
	data, err := os.ReadFile(filepath.Join(iso, "mine.conf"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))

	destEntries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, destEntries, 1)
	assert.Equal(t, "theirs.conf", destEntries[0].Name())

	state, err := r.State("jakoolit")
	require.NoError(t, err)
	assert.Equal(t, StateRealDirectory, state)
}

func TestAdoptConfigGuardStates(t *testing.T) {
	res := testResolver(t)
	r := New(res)

	// Absent: nothing to adopt.
	_, err := r.AdoptConfig("omarchy")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNothingToAdopt))
	assert.Contains(t, errors.Remedy(err), "burrow link")

	// Linked: already done.
	require.NoError(t, r.LinkConfig("omarchy"))
	_, err = r.AdoptConfig("omarchy")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAlreadyLinked))
}

func TestAdoptConfigConfirmDeclined(t *testing.T) {
	res := testResolver(t)
	r := New(res).WithConfirm(func(string) bool { return false })

	iso := res.ConfigDir("jakoolit")
	require.NoError(t, os.MkdirAll(iso, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(iso, "mine.conf"), []byte("mine"), 0644))

	_, err := r.AdoptConfig("jakoolit")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAborted))

	// Nothing moved, and the dotfiles tree was not created either:
	// declining must leave the filesystem exactly as it was.
	state, err := r.State("jakoolit")
	require.NoError(t, err)
	assert.Equal(t, StateRealDirectory, state)
	_, err = os.Stat(filepath.Join(iso, "mine.conf"))
	assert.NoError(t, err)
	_, err = os.Stat(res.DotfilesConfigDir("jakoolit"))
	assert.True(t, os.IsNotExist(err))
}

func TestAdoptConfigPartialMoveBlocksSymlink(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}

	res := testResolver(t)
	r := New(res)

	iso := res.ConfigDir("jakoolit")
	require.NoError(t, os.MkdirAll(iso, 0755))
	stuck := filepath.Join(iso, "stuck.conf")
	require.NoError(t, os.WriteFile(stuck, []byte("stuck"), 0644))

	// A read-only .config makes every rename out of it fail.
	require.NoError(t, os.Chmod(iso, 0555))
	t.Cleanup(func() { _ = os.Chmod(iso, 0755) })

	result, err := r.AdoptConfig("jakoolit")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPartialAdopt))
	assert.Empty(t, result.Moved)

	// Residual entries block the symlink: the directory stays real and
	// the unmoved file stays in place.
	state, stateErr := r.State("jakoolit")
	require.NoError(t, stateErr)
	assert.Equal(t, StateRealDirectory, state)

	data, readErr := os.ReadFile(stuck)
	require.NoError(t, readErr)
	assert.Equal(t, "stuck", string(data))
}
