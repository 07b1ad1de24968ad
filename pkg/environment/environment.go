// Package environment creates and inspects a profile's isolated home
// tree, and builds the scrubbed process environment that keeps an
// installer inside it.
package environment

import (
	"os"
	"strings"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
)

// Environment is the directory layout of one profile's fake home. All
// fields are derived from the resolver; nothing is stored.
type Environment struct {
	Name      string
	Root      string
	ConfigDir string
	DataDir   string
	CacheDir  string
	StateDir  string
	LogDir    string
	SourceDir string
}

// New derives the environment layout for a profile. Pure.
func New(r paths.Resolver, name string) Environment {
	return Environment{
		Name:      name,
		Root:      r.Home(name),
		ConfigDir: r.ConfigDir(name),
		DataDir:   r.DataDir(name),
		CacheDir:  r.CacheDir(name),
		StateDir:  r.StateDir(name),
		LogDir:    r.LogDir(name),
		SourceDir: r.SourceDir(name),
	}
}

// Ensure creates the isolated home root, the four XDG subpaths, and the
// log directory. Idempotent: existing directories are not an error.
func (e Environment) Ensure() error {
	logger := logging.GetLogger("environment")

	for _, dir := range []string{e.Root, e.ConfigDir, e.DataDir, e.CacheDir, e.StateDir, e.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}
	logger.Debug().Str("profile", e.Name).Str("root", e.Root).Msg("Isolated environment ensured")
	return nil
}

// Exists reports whether the isolated home root exists.
func (e Environment) Exists() bool {
	info, err := os.Stat(e.Root)
	return err == nil && info.IsDir()
}

// Environ builds a subprocess environment from base with the home and
// XDG variables rebound into the isolated tree. The caller's real HOME
// and XDG_* values never leak through.
func (e Environment) Environ(base []string) []string {
	out := make([]string, 0, len(base)+5)
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key == "HOME" || strings.HasPrefix(key, "XDG_") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out,
		"HOME="+e.Root,
		"XDG_CONFIG_HOME="+e.ConfigDir,
		"XDG_DATA_HOME="+e.DataDir,
		"XDG_CACHE_HOME="+e.CacheDir,
		"XDG_STATE_HOME="+e.StateDir,
	)
	return out
}
