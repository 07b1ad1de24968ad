// Package paths provides centralized path handling for burrow.
// It derives every isolated-environment path from a single
// prefix + profile-name formula, so that the core, the launch-script
// generator, and generated scripts all agree byte-for-byte on where a
// profile's fake home lives.
package paths

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/burrowtool/burrow/pkg/errors"
)

// Directory and file names fixed by burrow's on-disk contract. These are
// not user-configurable; the launch scripts and the change tracker rely
// on them staying put.
const (
	// BurrowDirName is the name of burrow's own per-user directories.
	BurrowDirName = "burrow"

	// InternalDirName is the hidden directory inside each isolated home
	// holding burrow bookkeeping (logs, reports, timestamps).
	InternalDirName = ".burrow"

	// LogsDirName is the log directory under InternalDirName.
	LogsDirName = "logs"

	// RegistryFileName is the append-only profile registry file.
	RegistryFileName = "profiles.list"

	// GlobalLogFileName is the cross-profile provisioning log.
	GlobalLogFileName = "provision.log"

	// DefaultSourceDirName is where a profile's source repository is
	// cloned inside the isolated home.
	DefaultSourceDirName = "src"

	// DefaultDotfilesDirName is the default dotfiles root under the real
	// home directory.
	DefaultDotfilesDirName = "Dotfiles"
)

// XDG subpaths inside an isolated home, relative to its root.
const (
	ConfigSubdir = ".config"
	DataSubdir   = ".local/share"
	CacheSubdir  = ".cache"
	StateSubdir  = ".local/state"
)

var profileNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateProfileName rejects names that cannot safely double as a
// filesystem path component.
func ValidateProfileName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "profile name is empty")
	}
	if name == "." || name == ".." {
		return errors.Newf(errors.ErrInvalidInput, "profile name %q is reserved", name)
	}
	if !profileNamePattern.MatchString(name) {
		return errors.Newf(errors.ErrInvalidInput,
			"profile name %q contains invalid characters (allowed: A-Z a-z 0-9 . _ -)", name)
	}
	return nil
}

// ValidateSourceURL accepts http(s)/git/ssh URLs with a scheme separator
// and scp-like git remotes (user@host:path).
func ValidateSourceURL(url string) error {
	if url == "" {
		return errors.New(errors.ErrInvalidInput, "source URL is empty")
	}
	if strings.Contains(url, "://") {
		return nil
	}
	if scpLikePattern.MatchString(url) {
		return nil
	}
	return errors.Newf(errors.ErrInvalidInput, "source URL %q has no scheme separator", url)
}

var scpLikePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@[^:]+:.+$`)

// Resolver computes isolated-environment and dotfiles paths for profile
// names. It is pure: construction resolves defaults once, methods only
// concatenate.
type Resolver struct {
	prefix        string
	dotfilesRoot  string
	sourceDirName string
}

// NewResolver builds a Resolver. Empty arguments select the defaults:
// prefix = real home + path separator, dotfilesRoot = real home +
// "/Dotfiles", sourceDirName = "src".
func NewResolver(prefix, dotfilesRoot, sourceDirName string) Resolver {
	if prefix == "" {
		prefix = DefaultPrefix()
	}
	if dotfilesRoot == "" {
		home, _ := os.UserHomeDir()
		dotfilesRoot = filepath.Join(home, DefaultDotfilesDirName)
	}
	if sourceDirName == "" {
		sourceDirName = DefaultSourceDirName
	}
	return Resolver{
		prefix:        prefix,
		dotfilesRoot:  dotfilesRoot,
		sourceDirName: sourceDirName,
	}
}

// DefaultPrefix returns the default isolated-home prefix: the real home
// directory plus a path separator.
func DefaultPrefix() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return home + string(os.PathSeparator)
}

// Prefix returns the configured isolated-home prefix.
func (r Resolver) Prefix() string {
	return r.prefix
}

// Home returns the isolated home root for a profile. This concatenation
// is the shared derivation formula; generated launch scripts embed the
// same prefix and re-derive the identical path at run time.
func (r Resolver) Home(name string) string {
	return r.prefix + name
}

// ConfigDir returns the isolated XDG_CONFIG_HOME for a profile.
func (r Resolver) ConfigDir(name string) string {
	return filepath.Join(r.Home(name), ConfigSubdir)
}

// DataDir returns the isolated XDG_DATA_HOME for a profile.
func (r Resolver) DataDir(name string) string {
	return filepath.Join(r.Home(name), DataSubdir)
}

// CacheDir returns the isolated XDG_CACHE_HOME for a profile.
func (r Resolver) CacheDir(name string) string {
	return filepath.Join(r.Home(name), CacheSubdir)
}

// StateDir returns the isolated XDG_STATE_HOME for a profile.
func (r Resolver) StateDir(name string) string {
	return filepath.Join(r.Home(name), StateSubdir)
}

// LogDir returns the per-profile provisioning log directory.
func (r Resolver) LogDir(name string) string {
	return filepath.Join(r.Home(name), InternalDirName, LogsDirName)
}

// SourceDir returns where a profile's source repository is cloned.
func (r Resolver) SourceDir(name string) string {
	return filepath.Join(r.Home(name), r.sourceDirName)
}

// DotfilesDir returns the version-controllable dotfiles tree root for a
// profile. It lives outside the isolated environment.
func (r Resolver) DotfilesDir(name string) string {
	return filepath.Join(r.dotfilesRoot, name)
}

// DotfilesConfigDir returns the .config subtree of a profile's dotfiles
// tree; the isolated .config symlinks here once the profile is linked.
func (r Resolver) DotfilesConfigDir(name string) string {
	return filepath.Join(r.DotfilesDir(name), ConfigSubdir)
}

// DotfilesDataDir returns the .local/share subtree of a profile's
// dotfiles tree.
func (r Resolver) DotfilesDataDir(name string) string {
	return filepath.Join(r.DotfilesDir(name), DataSubdir)
}

// Tool-own directories (burrow's, not a profile's), per XDG.

// ToolConfigDir returns burrow's own configuration directory.
func ToolConfigDir() string {
	return filepath.Join(xdg.ConfigHome, BurrowDirName)
}

// ToolStateDir returns burrow's own state directory.
func ToolStateDir() string {
	return filepath.Join(xdg.StateHome, BurrowDirName)
}

// ToolDataDir returns burrow's own data directory.
func ToolDataDir() string {
	return filepath.Join(xdg.DataHome, BurrowDirName)
}

// RegistryFile returns the append-only profile registry file path.
func RegistryFile() string {
	return filepath.Join(ToolConfigDir(), RegistryFileName)
}

// GlobalLogFile returns the cross-profile provisioning log path.
func GlobalLogFile() string {
	return filepath.Join(ToolStateDir(), GlobalLogFileName)
}

// LauncherDir returns where generated launch scripts are written.
func LauncherDir() string {
	return filepath.Join(ToolDataDir(), "bin")
}
