// Package reconciler manages the relationship between a profile's
// isolated .config directory and its version-controllable dotfiles
// tree.
//
// The isolated side is always in one of three states, computed fresh
// from filesystem metadata at the start of every operation and never
// cached: Absent, RealDirectory, or Linked. LinkConfig and AdoptConfig
// are the only transitions into Linked, differing in whether
// pre-existing data must be migrated first.
package reconciler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
)

// ConfigState is the state of a profile's isolated .config path.
type ConfigState int

const (
	// StateAbsent: the path does not exist.
	StateAbsent ConfigState = iota
	// StateRealDirectory: the path exists and holds real data.
	StateRealDirectory
	// StateLinked: the path is a symbolic link into the dotfiles tree.
	StateLinked
)

func (s ConfigState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateRealDirectory:
		return "real-directory"
	case StateLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// ConfirmFunc asks the operator to approve a destructive operation.
type ConfirmFunc func(prompt string) bool

// Reconciler performs link and adopt transitions for profiles.
type Reconciler struct {
	resolver paths.Resolver
	confirm  ConfirmFunc
}

// New builds a Reconciler. With no ConfirmFunc installed, destructive
// operations proceed (callers that front a terminal must install one).
func New(resolver paths.Resolver) *Reconciler {
	return &Reconciler{resolver: resolver}
}

// WithConfirm installs the confirmation hook used by AdoptConfig.
func (r *Reconciler) WithConfirm(f ConfirmFunc) *Reconciler {
	r.confirm = f
	return r
}

// State inspects the isolated .config path for a profile.
func (r *Reconciler) State(name string) (ConfigState, error) {
	if err := paths.ValidateProfileName(name); err != nil {
		return StateAbsent, err
	}
	info, err := os.Lstat(r.resolver.ConfigDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return StateAbsent, nil
		}
		return StateAbsent, errors.Wrap(err, errors.ErrFileAccess, "failed to inspect isolated .config")
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return StateLinked, nil
	}
	return StateRealDirectory, nil
}

// Prepare ensures the dotfiles tree's .config and .local/share
// subdirectories exist. It never touches the isolated environment and
// is always safe to re-run.
func (r *Reconciler) Prepare(name string) error {
	if err := paths.ValidateProfileName(name); err != nil {
		return err
	}
	for _, dir := range []string{
		r.resolver.DotfilesConfigDir(name),
		r.resolver.DotfilesDataDir(name),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}
	return nil
}

// LinkConfig creates the symbolic link that makes the dotfiles tree the
// sole source of truth for a profile's configuration. Valid only from
// Absent.
func (r *Reconciler) LinkConfig(name string) error {
	logger := logging.GetLogger("reconciler")

	state, err := r.State(name)
	if err != nil {
		return err
	}
	isoConfig := r.resolver.ConfigDir(name)
	target := r.resolver.DotfilesConfigDir(name)

	switch state {
	case StateLinked:
		logger.Warn().Str("profile", name).Msg("Config is already linked, nothing to do")
		return errors.Newf(errors.ErrAlreadyLinked, "config for %q is already linked", name)
	case StateRealDirectory:
		return errors.Newf(errors.ErrUnsafeOverwrite,
			"isolated .config for %q holds real data and will not be replaced", name).
			WithRemedy("burrow adopt " + name)
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
	}
	if err := os.MkdirAll(filepath.Dir(isoConfig), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(isoConfig))
	}
	if err := os.Symlink(target, isoConfig); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s -> %s", isoConfig, target)
	}
	logger.Info().Str("profile", name).Str("target", target).Msg("Config linked into dotfiles tree")
	return nil
}

// requireEmptyDest rejects a dotfiles .config that already holds
// entries. A missing directory counts as empty.
func requireEmptyDest(name, target string) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read dotfiles .config")
	}
	if len(entries) > 0 {
		return errors.Newf(errors.ErrDestinationNotEmpty,
			"dotfiles .config for %q already contains %d entries, refusing to merge", name, len(entries)).
			WithRemedy("inspect and empty " + target + ", then re-run burrow adopt " + name)
	}
	return nil
}

// AdoptResult lists what AdoptConfig moved.
type AdoptResult struct {
	Moved []string
}

// AdoptConfig migrates an existing isolated .config into the dotfiles
// tree and replaces it with a symbolic link. Valid only from
// RealDirectory, and only into an empty dotfiles .config: merging two
// unrelated configuration sets silently is never acceptable.
func (r *Reconciler) AdoptConfig(name string) (*AdoptResult, error) {
	logger := logging.GetLogger("reconciler")

	state, err := r.State(name)
	if err != nil {
		return nil, err
	}
	isoConfig := r.resolver.ConfigDir(name)
	target := r.resolver.DotfilesConfigDir(name)

	switch state {
	case StateAbsent:
		return nil, errors.Newf(errors.ErrNothingToAdopt, "no isolated .config exists for %q", name).
			WithRemedy("burrow link " + name)
	case StateLinked:
		return nil, errors.Newf(errors.ErrAlreadyLinked, "config for %q is already linked", name)
	}

	// Confirmation comes before any mutation, so the destination guard
	// runs against the directory as it is, then again once created.
	if err := requireEmptyDest(name, target); err != nil {
		return nil, err
	}

	if r.confirm != nil {
		prompt := "Move all entries from " + isoConfig + " into " + target + " and replace the directory with a symlink?"
		if !r.confirm(prompt) {
			return nil, errors.New(errors.ErrAborted, "adopt cancelled by operator")
		}
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
	}
	if err := requireEmptyDest(name, target); err != nil {
		return nil, err
	}

	srcEntries, err := os.ReadDir(isoConfig)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read isolated .config")
	}

	result := &AdoptResult{}
	for _, e := range srcEntries {
		// Rename is atomic on the same filesystem; both trees normally
		// live under the real home.
		from := filepath.Join(isoConfig, e.Name())
		to := filepath.Join(target, e.Name())
		if err := os.Rename(from, to); err != nil {
			logger.Error().Err(err).Str("entry", e.Name()).Msg("Failed to move entry into dotfiles tree")
			continue
		}
		result.Moved = append(result.Moved, e.Name())
	}
	sort.Strings(result.Moved)

	// Residual files mean the move is incomplete: stop short of the
	// symlink rather than risk shadowing them.
	residual, err := os.ReadDir(isoConfig)
	if err != nil {
		return result, errors.Wrap(err, errors.ErrFileAccess, "failed to re-read isolated .config")
	}
	if len(residual) > 0 {
		return result, errors.Newf(errors.ErrPartialAdopt,
			"%d entries could not be moved out of %s, symlink not created", len(residual), isoConfig)
	}

	if err := os.Remove(isoConfig); err != nil {
		return result, errors.Wrap(err, errors.ErrFileAccess, "failed to remove emptied isolated .config")
	}
	if err := os.Symlink(target, isoConfig); err != nil {
		return result, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s -> %s", isoConfig, target)
	}

	logger.Info().Str("profile", name).Int("moved", len(result.Moved)).
		Msg("Config adopted into dotfiles tree")
	return result, nil
}
