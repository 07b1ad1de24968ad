// Package vcs wraps the git binary for cloning, fast-forward updates,
// and the snapshot helper. Git is an optional capability: Detect
// returns false when the binary is absent and callers degrade.
package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
)

// Git runs version-control operations through the system git binary.
type Git struct {
	bin string
}

// Detect looks up the git binary. The boolean is false when git is not
// installed; every caller must handle that.
func Detect() (*Git, bool) {
	bin, err := exec.LookPath("git")
	if err != nil {
		return nil, false
	}
	return &Git{bin: bin}, true
}

// IsRepo reports whether dir contains version-control metadata.
func (g *Git) IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Clone clones url into dir. The parent directory must exist.
func (g *Git) Clone(url, dir string) error {
	out, err := g.run("", "clone", url, dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to clone %s: %s", url, strings.TrimSpace(out))
	}
	return nil
}

// Update fast-forwards an existing clone. A non-fast-forward situation
// is an error; callers keep the existing checkout and warn.
func (g *Git) Update(dir string) error {
	out, err := g.run(dir, "pull", "--ff-only")
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"fast-forward update failed in %s: %s", dir, strings.TrimSpace(out))
	}
	return nil
}

// Init initializes a new repository in dir.
func (g *Git) Init(dir string) error {
	out, err := g.run(dir, "init")
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to init repository in %s: %s", dir, strings.TrimSpace(out))
	}
	return nil
}

// AddAll stages every change in dir.
func (g *Git) AddAll(dir string) error {
	out, err := g.run(dir, "add", "-A")
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to stage changes in %s: %s", dir, strings.TrimSpace(out))
	}
	return nil
}

// IsDirty reports whether dir has staged or unstaged changes.
func (g *Git) IsDirty(dir string) (bool, error) {
	out, err := g.run(dir, "status", "--porcelain")
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrVersionControl,
			"failed to read status in %s", dir)
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit records staged changes. Identity falls back to a fixed one so
// snapshots work on machines without git configured.
func (g *Git) Commit(dir, message string) error {
	out, err := g.run(dir,
		"-c", "user.name=burrow",
		"-c", "user.email=burrow@localhost",
		"commit", "-m", message)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to commit in %s: %s", dir, strings.TrimSpace(out))
	}
	return nil
}

// SetRemote points the origin remote at url, creating it if needed.
func (g *Git) SetRemote(dir, url string) error {
	if _, err := g.run(dir, "remote", "get-url", "origin"); err != nil {
		out, err := g.run(dir, "remote", "add", "origin", url)
		if err != nil {
			return errors.Wrapf(err, errors.ErrVersionControl,
				"failed to add origin remote: %s", strings.TrimSpace(out))
		}
		return nil
	}
	out, err := g.run(dir, "remote", "set-url", "origin", url)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to set origin remote: %s", strings.TrimSpace(out))
	}
	return nil
}

// Push pushes the current branch to origin.
func (g *Git) Push(dir string) error {
	out, err := g.run(dir, "push", "-u", "origin", "HEAD")
	if err != nil {
		return errors.Wrapf(err, errors.ErrVersionControl,
			"failed to push from %s: %s", dir, strings.TrimSpace(out))
	}
	return nil
}

func (g *Git) run(dir string, args ...string) (string, error) {
	logger := logging.GetLogger("vcs")
	cmd := exec.Command(g.bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	logger.Debug().Str("dir", dir).Strs("args", args).Msg("Running git")
	out, err := cmd.CombinedOutput()
	return string(out), err
}
