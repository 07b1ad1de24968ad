// Package gitsnap versions a profile's dotfiles tree: commit if dirty,
// push if requested. Strictly downstream of the reconciler; the tree
// must already exist.
package gitsnap

import (
	"fmt"
	"os"
	"time"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/vcs"
)

// Result reports what Snapshot did.
type Result struct {
	Committed bool
	Pushed    bool
}

// Snapshot commits any pending changes in the dotfiles tree at dir.
// When remote is non-empty the origin remote is set to it and the
// current branch pushed.
func Snapshot(git *vcs.Git, dir, remote string) (*Result, error) {
	logger := logging.GetLogger("gitsnap")

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrFileAccess, "dotfiles tree %s does not exist", dir).
			WithRemedy("burrow prepare <profile>")
	}

	if !git.IsRepo(dir) {
		if err := git.Init(dir); err != nil {
			return nil, err
		}
		logger.Info().Str("dir", dir).Msg("Initialized dotfiles repository")
	}

	if err := git.AddAll(dir); err != nil {
		return nil, err
	}
	dirty, err := git.IsDirty(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if dirty {
		msg := fmt.Sprintf("burrow snapshot %s", time.Now().Format(time.RFC3339))
		if err := git.Commit(dir, msg); err != nil {
			return nil, err
		}
		result.Committed = true
	} else {
		logger.Info().Str("dir", dir).Msg("Dotfiles tree is clean, nothing to commit")
	}

	if remote != "" {
		if err := git.SetRemote(dir, remote); err != nil {
			return result, err
		}
		if err := git.Push(dir); err != nil {
			return result, err
		}
		result.Pushed = true
	}
	return result, nil
}
