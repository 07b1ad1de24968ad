// Package tracking audits what an installer changed, by differential
// snapshotting: package sets and filesystem modification times are
// captured before and after installer execution and diffed.
//
// Tracking is diagnostic. Every step degrades to a warning rather than
// abort a provisioning run.
package tracking

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowtool/burrow/pkg/capability"
	"github.com/burrowtool/burrow/pkg/environment"
	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
)

// Report file names inside the profile log directory. These are
// overwritten on every run; only the timestamped combined log
// accumulates.
const (
	ReferenceFile      = ".reference"
	PackagesBeforeFile = "packages-before.txt"
	PackagesAfterFile  = "packages-after.txt"
	PackagesNewFile    = "packages-new.txt"
	FilesChangedFile   = "files-changed.txt"
	SystemChangedFile  = "system-changed.txt"
)

// PackageLister lists installed package names. Satisfied by
// capability.PackageManager; tests supply stubs.
type PackageLister interface {
	Installed() ([]string, error)
}

// Tracker wraps one provisioning run's before/after snapshots.
type Tracker struct {
	env    environment.Environment
	lister PackageLister
	sudo   *capability.Sudo
}

// Baseline is the "before" snapshot.
type Baseline struct {
	Packages  []string
	Reference time.Time

	refPath string
}

// Report is the "after" diff.
type Report struct {
	NewPackages   []string
	ChangedFiles  []string
	SystemChanged []string
	Warnings      []string
}

// New builds a tracker for one environment. lister may be nil (no
// package manager detected): package diffing is skipped without error.
func New(env environment.Environment, lister PackageLister) *Tracker {
	return &Tracker{env: env, lister: lister}
}

// WithSudo enables privileged retries for the system scan.
func (t *Tracker) WithSudo(s *capability.Sudo) *Tracker {
	t.sudo = s
	return t
}

// Begin captures the pre-installer snapshot: the installed package set
// and a reference timestamp file in the log directory. The reference
// file's own modification time is the cutoff, so that comparisons use
// filesystem time rather than wall-clock time.
func (t *Tracker) Begin() (*Baseline, error) {
	logger := logging.GetLogger("tracking")

	if err := os.MkdirAll(t.env.LogDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create log directory")
	}

	b := &Baseline{refPath: filepath.Join(t.env.LogDir, ReferenceFile)}

	stamp := time.Now().Format(time.RFC3339)
	if err := os.WriteFile(b.refPath, []byte(stamp+"\n"), 0644); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to write reference timestamp")
	}
	info, err := os.Stat(b.refPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to stat reference timestamp")
	}
	b.Reference = info.ModTime()

	if t.lister != nil {
		pkgs, err := t.lister.Installed()
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to snapshot package set, package diff disabled for this run")
		} else {
			b.Packages = pkgs
			t.writeList(PackagesBeforeFile, pkgs)
		}
	}

	return b, nil
}

// Finish captures the post-installer snapshot and produces the diff
// report. Sub-step failures are recorded as warnings, never returned as
// errors: auditing must not mask the provisioning outcome.
func (t *Tracker) Finish(b *Baseline) *Report {
	logger := logging.GetLogger("tracking")
	report := &Report{}

	if t.lister != nil && b.Packages != nil {
		after, err := t.lister.Installed()
		if err != nil {
			report.warnf(logger, "failed to re-snapshot package set: %v", err)
		} else {
			t.writeList(PackagesAfterFile, after)
			report.NewPackages = Diff(b.Packages, after)
			t.writeList(PackagesNewFile, report.NewPackages)
		}
	}

	changed, err := t.scanHome(b.Reference)
	if err != nil {
		report.warnf(logger, "changed-files scan failed: %v", err)
	} else {
		report.ChangedFiles = changed
		t.writeList(FilesChangedFile, changed)
	}

	return report
}

// SystemScan looks for files under the given system paths modified
// after the baseline. It tries an unprivileged walk first; when parts
// of the tree are unreadable and sudo is available it retries with
// find(1) under sudo -n. Best-effort: failures append warnings to the
// report.
func (t *Tracker) SystemScan(b *Baseline, report *Report, systemPaths []string) {
	logger := logging.GetLogger("tracking")

	var changed []string
	for _, root := range systemPaths {
		files, denied := scanTree(root, b.Reference, nil)
		changed = append(changed, files...)

		if denied == 0 {
			continue
		}
		if t.sudo == nil {
			report.warnf(logger, "%d unreadable entries under %s and sudo unavailable", denied, root)
			continue
		}
		out, err := t.sudo.Run("find", root, "-newer", b.refPath, "-type", "f")
		if err != nil {
			report.warnf(logger, "privileged scan of %s skipped: %v", root, err)
			continue
		}
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				changed = append(changed, line)
			}
		}
	}

	sort.Strings(changed)
	report.SystemChanged = dedupe(changed)
	t.writeList(SystemChangedFile, report.SystemChanged)
}

// scanHome walks the isolated home collecting regular files modified
// since ref. Two subtrees are excluded: burrow's own bookkeeping
// directory, whose log is being written while the scan happens, and the
// source checkout, which the provisioner itself populates.
func (t *Tracker) scanHome(ref time.Time) ([]string, error) {
	internal := filepath.Join(t.env.Root, paths.InternalDirName)
	files, _ := scanTree(t.env.Root, ref, func(path string) bool {
		return path == internal || path == t.env.SourceDir
	})
	if files == nil {
		if _, err := os.Stat(t.env.Root); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// scanTree returns regular files under root with mtime at or after ref,
// plus the count of entries it could not read.
func scanTree(root string, ref time.Time, skipDir func(string) bool) ([]string, int) {
	var files []string
	denied := 0

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			denied++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDir != nil && skipDir(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			denied++
			return nil
		}
		// The reference file is written before anything being audited
		// runs, so an mtime equal to the cutoff is a post-baseline
		// write. Coarse filesystem clocks make equality common.
		if !info.ModTime().Before(ref) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, denied
}

// Diff returns the names present in after but not in before, sorted.
func Diff(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, name := range before {
		seen[name] = struct{}{}
	}
	var added []string
	for _, name := range after {
		if _, ok := seen[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	return dedupe(added)
}

func dedupe(sorted []string) []string {
	var out []string
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func (t *Tracker) writeList(name string, items []string) {
	logger := logging.GetLogger("tracking")
	path := filepath.Join(t.env.LogDir, name)
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to write report file")
	}
}

func (r *Report) warnf(logger zerolog.Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logger.Warn().Msg(msg)
}
