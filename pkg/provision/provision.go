// Package provision orchestrates one provisioning run: resolve the
// profile, ensure its isolated environment, refresh the source
// checkout, and execute the installer inside the fake home with change
// tracking wrapped around it.
package provision

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/burrowtool/burrow/pkg/capability"
	"github.com/burrowtool/burrow/pkg/config"
	"github.com/burrowtool/burrow/pkg/environment"
	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
	"github.com/burrowtool/burrow/pkg/registry"
	"github.com/burrowtool/burrow/pkg/tracking"
	"github.com/burrowtool/burrow/pkg/vcs"
)

// Cloner is the version-control surface the provisioner needs.
// Implemented by vcs.Git; tests supply stubs.
type Cloner interface {
	IsRepo(dir string) bool
	Clone(url, dir string) error
	Update(dir string) error
}

// Result describes a completed provisioning run.
type Result struct {
	Profile   string
	Home      string
	LogFile   string
	Installer string // empty for a config-only repository
	Report    *tracking.Report
	Warnings  []string
}

// Provisioner runs provisioning for registered profiles.
type Provisioner struct {
	registry  *registry.Registry
	resolver  paths.Resolver
	cfg       config.Config
	cloner    Cloner
	lister    tracking.PackageLister
	sudo      *capability.Sudo
	globalLog string
	output    io.Writer
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithCloner overrides version-control handling (tests).
func WithCloner(c Cloner) Option {
	return func(p *Provisioner) { p.cloner = c }
}

// WithPackageLister overrides package-manager detection (tests).
func WithPackageLister(l tracking.PackageLister) Option {
	return func(p *Provisioner) { p.lister = l }
}

// WithGlobalLog overrides the cross-profile log location.
func WithGlobalLog(path string) Option {
	return func(p *Provisioner) { p.globalLog = path }
}

// WithOutput mirrors installer output to w in addition to the logs.
func WithOutput(w io.Writer) Option {
	return func(p *Provisioner) { p.output = w }
}

// New builds a Provisioner, detecting optional capabilities (git,
// package manager, sudo) unless overridden by options.
func New(reg *registry.Registry, resolver paths.Resolver, cfg config.Config, opts ...Option) *Provisioner {
	p := &Provisioner{
		registry:  reg,
		resolver:  resolver,
		cfg:       cfg,
		globalLog: paths.GlobalLogFile(),
	}
	if git, ok := vcs.Detect(); ok {
		p.cloner = git
	}
	if pm, ok := capability.DetectPackageManager(); ok {
		p.lister = pm
	}
	if sudo, ok := capability.DetectSudo(); ok {
		p.sudo = sudo
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision runs the full pipeline for one profile. On installer
// failure the run still completes, all reports are written, and the
// INSTALLER_FAILED error is returned alongside the populated Result.
func (p *Provisioner) Provision(name string) (*Result, error) {
	logger := logging.GetLogger("provision")

	if err := paths.ValidateProfileName(name); err != nil {
		return nil, err
	}
	url, err := p.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	env := environment.New(p.resolver, name)
	if err := env.Ensure(); err != nil {
		return nil, err
	}

	result := &Result{Profile: name, Home: env.Root}

	if warn, err := p.refreshSource(env, url); err != nil {
		return nil, err
	} else if warn != "" {
		logger.Warn().Str("profile", name).Msg(warn)
		result.Warnings = append(result.Warnings, warn)
	}

	installer, found := discoverInstaller(env.SourceDir, p.cfg.Installer.Candidates)
	if !found {
		// Config-only repository: not an error, per the source behavior.
		notice := "no installer entrypoint found, treating repository as config-only"
		logger.Info().Str("profile", name).Msg(notice)
		result.Warnings = append(result.Warnings, notice)
	}

	logPath, logFile, err := p.openRunLog(env)
	if err != nil {
		return nil, err
	}
	defer logFile.Close()
	result.LogFile = logPath

	sinks := []io.Writer{logFile}
	if global, err := p.openGlobalLog(); err == nil {
		defer global.Close()
		sinks = append(sinks, global)
	} else {
		logger.Warn().Err(err).Msg("Global log unavailable for this run")
	}
	if p.output != nil {
		sinks = append(sinks, p.output)
	}
	tee := io.MultiWriter(sinks...)

	fmt.Fprintf(tee, "=== burrow provision %s at %s ===\n", name, time.Now().Format(time.RFC3339))

	tracker := tracking.New(env, p.lister).WithSudo(p.sudo)
	baseline, err := tracker.Begin()
	if err != nil {
		return nil, err
	}

	var installerErr error
	if found {
		result.Installer = filepath.Base(installer)
		fmt.Fprintf(tee, "--- running installer %s ---\n", result.Installer)
		installerErr = p.runInstaller(env, installer, tee)
	}

	report := tracker.Finish(baseline)
	if p.cfg.Tracking.SystemScan {
		tracker.SystemScan(baseline, report, p.cfg.Tracking.SystemPaths)
	}
	result.Report = report
	result.Warnings = append(result.Warnings, report.Warnings...)

	fmt.Fprintf(tee, "--- %d new packages, %d changed files ---\n",
		len(report.NewPackages), len(report.ChangedFiles))

	if installerErr != nil {
		return result, errors.Wrapf(installerErr, errors.ErrInstallerFailed,
			"installer %s exited with an error (full output in %s)", result.Installer, logPath)
	}
	return result, nil
}

// refreshSource clones the repository on first provisioning, or
// fast-forwards an existing clone. An update failure degrades to a
// warning and the existing checkout is used as-is; a failed initial
// clone is fatal.
func (p *Provisioner) refreshSource(env environment.Environment, url string) (string, error) {
	if p.cloner == nil {
		if _, err := os.Stat(env.SourceDir); err == nil {
			return "git unavailable, using existing checkout as-is", nil
		}
		return "", errors.New(errors.ErrVersionControl, "git is not installed and no checkout exists").
			WithRemedy("install git and re-run")
	}

	if p.cloner.IsRepo(env.SourceDir) {
		if err := p.cloner.Update(env.SourceDir); err != nil {
			return fmt.Sprintf("source update failed, using existing checkout: %v", err), nil
		}
		return "", nil
	}
	if err := p.cloner.Clone(url, env.SourceDir); err != nil {
		return "", err
	}
	return "", nil
}

// discoverInstaller checks the configured candidates in order at the
// repository root, then falls back to any executable *.sh there, sorted
// by name.
func discoverInstaller(srcDir string, candidates []string) (string, bool) {
	for _, name := range candidates {
		path := filepath.Join(srcDir, name)
		if isExecutableFile(path) {
			return path, true
		}
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return "", false
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sh") {
			continue
		}
		path := filepath.Join(srcDir, e.Name())
		if isExecutableFile(path) {
			scripts = append(scripts, path)
		}
	}
	if len(scripts) == 0 {
		return "", false
	}
	sort.Strings(scripts)
	return scripts[0], true
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode()&0111 != 0
}

// runInstaller executes the installer as a foreground subprocess with
// the home and XDG variables rebound into the isolated tree. No
// timeout: a hung installer hangs the run, cancellation is external
// process termination, and provision is idempotent on retry.
func (p *Provisioner) runInstaller(env environment.Environment, installer string, tee io.Writer) error {
	cmd := exec.Command(installer)
	cmd.Dir = env.SourceDir
	cmd.Env = env.Environ(os.Environ())
	cmd.Stdout = tee
	cmd.Stderr = tee
	return cmd.Run()
}

// openRunLog creates a freshly timestamped per-profile log file,
// bumping a numeric suffix if the name is already taken within the
// same second.
func (p *Provisioner) openRunLog(env environment.Environment) (string, *os.File, error) {
	if err := os.MkdirAll(env.LogDir, 0755); err != nil {
		return "", nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create log directory")
	}
	stamp := time.Now().Format("20060102-150405")
	for i := 0; ; i++ {
		name := fmt.Sprintf("provision-%s.log", stamp)
		if i > 0 {
			name = fmt.Sprintf("provision-%s-%d.log", stamp, i)
		}
		path := filepath.Join(env.LogDir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, errors.Wrap(err, errors.ErrFileAccess, "failed to create run log")
		}
	}
}

func (p *Provisioner) openGlobalLog() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(p.globalLog), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(p.globalLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
