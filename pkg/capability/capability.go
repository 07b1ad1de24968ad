// Package capability detects optional external tools. Every detection
// returns an optional handle; dependent code paths degrade gracefully
// when the handle is absent.
package capability

import (
	"os/exec"
	"strings"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
)

// PackageManager can list installed package names.
type PackageManager struct {
	Name string

	bin  string
	args []string
}

// knownManagers in detection order. Arch first: the supported installer
// repositories are Arch-centric.
var knownManagers = []PackageManager{
	{Name: "pacman", bin: "pacman", args: []string{"-Qq"}},
	{Name: "dpkg", bin: "dpkg-query", args: []string{"-f", "${binary:Package}\n", "-W"}},
}

// DetectPackageManager returns a handle to the first known package
// manager found on PATH. The boolean is false when none is available;
// package diffing is then skipped without error.
func DetectPackageManager() (*PackageManager, bool) {
	logger := logging.GetLogger("capability")
	for _, pm := range knownManagers {
		path, err := exec.LookPath(pm.bin)
		if err != nil {
			continue
		}
		found := pm
		found.bin = path
		logger.Debug().Str("manager", pm.Name).Str("path", path).Msg("Package manager detected")
		return &found, true
	}
	logger.Debug().Msg("No package manager detected, package diffing disabled")
	return nil, false
}

// Installed returns the sorted-as-emitted list of installed package
// names.
func (pm *PackageManager) Installed() ([]string, error) {
	out, err := exec.Command(pm.bin, pm.args...).Output()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "%s failed to list packages", pm.Name)
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Sudo is a handle to a privilege-elevation command.
type Sudo struct {
	bin string
}

// DetectSudo returns a sudo handle if available.
func DetectSudo() (*Sudo, bool) {
	bin, err := exec.LookPath("sudo")
	if err != nil {
		return nil, false
	}
	return &Sudo{bin: bin}, true
}

// Run executes a command under sudo without prompting (-n). Failure to
// acquire privilege is surfaced as PRIVILEGE_UNAVAILABLE; no privilege
// outlives the single call.
func (s *Sudo) Run(args ...string) (string, error) {
	full := append([]string{"-n"}, args...)
	out, err := exec.Command(s.bin, full...).Output()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPrivilegeUnavailable,
			"failed to elevate privileges (sudo -n)")
	}
	return string(out), nil
}
