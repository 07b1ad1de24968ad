// Package registry maps profile names to source-repository URLs.
//
// The registry is loaded once at process start: built-in profiles first,
// then the per-user append-only file in file order, later records
// overriding earlier ones. Add appends a record; nothing is ever
// rewritten in place.
package registry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/logging"
	"github.com/burrowtool/burrow/pkg/paths"
)

// Origin records where a registry entry came from.
type Origin string

const (
	OriginBuiltin Origin = "built-in"
	OriginUser    Origin = "user"
)

// Entry is one profile registration.
type Entry struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Origin Origin `yaml:"-"`
}

// builtins are always loaded first and can be overridden by the
// persisted file.
var builtins = []Entry{
	{Name: "omarchy", URL: "https://github.com/basecamp/omarchy.git"},
	{Name: "jakoolit", URL: "https://github.com/JaKooLit/Arch-Hyprland.git"},
	{Name: "ml4w", URL: "https://github.com/mylinuxforwork/dotfiles.git"},
	{Name: "end4", URL: "https://github.com/end-4/dots-hyprland.git"},
	{Name: "hyprdots", URL: "https://github.com/prasanthrangan/hyprdots.git"},
}

// Registry is the effective profile map plus the backing file used for
// persistence.
type Registry struct {
	entries map[string]Entry
	file    string
}

// Load builds a Registry from the built-ins and the given append-only
// file. A missing file is not an error. Malformed lines are skipped
// with a warning.
func Load(file string) (*Registry, error) {
	logger := logging.GetLogger("registry")

	r := &Registry{
		entries: make(map[string]Entry, len(builtins)),
		file:    file,
	}
	for _, e := range builtins {
		e.Origin = OriginBuiltin
		r.entries[e.Name] = e
	}

	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to open registry file %s", file)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			logger.Warn().Str("file", file).Int("line", lineNo).Msg("Skipping malformed registry record")
			continue
		}
		name, url := fields[0], fields[1]
		if err := paths.ValidateProfileName(name); err != nil {
			logger.Warn().Str("file", file).Int("line", lineNo).Str("name", name).
				Msg("Skipping registry record with invalid profile name")
			continue
		}
		if _, exists := r.entries[name]; exists {
			logger.Debug().Str("name", name).Msg("Registry record overrides earlier definition")
		}
		r.entries[name] = Entry{Name: name, URL: url, Origin: OriginUser}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read registry file %s", file)
	}
	return r, nil
}

// Has reports whether a profile is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Resolve returns the source URL for a profile.
func (r *Registry) Resolve(name string) (string, error) {
	e, ok := r.entries[name]
	if !ok {
		return "", errors.Newf(errors.ErrUnknownProfile, "profile %q is not registered", name).
			WithRemedy(fmt.Sprintf("burrow profiles add %s <url>", name))
	}
	return e.URL, nil
}

// Add validates and persists a new name -> URL assignment, then applies
// it to the in-memory map. Validation failures leave the registry file
// untouched. Overwriting an existing name logs a warning.
func (r *Registry) Add(name, url string) error {
	logger := logging.GetLogger("registry")

	if err := paths.ValidateProfileName(name); err != nil {
		return err
	}
	if err := paths.ValidateSourceURL(url); err != nil {
		return err
	}

	if prev, exists := r.entries[name]; exists {
		logger.Warn().Str("name", name).Str("old", prev.URL).Str("new", url).
			Msg("Overwriting existing profile registration")
	}

	if err := os.MkdirAll(filepath.Dir(r.file), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create registry directory")
	}
	f, err := os.OpenFile(r.file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRegistryPersist, "failed to open registry file %s", r.file)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s\t%s\n", name, url); err != nil {
		return errors.Wrap(err, errors.ErrRegistryPersist, "failed to append registry record")
	}

	r.entries[name] = Entry{Name: name, URL: url, Origin: OriginUser}
	return nil
}

// List returns all effective entries sorted by name.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExportYAML writes the effective registry as YAML, for backup or for
// sharing profile sets between machines.
func (r *Registry) ExportYAML(w io.Writer) error {
	entries := r.List()
	if err := yaml.NewEncoder(w).Encode(entries); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode registry as YAML")
	}
	return nil
}

// ImportYAML reads entries produced by ExportYAML and adds each one
// through the normal validation/persistence path. Returns the number of
// entries imported; stops at the first failure.
func (r *Registry) ImportYAML(reader io.Reader) (int, error) {
	var entries []Entry
	if err := yaml.NewDecoder(reader).Decode(&entries); err != nil {
		return 0, errors.Wrap(err, errors.ErrInvalidInput, "failed to decode registry YAML")
	}
	for i, e := range entries {
		if err := r.Add(e.Name, e.URL); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
