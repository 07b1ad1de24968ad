// Package config loads burrow's configuration by layering embedded TOML
// defaults, the per-user config file, and BURROW_* environment
// variables, in that order.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/burrowtool/burrow/pkg/errors"
	"github.com/burrowtool/burrow/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// ConfigFileName is the per-user config file under the tool config dir.
const ConfigFileName = "burrow.toml"

// Config is the fully resolved burrow configuration.
type Config struct {
	Environments struct {
		Prefix    string `koanf:"prefix" toml:"prefix"`
		SourceDir string `koanf:"source_dir" toml:"source_dir"`
	} `koanf:"environments" toml:"environments"`

	Dotfiles struct {
		Root string `koanf:"root" toml:"root"`
	} `koanf:"dotfiles" toml:"dotfiles"`

	Installer struct {
		Candidates []string `koanf:"candidates" toml:"candidates"`
	} `koanf:"installer" toml:"installer"`

	Tracking struct {
		SystemScan  bool     `koanf:"system_scan" toml:"system_scan"`
		SystemPaths []string `koanf:"system_paths" toml:"system_paths"`
	} `koanf:"tracking" toml:"tracking"`

	Session struct {
		Dir string `koanf:"dir" toml:"dir"`
	} `koanf:"session" toml:"session"`
}

// rawBytesProvider implements a koanf provider for raw bytes.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Load resolves the configuration from defaults, the user file, and the
// environment.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(paths.ToolConfigDir(), ConfigFileName))
}

// LoadFrom is Load with an explicit user config file path, for tests.
func LoadFrom(userFile string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", userFile)
		}
	}

	// BURROW_TRACKING_SYSTEM_SCAN=true -> tracking.system_scan. Section
	// and key are joined by the first underscore; keys keep theirs.
	if err := k.Load(env.Provider("BURROW_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "BURROW_"))
		parts := strings.SplitN(s, "_", 2)
		return strings.Join(parts, ".")
	}), nil); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	return cfg, nil
}

// Resolver builds the path resolver described by this configuration.
func (c Config) Resolver() paths.Resolver {
	return paths.NewResolver(c.Environments.Prefix, c.Dotfiles.Root, c.Environments.SourceDir)
}

// WriteDefault writes the current configuration as a commented-out
// starting point for the user config file. Fails if the file exists.
func WriteDefault(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf(errors.ErrInvalidInput, "config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create config directory")
	}
	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to marshal configuration")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to write config file")
	}
	return nil
}
