// Package config persists the user's choices: the install directory, the
// selected profile per agent integration, and update preferences.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/nojolabs/nojo/pkg/errors"
	"github.com/nojolabs/nojo/pkg/logging"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/types"
)

// rawBytesProvider feeds already-read bytes into koanf, so config loading
// goes through the same types.FS as everything else.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Autoupdate preference values.
const (
	AutoupdateEnabled  = "enabled"
	AutoupdateDisabled = "disabled"
)

// ProfileSelection names the profile an agent runs with.
type ProfileSelection struct {
	BaseProfile string `koanf:"baseProfile" json:"baseProfile"`
}

// AgentConfig is the per-agent block of the config file.
type AgentConfig struct {
	Profile ProfileSelection `koanf:"profile" json:"profile"`
}

// Config is the persisted user configuration. Loading is schema-driven:
// unknown top-level properties are stripped.
type Config struct {
	InstallDir string                 `koanf:"installDir" json:"installDir"`
	Agents     map[string]AgentConfig `koanf:"agents" json:"agents"`
	Autoupdate string                 `koanf:"autoupdate" json:"autoupdate"`
	Version    string                 `koanf:"version" json:"version"`
}

// New returns a config with defaults applied.
func New(installDir, version string) *Config {
	return &Config{
		InstallDir: installDir,
		Agents:     make(map[string]AgentConfig),
		Autoupdate: AutoupdateEnabled,
		Version:    version,
	}
}

// AgentNames is derived strictly from the key set of the agent-profile
// mapping, never from a separate list, so the two can never drift apart.
func (c *Config) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetAgentProfile records the selected base profile for an agent.
func (c *Config) SetAgentProfile(agent, profile string) {
	if c.Agents == nil {
		c.Agents = make(map[string]AgentConfig)
	}
	c.Agents[agent] = AgentConfig{Profile: ProfileSelection{BaseProfile: profile}}
}

// AgentProfile returns the selected base profile for an agent, or "".
func (c *Config) AgentProfile(agent string) string {
	return c.Agents[agent].Profile.BaseProfile
}

// Load reads the config under installRoot. A missing file yields
// (nil, nil); a malformed one is an error, since silently discarding user
// choices would be worse than failing the command.
func Load(fs types.FS, installRoot string) (*Config, error) {
	path := configPath(installRoot)
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"autoupdate": AutoupdateEnabled,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load config defaults")
	}
	if err := k.Load(&rawBytesProvider{bytes: data}, kjson.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to parse %s", path)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid config in %s", path)
	}
	if c.Agents == nil {
		c.Agents = make(map[string]AgentConfig)
	}
	if c.Autoupdate != AutoupdateEnabled && c.Autoupdate != AutoupdateDisabled {
		logger := logging.GetLogger("config")
		logger.Warn().
			Str("autoupdate", c.Autoupdate).
			Msg("Unknown autoupdate value, using default")
		c.Autoupdate = AutoupdateEnabled
	}
	return &c, nil
}

// Save writes the config under installRoot, creating the state directory
// if needed. Full overwrite.
func Save(fs types.FS, installRoot string, c *Config) error {
	path := configPath(installRoot)
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create state directory for %s", path)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to encode config")
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to write config to %s", path)
	}
	return nil
}

func configPath(installRoot string) string {
	return filepath.Join(installRoot, paths.StateDirName, paths.ConfigFileName)
}
