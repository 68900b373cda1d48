// Package config parses a single .peter-hook.toml file into a typed tree
// and surfaces structural errors.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tftio/peter-hook/pkg/constants"
)

// CommandSpec is a hook's command, decoded from either TOML form the spec
// allows: a shell string (`command = "echo ok"`) or an explicit argument
// vector (`command = ["echo", "ok"]`). A shell string is normalized to its
// `sh -c` argv form at decode time, so every downstream consumer — template
// expansion, dry-run display, exec.CommandContext — only ever sees an argv
// and never has to branch on the original TOML shape.
type CommandSpec []string

// UnmarshalTOML implements toml.Unmarshaler. BurntSushi/toml hands back the
// already-decoded value for the `command` key: a string, a []interface{} of
// strings, or something else entirely (a hard error).
func (c *CommandSpec) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		*c = CommandSpec{"sh", "-c", v}
		return nil
	case []interface{}:
		args := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("command: argument %d is %T, not a string", i, item)
			}
			args[i] = s
		}
		*c = CommandSpec(args)
		return nil
	default:
		return fmt.Errorf("command: must be a shell string or an array of strings, got %T", data)
	}
}

// HookDefinition is a single executable unit.
type HookDefinition struct {
	Name               string            `toml:"-"`
	Command            CommandSpec       `toml:"command"`
	Workdir            string            `toml:"workdir"`
	RunAtRoot          bool              `toml:"run_at_root"`
	Files              []string          `toml:"files"`
	Exclude            []string          `toml:"exclude"`
	RunAlways          bool              `toml:"run_always"`
	RequiresFiles      bool              `toml:"requires_files"`
	ModifiesRepository bool              `toml:"modifies_repository"`
	DependsOn          []string          `toml:"depends_on"`
	TimeoutSeconds     int               `toml:"timeout_seconds"`
	Env                map[string]string `toml:"env"`
	ExecutionType      string            `toml:"execution_type"`
	Description        string            `toml:"description"`

	// SourceDir is the directory of the config file that defined this hook;
	// the canonical base for relative Workdir resolution.
	SourceDir string `toml:"-"`
	// SourceFile is the full path to the config file that defined this hook.
	SourceFile string `toml:"-"`
}

// HookGroup is a named aggregation of hooks and/or nested groups.
type HookGroup struct {
	Name        string   `toml:"-"`
	Includes    []string `toml:"includes"`
	Execution   string   `toml:"execution"`
	Placeholder bool     `toml:"placeholder"`
}

// HookConfig is a parsed .peter-hook.toml file.
type HookConfig struct {
	Hooks   map[string]*HookDefinition `toml:"hooks"`
	Groups  map[string]*HookGroup      `toml:"groups"`
	Version string                     `toml:"version"`
	License string                     `toml:"license"`

	// Dir is the directory containing this config file.
	Dir string `toml:"-"`
	// Path is the full path to this config file.
	Path string `toml:"-"`
}

// ErrDeprecatedConfig is returned when a hooks.toml file is found outside
// the bypass commands (version, license).
type ErrDeprecatedConfig struct {
	Path string
}

func (e *ErrDeprecatedConfig) Error() string {
	return fmt.Sprintf(
		"%s uses the deprecated config filename; rename it to %s",
		e.Path, constants.ConfigFileName,
	)
}

// Load parses path into a HookConfig, filling in Name/SourceDir/SourceFile
// on every contained hook and group, and validating structural invariants.
// bypassCommand should be the invoked subcommand name; when it is "version"
// or "license", the deprecated-filename check is skipped.
func Load(path string, bypassCommand string) (*HookConfig, error) {
	base := filepath.Base(path)
	if base == constants.DeprecatedConfigFileName &&
		bypassCommand != constants.CommandVersion &&
		bypassCommand != constants.CommandLicense {
		return nil, &ErrDeprecatedConfig{Path: path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg HookConfig
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Path = path
	cfg.Dir = filepath.Dir(path)

	for name, hook := range cfg.Hooks {
		hook.Name = name
		hook.SourceDir = cfg.Dir
		hook.SourceFile = cfg.Path
		// Only an absent timeout_seconds gets the default; an explicit 0 is
		// left in place so Validate rejects it.
		if !md.IsDefined("hooks", name, "timeout_seconds") {
			hook.TimeoutSeconds = constants.DefaultTimeoutSeconds
		}
		if hook.ExecutionType == "" {
			hook.ExecutionType = constants.ExecutionStandard
		}
	}
	for name, group := range cfg.Groups {
		group.Name = name
		if group.Execution == "" {
			group.Execution = constants.ExecutionSequential
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural invariants that TOML decoding alone cannot
// enforce: non-empty commands, positive timeouts, and known execution
// enum values.
func (c *HookConfig) Validate() error {
	for name, hook := range c.Hooks {
		if len(hook.Command) == 0 {
			return fmt.Errorf("%s: hook %q has no command", c.Path, name)
		}
		if hook.TimeoutSeconds <= 0 {
			return fmt.Errorf("%s: hook %q has non-positive timeout_seconds", c.Path, name)
		}
		switch hook.ExecutionType {
		case constants.ExecutionStandard, constants.ExecutionOther:
		default:
			return fmt.Errorf("%s: hook %q has unknown execution_type %q", c.Path, name, hook.ExecutionType)
		}
	}
	for name, group := range c.Groups {
		switch group.Execution {
		case constants.ExecutionSequential, constants.ExecutionParallel:
		default:
			return fmt.Errorf("%s: group %q has unknown execution %q", c.Path, name, group.Execution)
		}
	}
	return nil
}

// Exists reports whether a .peter-hook.toml file is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, constants.ConfigFileName))
	return err == nil
}

// PathIn returns the canonical config file path for dir.
func PathIn(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName)
}
