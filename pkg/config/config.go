package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/siptools/sipcli/pkg/logger"
)

// Env carries SIPCLI_* environment overrides. Config and Instance are
// consumed by the CLI entry point before parsing; the rest overlay the
// active instance section.
type Env struct {
	Config      string `env:"SIPCLI_CONFIG"`
	Instance    string `env:"SIPCLI_INSTANCE"`
	URL         string `env:"SIPCLI_URL"`
	HistoryFile string `env:"SIPCLI_HISTORY_FILE"`
	LogLevel    string `env:"SIPCLI_LOG_LEVEL"`
	DatabaseURL string `env:"SIPCLI_DATABASE_URL"`
	ModulesDir  string `env:"SIPCLI_MODULES_DIR"`
}

// LoadEnv reads the SIPCLI_* environment overrides.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return e, nil
}

func (e Env) overlay() map[string]string {
	out := map[string]string{}
	for key, val := range map[string]string{
		"url":          e.URL,
		"history_file": e.HistoryFile,
		"log_level":    e.LogLevel,
		"database_url": e.DatabaseURL,
		"modules_dir":  e.ModulesDir,
	} {
		if val != "" {
			out[key] = val
		}
	}
	return out
}

// Config holds layered instance-profile configuration. Lookup order:
// CLI custom options, environment overrides, the current instance
// section, built-in defaults.
type Config struct {
	defaults  map[string]string
	instances map[string]map[string]string
	envVals   map[string]string
	custom    map[string]string
	current   string
	path      string
}

func New() *Config {
	return &Config{
		defaults:  defaultValues(),
		instances: map[string]map[string]string{},
		envVals:   map[string]string{},
		custom:    map[string]string{},
		current:   DefaultInstance,
	}
}

// Parse loads the TOML file at path. An empty path walks the default
// search list; finding no file at all is not an error.
func (c *Config) Parse(path string) error {
	if path == "" {
		for _, candidate := range DefaultPaths() {
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		logger.DebugC("config", "no config file found, using defaults")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw map[string]map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	for name, section := range raw {
		inst := make(map[string]string, len(section))
		for key, val := range section {
			inst[key] = stringify(val)
		}
		c.instances[name] = inst
	}
	c.path = path
	logger.DebugCF("config", "using config file", map[string]any{"path": path})
	return nil
}

// ApplyEnv installs the environment override layer.
func (c *Config) ApplyEnv(e Env) {
	c.envVals = e.overlay()
}

// SetCustomOptions installs the CLI key=value override layer.
func (c *Config) SetCustomOptions(opts map[string]string) {
	if opts == nil {
		opts = map[string]string{}
	}
	c.custom = opts
}

// Get returns the value for key under the current instance, or ""
// when the key is unknown.
func (c *Config) Get(key string) string {
	if v, ok := c.custom[key]; ok {
		return v
	}
	if v, ok := c.envVals[key]; ok {
		return v
	}
	if inst, ok := c.instances[c.current]; ok {
		if v, ok := inst[key]; ok {
			return v
		}
	}
	return c.defaults[key]
}

// GetInt returns the integer value for key, or fallback when the value
// is absent or malformed.
func (c *Config) GetInt(key string, fallback int) int {
	v := c.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.WarnCF("config", "ignoring non-numeric value", map[string]any{"key": key, "value": v})
		return fallback
	}
	return n
}

// GetStrings splits a comma-separated value into its trimmed items.
func (c *Config) GetStrings(key string) []string {
	v := c.Get(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Exists(key string) bool {
	return c.Get(key) != ""
}

func (c *Config) HasInstance(name string) bool {
	if name == DefaultInstance {
		return true
	}
	_, ok := c.instances[name]
	return ok
}

// SetInstance makes name the live current instance. The caller is
// expected to have validated it with HasInstance.
func (c *Config) SetInstance(name string) {
	c.current = name
}

func (c *Config) CurrentInstance() string {
	return c.current
}

// InstanceNames returns the configured instance names, default first.
func (c *Config) InstanceNames() []string {
	names := []string{DefaultInstance}
	for name := range c.instances {
		if name != DefaultInstance {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])
	return names
}

// Path returns the configuration file actually loaded, "" when none.
func (c *Config) Path() string {
	return c.path
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
