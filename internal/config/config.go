package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/fsroute/internal/errors"
)

const (
	// ConfigFileName is the default name of the configuration file.
	ConfigFileName = "watcher_config.yaml"

	// FolderSuffix is appended to a framework tag to form its folder key.
	FolderSuffix = "_folder"

	// DefaultAddr is the default serve address.
	DefaultAddr = ":8000"

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"

	// DefaultStreamPath is where the stream websocket gateway is exposed.
	DefaultStreamPath = "/stream"

	DefaultInputChannel  = "input_channel"
	DefaultOutputChannel = "output_channel"
)

// frameworkAliases maps alternative framework tags to the canonical ones.
var frameworkAliases = map[string]string{
	"fastapi":    "http",
	"faststream": "stream",
	"typer":      "cli",
}

// CanonicalFramework returns the canonical tag for an alias
// ("fastapi" → "http", "faststream" → "stream", "typer" → "cli"). Other
// tags are returned unchanged.
func CanonicalFramework(tag string) string {
	if canonical, ok := frameworkAliases[tag]; ok {
		return canonical
	}
	return tag
}

// Environment variables that override the file.
const (
	EnvAddr          = "FSROUTE_ADDR"
	EnvStrict        = "FSROUTE_STRICT"
	EnvInputChannel  = "INPUT_CHANNEL"
	EnvOutputChannel = "OUTPUT_CHANNEL"
)

// Config represents watcher_config.yaml.
type Config struct {
	// Package is the path segment module paths are anchored at.
	Package string `yaml:"package,omitempty"`

	// Handler is the export bound from every route module.
	Handler string `yaml:"handler,omitempty"`

	// Extension is the route source file extension.
	Extension string `yaml:"extension,omitempty"`

	// Strict aborts a scan on the first per-file error.
	Strict bool `yaml:"strict,omitempty"`

	// Sanitize rewrites route segments to [A-Za-z0-9{}_]. Default true.
	Sanitize *bool `yaml:"sanitize,omitempty"`

	// Watch re-scans route folders when files change.
	Watch bool `yaml:"watch,omitempty"`

	// Debounce is the quiet period before a re-scan (e.g. "100ms").
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Ignore lists file and directory patterns to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
	Stream StreamConfig `yaml:"stream,omitempty"`

	// Folders holds every other top-level key; route roots are the
	// "<framework>_folder" entries.
	Folders map[string]string `yaml:",inline"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr        string `yaml:"addr,omitempty"`
	MetricsPath string `yaml:"metrics_path,omitempty"`
	StreamPath  string `yaml:"stream_path,omitempty"`
}

// StreamConfig names the channels of the demo stream routes.
type StreamConfig struct {
	InputChannel  string `yaml:"input_channel,omitempty"`
	OutputChannel string `yaml:"output_channel,omitempty"`
}

// New returns a config with defaults and no folders.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads configuration from path, then applies environment
// overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("E101").
				WithLocation(path).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("E102").WithLocation(path).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.FromError(err, "E102").WithLocation(path)
	}
	cfg.configPath = path

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML config data and fills in defaults. It does not read
// the environment.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotenv loads .env from dir into the process environment. Variables
// already set win. A missing file is not an error.
func LoadDotenv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("E104").WithLocation(path).Wrap(err)
	}
	return nil
}

// ApplyEnv overrides file values with FSROUTE_ADDR, FSROUTE_STRICT,
// INPUT_CHANNEL and OUTPUT_CHANNEL when set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E104").
				WithDetail(EnvStrict + " must be a boolean").
				Wrap(err)
		}
		c.Strict = strict
	}
	if v := os.Getenv(EnvInputChannel); v != "" {
		c.Stream.InputChannel = v
	}
	if v := os.Getenv(EnvOutputChannel); v != "" {
		c.Stream.OutputChannel = v
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Package == "" {
		c.Package = "app"
	}
	if c.Handler == "" {
		c.Handler = "router"
	}
	if c.Extension == "" {
		c.Extension = ".go"
	}
	if c.Sanitize == nil {
		on := true
		c.Sanitize = &on
	}
	if c.Debounce <= 0 {
		c.Debounce = 100 * time.Millisecond
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.StreamPath == "" {
		c.Server.StreamPath = DefaultStreamPath
	}

	if c.Stream.InputChannel == "" {
		c.Stream.InputChannel = DefaultInputChannel
	}
	if c.Stream.OutputChannel == "" {
		c.Stream.OutputChannel = DefaultOutputChannel
	}
}

// SanitizeEnabled reports whether route segments are sanitized.
func (c *Config) SanitizeEnabled() bool {
	return c.Sanitize == nil || *c.Sanitize
}

// Folder returns the routes root for framework, resolved against the
// config file's directory. The folder may be keyed by the canonical tag or
// any of its aliases ("http_folder" or "fastapi_folder").
func (c *Config) Folder(framework string) (string, error) {
	canonical := CanonicalFramework(framework)
	keys := []string{canonical + FolderSuffix}
	for alias, fw := range frameworkAliases {
		if fw == canonical {
			keys = append(keys, alias+FolderSuffix)
		}
	}

	for _, key := range keys {
		if folder := strings.TrimSpace(c.Folders[key]); folder != "" {
			return c.resolvePath(folder), nil
		}
	}
	return "", errors.New("E103").
		WithLocation(c.configPath).
		WithDetail("No " + keys[0] + " key in the config file.")
}

// Frameworks returns the canonical framework tags that have a folder
// configured, in sorted order.
func (c *Config) Frameworks() []string {
	seen := make(map[string]bool)
	var out []string
	for key, value := range c.Folders {
		tag, ok := strings.CutSuffix(key, FolderSuffix)
		if !ok || tag == "" || strings.TrimSpace(value) == "" {
			continue
		}
		if fw := CanonicalFramework(tag); !seen[fw] {
			seen[fw] = true
			out = append(out, fw)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Config) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindConfig walks up from startDir to the first directory containing
// watcher_config.yaml and returns the file path.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
