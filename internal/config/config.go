package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/wcdk/internal/errors"
)

const (
	// ConfigName is the configuration file name without extension.
	ConfigName = "wcdk"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "WCDK"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultSourceDir is the default component source directory.
	DefaultSourceDir = "components"

	// DefaultExtension is the component file extension.
	DefaultExtension = ".wcdk"

	// DefaultDebounce is the default file watcher debounce.
	DefaultDebounce = 100 * time.Millisecond
)

// Config represents the complete wcdk configuration.
type Config struct {
	// Name is the project name.
	Name string `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`

	Source  SourceConfig  `mapstructure:"source" json:"source" yaml:"source"`
	Dev     DevConfig     `mapstructure:"dev" json:"dev" yaml:"dev"`
	Build   BuildConfig   `mapstructure:"build" json:"build" yaml:"build"`
	Publish PublishConfig `mapstructure:"publish" json:"publish" yaml:"publish"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string

	// root is the directory relative paths are resolved against.
	root string
}

// SourceConfig locates component sources.
type SourceConfig struct {
	Dir       string `mapstructure:"dir" json:"dir" yaml:"dir"`
	Extension string `mapstructure:"extension" json:"extension" yaml:"extension"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	Host      string        `mapstructure:"host" json:"host" yaml:"host"`
	Port      int           `mapstructure:"port" json:"port" yaml:"port"`
	HotReload bool          `mapstructure:"hot_reload" json:"hot_reload" yaml:"hot_reload"`
	Debounce  time.Duration `mapstructure:"debounce" json:"debounce" yaml:"debounce"`
}

// BuildConfig contains build settings.
type BuildConfig struct {
	// Output is the directory bundle.cbor and manifest.json are written to.
	Output string `mapstructure:"output" json:"output" yaml:"output"`
}

// PublishConfig locates the S3 bucket builds are published to.
type PublishConfig struct {
	Bucket   string `mapstructure:"bucket" json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `mapstructure:"prefix" json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `mapstructure:"region" json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// PathStyle forces path-style addressing, needed by most S3-compatible stores.
	PathStyle bool `mapstructure:"path_style" json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Source: SourceConfig{
			Dir:       DefaultSourceDir,
			Extension: DefaultExtension,
		},
		Dev: DevConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			HotReload: true,
			Debounce:  DefaultDebounce,
		},
		Build: BuildConfig{
			Output: DefaultOutput,
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// newViper returns a viper instance seeded with every default so that
// environment overrides apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	d := New()
	v.SetDefault("name", d.Name)
	v.SetDefault("source.dir", d.Source.Dir)
	v.SetDefault("source.extension", d.Source.Extension)
	v.SetDefault("dev.host", d.Dev.Host)
	v.SetDefault("dev.port", d.Dev.Port)
	v.SetDefault("dev.hot_reload", d.Dev.HotReload)
	v.SetDefault("dev.debounce", d.Dev.Debounce)
	v.SetDefault("build.output", d.Build.Output)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.path_style", d.Publish.PathStyle)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads wcdk.{yaml,json,toml} from dir, applying environment overrides.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(dir)
	v.SetConfigName(ConfigName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.New("W041").
				WithDetail("No wcdk.yaml, wcdk.json or wcdk.toml found in " + dir).
				Wrap(err)
		}
		return nil, errors.New("W041").Wrap(err)
	}
	return decode(v, v.ConfigFileUsed(), dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New("W041").Wrap(err)
	}
	return decode(v, path, filepath.Dir(path))
}

// LoadOrDefault behaves like Load but falls back to defaults plus environment
// overrides when dir has no configuration file.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err == nil {
		return cfg, nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !stderrors.As(err, &notFound) {
		return nil, err
	}
	return decode(newViper(), "", dir)
}

func decode(v *viper.Viper, path, root string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("W040").
			WithDetail("Failed to decode configuration: " + err.Error())
	}
	cfg.configPath = path
	cfg.root = root
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("W040").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Dev.Debounce < 0 {
		return errors.New("W040").
			WithDetail("dev.debounce must not be negative")
	}
	if !strings.HasPrefix(c.Source.Extension, ".") {
		return errors.New("W040").
			WithDetail(fmt.Sprintf("source.extension %q must start with '.'", c.Source.Extension))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("W040").WithDetail(err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("W040").
			WithDetail(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Root returns the directory relative paths resolve against.
func (c *Config) Root() string {
	return c.root
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// SourcePath returns the component source directory.
func (c *Config) SourcePath() string {
	return c.resolve(c.Source.Dir)
}

// OutputPath returns the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.root == "" {
		return p
	}
	return filepath.Join(c.root, p)
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}
