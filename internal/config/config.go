// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/factory"
	"github.com/xkilldash9x/domunify/pkg/persist"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

// EnvPrefix prefixes every environment override, e.g. DOMUNIFY_LOGGER_LEVEL.
const EnvPrefix = "DOMUNIFY"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Factory() FactoryConfig
	Binder() BinderConfig
	Form() FormConfig
	Sync() SyncConfig
	Save() SaveConfig
	Download() DownloadConfig
	KV() KVConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	FactoryCfg  FactoryConfig  `mapstructure:"factory" yaml:"factory"`
	BinderCfg   BinderConfig   `mapstructure:"binder" yaml:"binder"`
	FormCfg     FormConfig     `mapstructure:"form" yaml:"form"`
	SyncCfg     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	SaveCfg     SaveConfig     `mapstructure:"save" yaml:"save"`
	DownloadCfg DownloadConfig `mapstructure:"download" yaml:"download"`
	KVCfg       KVConfig       `mapstructure:"kv" yaml:"kv"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Factory() FactoryConfig   { return c.FactoryCfg }
func (c *Config) Binder() BinderConfig     { return c.BinderCfg }
func (c *Config) Form() FormConfig         { return c.FormCfg }
func (c *Config) Sync() SyncConfig         { return c.SyncCfg }
func (c *Config) Save() SaveConfig         { return c.SaveCfg }
func (c *Config) Download() DownloadConfig { return c.DownloadCfg }
func (c *Config) KV() KVConfig             { return c.KVCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// FactoryConfig tunes element construction.
type FactoryConfig struct {
	MaxDepth      int      `mapstructure:"max_depth" yaml:"max_depth"`
	Sanitize      bool     `mapstructure:"sanitize" yaml:"sanitize"`
	FallbackTag   string   `mapstructure:"fallback_tag" yaml:"fallback_tag"`
	ForbiddenTags []string `mapstructure:"forbidden_tags" yaml:"forbidden_tags"`
}

// Options converts the section into factory options.
func (f FactoryConfig) Options() factory.Options {
	return factory.Options{
		MaxDepth:      f.MaxDepth,
		Sanitize:      f.Sanitize,
		FallbackTag:   f.FallbackTag,
		ForbiddenTags: append([]string(nil), f.ForbiddenTags...),
	}
}

// BinderConfig names the binding marker attributes.
type BinderConfig struct {
	KeyAttr       string `mapstructure:"key_attr" yaml:"key_attr"`
	ContainerAttr string `mapstructure:"container_attr" yaml:"container_attr"`
}

// Attributes converts the section into binder attributes.
func (b BinderConfig) Attributes() binder.Attributes {
	return binder.Attributes{Key: b.KeyAttr, Container: b.ContainerAttr}
}

// FormConfig holds the defaults of form-mode collection.
type FormConfig struct {
	Selector         string `mapstructure:"selector" yaml:"selector"`
	KeyAttr          string `mapstructure:"key_attr" yaml:"key_attr"`
	IncludeDisabled  bool   `mapstructure:"include_disabled" yaml:"include_disabled"`
	ExcludeEmpty     bool   `mapstructure:"exclude_empty" yaml:"exclude_empty"`
	IncludeButtons   bool   `mapstructure:"include_buttons" yaml:"include_buttons"`
	HandleDuplicates string `mapstructure:"handle_duplicates" yaml:"handle_duplicates"`
	FileHandling     string `mapstructure:"file_handling" yaml:"file_handling"`
}

// Options converts the section into binder form options.
func (f FormConfig) Options() binder.FormOptions {
	return binder.FormOptions{
		Selector:         f.Selector,
		KeyAttr:          f.KeyAttr,
		IncludeDisabled:  f.IncludeDisabled,
		ExcludeEmpty:     f.ExcludeEmpty,
		IncludeButtons:   f.IncludeButtons,
		HandleDuplicates: binder.DuplicatePolicy(f.HandleDuplicates),
		FileHandling:     binder.FileHandling(f.FileHandling),
	}
}

// SyncConfig holds the defaults for storage sync.
type SyncConfig struct {
	Storage  string        `mapstructure:"storage" yaml:"storage"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Mode     string        `mapstructure:"mode" yaml:"mode"`
}

// Options converts the section into cursor sync defaults.
func (s SyncConfig) Options() unify.SyncOptions {
	return unify.SyncOptions{Storage: s.Storage, Debounce: s.Debounce, Mode: s.Mode}
}

// SaveConfig holds the defaults for structured save.
type SaveConfig struct {
	Filename string `mapstructure:"filename" yaml:"filename"`
	Mode     string `mapstructure:"mode" yaml:"mode"`
	Format   string `mapstructure:"format" yaml:"format"`
	Indent   int    `mapstructure:"indent" yaml:"indent"`
}

// Options converts the section into cursor save options.
func (s SaveConfig) Options() unify.SaveOptions {
	return unify.SaveOptions{
		Filename: s.Filename,
		Mode:     s.Mode,
		Format:   persist.Format(s.Format),
		Indent:   s.Indent,
	}
}

// DownloadConfig places downloaded files.
type DownloadConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// KVConfig connects the Postgres-backed key-value store.
type KVConfig struct {
	DSN     string        `mapstructure:"dsn" yaml:"dsn"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Enabled reports whether a DSN is configured.
func (k KVConfig) Enabled() bool { return strings.TrimSpace(k.DSN) != "" }

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "domunify")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Factory --
	v.SetDefault("factory.max_depth", factory.DefaultMaxDepth)
	v.SetDefault("factory.sanitize", true)
	v.SetDefault("factory.fallback_tag", "div")
	v.SetDefault("factory.forbidden_tags", factory.DefaultForbiddenTags)

	// -- Binder --
	attrs := binder.DefaultAttributes()
	v.SetDefault("binder.key_attr", attrs.Key)
	v.SetDefault("binder.container_attr", attrs.Container)

	// -- Form --
	form := binder.DefaultFormOptions()
	v.SetDefault("form.selector", form.Selector)
	v.SetDefault("form.key_attr", form.KeyAttr)
	v.SetDefault("form.include_disabled", false)
	v.SetDefault("form.exclude_empty", false)
	v.SetDefault("form.include_buttons", false)
	v.SetDefault("form.handle_duplicates", string(form.HandleDuplicates))
	v.SetDefault("form.file_handling", string(form.FileHandling))

	// -- Sync --
	v.SetDefault("sync.storage", "local")
	v.SetDefault("sync.debounce", "300ms")
	v.SetDefault("sync.mode", "nested")

	// -- Save --
	v.SetDefault("save.filename", "data.json")
	v.SetDefault("save.mode", "nested")
	v.SetDefault("save.format", string(persist.FormatJSON))
	v.SetDefault("save.indent", 2)

	// -- Download --
	v.SetDefault("download.dir", ".")

	// -- KV --
	v.SetDefault("kv.dsn", "")
	v.SetDefault("kv.timeout", "10s")
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The DSN carries credentials, so it also has a dedicated variable.
	_ = v.BindEnv("kv.dsn", EnvPrefix+"_KV_DSN", "DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings library code cannot default on its own.
func (c *Config) Validate() error {
	if c.FactoryCfg.MaxDepth <= 0 {
		return fmt.Errorf("factory.max_depth must be a positive integer")
	}
	if c.BinderCfg.KeyAttr != "" && c.BinderCfg.KeyAttr == c.BinderCfg.ContainerAttr {
		return fmt.Errorf("binder.key_attr and binder.container_attr must differ")
	}
	switch binder.DuplicatePolicy(c.FormCfg.HandleDuplicates) {
	case "", binder.DuplicateArray, binder.DuplicateFirst, binder.DuplicateLast, binder.DuplicateError:
	default:
		return fmt.Errorf("form.handle_duplicates must be one of array, first, last, error; got %q", c.FormCfg.HandleDuplicates)
	}
	switch binder.FileHandling(c.FormCfg.FileHandling) {
	case "", binder.FileNames, binder.FileMeta, binder.FileNone:
	default:
		return fmt.Errorf("form.file_handling must be one of names, meta, none; got %q", c.FormCfg.FileHandling)
	}
	switch persist.Format(c.SaveCfg.Format) {
	case "", persist.FormatJSON, persist.FormatCSV, persist.FormatText, persist.FormatYAML:
	default:
		return fmt.Errorf("save.format must be one of json, csv, text, yaml; got %q", c.SaveCfg.Format)
	}
	switch c.SaveCfg.Mode {
	case "", "flat", "nested", "form":
	default:
		return fmt.Errorf("save.mode must be one of flat, nested, form; got %q", c.SaveCfg.Mode)
	}
	if c.SyncCfg.Mode != "" && c.SyncCfg.Mode != "flat" && c.SyncCfg.Mode != "nested" {
		return fmt.Errorf("sync.mode must be flat or nested; got %q", c.SyncCfg.Mode)
	}
	if c.KVCfg.Enabled() && c.KVCfg.Timeout <= 0 {
		return fmt.Errorf("kv.timeout must be positive when kv.dsn is set")
	}
	return nil
}
