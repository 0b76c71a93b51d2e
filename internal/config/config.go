// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Layout() LayoutConfig
	Managers() ManagersConfig
	App() AppConfig

	// Layout Setters
	SetViewport(width, height float32)
	SetShapingWorkers(n int)

	// Manager Setters
	SetIFrameEdgeThreshold(px float32)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	LayoutCfg   LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	ManagersCfg ManagersConfig `mapstructure:"managers" yaml:"managers"`
	AppCfg      AppConfig      `mapstructure:"app" yaml:"app"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Layout() LayoutConfig     { return c.LayoutCfg }
func (c *Config) Managers() ManagersConfig { return c.ManagersCfg }
func (c *Config) App() AppConfig           { return c.AppCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetViewport(width, height float32) {
	c.LayoutCfg.ViewportWidth = width
	c.LayoutCfg.ViewportHeight = height
}
func (c *Config) SetShapingWorkers(n int)           { c.LayoutCfg.ShapingWorkers = n }
func (c *Config) SetIFrameEdgeThreshold(px float32) { c.ManagersCfg.IFrameEdgeThreshold = px }

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

// LayoutConfig tunes the styling and layout pipeline.
type LayoutConfig struct {
	ViewportWidth     float32 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    float32 `mapstructure:"viewport_height" yaml:"viewport_height"`
	HiDPIFactor       float32 `mapstructure:"hidpi_factor" yaml:"hidpi_factor"`
	DefaultFontSize   float32 `mapstructure:"default_font_size" yaml:"default_font_size"`
	DefaultFontFamily string  `mapstructure:"default_font_family" yaml:"default_font_family"`
	// ShapingWorkers bounds the goroutines used to shape words in parallel.
	ShapingWorkers int `mapstructure:"shaping_workers" yaml:"shaping_workers"`
}

// ManagersConfig configures the interactive state managers.
type ManagersConfig struct {
	IFrameEdgeThreshold   float32       `mapstructure:"iframe_edge_threshold" yaml:"iframe_edge_threshold"`
	MaxUndoHistory        int           `mapstructure:"max_undo_history" yaml:"max_undo_history"`
	MaxRedoHistory        int           `mapstructure:"max_redo_history" yaml:"max_redo_history"`
	ScrollDefaultDuration time.Duration `mapstructure:"scroll_default_duration" yaml:"scroll_default_duration"`
	ScrollEasing          string        `mapstructure:"scroll_easing" yaml:"scroll_easing"`
}

// AppConfig holds defaults for the application frame loop and new windows.
type AppConfig struct {
	MaxFPS int          `mapstructure:"max_fps" yaml:"max_fps"`
	Window WindowConfig `mapstructure:"window" yaml:"window"`
}

// WindowConfig describes the default creation options for a window.
type WindowConfig struct {
	Title       string  `mapstructure:"title" yaml:"title"`
	Width       float32 `mapstructure:"width" yaml:"width"`
	Height      float32 `mapstructure:"height" yaml:"height"`
	Theme       string  `mapstructure:"theme" yaml:"theme"`
	Decorations string  `mapstructure:"decorations" yaml:"decorations"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
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
	v.SetDefault("logger.service_name", "boxkit")
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

	// -- Layout --
	v.SetDefault("layout.viewport_width", 800.0)
	v.SetDefault("layout.viewport_height", 600.0)
	v.SetDefault("layout.hidpi_factor", 1.0)
	v.SetDefault("layout.default_font_size", 16.0)
	v.SetDefault("layout.default_font_family", "sans-serif")
	v.SetDefault("layout.shaping_workers", 4)

	// -- Managers --
	v.SetDefault("managers.iframe_edge_threshold", 200.0)
	v.SetDefault("managers.max_undo_history", 10)
	v.SetDefault("managers.max_redo_history", 10)
	v.SetDefault("managers.scroll_default_duration", "150ms")
	v.SetDefault("managers.scroll_easing", "ease-out")

	// -- App --
	v.SetDefault("app.max_fps", 60)
	v.SetDefault("app.window.title", "boxkit")
	v.SetDefault("app.window.width", 800.0)
	v.SetDefault("app.window.height", 600.0)
	v.SetDefault("app.window.theme", "light")
	v.SetDefault("app.window.decorations", "normal")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LayoutCfg.Validate(); err != nil {
		return fmt.Errorf("layout configuration invalid: %w", err)
	}
	if err := c.ManagersCfg.Validate(); err != nil {
		return fmt.Errorf("managers configuration invalid: %w", err)
	}
	if c.AppCfg.MaxFPS <= 0 {
		return fmt.Errorf("app.max_fps must be a positive integer")
	}
	return nil
}

// Validate checks the layout configuration.
func (l *LayoutConfig) Validate() error {
	if l.ViewportWidth < 0 || l.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions must not be negative")
	}
	if l.HiDPIFactor <= 0 {
		return fmt.Errorf("hidpi_factor must be greater than 0")
	}
	if l.DefaultFontSize <= 0 {
		return fmt.Errorf("default_font_size must be greater than 0")
	}
	if l.ShapingWorkers <= 0 {
		return fmt.Errorf("shaping_workers must be a positive integer")
	}
	return nil
}

// Validate checks the state manager configuration.
func (m *ManagersConfig) Validate() error {
	if m.IFrameEdgeThreshold < 0 {
		return fmt.Errorf("iframe_edge_threshold must not be negative")
	}
	if m.MaxUndoHistory <= 0 || m.MaxRedoHistory <= 0 {
		return fmt.Errorf("max_undo_history and max_redo_history must be positive")
	}
	if m.ScrollDefaultDuration < 0 {
		return fmt.Errorf("scroll_default_duration must not be negative")
	}
	switch m.ScrollEasing {
	case "linear", "ease-out", "ease-in-out":
	default:
		return fmt.Errorf("unknown scroll_easing %q", m.ScrollEasing)
	}
	return nil
}
