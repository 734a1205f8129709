package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/factory"
	"github.com/arthur-debert/tasklines/pkg/task"
)

// AppName names the XDG directories used for config and state
const AppName = "tasklines"

// Config is the complete configuration
type Config struct {
	Display     Display     `koanf:"display"`
	Tasks       Tasks       `koanf:"tasks"`
	Factory     Factory     `koanf:"factory"`
	Persistence Persistence `koanf:"persistence"`
}

// Display controls the renderer
type Display struct {
	TickInterval time.Duration `koanf:"tick_interval"`
	GracePeriod  time.Duration `koanf:"grace_period"`
	Color        string        `koanf:"color"`
	Unicode      string        `koanf:"unicode"`
	Theme        string        `koanf:"theme"`
}

// Tasks controls the task manager
type Tasks struct {
	MaxConcurrent   int    `koanf:"max_concurrent"`
	Backpressure    string `koanf:"backpressure"`
	ChannelCapacity int    `koanf:"channel_capacity"`
}

// Factory controls mode creation
type Factory struct {
	Policy      string `koanf:"policy"`
	DefaultMode string `koanf:"default_mode"`
}

// Persistence controls saving task state between runs
type Persistence struct {
	Enabled   bool   `koanf:"enabled"`
	Dir       string `koanf:"dir"`
	SaveEvery int    `koanf:"save_every"`
}

// DefaultConfigPath is where the user config file is looked up
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultStateDir is where task state is persisted when no dir is set
func DefaultStateDir() string {
	return filepath.Join(xdg.StateHome, AppName, "tasks")
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func invalid(key string, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrConfigInvalid, format, args...).WithDetail("key", key)
}

// Validate checks every value that the rest of the library would reject
func (c *Config) Validate() error {
	switch {
	case c.Display.TickInterval <= 0:
		return invalid("display.tick_interval", "tick interval must be positive, got %s", c.Display.TickInterval)
	case c.Display.GracePeriod < 0:
		return invalid("display.grace_period", "grace period must not be negative, got %s", c.Display.GracePeriod)
	case !oneOf(c.Display.Color, "auto", "always", "never"):
		return invalid("display.color", "color must be auto, always or never, got %q", c.Display.Color)
	case !oneOf(c.Display.Unicode, "auto", "always", "never"):
		return invalid("display.unicode", "unicode must be auto, always or never, got %q", c.Display.Unicode)
	case c.Tasks.MaxConcurrent < 0:
		return invalid("tasks.max_concurrent", "max concurrent must not be negative, got %d", c.Tasks.MaxConcurrent)
	case c.Tasks.ChannelCapacity < 1:
		return invalid("tasks.channel_capacity", "channel capacity must be at least 1, got %d", c.Tasks.ChannelCapacity)
	case c.Persistence.SaveEvery < 1:
		return invalid("persistence.save_every", "save_every must be at least 1, got %d", c.Persistence.SaveEvery)
	}
	if _, err := task.ParseBackpressure(c.Tasks.Backpressure); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "tasks.backpressure")
	}
	if _, err := factory.ParsePolicy(c.Factory.Policy); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "factory.policy")
	}
	if _, err := factory.ParseDescriptor(c.Factory.DefaultMode); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "factory.default_mode")
	}
	return nil
}

// Policy returns the parsed factory policy
func (c *Config) Policy() factory.Policy {
	p, err := factory.ParsePolicy(c.Factory.Policy)
	if err != nil {
		return factory.Strict
	}
	return p
}

// Backpressure returns the parsed backpressure policy
func (c *Config) Backpressure() task.Backpressure {
	b, err := task.ParseBackpressure(c.Tasks.Backpressure)
	if err != nil {
		return task.Queue
	}
	return b
}

// DefaultDescriptor returns the parsed default mode
func (c *Config) DefaultDescriptor() factory.Descriptor {
	d, err := factory.ParseDescriptor(c.Factory.DefaultMode)
	if err != nil {
		return factory.WindowWithTitle(5, "")
	}
	return d
}

// StateDir is the persistence directory with the XDG default applied
func (c *Config) StateDir() string {
	if c.Persistence.Dir != "" {
		return c.Persistence.Dir
	}
	return DefaultStateDir()
}
