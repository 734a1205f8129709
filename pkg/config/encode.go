package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// TOML renders the effective configuration in the same layout as the
// defaults file. Durations are written as strings so the output loads
// back unchanged.
func (c *Config) TOML() (string, error) {
	doc := map[string]interface{}{
		"display": map[string]interface{}{
			"tick_interval": c.Display.TickInterval.String(),
			"grace_period":  c.Display.GracePeriod.String(),
			"color":         c.Display.Color,
			"unicode":       c.Display.Unicode,
			"theme":         c.Display.Theme,
		},
		"tasks": map[string]interface{}{
			"max_concurrent":   c.Tasks.MaxConcurrent,
			"backpressure":     c.Tasks.Backpressure,
			"channel_capacity": c.Tasks.ChannelCapacity,
		},
		"factory": map[string]interface{}{
			"policy":       c.Factory.Policy,
			"default_mode": c.Factory.DefaultMode,
		},
		"persistence": map[string]interface{}{
			"enabled":    c.Persistence.Enabled,
			"dir":        c.Persistence.Dir,
			"save_every": c.Persistence.SaveEvery,
		},
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigInvalid, "failed to encode configuration")
	}
	return string(out), nil
}
