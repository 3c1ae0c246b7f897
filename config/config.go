// Package config carries the runtime defaults the presentation layers feed
// into the statistics engine: target power, alpha, traffic split, and the
// per-metric default minimum detectable effect. The engine itself never
// reads configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/TalZucker/ab-optix/experiment"
)

const envPrefix = "aboptix"

type Config struct {
	v *viper.Viper
}

func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("target-power", experiment.DefaultPower)
	v.SetDefault("alpha", experiment.DefaultAlpha)
	v.SetDefault("control-traffic-share", experiment.DefaultControlShare)
	v.SetDefault("default-mde.cr", experiment.ConversionRate.DefaultMDE())
	v.SetDefault("default-mde.epc", experiment.EarningsPerUnit.DefaultMDE())
	v.SetDefault("sim-trials", 2000)
	v.SetDefault("sim-seed", 0)
	v.SetDefault("debug", false)

	return &Config{v: v}
}

// LoadFile merges settings from a YAML config file.
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.MergeInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Set overrides a single setting, e.g. from a shell "set" command.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

func (c *Config) TargetPower() float64 {
	return c.v.GetFloat64("target-power")
}

func (c *Config) Alpha() float64 {
	return c.v.GetFloat64("alpha")
}

func (c *Config) ControlTrafficShare() float64 {
	return c.v.GetFloat64("control-traffic-share")
}

// DefaultMDE returns the configured fallback minimum detectable effect for
// a metric family.
func (c *Config) DefaultMDE(m experiment.MetricType) float64 {
	return c.v.GetFloat64("default-mde." + m.String())
}

func (c *Config) SimTrials() int {
	return c.v.GetInt("sim-trials")
}

func (c *Config) SimSeed() uint64 {
	return c.v.GetUint64("sim-seed")
}

func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// AllSettings returns the effective settings for display.
func (c *Config) AllSettings() map[string]any {
	return c.v.AllSettings()
}
