package config

import "strings"

// MetricsConfig controls StatsD emission of auth and session metrics.
// Variables are read under the METRICS_ prefix.
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED"     envDefault:"false"`
	Addr    string `env:"STATSD_ADDR" envDefault:"127.0.0.1:8125"`
	Prefix  string `env:"PREFIX"      envDefault:"estate"`
	// Tags are attached to every metric, e.g. METRICS_TAGS=env:prod,region:eu.
	Tags map[string]string `env:"TAGS"`
}

// Sanitize trims inputs. An empty address turns metrics off.
func (c *MetricsConfig) Sanitize() {
	c.Addr = strings.TrimSpace(c.Addr)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	if c.Prefix == "" {
		c.Prefix = "estate"
	}
	if c.Addr == "" {
		c.Enabled = false
	}
}

// Active reports whether a StatsD client should be dialed.
func (c MetricsConfig) Active() bool { return c.Enabled && c.Addr != "" }
