// Package config resolves where the compositor socket lives and how clients talk to it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvSocket names the variable the compositor exports with its IPC socket path.
const EnvSocket = "WAYFIRE_SOCKET"

// ErrSocketNotSet means there is no compositor endpoint to talk to.
var ErrSocketNotSet = errors.New("config: " + EnvSocket + " environment variable not set")

// Config is the resolved client configuration.
type Config struct {
	SocketPath string
	LogLevel   string
	// Timeout bounds each call when non-zero. A call that times out leaves the
	// connection unusable.
	Timeout time.Duration
	// Rate caps calls per second when non-zero.
	Rate  float64
	Burst int
	// MetricsAddr, when set, is where the CLI serves Prometheus metrics.
	MetricsAddr string
}

type option struct {
	Key     string
	Default any
	Comment string
}

func options() []option {
	return []option{
		{Key: "socket", Default: "", Comment: "Path of the compositor IPC socket (env " + EnvSocket + ")"},
		{Key: "log_level", Default: "warn", Comment: "debug|info|warn|error|off"},
		{Key: "timeout", Default: time.Duration(0), Comment: "Per-call timeout, 0 disables"},
		{Key: "rate", Default: 0.0, Comment: "Maximum calls per second, 0 disables"},
		{Key: "burst", Default: 1, Comment: "Calls allowed back to back before rate limiting applies"},
		{Key: "metrics_addr", Default: "", Comment: "host:port for the /metrics endpoint, empty disables"},
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// A config file is only read when one was set on v upstream.
func Load(v *viper.Viper) (Config, error) {
	for _, o := range options() {
		v.SetDefault(o.Key, o.Default)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The socket variable is owned by the compositor, so it is bound verbatim;
	// everything else lives under WFCTL_*.
	if err := v.BindEnv("socket", EnvSocket); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix("wfctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		SocketPath: strings.TrimSpace(v.GetString("socket")),
		LogLevel:   v.GetString("log_level"),
		Timeout:    v.GetDuration("timeout"),
		Rate:       v.GetFloat64("rate"),
		Burst:      v.GetInt("burst"),

		MetricsAddr: strings.TrimSpace(v.GetString("metrics_addr")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv resolves configuration from the environment alone.
func FromEnv() (Config, error) {
	return Load(viper.New())
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	var errs []error
	if c.SocketPath == "" {
		errs = append(errs, ErrSocketNotSet)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("config: timeout must not be negative"))
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Errorf("config: rate must not be negative"))
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
	return errors.Join(errs...)
}
