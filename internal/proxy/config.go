package proxy

import (
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/runner"
)

// DefaultPort is where the invoker expects the proxy to listen.
const DefaultPort = 8080

type Config struct {
	Port        int    `mapstructure:"port" yaml:"port"`
	Source      string `mapstructure:"source" yaml:"source,omitempty"`
	Binary      string `mapstructure:"binary" yaml:"binary"`
	ZipDest     string `mapstructure:"zipdest" yaml:"zipdest,omitempty"`
	AllowReinit bool   `mapstructure:"allow_reinit" yaml:"allow_reinit"`
	Verbose     bool   `mapstructure:"verbose" yaml:"verbose"`
}

// ParseConfig reads the proxy configuration below the given viper key and
// applies the environment overrides the invoker contract defines:
// PROXY_PORT moves the listener and PROXY_ALLOW_REINIT=1 permits repeated
// initialization, which is generally useful only for local development.
func ParseConfig(key string) (Config, error) {
	var cfg Config
	if err := viper.UnmarshalKey(key, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if v, ok := os.LookupEnv("PROXY_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if os.Getenv("PROXY_ALLOW_REINIT") == "1" {
		cfg.AllowReinit = true
	}
	return cfg, nil
}

// Runner builds the lifecycle controller this configuration describes.
func (c Config) Runner(hooks runner.Hooks) *runner.Runner {
	cfg := runner.Config{
		Source:  c.Source,
		Binary:  c.Binary,
		ZipDest: c.ZipDest,
	}
	return runner.New(cfg, hooks).WithReinit(c.AllowReinit)
}
