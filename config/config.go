// Package config loads sdborm settings from YAML. Environment variables in
// the form ${VAR_NAME} are expanded before parsing.
//
//	redis:
//	  addr: ${REDIS_ADDR}
//	  key_prefix: "app:"
//	  dial_timeout: 2s
//	logging:
//	  level: debug
//	codecs:
//	  int32: { padding: 10, offset: 3000000000 }
//	  float: { integer_digits: 9, fraction_digits: 2 }
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/manojoshi/sdborm/codec"
	"github.com/manojoshi/sdborm/mapping"
)

// Config is the complete configuration.
type Config struct {
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
	Codecs  CodecsConfig  `yaml:"codecs"`
}

// RedisConfig describes the backing store connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`

	DialTimeout    time.Duration `yaml:"-"`
	DialTimeoutRaw string        `yaml:"dial_timeout"`
}

// CodecsConfig overrides the registry's codec defaults. Unset fields keep
// the built-in defaults.
type CodecsConfig struct {
	Int32      IntCodecConfig   `yaml:"int32"`
	Int64      IntCodecConfig   `yaml:"int64"`
	Float      FloatCodecConfig `yaml:"float"`
	DateLayout string           `yaml:"date_layout"`
}

type IntCodecConfig struct {
	Padding *int    `yaml:"padding"`
	Offset  *uint64 `yaml:"offset"`
}

type FloatCodecConfig struct {
	IntegerDigits  *int    `yaml:"integer_digits"`
	FractionDigits *int    `yaml:"fraction_digits"`
	Offset         *uint64 `yaml:"offset"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Redis:   RedisConfig{Addr: "localhost:6379", DialTimeout: 5 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "json", Service: "sdborm"},
	}
}

// Load reads a configuration file and returns the parsed, validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML. Values missing from data keep their
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Redis.DialTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Redis.DialTimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing dial_timeout %q: %w", cfg.Redis.DialTimeoutRaw, err)
		}
		cfg.Redis.DialTimeout = d
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or with an
// empty string when it is unset.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

// Validate returns the first configuration defect found.
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	if _, err := c.Logging.level(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	for name, cc := range map[string]codec.Config{
		"codecs.int32": c.Codecs.Int32Config(),
		"codecs.int64": c.Codecs.Int64Config(),
		"codecs.float": c.Codecs.FloatConfig(),
	} {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Options converts the connection settings for go-redis.
func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:        r.Addr,
		Username:    r.Username,
		Password:    r.Password,
		DB:          r.DB,
		DialTimeout: r.DialTimeout,
	}
}

func (c CodecsConfig) Int32Config() codec.Config { return c.Int32.apply(codec.DefaultInt32()) }
func (c CodecsConfig) Int64Config() codec.Config { return c.Int64.apply(codec.DefaultInt64()) }

func (c CodecsConfig) FloatConfig() codec.Config {
	cfg := codec.DefaultFloat()
	if c.Float.IntegerDigits != nil {
		cfg.IntegerDigits = *c.Float.IntegerDigits
	}
	if c.Float.FractionDigits != nil {
		cfg.FractionDigits = *c.Float.FractionDigits
	}
	if c.Float.Offset != nil {
		cfg.Offset = *c.Float.Offset
	}
	return cfg
}

// Config returns the codec configuration for kind.
func (c CodecsConfig) Config(kind codec.Kind) (codec.Config, error) {
	switch kind {
	case codec.Int32:
		return c.Int32Config(), nil
	case codec.Int64:
		return c.Int64Config(), nil
	case codec.Float:
		return c.FloatConfig(), nil
	}
	return codec.Config{}, &codec.Error{Kind: codec.KindConfigurationRange, Value: kind.String(), Msg: "unknown codec kind"}
}

// Registry builds a mapping registry with these codec defaults.
func (c CodecsConfig) Registry(opts ...mapping.Option) (*mapping.Registry, error) {
	base := []mapping.Option{
		mapping.WithInt32(c.Int32Config()),
		mapping.WithInt64(c.Int64Config()),
		mapping.WithFloat(c.FloatConfig()),
	}
	if c.DateLayout != "" {
		base = append(base, mapping.WithDateLayout(c.DateLayout))
	}
	return mapping.NewRegistry(append(base, opts...)...)
}

func (ic IntCodecConfig) apply(cfg codec.Config) codec.Config {
	if ic.Padding != nil {
		cfg.Padding = *ic.Padding
	}
	if ic.Offset != nil {
		cfg.Offset = *ic.Offset
	}
	return cfg
}
