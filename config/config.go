// Package config is the configuration of a scaler instance.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Variant    string           `yaml:"variant"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Stripe     StripeConfig     `yaml:"stripe"`
	Interrupts InterruptsConfig `yaml:"interrupts"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Debug      DebugConfig      `yaml:"debug"`
}

type TimeoutsConfig struct {
	// Reset bounds the wait for the software reset to complete, in
	// addition to the poll limit of the variant.
	Reset time.Duration `yaml:"reset"`

	// Disable bounds the wait for the frame in flight on Disable.
	Disable time.Duration `yaml:"disable"`
}

type StripeConfig struct {
	MinOutputWidth uint32 `yaml:"min_output_width"`
}

type InterruptsConfig struct {
	MaxSkew uint64 `yaml:"max_skew"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Listen    string `yaml:"listen"`
}

// DebugConfig is the initial value of the Debug toggles.
type DebugConfig struct {
	TestPatternDMA bool `yaml:"test_pattern_dma"`
	DumpRegsOnShot bool `yaml:"dump_regs_on_shot"`
	SkipSetfile    bool `yaml:"skip_setfile"`
	SkipSizeCheck  bool `yaml:"skip_size_check"`
}

func Default() Config {
	return Config{
		Variant: "v3",
		Timeouts: TimeoutsConfig{
			Reset:   10 * time.Millisecond,
			Disable: time.Second,
		},
		Stripe: StripeConfig{
			MinOutputWidth: 16,
		},
		Interrupts: InterruptsConfig{
			MaxSkew: 2,
		},
		Metrics: MetricsConfig{
			Namespace: "mcscaler",
			Listen:    "127.0.0.1:9090",
		},
	}
}

// Parse parses YAML on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("the config is invalid: %w", err)
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	return Parse(data)
}

func (cfg Config) Bytes() []byte {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return data
}

func (cfg Config) Validate() error {
	if cfg.Variant == "" {
		return fmt.Errorf("variant is not set")
	}
	if cfg.Timeouts.Reset <= 0 {
		return fmt.Errorf("timeouts.reset must be positive, got %v", cfg.Timeouts.Reset)
	}
	if cfg.Timeouts.Disable <= 0 {
		return fmt.Errorf("timeouts.disable must be positive, got %v", cfg.Timeouts.Disable)
	}
	if cfg.Stripe.MinOutputWidth == 0 || cfg.Stripe.MinOutputWidth%2 != 0 {
		return fmt.Errorf("stripe.min_output_width must be a positive even number, got %d", cfg.Stripe.MinOutputWidth)
	}
	if cfg.Interrupts.MaxSkew == 0 {
		return fmt.Errorf("interrupts.max_skew must be positive")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}
	return nil
}
