package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ClientConfig drives cmd/checkout.
type ClientConfig struct {
	API struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"api"`

	Stripe struct {
		BaseURL        string `koanf:"base_url"`
		PublishableKey string `koanf:"publishable_key"`
		PaymentMethod  string `koanf:"payment_method"`
	} `koanf:"stripe"`

	Checkout struct {
		HoldDuration time.Duration `koanf:"hold_duration"`
		CallTimeout  time.Duration `koanf:"call_timeout"`
	} `koanf:"checkout"`

	Breaker struct {
		MaxFailures uint32        `koanf:"max_failures"`
		OpenTimeout time.Duration `koanf:"open_timeout"`
	} `koanf:"breaker"`

	LogLevel string `koanf:"log_level"`
}

// LoadClient reads path (optional, YAML) and overlays CUSTOMKEEPS_* variables,
// nested with "__", e.g. CUSTOMKEEPS_API__BASE_URL.
func LoadClient(path string) (ClientConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return ClientConfig{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CUSTOMKEEPS_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CUSTOMKEEPS_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 15 * time.Second
	}
	if c.Stripe.BaseURL == "" {
		c.Stripe.BaseURL = "https://api.stripe.com"
	}
	if c.Stripe.PaymentMethod == "" {
		c.Stripe.PaymentMethod = "pm_card_visa"
	}
	if c.Checkout.HoldDuration == 0 {
		c.Checkout.HoldDuration = 1500 * time.Millisecond
	}
	if c.Checkout.CallTimeout == 0 {
		c.Checkout.CallTimeout = 15 * time.Second
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.OpenTimeout == 0 {
		c.Breaker.OpenTimeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "development"
	}
}

func (c ClientConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url required")
	}
	if c.Stripe.PublishableKey == "" {
		return errors.New("stripe.publishable_key required")
	}
	return nil
}
