package model

import (
	"fmt"
	"time"
)

// Config holds the complete runtime configuration for a QA review run
type Config struct {
	Zendesk    ZendeskConfig   `yaml:"zendesk" mapstructure:"zendesk"`
	Window     Window          `yaml:"window" mapstructure:"window"`
	Tickets    TicketConfig    `yaml:"tickets" mapstructure:"tickets"`
	Exclusions ExclusionConfig `yaml:"exclusions" mapstructure:"exclusions"`
	HTTP       HTTPConfig      `yaml:"http" mapstructure:"http"`
	Output     OutputConfig    `yaml:"output" mapstructure:"output"`
}

// ZendeskConfig identifies the helpdesk instance and API identity
type ZendeskConfig struct {
	Subdomain string `yaml:"subdomain" mapstructure:"subdomain"` // e.g. "acme" for acme.zendesk.com
	Token     string `yaml:"token" mapstructure:"token"`         // bearer token: read + ticket-write + impersonate
	APIUserID int64  `yaml:"api_user_id" mapstructure:"api_user_id"`
}

// Window is the relative range for "recently edited"
type Window struct {
	Unit  string `yaml:"unit" mapstructure:"unit"` // months, weeks, days
	Value int    `yaml:"value" mapstructure:"value"`
}

// TicketConfig holds static routing fields and submission behavior
type TicketConfig struct {
	PerAuthorCap int    `yaml:"per_author_cap" mapstructure:"per_author_cap"`
	BrandID      int64  `yaml:"brand_id" mapstructure:"brand_id"`
	FormID       int64  `yaml:"form_id" mapstructure:"form_id"`
	GroupID      int64  `yaml:"group_id" mapstructure:"group_id"`
	Priority     string `yaml:"priority" mapstructure:"priority"`
	ReadOnly     bool   `yaml:"read_only" mapstructure:"read_only"`
}

// ExclusionConfig lists authors and brands skipped during fetching
type ExclusionConfig struct {
	AuthorNames []string `yaml:"author_names" mapstructure:"author_names"`
	BrandNames  []string `yaml:"brand_names" mapstructure:"brand_names"`
}

// HTTPConfig controls the transport
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	// MaxRateLimitRetries caps 429 retries; 0 retries indefinitely,
	// matching the platform's documented rate-limit contract.
	MaxRateLimitRetries int    `yaml:"max_rate_limit_retries" mapstructure:"max_rate_limit_retries"`
	HTTPProxy           string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy          string `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// OutputConfig controls console reporting
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults, overridable by config
// file, environment, and flags
func DefaultConfig() *Config {
	return &Config{
		Window: Window{Unit: "months", Value: 6},
		Tickets: TicketConfig{
			PerAuthorCap: 2,
			Priority:     "normal",
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
	}
}

// Validate checks for fatal configuration errors. A failure here aborts
// the run before any fetching begins.
func (c *Config) Validate() error {
	if c.Zendesk.Subdomain == "" {
		return fmt.Errorf("zendesk subdomain is required")
	}
	if c.Zendesk.Token == "" {
		return fmt.Errorf("zendesk token is required")
	}
	if c.Zendesk.APIUserID == 0 {
		return fmt.Errorf("zendesk api_user_id is required")
	}
	if c.Tickets.PerAuthorCap <= 0 {
		return fmt.Errorf("per_author_cap must be positive, got %d", c.Tickets.PerAuthorCap)
	}
	switch c.Window.Unit {
	case "months", "weeks", "days":
	default:
		return fmt.Errorf("unrecognized window unit %q (want months, weeks or days)", c.Window.Unit)
	}
	if c.Window.Value <= 0 {
		return fmt.Errorf("window value must be positive, got %d", c.Window.Value)
	}
	return nil
}
