// Package config loads framework configuration from YAML and assembles a
// ready-to-use framework from it: principal, security policies, audit
// backend, rate limits, and observability middleware.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/airsstack/airssys-osl/pkg/middleware/ratelimit"
	"github.com/airsstack/airssys-osl/pkg/middleware/security"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Config is the root configuration document.
type Config struct {
	// Principal is the default identity operations run as.
	Principal string `yaml:"principal" validate:"required"`

	Security SecurityConfig `yaml:"security"`
	Audit    AuditConfig    `yaml:"audit"`
	Limits   LimitsConfig   `yaml:"limits"`
	Retry    RetryConfig    `yaml:"retry"`

	// Metrics enables the Prometheus middleware.
	Metrics bool `yaml:"metrics"`

	// Tracing enables the OpenTelemetry middleware.
	Tracing bool `yaml:"tracing"`
}

// SecurityConfig configures the policy enforcement middleware.
type SecurityConfig struct {
	// Mode is enforce, log_only, or disabled. Empty means enforce.
	Mode string `yaml:"mode" validate:"omitempty,oneof=enforce log_only disabled"`

	ACL  []ACLEntryConfig `yaml:"acl" validate:"dive"`
	RBAC *RBACConfig      `yaml:"rbac"`
}

// ACLEntryConfig is one access control entry.
type ACLEntryConfig struct {
	Principal string   `yaml:"principal" validate:"required"`
	Actions   []string `yaml:"actions" validate:"min=1"`
	Resources []string `yaml:"resources"`
	Deny      bool     `yaml:"deny"`
}

// RBACConfig defines roles and principal bindings.
type RBACConfig struct {
	Roles    map[string]RoleConfig `yaml:"roles" validate:"min=1"`
	Bindings map[string][]string   `yaml:"bindings"`
}

// RoleConfig is one role definition.
type RoleConfig struct {
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits"`
}

// AuditConfig selects the activity log destination.
type AuditConfig struct {
	// Backend is slog, jsonl, or sqlite. Empty disables activity
	// logging.
	Backend string `yaml:"backend" validate:"omitempty,oneof=slog jsonl sqlite"`

	// Path locates the jsonl file or sqlite database.
	Path string `yaml:"path"`

	// MaxSizeMB bounds the jsonl file before rotation.
	MaxSizeMB int `yaml:"max_size_mb" validate:"gte=0"`

	// MaxBackups bounds how many rotated jsonl files are kept.
	MaxBackups int `yaml:"max_backups" validate:"gte=0"`
}

// LimitsConfig configures the rate limiting middleware.
type LimitsConfig struct {
	// Mode is block or wait. Empty means block.
	Mode string `yaml:"mode" validate:"omitempty,oneof=block wait"`

	// PerType maps operation types to their limits.
	PerType map[string]LimitConfig `yaml:"per_type" validate:"dive"`
}

// LimitConfig is one operation type's token bucket.
type LimitConfig struct {
	PerSecond float64 `yaml:"per_second" validate:"gt=0"`
	Burst     int     `yaml:"burst" validate:"gte=0"`
}

// RetryConfig sets the default recovery for transient execution
// failures. MaxAttempts of zero disables retrying.
type RetryConfig struct {
	// MaxAttempts bounds re-runs after the initial failure.
	MaxAttempts int `yaml:"max_attempts" validate:"gte=0"`

	// Delay seeds the exponential backoff between attempts.
	Delay Duration `yaml:"delay"`
}

// Duration embeds time.Duration so YAML fields accept strings like
// "250ms" or "2s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	dd, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, osl.ConfigurationError("read config file", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, osl.ConfigurationError("parse config", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks structural constraints (via struct tags) and semantic
// ones the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return osl.ConfigurationError("invalid config", err)
	}
	for typeName := range c.Limits.PerType {
		if !osl.OperationType(typeName).Valid() {
			return osl.ConfigurationError(fmt.Sprintf("limits: unknown operation type %q", typeName), nil)
		}
	}
	if c.Security.Mode != "" && !security.Mode(c.Security.Mode).Valid() {
		return osl.ConfigurationError(fmt.Sprintf("security: unknown mode %q", c.Security.Mode), nil)
	}
	if c.Limits.Mode != "" && !ratelimit.Mode(c.Limits.Mode).Valid() {
		return osl.ConfigurationError(fmt.Sprintf("limits: unknown mode %q", c.Limits.Mode), nil)
	}
	if (c.Audit.Backend == "jsonl" || c.Audit.Backend == "sqlite") && c.Audit.Path == "" {
		return osl.ConfigurationError(fmt.Sprintf("audit: backend %q needs a path", c.Audit.Backend), nil)
	}
	if c.Retry.Delay.Duration < 0 {
		return osl.ConfigurationError(fmt.Sprintf("retry: negative delay %s", c.Retry.Delay.Duration), nil)
	}
	// Policy construction catches pattern and inheritance mistakes.
	if _, err := c.Policies(); err != nil {
		return err
	}
	return nil
}

// Policies compiles the configured ACL and RBAC sections.
func (c *Config) Policies() ([]security.Policy, error) {
	var out []security.Policy
	if len(c.Security.ACL) > 0 {
		entries := make([]security.ACLEntry, 0, len(c.Security.ACL))
		for _, e := range c.Security.ACL {
			entries = append(entries, security.ACLEntry{
				Principal: e.Principal,
				Actions:   e.Actions,
				Resources: e.Resources,
				Deny:      e.Deny,
			})
		}
		acl, err := security.NewACL("acl", entries)
		if err != nil {
			return nil, osl.ConfigurationError("security acl", err)
		}
		out = append(out, acl)
	}
	if c.Security.RBAC != nil {
		roles := make(map[string]security.Role, len(c.Security.RBAC.Roles))
		for name, r := range c.Security.RBAC.Roles {
			roles[name] = security.Role{Permissions: r.Permissions, Inherits: r.Inherits}
		}
		rbac, err := security.NewRBAC("rbac", roles, c.Security.RBAC.Bindings)
		if err != nil {
			return nil, osl.ConfigurationError("security rbac", err)
		}
		out = append(out, rbac)
	}
	return out, nil
}
