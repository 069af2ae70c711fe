package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airsstack/airssys-osl/pkg/audit"
	"github.com/airsstack/airssys-osl/pkg/framework"
	"github.com/airsstack/airssys-osl/pkg/middleware/logger"
	"github.com/airsstack/airssys-osl/pkg/middleware/metrics"
	"github.com/airsstack/airssys-osl/pkg/middleware/ratelimit"
	"github.com/airsstack/airssys-osl/pkg/middleware/retry"
	"github.com/airsstack/airssys-osl/pkg/middleware/security"
	"github.com/airsstack/airssys-osl/pkg/middleware/tracing"
	"github.com/airsstack/airssys-osl/pkg/osl"
	"github.com/airsstack/airssys-osl/pkg/store/jsonl"
	"github.com/airsstack/airssys-osl/pkg/store/sqlite"
)

// BuildOption adjusts framework assembly from configuration.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger    *slog.Logger
	registry  prometheus.Registerer
	executors []osl.Executor
}

// WithLogger sets the slog logger for the assembled framework.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// WithMetricsRegisterer sets where the metrics middleware registers its
// collectors.
func WithMetricsRegisterer(reg prometheus.Registerer) BuildOption {
	return func(o *buildOptions) { o.registry = reg }
}

// WithExecutors replaces the default executor set.
func WithExecutors(execs ...osl.Executor) BuildOption {
	return func(o *buildOptions) { o.executors = execs }
}

// Build assembles a framework from the configuration: executors, security
// policies in the configured mode, the audit backend, rate limits, and
// optional metrics and tracing.
func (c *Config) Build(opts ...BuildOption) (*framework.Framework, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	bo := buildOptions{logger: slog.Default()}
	for _, o := range opts {
		o(&bo)
	}

	b := framework.NewBuilder().
		WithLogger(bo.logger).
		WithPrincipal(c.Principal)

	if len(bo.executors) > 0 {
		b.WithExecutor(bo.executors...)
	} else {
		b.WithDefaultExecutors()
	}

	sink, err := c.auditSink(bo.logger)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		b.WithAuditLogger(sink)
	}

	policies, err := c.Policies()
	if err != nil {
		return nil, err
	}
	mode := security.Mode(c.Security.Mode)
	if c.Security.Mode == "" {
		mode = security.ModeEnforce
	}
	b.WithMiddleware(security.New(policies,
		security.WithMode(mode),
		security.WithLogger(bo.logger)))

	if len(c.Limits.PerType) > 0 {
		limits := make(map[osl.OperationType]ratelimit.Limit, len(c.Limits.PerType))
		for typeName, l := range c.Limits.PerType {
			limits[osl.OperationType(typeName)] = ratelimit.Limit{
				PerSecond: l.PerSecond,
				Burst:     l.Burst,
			}
		}
		limitMode := ratelimit.Mode(c.Limits.Mode)
		if c.Limits.Mode == "" {
			limitMode = ratelimit.ModeBlock
		}
		b.WithMiddleware(ratelimit.New(limits, limitMode))
	}

	if c.Retry.MaxAttempts > 0 {
		b.WithMiddleware(retry.New(c.Retry.MaxAttempts, c.Retry.Delay.Duration))
	}

	if c.Metrics {
		b.WithMiddleware(metrics.New(bo.registry))
	}
	if c.Tracing {
		b.WithMiddleware(tracing.New(nil))
	}

	return b.Build()
}

func (c *Config) auditSink(l *slog.Logger) (audit.Logger, error) {
	switch c.Audit.Backend {
	case "":
		return nil, nil
	case "slog":
		return logger.NewSlogSink(l), nil
	case "jsonl":
		s, err := jsonl.New(c.Audit.Path, c.Audit.MaxSizeMB, c.Audit.MaxBackups)
		if err != nil {
			return nil, osl.ConfigurationError("audit jsonl store", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(c.Audit.Path)
		if err != nil {
			return nil, osl.ConfigurationError("audit sqlite store", err)
		}
		return s, nil
	default:
		return nil, osl.ConfigurationError("unknown audit backend "+c.Audit.Backend, nil)
	}
}
