package framework

import (
	"log/slog"

	"github.com/airsstack/airssys-osl/pkg/audit"
	"github.com/airsstack/airssys-osl/pkg/events"
	"github.com/airsstack/airssys-osl/pkg/executor/filesystem"
	"github.com/airsstack/airssys-osl/pkg/executor/network"
	"github.com/airsstack/airssys-osl/pkg/executor/process"
	"github.com/airsstack/airssys-osl/pkg/middleware/logger"
	"github.com/airsstack/airssys-osl/pkg/middleware/security"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Builder assembles a Framework. Configuration errors are collected and
// reported once from Build so call sites can chain freely.
type Builder struct {
	securityCtx *osl.SecurityContext
	middlewares []osl.Middleware
	executors   []osl.Executor
	logger      *slog.Logger
	closers     []func() error
	errs        []error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{logger: slog.Default()}
}

// WithPrincipal sets the default principal operations run as.
func (b *Builder) WithPrincipal(principal string) *Builder {
	b.securityCtx = osl.NewSecurityContext(principal)
	return b
}

// WithSecurityContext sets the complete default security context,
// replacing any principal set earlier.
func (b *Builder) WithSecurityContext(sc *osl.SecurityContext) *Builder {
	b.securityCtx = sc
	return b
}

// WithLogger sets the slog logger used by the pipeline and broker.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithMiddleware appends middleware to the pipeline. Order within equal
// priorities follows registration order.
func (b *Builder) WithMiddleware(mws ...osl.Middleware) *Builder {
	b.middlewares = append(b.middlewares, mws...)
	return b
}

// WithExecutor registers executors for the types they support.
func (b *Builder) WithExecutor(execs ...osl.Executor) *Builder {
	b.executors = append(b.executors, execs...)
	return b
}

// WithDefaultExecutors registers the built-in filesystem, process, and
// network executors.
func (b *Builder) WithDefaultExecutors() *Builder {
	return b.WithExecutor(filesystem.New(), process.New(), network.New())
}

// WithSecurity adds the policy enforcement middleware over the given
// policies in enforce mode.
func (b *Builder) WithSecurity(policies ...security.Policy) *Builder {
	return b.WithMiddleware(security.New(policies, security.WithLogger(b.logger)))
}

// WithDefaultSecurity sets principal as the default identity and installs
// enforcing security middleware that grants that principal everything.
// Other principals stay denied by default.
func (b *Builder) WithDefaultSecurity(principal string) *Builder {
	b.WithPrincipal(principal)
	acl, err := security.NewACL("default", []security.ACLEntry{
		{Principal: principal, Actions: []string{"*"}, Resources: []string{"**"}},
	})
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.WithSecurity(acl)
}

// WithAuditLogger installs the activity logging middleware writing to
// sink. The sink is closed by Framework.Close.
func (b *Builder) WithAuditLogger(sink audit.Logger) *Builder {
	if sink == nil {
		b.errs = append(b.errs, osl.ConfigurationError("nil audit sink", nil))
		return b
	}
	b.closers = append(b.closers, sink.Close)
	return b.WithMiddleware(logger.New(sink, logger.WithLogger(b.logger)))
}

// Build validates the configuration and assembles the framework. Every
// middleware-claimed operation type must have an executor, and a default
// security context must be present.
func (b *Builder) Build() (*Framework, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.securityCtx == nil || b.securityCtx.Principal == "" {
		return nil, osl.ConfigurationError("no default principal configured", nil)
	}
	if len(b.executors) == 0 {
		return nil, osl.ConfigurationError("no executors configured", nil)
	}

	registry := NewRegistry()
	for _, e := range b.executors {
		if err := registry.Register(e); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(b.middlewares); err != nil {
		return nil, err
	}

	return &Framework{
		pipeline: NewPipeline(registry, b.middlewares, b.logger),
		registry: registry,
		broker:   events.NewBroker(b.logger),
		logger:   b.logger,
		security: b.securityCtx,
		closers:  b.closers,
	}, nil
}
