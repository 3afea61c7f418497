package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"recipebook/application/ports"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// AdminCommand is a command gated by the shared admin secret.
type AdminCommand interface {
	Command
	AdminSecret() string
}

// WriteScoped is implemented by commands that know which collections they
// write. The bus uses it to invalidate cached reads.
type WriteScoped interface {
	Collections() []string
}

// CommandHandler handles a specific command type. The returned value is the
// command's result (a new id, a count), or nil.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (interface{}, error)
}

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewCommandBus creates a new command bus
func NewCommandBus() *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
	}
}

// Use appends middleware. The first middleware added runs outermost.
func (b *CommandBus) Use(middlewares ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middlewares...)
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Send dispatches a command through the middleware pipeline to its handler
func (b *CommandBus) Send(ctx context.Context, cmd Command) (interface{}, error) {
	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	pipeline := NewPipeline(b.middlewares...)
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	result, err := pipeline.Execute(handler).Handle(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("command handler failed: %w", err)
	}

	return result, nil
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) (interface{}, error)

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (interface{}, error) {
	return f(ctx, cmd)
}

// CommandName returns the type name used in logs and metrics.
func CommandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			cmdType := CommandName(cmd)
			start := time.Now()
			logger.Info("Executing command", "type", cmdType)

			result, err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", "type", cmdType, "duration", time.Since(start), "error", err)
			} else {
				logger.Info("Command succeeded", "type", cmdType, "duration", time.Since(start))
			}

			return result, err
		})
	}
}

// ValidationMiddleware ensures commands are valid
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			if err := cmd.Validate(); err != nil {
				return nil, err
			}
			return next.Handle(ctx, cmd)
		})
	}
}

// AuthorizationMiddleware checks the admin secret of AdminCommands before
// anything else looks at the command.
func AuthorizationMiddleware(authorizer Authorizer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			if admin, ok := cmd.(AdminCommand); ok {
				if err := authorizer.Authorize(ctx, admin.AdminSecret()); err != nil {
					return nil, err
				}
			}
			return next.Handle(ctx, cmd)
		})
	}
}

// InvalidationMiddleware marks the collections written by a successful
// command as changed, then notifies listeners.
func InvalidationMiddleware(invalidator Invalidator, notifier ChangeNotifier) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			result, err := next.Handle(ctx, cmd)

			// A failed recipe write can still have created entities for
			// earlier lines, so tags are bumped on failure too.
			scoped, ok := cmd.(WriteScoped)
			if !ok {
				return result, err
			}
			collections := scoped.Collections()
			if invalidator != nil {
				invalidator.InvalidateTags(ctx, collections...)
			}
			if err == nil && notifier != nil {
				notifier.CollectionsChanged(ctx, CommandName(cmd), collections)
			}
			return result, err
		})
	}
}

// MetricsMiddleware counts and times command executions
func MetricsMiddleware(metrics Metrics) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			name := CommandName(cmd)
			timer := metrics.StartTimer("command_duration", name)
			defer timer.Stop()

			metrics.Increment("command_count", name)
			result, err := next.Handle(ctx, cmd)
			if err != nil {
				metrics.Increment("command_errors", name)
			}
			return result, err
		})
	}
}

// TracingMiddleware records each command as a trace subsegment
func TracingMiddleware(tracer Tracer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			var result interface{}
			err := tracer.TraceFunction(ctx, "command."+CommandName(cmd), func(ctx context.Context) error {
				var err error
				result, err = next.Handle(ctx, cmd)
				return err
			})
			return result, err
		})
	}
}

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Authorizer validates an admin secret.
type Authorizer interface {
	Authorize(ctx context.Context, secret string) error
}

// Invalidator drops cached reads derived from the given collections.
type Invalidator interface {
	InvalidateTags(ctx context.Context, tags ...string)
}

// ChangeNotifier is told about every successful write.
type ChangeNotifier interface {
	CollectionsChanged(ctx context.Context, operation string, collections []string)
}

// Tracer wraps work in a trace subsegment.
type Tracer interface {
	TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error
}

// Metrics and Timer are shared with the query bus so one recorder
// serves both.
type (
	Metrics = ports.Metrics
	Timer   = ports.Timer
)

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute runs the command through the pipeline
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	// Apply middleware in reverse order
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

// Errors
var (
	ErrHandlerNotFound = errors.New("command handler not found")
)
