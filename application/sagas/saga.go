package sagas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgerrors "recipebook/pkg/errors"
)

// SagaStep is one unit of work in a saga.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context) error
	MaxRetries int
	RetryDelay time.Duration
}

// SagaState represents the current state of a saga execution
type SagaState string

const (
	SagaStatePending   SagaState = "PENDING"
	SagaStateRunning   SagaState = "RUNNING"
	SagaStateCompleted SagaState = "COMPLETED"
	SagaStateFailed    SagaState = "FAILED"
)

// Saga runs its steps in order and stops at the first step that still fails
// after its retries. Steps already completed stay completed.
type Saga struct {
	id          string
	name        string
	steps       []SagaStep
	state       SagaState
	currentStep int
	logger      *zap.Logger
}

// NewSaga creates a new saga instance
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{
		id:     uuid.NewString(),
		name:   name,
		state:  SagaStatePending,
		logger: logger,
	}
}

// AddStep adds a step to the saga
func (s *Saga) AddStep(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga
func (s *Saga) Execute(ctx context.Context) error {
	s.state = SagaStateRunning
	s.logger.Debug("Starting saga",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("total_steps", len(s.steps)),
	)

	for i, step := range s.steps {
		s.currentStep = i
		if err := s.executeStepWithRetry(ctx, step); err != nil {
			s.state = SagaStateFailed
			s.logger.Error("Saga step failed",
				zap.String("saga_id", s.id),
				zap.String("saga_name", s.name),
				zap.String("step_name", step.Name),
				zap.Int("completed_steps", i),
				zap.Error(err),
			)
			return err
		}
	}

	s.state = SagaStateCompleted
	return nil
}

func (s *Saga) executeStepWithRetry(ctx context.Context, step SagaStep) error {
	attempts := step.MaxRetries + 1
	delay := step.RetryDelay
	if delay == 0 {
		delay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying saga step",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = step.Execute(ctx)
		if lastErr == nil || !Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("step %s failed after %d attempts: %w", step.Name, attempts, lastErr)
}

// Retryable reports whether err is worth another attempt. Errors the caller
// caused, such as validation or authorization failures, never are.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		return true
	}
	switch appErr.Type {
	case pkgerrors.ErrorTypeDatabase, pkgerrors.ErrorTypeUnavailable, pkgerrors.ErrorTypeRateLimit, pkgerrors.ErrorTypeExternal:
		return true
	default:
		return false
	}
}

// GetState returns the current state of the saga
func (s *Saga) GetState() SagaState {
	return s.state
}

// GetCurrentStep returns the index of the step running or last run
func (s *Saga) GetCurrentStep() int {
	return s.currentStep
}

// SagaBuilder provides a fluent interface for building sagas
type SagaBuilder struct {
	saga *Saga
}

// NewSagaBuilder creates a new saga builder
func NewSagaBuilder(name string, logger *zap.Logger) *SagaBuilder {
	return &SagaBuilder{saga: NewSaga(name, logger)}
}

// WithRetryableStep adds a step retried on transient errors, doubling the
// delay between attempts.
func (b *SagaBuilder) WithRetryableStep(name string, execute func(context.Context) error, maxRetries int, retryDelay time.Duration) *SagaBuilder {
	b.saga.AddStep(SagaStep{
		Name:       name,
		Execute:    execute,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	})
	return b
}

// Build returns the constructed saga
func (b *SagaBuilder) Build() *Saga {
	return b.saga
}
