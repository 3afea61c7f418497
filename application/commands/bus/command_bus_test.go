package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testCommand struct {
	secret  string
	invalid bool
}

func (c testCommand) Validate() error {
	if c.invalid {
		return errors.New("invalid")
	}
	return nil
}
func (c testCommand) AdminSecret() string   { return c.secret }
func (c testCommand) Collections() []string { return []string{"recipes"} }

type publicCommand struct{}

func (publicCommand) Validate() error { return nil }

type stubAuthorizer struct{ want string }

func (a stubAuthorizer) Authorize(ctx context.Context, secret string) error {
	if secret != a.want {
		return errors.New("not authorized")
	}
	return nil
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) InvalidateTags(ctx context.Context, tags ...string) {
	m.Called(tags)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) CollectionsChanged(ctx context.Context, operation string, collections []string) {
	m.Called(operation, collections)
}

func handlerReturning(result interface{}, err error) CommandHandler {
	return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return result, err
	})
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(testCommand{}, handlerReturning("ok", nil)))

	result, err := b.Send(context.Background(), testCommand{})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(testCommand{}, handlerReturning(nil, nil)))
	assert.Error(t, b.Register(testCommand{}, handlerReturning(nil, nil)))
}

func TestCommandBus_NoHandler(t *testing.T) {
	_, err := NewCommandBus().Send(context.Background(), publicCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	b := NewCommandBus()
	b.Use(record("first"), record("second"))
	require.NoError(t, b.Register(testCommand{}, handlerReturning(nil, nil)))

	_, err := b.Send(context.Background(), testCommand{})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestAuthorizationMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr string
	}{
		{"admin command with secret", testCommand{secret: "s3cret"}, ""},
		{"admin command without secret", testCommand{}, "not authorized"},
		{"authorization is checked before validation", testCommand{invalid: true}, "not authorized"},
		{"validation after authorization", testCommand{secret: "s3cret", invalid: true}, "invalid"},
		{"public command", publicCommand{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewCommandBus()
			b.Use(AuthorizationMiddleware(stubAuthorizer{want: "s3cret"}), ValidationMiddleware())
			require.NoError(t, b.Register(testCommand{}, handlerReturning(nil, nil)))
			require.NoError(t, b.Register(publicCommand{}, handlerReturning(nil, nil)))

			_, err := b.Send(context.Background(), tt.cmd)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInvalidationMiddleware(t *testing.T) {
	t.Run("success invalidates and notifies", func(t *testing.T) {
		invalidator := new(mockInvalidator)
		notifier := new(mockNotifier)
		invalidator.On("InvalidateTags", []string{"recipes"}).Once()
		notifier.On("CollectionsChanged", "testCommand", []string{"recipes"}).Once()

		h := InvalidationMiddleware(invalidator, notifier)(handlerReturning(nil, nil))
		_, err := h.Handle(context.Background(), testCommand{})

		require.NoError(t, err)
		invalidator.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("failure still invalidates but does not notify", func(t *testing.T) {
		invalidator := new(mockInvalidator)
		notifier := new(mockNotifier)
		invalidator.On("InvalidateTags", []string{"recipes"}).Once()

		h := InvalidationMiddleware(invalidator, notifier)(handlerReturning(nil, errors.New("boom")))
		_, err := h.Handle(context.Background(), testCommand{})

		require.Error(t, err)
		invalidator.AssertExpectations(t)
		notifier.AssertNotCalled(t, "CollectionsChanged", mock.Anything, mock.Anything)
	})

	t.Run("unscoped commands are ignored", func(t *testing.T) {
		invalidator := new(mockInvalidator)
		h := InvalidationMiddleware(invalidator, nil)(handlerReturning(nil, nil))
		_, err := h.Handle(context.Background(), publicCommand{})
		require.NoError(t, err)
		invalidator.AssertNotCalled(t, "InvalidateTags", mock.Anything)
	})
}

type countingMetrics struct {
	counts map[string]int
}

type noopTimer struct{}

func (noopTimer) Stop() {}

func (m *countingMetrics) StartTimer(metric, label string) Timer { return noopTimer{} }
func (m *countingMetrics) Increment(metric, label string)        { m.counts[metric+":"+label]++ }

func TestMetricsMiddleware(t *testing.T) {
	metrics := &countingMetrics{counts: map[string]int{}}
	h := MetricsMiddleware(metrics)(handlerReturning(nil, errors.New("boom")))

	_, _ = h.Handle(context.Background(), testCommand{})

	assert.Equal(t, 1, metrics.counts["command_count:testCommand"])
	assert.Equal(t, 1, metrics.counts["command_errors:testCommand"])
}
