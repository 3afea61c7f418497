package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/events"
	"recipebook/infrastructure/realtime"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, msg realtime.Message) (realtime.BroadcastResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(realtime.BroadcastResult), args.Error(1)
}

func changeEvent(t *testing.T, collections ...string) awsevents.CloudWatchEvent {
	t.Helper()
	detail, err := json.Marshal(events.NewCollectionChanged("AddRecipeCommand", collections, time.Unix(1700000000, 0)))
	require.NoError(t, err)
	return awsevents.CloudWatchEvent{
		ID:         "evt-1",
		DetailType: events.EventTypeCollectionChanged,
		Detail:     detail,
	}
}

func TestSendHandler_BroadcastsChange(t *testing.T) {
	// Arrange
	b := new(mockBroadcaster)
	b.On("Broadcast", mock.Anything, realtime.Message{
		Type:        realtime.MessageTypeCollectionChanged,
		Collections: []string{"recipes", "ingredients"},
		Timestamp:   1700000000,
	}).Return(realtime.BroadcastResult{Sent: 2}, nil)
	h := &sendHandler{broadcaster: b, logger: zap.NewNop()}

	// Act
	err := h.handle(context.Background(), changeEvent(t, "recipes", "ingredients"))

	// Assert
	require.NoError(t, err)
	b.AssertExpectations(t)
}

func TestSendHandler_IgnoresOtherEvents(t *testing.T) {
	tests := []struct {
		name  string
		event awsevents.CloudWatchEvent
	}{
		{"other detail type", awsevents.CloudWatchEvent{DetailType: "something.else", Detail: json.RawMessage(`{}`)}},
		{"malformed detail", awsevents.CloudWatchEvent{DetailType: events.EventTypeCollectionChanged, Detail: json.RawMessage(`{"collections":`)}},
		{"no collections", changeEvent(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(mockBroadcaster)
			h := &sendHandler{broadcaster: b, logger: zap.NewNop()}

			err := h.handle(context.Background(), tt.event)

			assert.NoError(t, err)
			b.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
		})
	}
}

func TestSendHandler_ReturnsBroadcastFailure(t *testing.T) {
	b := new(mockBroadcaster)
	b.On("Broadcast", mock.Anything, mock.Anything).Return(realtime.BroadcastResult{Failed: 1}, errors.New("all message sends failed"))
	h := &sendHandler{broadcaster: b, logger: zap.NewNop()}

	err := h.handle(context.Background(), changeEvent(t, "pairings"))

	assert.EqualError(t, err, "all message sends failed")
}
