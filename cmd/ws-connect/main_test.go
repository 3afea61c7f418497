package main

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockConnections struct {
	mock.Mock
}

func (m *mockConnections) Register(ctx context.Context, connectionID, endpoint string) error {
	return m.Called(ctx, connectionID, endpoint).Error(0)
}

func (m *mockConnections) Remove(ctx context.Context, connectionID string) error {
	return m.Called(ctx, connectionID).Error(0)
}

func request(route string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     route,
			ConnectionID: "conn-1",
			DomainName:   "abc.execute-api.us-west-2.amazonaws.com",
			Stage:        "prod",
		},
	}
}

func TestConnectHandler(t *testing.T) {
	tests := []struct {
		name       string
		route      string
		setup      func(m *mockConnections)
		wantStatus int
	}{
		{
			name:  "connect registers endpoint",
			route: "$connect",
			setup: func(m *mockConnections) {
				m.On("Register", mock.Anything, "conn-1", "abc.execute-api.us-west-2.amazonaws.com/prod").Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "connect store failure",
			route: "$connect",
			setup: func(m *mockConnections) {
				m.On("Register", mock.Anything, "conn-1", mock.Anything).Return(errors.New("throttled"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:  "disconnect removes connection",
			route: "$disconnect",
			setup: func(m *mockConnections) {
				m.On("Remove", mock.Anything, "conn-1").Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "disconnect failure is not reported to the gateway",
			route: "$disconnect",
			setup: func(m *mockConnections) {
				m.On("Remove", mock.Anything, "conn-1").Return(errors.New("gone"))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := new(mockConnections)
			tt.setup(m)
			h := &connectHandler{connections: m, logger: zap.NewNop()}

			// Act
			resp, err := h.handle(context.Background(), request(tt.route))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			m.AssertExpectations(t)
		})
	}
}
