package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/events"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	headers  []nats.Header
	err      error
	drained  bool
}

func (c *fakeConn) PublishMsg(msg *nats.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, msg.Subject)
	c.payloads = append(c.payloads, msg.Data)
	c.headers = append(c.headers, msg.Header)
	return nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "recipebook.collection.changed", zap.NewNop())

	event := events.NewCollectionChanged("SavePairingCommand", []string{"pairings"}, time.Unix(10, 0).UTC())
	require.NoError(t, p.Publish(context.Background(), event, event))

	assert.Equal(t, []string{"recipebook.collection.changed", "recipebook.collection.changed"}, conn.subjects)
	var got events.CollectionChanged
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, []string{"pairings"}, got.Collections)
	assert.Equal(t, events.EventTypeCollectionChanged, conn.headers[0].Get(HeaderEventType))
	assert.Equal(t, "catalog", conn.headers[0].Get(HeaderAggregateID))
	assert.Equal(t, "1", conn.headers[0].Get(HeaderVersion))

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestPublisher_Errors(t *testing.T) {
	event := events.NewCollectionChanged("x", []string{"recipes"}, time.Now())

	t.Run("publish failure", func(t *testing.T) {
		p := NewPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "s", zap.NewNop())
		err := p.Publish(context.Background(), event)
		assert.ErrorContains(t, err, "connection closed")
	})

	t.Run("cancelled context", func(t *testing.T) {
		conn := &fakeConn{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewPublisher(conn, "s", zap.NewNop()).Publish(ctx, event)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, conn.subjects)
	})
}
