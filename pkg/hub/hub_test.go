package hub

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/motionsense/pkg/protocol"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func fakeClient(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c
	return c
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)
	a := fakeClient(h, 4)
	b := fakeClient(h, 4)

	msg, err := protocol.NewSlidersMessage(map[string]float64{"joy": 1})
	require.NoError(t, err)
	require.NoError(t, h.Send(msg))

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.send:
			assert.Equal(t, JSONMessage, got.Type)
			parsed, err := protocol.ParseMessage(got.Data)
			require.NoError(t, err)
			assert.Equal(t, protocol.TypeSliders, parsed.Type)
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
	assert.Equal(t, 2, h.ClientCount())
	assert.Equal(t, "test", h.Name())
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("slow")
	var drops atomic.Int32
	h.OnDrop(func(reason string) {
		if reason == "slow_client" {
			drops.Add(1)
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	fakeClient(h, 0)
	h.Broadcast(NewJSONMessage([]byte(`{}`)))

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), drops.Load())
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	h, _ := startHub(t)
	c := fakeClient(h, 1)

	h.unregister <- c

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_CancelClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := fakeClient(h, 1)

	cancel()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client queue not closed on shutdown")
	}
}

func TestNewClient_AfterStopReturnsError(t *testing.T) {
	h, cancel := startHub(t)
	cancel()
	<-h.done

	done := make(chan error, 1)
	go func() {
		_, err := NewClient(h, nil, NewJSONMessage([]byte(`{}`)))
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("NewClient blocked after hub stopped")
	}
}

func TestNewClient_QueuesInitialMessages(t *testing.T) {
	h, _ := startHub(t)

	c, err := NewClient(h, nil, NewJSONMessage([]byte(`{"a":1}`)), NewJSONMessage([]byte(`{"b":2}`)))
	require.NoError(t, err)

	assert.Equal(t, `{"a":1}`, string((<-c.send).Data))
	assert.Equal(t, `{"b":2}`, string((<-c.send).Data))
	assert.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("idle") // not running: queue fills
	for i := 0; i < cap(h.broadcast); i++ {
		require.True(t, h.Broadcast(NewJSONMessage(nil)))
	}
	assert.False(t, h.Broadcast(NewJSONMessage(nil)))
}
