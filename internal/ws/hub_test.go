package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	messages chan []byte
	fail     bool
	closed   chan struct{}
}

func newFakeClient(fail bool) *fakeClient {
	return &fakeClient{messages: make(chan []byte, 8), fail: fail, closed: make(chan struct{}, 1)}
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages <- data
	return nil
}

func (c *fakeClient) Close() error {
	c.closed <- struct{}{}
	return nil
}

func receive(t *testing.T, c *fakeClient) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.messages:
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func nothing(t *testing.T, c *fakeClient) {
	t.Helper()
	select {
	case raw := <-c.messages:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishRoutesByOwner(t *testing.T) {
	h := NewHub()
	go h.Run()

	alice := newFakeClient(false)
	bob := newFakeClient(false)
	h.Register <- Subscription{Client: alice, OwnerID: "alice"}
	h.Register <- Subscription{Client: bob, OwnerID: "bob"}

	h.Publish("alice", map[string]string{"type": "stock_update"})
	assert.Equal(t, "stock_update", receive(t, alice)["type"])
	nothing(t, bob)

	h.Publish("", map[string]string{"type": "catalog_update"})
	assert.Equal(t, "catalog_update", receive(t, alice)["type"])
	assert.Equal(t, "catalog_update", receive(t, bob)["type"])
}

func TestBrokenClientIsDropped(t *testing.T) {
	h := NewHub()
	go h.Run()

	broken := newFakeClient(true)
	h.Register <- Subscription{Client: broken, OwnerID: "x"}
	assert.Equal(t, 1, h.ClientCount())

	h.Publish("", map[string]string{"type": "catalog_update"})
	select {
	case <-broken.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("broken client not closed")
	}
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestUnregisterClosesConnection(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := newFakeClient(false)
	h.Register <- Subscription{Client: c, OwnerID: "x"}
	h.Unregister <- c

	select {
	case <-c.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed")
	}
	assert.Equal(t, 0, h.ClientCount())
}

func TestPublishDoesNotBlockWithoutRun(t *testing.T) {
	h := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < BroadcastBuffer+10; i++ {
			h.Publish("", map[string]int{"n": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no Run loop")
	}
	assert.Len(t, h.Broadcast, BroadcastBuffer)

	go h.Run()
	assert.Eventually(t, func() bool { return len(h.Broadcast) == 0 }, 2*time.Second, 10*time.Millisecond)
}
