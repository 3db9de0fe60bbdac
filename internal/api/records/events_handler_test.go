package records

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-interests-api/internal/notifier"
)

type streamClient struct {
	resp   *http.Response
	lines  chan string
	cancel context.CancelFunc
}

func connect(t *testing.T, url string) *streamClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	c := &streamClient{resp: resp, lines: lines, cancel: cancel}
	t.Cleanup(c.close)
	return c
}

func (c *streamClient) close() {
	c.cancel()
	_ = c.resp.Body.Close()
}

// waitFor reads lines until one satisfies match or the timeout elapses.
func (c *streamClient) waitFor(t *testing.T, timeout time.Duration, match func(string) bool) string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				t.Fatal("stream closed before expected line")
			}
			if match(line) {
				return line
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream line")
		}
	}
}

func newEventsServer(t *testing.T, heartbeat time.Duration) (*httptest.Server, *notifier.Hub) {
	t.Helper()
	hub := notifier.NewHub(4, testLogger())
	h := NewEventsHandler(hub, heartbeat, time.Second, testLogger())
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestEventsHandler_Headers(t *testing.T) {
	srv, _ := newEventsServer(t, time.Minute)
	c := connect(t, srv.URL)

	assert.Equal(t, http.StatusOK, c.resp.StatusCode)
	assert.Equal(t, "text/event-stream", c.resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", c.resp.Header.Get("Cache-Control"))
}

func TestEventsHandler_DeliversExactlyOneUpdatePerPublish(t *testing.T) {
	srv, hub := newEventsServer(t, time.Minute)
	c := connect(t, srv.URL)

	c.waitFor(t, 2*time.Second, func(l string) bool { return l == ": connected" })
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, 1, hub.Publish(context.Background()))

	c.waitFor(t, 2*time.Second, func(l string) bool { return strings.HasPrefix(l, "id: ") })
	assert.Equal(t, "data: update", c.waitFor(t, time.Second, func(l string) bool { return l != "" }))

	select {
	case extra := <-c.lines:
		assert.Equal(t, "", extra, "only the event terminator may follow")
	case <-time.After(100 * time.Millisecond):
	}
	select {
	case extra := <-c.lines:
		t.Fatalf("unexpected extra line %q", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventsHandler_Heartbeat(t *testing.T) {
	srv, _ := newEventsServer(t, 20*time.Millisecond)
	c := connect(t, srv.URL)

	line := c.waitFor(t, 2*time.Second, func(l string) bool { return l == ": keep-alive" })
	assert.Equal(t, ": keep-alive", line)
}

func TestEventsHandler_DisconnectReleasesSubscription(t *testing.T) {
	srv, hub := newEventsServer(t, 20*time.Millisecond)
	c := connect(t, srv.URL)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	c.close()

	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Publish(context.Background()))
}

func TestEventsHandler_HubCloseEndsStream(t *testing.T) {
	srv, hub := newEventsServer(t, time.Minute)
	c := connect(t, srv.URL)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not end after hub close")
		}
	}
}
