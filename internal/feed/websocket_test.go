package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// steadyGoroutines samples the goroutine count a few times and returns the
// minimum, ignoring short-lived connection goroutines in flight.
func steadyGoroutines() int {
	min := runtime.NumGoroutine()
	for i := 0; i < 10; i++ {
		time.Sleep(10 * time.Millisecond)
		if n := runtime.NumGoroutine(); n < min {
			min = n
		}
	}
	return min
}

func TestReconnectDoesNotAccumulateGoroutines(t *testing.T) {
	var connections int64
	upgrader := websocket.Upgrader{}

	// Drop every connection immediately so the client reconnects in a loop.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt64(&connections, 1)
		conn.Close()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewWSClient("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	client.reconnectDelay = 10 * time.Millisecond
	go client.Start(ctx)

	waitForConnections := func(n int64) {
		deadline := time.Now().Add(5 * time.Second)
		for atomic.LoadInt64(&connections) < n {
			if time.Now().After(deadline) {
				t.Fatalf("only %d connections before deadline", atomic.LoadInt64(&connections))
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitForConnections(2)
	before := steadyGoroutines()

	waitForConnections(10)
	after := steadyGoroutines()

	if after > before+2 {
		t.Errorf("goroutines grew from %d to %d across reconnects", before, after)
	}

	cancel()

	// The event channel closes once Start unwinds.
	select {
	case _, ok := <-client.Events():
		if ok {
			t.Error("expected closed events channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Error("events channel not closed after cancel")
	}
}
