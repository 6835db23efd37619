package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/logging"

	"github.com/gorilla/websocket"
)

func TestHandlerStreamsSnapshotThenBroadcasts(t *testing.T) {
	hub, _ := NewHub(context.Background(), nil, logging.Discard())
	current := func() domain.Snapshot {
		return domain.Snapshot{SessionID: "s-ws", Epoch: 7}
	}

	srv := httptest.NewServer(Handler(hub, "s-ws", current, logging.Discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, first, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if m := decodeMessage(t, string(first)); m.Type != TypeSnapshot {
		t.Fatalf("expected initial snapshot, got %q", m.Type)
	}

	deadline := time.Now().Add(time.Second)
	for hub.Clients("s-ws") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(context.Background(), "s-ws", []byte(`{"type":"sound"}`))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(msg) != `{"type":"sound"}` {
		t.Fatalf("unexpected message %s", msg)
	}
}

func TestHandlerRejectsPlainHTTP(t *testing.T) {
	hub, _ := NewHub(context.Background(), nil, logging.Discard())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ws", nil)

	Handler(hub, "s", nil, logging.Discard())(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 for non-upgrade request, got %d", rec.Code)
	}
	if hub.Clients("s") != 0 {
		t.Fatalf("expected no registered clients")
	}
}
