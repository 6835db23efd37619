package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/logging"
	"arrival-route-service/internal/ports"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	msgs   chan kafka.Message
	errs   chan error
	mu     sync.Mutex
	closed bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{msgs: make(chan kafka.Message, 8), errs: make(chan error, 8)}
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case err := <-r.errs:
		return kafka.Message{}, err
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func TestDecodeFixMessage(t *testing.T) {
	fallback := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	pos, locErr, err := decodeFixMessage([]byte(`{"lat":-23.55,"lon":-46.63,"ts":"2024-05-01T09:00:00Z"}`), fallback)
	if err != nil || locErr != nil {
		t.Fatalf("unexpected failure: %v %v", err, locErr)
	}
	if pos.Lat != -23.55 || pos.Lon != -46.63 || !pos.CapturedAt.Equal(fallback.Add(-time.Hour)) {
		t.Fatalf("unexpected position %+v", pos)
	}

	pos, _, err = decodeFixMessage([]byte(`{"lat":0,"lon":0}`), fallback)
	if err != nil || !pos.CapturedAt.Equal(fallback) {
		t.Fatalf("expected fallback timestamp, got %+v %v", pos, err)
	}

	_, locErr, err = decodeFixMessage([]byte(`{"error":"permission_denied","message":"user said no"}`), fallback)
	if err != nil || locErr == nil || locErr.Kind != domain.PermissionDenied || locErr.Message != "user said no" {
		t.Fatalf("unexpected location error %+v %v", locErr, err)
	}

	_, locErr, err = decodeFixMessage([]byte(`{"error":"3"}`), fallback)
	if err != nil || locErr == nil || locErr.Kind != domain.Timeout {
		t.Fatalf("expected timeout, got %+v %v", locErr, err)
	}

	bad := [][]byte{
		[]byte(`not json`),
		[]byte(`{"lat":1}`),
		[]byte(`{"lat":100,"lon":1}`),
	}
	for _, b := range bad {
		if _, _, err := decodeFixMessage(b, fallback); err == nil {
			t.Fatalf("expected decode error for %s", b)
		}
	}
}

func TestKafkaSourceWatch(t *testing.T) {
	reader := newFakeReader()
	src := &KafkaSource{
		newReader:    func() messageReader { return reader },
		log:          logging.Discard(),
		retryBackoff: time.Millisecond,
	}

	positions := make(chan domain.Position, 4)
	failures := make(chan domain.LocationError, 4)

	h, err := src.Watch(
		func(p domain.Position) { positions <- p },
		func(e domain.LocationError) { failures <- e },
		ports.WatchOptions{},
	)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	reader.msgs <- kafka.Message{Value: []byte(`{"lat":1,"lon":2}`), Time: time.Now()}
	select {
	case p := <-positions:
		if p.Lat != 1 || p.Lon != 2 {
			t.Fatalf("unexpected position %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for position")
	}

	reader.msgs <- kafka.Message{Value: []byte(`garbage`)}
	reader.errs <- errors.New("broker went away")
	for i := 0; i < 2; i++ {
		select {
		case e := <-failures:
			if e.Kind != domain.PositionUnavailable {
				t.Fatalf("unexpected kind %s", e.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for failure %d", i+1)
		}
	}

	h.Cancel()
	h.Cancel()

	select {
	case <-h.(*kafkaHandle).done:
	case <-time.After(time.Second):
		t.Fatalf("reader loop did not stop")
	}
	if !reader.isClosed() {
		t.Fatalf("expected reader to be closed")
	}
}

func TestNewKafkaSourceValidation(t *testing.T) {
	if _, err := NewKafkaSource(KafkaOptions{Topic: "positions"}); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaSource(KafkaOptions{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatalf("expected error without topic")
	}
	if _, err := NewKafkaSource(KafkaOptions{Brokers: []string{"localhost:9092"}, Topic: "positions"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
