package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	Logger  logrus.FieldLogger
}

// KafkaSource consumes position fixes from a Kafka topic.
// Every call to Watch opens its own reader; Cancel closes it.
type KafkaSource struct {
	newReader    func() messageReader
	log          logrus.FieldLogger
	retryBackoff time.Duration
}

func NewKafkaSource(opts KafkaOptions) (*KafkaSource, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("new kafka source: at least one broker is required")
	}
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, errors.New("new kafka source: topic must not be empty")
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	newReader := func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:        opts.Brokers,
			Topic:          opts.Topic,
			GroupID:        opts.GroupID,
			StartOffset:    kafka.LastOffset,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        time.Second,
			ReadBackoffMin: 100 * time.Millisecond,
			ReadBackoffMax: time.Second,
			CommitInterval: time.Second,
		})
	}

	return &KafkaSource{newReader: newReader, log: log, retryBackoff: time.Second}, nil
}

type kafkaHandle struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the reader loop without waiting for it, so it is safe to call from a callback.
func (h *kafkaHandle) Cancel() {
	h.once.Do(h.cancel)
}

func (k *KafkaSource) Watch(
	onPosition func(domain.Position),
	onError func(domain.LocationError),
	_ ports.WatchOptions,
) (ports.WatchHandle, error) {
	reader := k.newReader()
	ctx, cancel := context.WithCancel(context.Background())
	h := &kafkaHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer reader.Close()
		k.consume(ctx, reader, onPosition, onError)
	}()

	return h, nil
}

func (k *KafkaSource) consume(
	ctx context.Context,
	reader messageReader,
	onPosition func(domain.Position),
	onError func(domain.LocationError),
) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			k.log.WithError(err).Warn("kafka read failed")
			onError(domain.LocationError{
				Kind:    domain.PositionUnavailable,
				Message: fmt.Sprintf("read position stream: %v", err),
				At:      time.Now(),
			})

			select {
			case <-ctx.Done():
				return
			case <-time.After(k.retryBackoff):
			}
			continue
		}

		pos, locErr, err := decodeFixMessage(msg.Value, msg.Time)
		switch {
		case err != nil:
			k.log.WithError(err).WithField("offset", msg.Offset).Warn("dropping undecodable fix")
			onError(domain.LocationError{
				Kind:    domain.PositionUnavailable,
				Message: err.Error(),
				At:      time.Now(),
			})
		case locErr != nil:
			onError(*locErr)
		default:
			onPosition(pos)
		}
	}
}

// fixMessage is the wire form of a single fix or failure on the positions topic.
type fixMessage struct {
	Lat     *float64  `json:"lat"`
	Lon     *float64  `json:"lon"`
	TS      time.Time `json:"ts"`
	Error   string    `json:"error"`
	Message string    `json:"message"`
}

// decodeFixMessage returns either a position or a location error. A non-nil err
// means the payload itself could not be understood.
func decodeFixMessage(value []byte, fallback time.Time) (domain.Position, *domain.LocationError, error) {
	var m fixMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return domain.Position{}, nil, fmt.Errorf("decode fix: %w", err)
	}

	at := m.TS
	if at.IsZero() {
		at = fallback
	}
	if at.IsZero() {
		at = time.Now()
	}

	if m.Error != "" {
		kind, err := domain.ParseLocationErrorKind(m.Error)
		msg := m.Message
		if err != nil && msg == "" {
			msg = m.Error
		}
		return domain.Position{}, &domain.LocationError{Kind: kind, Message: msg, At: at}, nil
	}

	if m.Lat == nil || m.Lon == nil {
		return domain.Position{}, nil, errors.New("decode fix: lat and lon are required")
	}
	if *m.Lat < -90 || *m.Lat > 90 || *m.Lon < -180 || *m.Lon > 180 {
		return domain.Position{}, nil, fmt.Errorf("decode fix: coordinates out of range (%f, %f)", *m.Lat, *m.Lon)
	}

	return domain.Position{Lat: *m.Lat, Lon: *m.Lon, CapturedAt: at}, nil, nil
}
