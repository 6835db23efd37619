package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	channelPrefix = "arrival:"
	channelSuffix = ":stream"
	clientBuffer  = 64
	relayBuffer   = 256

	defaultPublishTimeout = 2 * time.Second
)

// Hub fans messages out to the stream clients of a session.
//
// Without Redis, Broadcast delivers locally. With Redis, Broadcast queues the message
// for a relay goroutine that publishes it, and every instance (this one included)
// delivers from its pattern subscription, so each client sees a message exactly once.
// Broadcast never waits on Redis.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	log     logrus.FieldLogger
	done    chan struct{}

	relay          chan outgoing
	stop           chan struct{}
	relayDone      chan struct{}
	closeOnce      sync.Once
	publishTimeout time.Duration
}

type outgoing struct {
	ctx       context.Context
	sessionID string
	payload   []byte
}

type Client struct {
	SessionID string
	Send      chan []byte
}

// NewHub creates a hub; redisClient may be nil. The relay subscription is confirmed
// before NewHub returns.
func NewHub(ctx context.Context, redisClient *redis.Client, log logrus.FieldLogger) (*Hub, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
		log:     log,
		done:    make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h, nil
	}

	h.pubsub = redisClient.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	if _, err := h.pubsub.Receive(ctx); err != nil {
		_ = h.pubsub.Close()
		return nil, fmt.Errorf("new hub: subscribe relay: %w", err)
	}

	h.relay = make(chan outgoing, relayBuffer)
	h.stop = make(chan struct{})
	h.relayDone = make(chan struct{})
	h.publishTimeout = defaultPublishTimeout

	go h.subscribeRedis()
	go h.relayLoop()
	return h, nil
}

func (h *Hub) Register(sessionID string) *Client {
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionClients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := sessionClients[client]; !ok {
		return
	}

	delete(sessionClients, client)
	if len(sessionClients) == 0 {
		delete(h.clients, client.SessionID)
	}
	close(client.Send)
}

// Clients reports how many clients are registered for a session.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Broadcast returns without touching the network. When the relay queue is full or the
// hub is closed, the message is delivered to local clients only.
func (h *Hub) Broadcast(ctx context.Context, sessionID string, payload []byte) {
	if h.relay != nil {
		select {
		case <-h.stop:
			h.deliver(sessionID, payload)
			return
		default:
		}

		select {
		case h.relay <- outgoing{ctx: context.WithoutCancel(ctx), sessionID: sessionID, payload: payload}:
			return
		default:
			h.log.WithField("session_id", sessionID).Warn("redis relay queue full, delivering locally")
		}
	}
	h.deliver(sessionID, payload)
}

// Close stops the relay publisher, then the relay subscription.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}

	var err error
	h.closeOnce.Do(func() {
		close(h.stop)
		<-h.relayDone
		err = h.pubsub.Close()
		<-h.done
	})
	return err
}

func (h *Hub) relayLoop() {
	defer close(h.relayDone)

	for {
		select {
		case <-h.stop:
			return
		case msg := <-h.relay:
			h.publish(msg)
		}
	}
}

func (h *Hub) publish(msg outgoing) {
	ctx, cancel := context.WithTimeout(msg.ctx, h.publishTimeout)
	defer cancel()

	err := h.redis.Publish(ctx, redisChannel(msg.sessionID), msg.payload).Err()
	if err == nil {
		return
	}
	h.log.WithError(err).WithField("session_id", msg.sessionID).Warn("redis publish failed, delivering locally")
	h.deliver(msg.sessionID, msg.payload)
}

// deliver never blocks; slow clients drop messages.
func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			h.log.WithField("session_id", sessionID).Debug("stream client buffer full, dropping message")
		}
	}
}

func (h *Hub) subscribeRedis() {
	defer close(h.done)

	for msg := range h.pubsub.Channel() {
		sessionID := sessionIDFromChannel(msg.Channel)
		if sessionID == "" {
			continue
		}
		h.deliver(sessionID, []byte(msg.Payload))
	}
}

func redisChannel(sessionID string) string {
	return channelPrefix + sessionID + channelSuffix
}

func sessionIDFromChannel(ch string) string {
	// arrival:{session}:stream
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
