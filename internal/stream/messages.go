package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"arrival-route-service/internal/domain"
)

const (
	TypeSnapshot    = "snapshot"
	TypeCelebration = "celebration"
	TypeSound       = "sound"
)

// Message is the envelope of everything written to a stream client.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	At        time.Time       `json:"at"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type CelebrationData struct {
	Particles int  `json:"particles"`
	Recycle   bool `json:"recycle"`
}

type SoundData struct {
	Cue string `json:"cue"`
}

func encode(msgType, sessionID string, at time.Time, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s message: %w", msgType, err)
		}
		raw = b
	}

	b, err := json.Marshal(Message{Type: msgType, SessionID: sessionID, At: at, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msgType, err)
	}
	return b, nil
}

// EncodeSnapshot builds the snapshot message a client receives on every state change.
func EncodeSnapshot(s domain.Snapshot) ([]byte, error) {
	return encode(TypeSnapshot, s.SessionID, s.UpdatedAt, s)
}
