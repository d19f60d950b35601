// Package metaq carries asynchronous metadata-persistence intents. The
// publish pipeline never writes conversation metadata directly: it
// enqueues an Update and the consumer applies it to the store later.
// Failure to persist is reported but never rolls back a remote write;
// the fingerprint comparison on the next change event re-converges.
package metaq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Update is one persistence intent: attach value under the namespaced
// key on the conversation's metadata side channel.
type Update struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Key            string          `json:"key"`
	Value          json.RawMessage `json:"value"`
}

// NewUpdate builds an Update with a fresh task id.
func NewUpdate(conversationID, key string, value []byte) Update {
	return Update{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Key:            key,
		Value:          value,
	}
}

// Sink accepts persistence intents. The pipeline treats Enqueue as
// fire-and-forget: an error is logged, not propagated.
type Sink interface {
	Enqueue(ctx context.Context, u Update) error
}

// publisher is the slice of *nats.Conn the sink needs.
type publisher interface {
	Publish(subj string, data []byte) error
}

// NATSSink publishes intents as JSON onto a NATS subject.
type NATSSink struct {
	conn    publisher
	subject string
}

func NewNATSSink(conn publisher, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Enqueue(_ context.Context, u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal metadata update: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish metadata update: %w", err)
	}
	return nil
}
