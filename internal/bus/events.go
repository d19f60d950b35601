// Package bus reacts to store change notifications and inbound locators
// delivered over NATS, feeding the scheduler and the resolver.
package bus

import (
	"context"

	"github.com/nats-io/nats.go"
)

// ChangeEvent is the store's change notification wire format.
type ChangeEvent struct {
	Type  string   `json:"changeType"`
	Class string   `json:"entityClass"`
	IDs   []string `json:"ids"`
}

const (
	// ChangePersist is the only change type the engine reacts to.
	ChangePersist = "persist"

	// ClassConversation is the watched entity class.
	ClassConversation = "Conversation"
)

// Subscribe attaches fn to a NATS subject. The handler runs on the NATS
// delivery goroutine, so fn must stay non-blocking (the scheduler's
// OnChange is; slow work belongs behind it).
func Subscribe(conn *nats.Conn, subject string, fn func(ctx context.Context, data []byte)) (*nats.Subscription, error) {
	return conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(context.Background(), msg.Data)
	})
}
