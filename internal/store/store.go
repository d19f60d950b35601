// Package store provides the PostgreSQL-backed conversation store the
// sync engine reads from, plus its metadata side channel.
package store

import (
	"context"
	"time"

	"github.com/dkoval/mailshare/internal/models"
)

// ConversationReader is the read surface of the conversation store used
// by the publish pipeline and the bus handler.
type ConversationReader interface {
	// FindByID returns the conversation or common.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Conversation, error)

	// MessagesWithBody returns all messages of a conversation, bodies and
	// attachments included, hidden ones too. Filtering is the caller's job.
	MessagesWithBody(ctx context.Context, conversationID string) ([]*models.Message, error)
}

// ConversationFinder is the fuzzy-lookup surface used by the resolver.
type ConversationFinder interface {
	// FindBySubjectFirstMessage returns conversations whose subject
	// matches exactly and whose first message falls inside [from, to].
	FindBySubjectFirstMessage(ctx context.Context, subject string, from, to time.Time) ([]*models.Conversation, error)

	// FindBySubjectLastActivity returns conversations whose subject
	// matches exactly and whose last sent or last received time falls
	// inside [from, to].
	FindBySubjectLastActivity(ctx context.Context, subject string, from, to time.Time) ([]*models.Conversation, error)
}

// MetaStore is the key/value side channel attached to conversations.
// Values are opaque to the store; the share package owns their shape.
type MetaStore interface {
	// GetMeta returns the value stored under key for the conversation,
	// or common.ErrNotFound when none was ever written.
	GetMeta(ctx context.Context, conversationID, key string) ([]byte, error)

	// SetMeta upserts the value stored under key for the conversation.
	SetMeta(ctx context.Context, conversationID, key string, value []byte) error
}
