// Package models holds the domain objects shared between the store,
// the publish pipeline, and the resolver.
package models

import "time"

// Conversation is a message thread. The store owns its lifecycle; the
// sync engine only reads it and requests metadata writes through the
// task queue.
type Conversation struct {
	ID             string
	Subject        string
	FirstMessageAt time.Time
	LastSentAt     time.Time
	LastReceivedAt time.Time
}

// Message belongs to exactly one conversation. Version is a monotonic
// stamp bumped by the store on every content mutation; the fingerprint
// is derived from it instead of hashing bodies.
type Message struct {
	ID             string
	ConversationID string
	From           string
	SentAt         time.Time
	Version        int64
	Hidden         bool
	Body           string
	Attachments    []Attachment
}

// Attachment is a binary asset reachable through the local attachment
// cache. Name is the user-visible filename.
type Attachment struct {
	ID        string
	MessageID string
	Name      string
}

// Identity describes the sharing user, embedded into published snapshots.
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Locator is an inbound cross-reference to a conversation: an exact
// subject plus one of two approximate timestamp clues. Date anchors off
// the first message, LastDate off either last-activity time. Never
// persisted.
type Locator struct {
	Subject  string
	Date     *time.Time
	LastDate *time.Time
}
