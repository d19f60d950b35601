package share

import (
	"time"

	"github.com/dkoval/mailshare/internal/models"
)

// QuoteStripper removes quoted-reply blocks from an HTML body.
type QuoteStripper interface {
	Strip(body string) string
}

// Document is the remote-facing snapshot of a shared conversation.
type Document struct {
	Shared         bool              `json:"shared"`
	Subject        string            `json:"subject"`
	FirstMessageAt time.Time         `json:"first_message_at"`
	LastSentAt     time.Time         `json:"last_sent_at"`
	LastReceivedAt time.Time         `json:"last_received_at"`
	SharedBy       models.Identity   `json:"shared_by"`
	FileURLs       map[string]string `json:"file_urls,omitempty"`
	Messages       []DocumentMessage `json:"messages"`
}

// DocumentMessage is one visible message inside a snapshot.
type DocumentMessage struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	SentAt      time.Time `json:"sent_at"`
	Body        string    `json:"body"`
	Attachments []string  `json:"attachments,omitempty"`
}

// Tombstone marks a previously shared conversation as withdrawn. It is
// written to the snapshot's original address so stale links resolve to
// an explicit "no longer shared" rather than dead content.
type Tombstone struct {
	Shared bool `json:"shared"`
}

// BuildDocument assembles the snapshot from local data. Pure function:
// callers pass already-filtered visible messages and the metadata as of
// this publish. Bodies go through the quote stripper, which keeps a
// body untouched when stripping would empty it.
func BuildDocument(conv *models.Conversation, visible []*models.Message, meta *Meta, identity models.Identity, strip QuoteStripper) *Document {
	doc := &Document{
		Shared:         true,
		Subject:        conv.Subject,
		FirstMessageAt: conv.FirstMessageAt,
		LastSentAt:     conv.LastSentAt,
		LastReceivedAt: conv.LastReceivedAt,
		SharedBy:       identity,
		FileURLs:       meta.FileURLs,
		Messages:       make([]DocumentMessage, 0, len(visible)),
	}

	for _, m := range visible {
		dm := DocumentMessage{
			ID:     m.ID,
			From:   m.From,
			SentAt: m.SentAt,
			Body:   strip.Strip(m.Body),
		}
		for _, att := range m.Attachments {
			dm.Attachments = append(dm.Attachments, att.ID)
		}
		doc.Messages = append(doc.Messages, dm)
	}

	return doc
}
