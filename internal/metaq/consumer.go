package metaq

import (
	"context"
	"encoding/json"

	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/store"
)

// Consumer applies queued metadata updates to the store. It is the only
// component that writes the side channel.
type Consumer struct {
	meta   store.MetaStore
	logger logging.Logger
}

func NewConsumer(meta store.MetaStore, logger logging.Logger) *Consumer {
	return &Consumer{meta: meta, logger: logger}
}

// Handle decodes one queued update and applies it. Malformed payloads
// and store failures are logged and dropped: the queue carries intents,
// not state, and the next publish enqueues a fresh one.
func (c *Consumer) Handle(ctx context.Context, data []byte) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		c.logger.Error(ctx, "undecodable metadata update", "error", err)
		return
	}

	if err := c.meta.SetMeta(ctx, u.ConversationID, u.Key, u.Value); err != nil {
		c.logger.Error(ctx, "failed to persist metadata update",
			"task", u.ID, "conversation", u.ConversationID, "error", err)
		return
	}

	c.logger.Debug(ctx, "metadata update applied", "task", u.ID, "conversation", u.ConversationID)
}
