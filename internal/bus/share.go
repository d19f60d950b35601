package bus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/store"
)

// ShareCommand toggles sharing of a single conversation.
type ShareCommand struct {
	ConversationID string `json:"conversationId"`
	Shared         bool   `json:"shared"`
}

// sharePublisher is the slice of the publish pipeline the handler needs.
type sharePublisher interface {
	Publish(ctx context.Context, conv *models.Conversation) error
	Unpublish(ctx context.Context, conv *models.Conversation) error
}

// ShareHandler executes share and unshare commands. Both run
// immediately, outside the debounce window: the first snapshot and the
// tombstone must not wait behind ordinary change traffic.
type ShareHandler struct {
	store  store.ConversationReader
	pub    sharePublisher
	logger logging.Logger
}

func NewShareHandler(st store.ConversationReader, pub sharePublisher, logger logging.Logger) *ShareHandler {
	return &ShareHandler{store: st, pub: pub, logger: logger}
}

// Handle processes one share command. Failures are logged and dropped;
// the sender gets no reply, so a retried command must stay safe, which
// Publish and Unpublish both guarantee.
func (h *ShareHandler) Handle(ctx context.Context, data []byte) {
	var cmd ShareCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		h.logger.Error(ctx, "undecodable share command", "error", err)
		return
	}

	conv, err := h.store.FindByID(ctx, cmd.ConversationID)
	if errors.Is(err, common.ErrNotFound) {
		h.logger.Warn(ctx, "share command for unknown conversation", "conversation", cmd.ConversationID)
		return
	}
	if err != nil {
		h.logger.Error(ctx, "failed to load conversation for share command",
			"conversation", cmd.ConversationID, "error", err)
		return
	}

	if cmd.Shared {
		if err := h.pub.Publish(ctx, conv); err != nil {
			h.logger.Error(ctx, "share failed", "conversation", conv.ID, "subject", conv.Subject, "error", err)
		}
		return
	}
	if err := h.pub.Unpublish(ctx, conv); err != nil {
		h.logger.Error(ctx, "unshare failed", "conversation", conv.ID, "subject", conv.Subject, "error", err)
	}
}
