package bus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/share"
	"github.com/dkoval/mailshare/internal/store"
)

// changeScheduler is the slice of the sync scheduler the handler needs.
type changeScheduler interface {
	OnChange(conv *models.Conversation)
}

// ChangeHandler filters change events down to persist events of shared
// conversations and hands those to the scheduler.
type ChangeHandler struct {
	store   store.ConversationReader
	meta    share.MetaReader
	sched   changeScheduler
	metaKey string
	logger  logging.Logger
}

func NewChangeHandler(st store.ConversationReader, meta share.MetaReader, sched changeScheduler, metaKey string, logger logging.Logger) *ChangeHandler {
	return &ChangeHandler{store: st, meta: meta, sched: sched, metaKey: metaKey, logger: logger}
}

// Handle processes one change event. Events for other classes or change
// types, unknown conversations, and unshared conversations are ignored.
// The scheduler's fingerprint guard handles the rest, including the
// persist event our own metadata write causes.
func (h *ChangeHandler) Handle(ctx context.Context, data []byte) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		h.logger.Error(ctx, "undecodable change event", "error", err)
		return
	}
	if ev.Type != ChangePersist || ev.Class != ClassConversation {
		return
	}

	for _, id := range ev.IDs {
		conv, err := h.store.FindByID(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			h.logger.Warn(ctx, "change event for unknown conversation", "conversation", id)
			continue
		}
		if err != nil {
			h.logger.Error(ctx, "failed to load changed conversation", "conversation", id, "error", err)
			continue
		}

		if !h.isShared(ctx, id) {
			continue
		}
		h.sched.OnChange(conv)
	}
}

func (h *ChangeHandler) isShared(ctx context.Context, conversationID string) bool {
	raw, err := h.meta.GetMeta(ctx, conversationID, h.metaKey)
	if errors.Is(err, common.ErrNotFound) {
		return false
	}
	if err != nil {
		h.logger.Error(ctx, "failed to load sharing metadata", "conversation", conversationID, "error", err)
		return false
	}
	meta, err := share.DecodeMeta(raw)
	if err != nil {
		h.logger.Error(ctx, "undecodable sharing metadata", "conversation", conversationID, "error", err)
		return false
	}
	return meta.Shared
}
