package bus

import (
	"context"
	"errors"

	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/resolve"
)

// conversationResolver is the slice of the fuzzy resolver the handler needs.
type conversationResolver interface {
	Resolve(ctx context.Context, loc *models.Locator) (*models.Conversation, error)
}

// OpenFunc is invoked with the resolved conversation.
type OpenFunc func(ctx context.Context, conv *models.Conversation)

// MissFunc is invoked with the unmatched subject for the user-facing
// "could not find" message.
type MissFunc func(ctx context.Context, subject string)

// LocateHandler parses inbound locator payloads, resolves them, and
// dispatches to the configured action hooks.
type LocateHandler struct {
	resolver conversationResolver
	onOpen   OpenFunc
	onMiss   MissFunc
	logger   logging.Logger
}

func NewLocateHandler(resolver conversationResolver, onOpen OpenFunc, onMiss MissFunc, logger logging.Logger) *LocateHandler {
	return &LocateHandler{resolver: resolver, onOpen: onOpen, onMiss: onMiss, logger: logger}
}

// Handle processes one inbound locator: a URL-encoded query string.
func (h *LocateHandler) Handle(ctx context.Context, data []byte) {
	loc, err := resolve.ParseLocator(string(data))
	if err != nil {
		h.logger.Warn(ctx, "unparseable locator", "error", err)
		return
	}

	conv, err := h.resolver.Resolve(ctx, loc)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			h.onMiss(ctx, nf.Subject)
			return
		}
		h.logger.Error(ctx, "resolver failure", "subject", loc.Subject, "error", err)
		return
	}

	h.onOpen(ctx, conv)
}
