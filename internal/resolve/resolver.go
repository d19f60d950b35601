package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/store"
)

// Tolerance absorbs clock skew and serialization rounding between the
// locator's producer and our store.
const Tolerance = 60 * time.Second

// NotFoundError reports that no conversation matched a locator. It
// keeps the subject for the user-facing message.
type NotFoundError struct {
	Subject string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no conversation found for subject %q", e.Subject)
}

// Resolver turns locators into conversations.
type Resolver struct {
	finder store.ConversationFinder
	logger logging.Logger
}

func NewResolver(finder store.ConversationFinder, logger logging.Logger) *Resolver {
	return &Resolver{finder: finder, logger: logger}
}

// Resolve finds the conversation a locator points at. A date clue
// matches against the first-message time; a lastDate clue against
// either last-activity time, because the locator's producer could not
// know which one was canonical when it was encoded. Both use the exact
// subject plus a ±Tolerance window. Multiple matches are not
// disambiguated further: the first one in store order wins.
func (r *Resolver) Resolve(ctx context.Context, loc *models.Locator) (*models.Conversation, error) {
	var (
		matches []*models.Conversation
		err     error
	)

	switch {
	case loc.Date != nil:
		matches, err = r.finder.FindBySubjectFirstMessage(ctx, loc.Subject,
			loc.Date.Add(-Tolerance), loc.Date.Add(Tolerance))
	case loc.LastDate != nil:
		matches, err = r.finder.FindBySubjectLastActivity(ctx, loc.Subject,
			loc.LastDate.Add(-Tolerance), loc.LastDate.Add(Tolerance))
	default:
		return nil, &NotFoundError{Subject: loc.Subject}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", loc.Subject, err)
	}

	if len(matches) == 0 {
		return nil, &NotFoundError{Subject: loc.Subject}
	}
	if len(matches) > 1 {
		r.logger.Warn(ctx, "locator matched multiple conversations, taking first",
			"subject", loc.Subject, "matches", len(matches))
	}
	return matches[0], nil
}
