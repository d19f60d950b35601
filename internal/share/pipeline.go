package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/metaq"
	"github.com/dkoval/mailshare/internal/models"
)

// MessageSource loads a conversation's messages, bodies included.
type MessageSource interface {
	MessagesWithBody(ctx context.Context, conversationID string) ([]*models.Message, error)
}

// MetaReader reads the metadata side channel. Writes go through the
// task queue, never through this interface.
type MetaReader interface {
	GetMeta(ctx context.Context, conversationID, key string) ([]byte, error)
}

// Publisher mirrors shared conversations to the object store. Publish
// is idempotent: unchanged content is detected by fingerprint and
// skipped, which also breaks the metadata-write feedback loop (the
// persist event caused by our own metadata update hashes identically).
type Publisher struct {
	msgs     MessageSource
	meta     MetaReader
	uploader *Uploader
	remote   RemoteAPI
	sink     metaq.Sink
	strip    QuoteStripper
	identity models.Identity
	metaKey  string
	logger   logging.Logger
	now      func() time.Time
}

func NewPublisher(msgs MessageSource, meta MetaReader, uploader *Uploader, remote RemoteAPI,
	sink metaq.Sink, strip QuoteStripper, identity models.Identity, metaKey string, logger logging.Logger) *Publisher {
	return &Publisher{
		msgs:     msgs,
		meta:     meta,
		uploader: uploader,
		remote:   remote,
		sink:     sink,
		strip:    strip,
		identity: identity,
		metaKey:  metaKey,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish mirrors the conversation's current content to the object
// store. Safe to call repeatedly. Per-attachment failures are skipped;
// a snapshot-write failure aborts with metadata untouched so the next
// change event retries the full publish.
func (p *Publisher) Publish(ctx context.Context, conv *models.Conversation) error {
	meta, err := p.loadMeta(ctx, conv.ID)
	if err != nil {
		return err
	}

	all, err := p.msgs.MessagesWithBody(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	visible := visibleMessages(all)

	// The Shared guard keeps a first share from short-circuiting when
	// the conversation has no visible messages yet: an empty fingerprint
	// would otherwise match the fresh metadata's empty hash.
	newHash := Fingerprint(visible)
	if meta.Shared && newHash == meta.Hash {
		p.logger.Debug(ctx, "content unchanged, skipping publish", "conversation", conv.ID)
		return nil
	}

	meta.Shared = true
	meta.Hash = newHash
	if meta.Key == "" {
		meta.Key = fmt.Sprintf("%s-%d", conv.ID, p.now().Unix())
	}
	if meta.FileURLs == nil {
		meta.FileURLs = make(map[string]string)
	}

	for _, m := range visible {
		for _, att := range m.Attachments {
			if _, ok := meta.FileURLs[att.ID]; ok {
				continue
			}
			url, err := p.uploader.EnsureUploaded(ctx, att, meta.FileURLs)
			if err != nil {
				// One broken attachment must not block the share.
				p.logger.Warn(ctx, "skipping attachment",
					"conversation", conv.ID, "attachment", att.ID, "error", err)
				continue
			}
			meta.FileURLs[att.ID] = url
		}
	}

	doc := BuildDocument(conv, visible, meta, p.identity, p.strip)
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if _, err := p.remote.PostAsset(ctx, snapshotName(meta.Key), blob); err != nil {
		// Hash was not persisted, so the next flush retries from scratch.
		return fmt.Errorf("%w: snapshot %s: %v", common.ErrUploadFailed, meta.Key, err)
	}

	p.persist(ctx, conv.ID, meta)
	p.logger.Info(ctx, "conversation published",
		"conversation", conv.ID, "key", meta.Key, "messages", len(visible), "files", len(meta.FileURLs))
	return nil
}

// Unpublish writes a tombstone to the snapshot's existing address and
// marks the metadata unshared. Key survives so a later re-share reuses
// the same address and previously handed-out links keep working. Safe
// to call on a never-shared conversation.
func (p *Publisher) Unpublish(ctx context.Context, conv *models.Conversation) error {
	meta, err := p.loadMeta(ctx, conv.ID)
	if err != nil {
		return err
	}
	if meta.Key == "" {
		p.logger.Warn(ctx, "unpublish of never-shared conversation", "conversation", conv.ID)
		return nil
	}

	blob, err := json.Marshal(Tombstone{Shared: false})
	if err != nil {
		return fmt.Errorf("marshal tombstone: %w", err)
	}
	if _, err := p.remote.PostAsset(ctx, snapshotName(meta.Key), blob); err != nil {
		return fmt.Errorf("%w: tombstone %s: %v", common.ErrUploadFailed, meta.Key, err)
	}

	meta.Shared = false
	// Clearing the hash forces a full republish if the conversation is
	// shared again at the same key.
	meta.Hash = ""
	p.persist(ctx, conv.ID, meta)
	p.logger.Info(ctx, "conversation unpublished", "conversation", conv.ID, "key", meta.Key)
	return nil
}

// loadMeta reads and decodes the sharing record; a conversation that
// was never shared yields a fresh one.
func (p *Publisher) loadMeta(ctx context.Context, conversationID string) (*Meta, error) {
	raw, err := p.meta.GetMeta(ctx, conversationID, p.metaKey)
	if errors.Is(err, common.ErrNotFound) {
		return NewMeta(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sharing metadata: %w", err)
	}
	return DecodeMeta(raw)
}

// persist enqueues the metadata write. Fire-and-forget: a lost update
// re-converges on the next change event, so failures are only reported.
func (p *Publisher) persist(ctx context.Context, conversationID string, meta *Meta) {
	value, err := meta.Encode()
	if err != nil {
		p.logger.Error(ctx, "failed to encode sharing metadata", "conversation", conversationID, "error", err)
		return
	}
	if err := p.sink.Enqueue(ctx, metaq.NewUpdate(conversationID, p.metaKey, value)); err != nil {
		p.logger.Error(ctx, "failed to enqueue metadata update", "conversation", conversationID, "error", err)
	}
}

func visibleMessages(all []*models.Message) []*models.Message {
	visible := make([]*models.Message, 0, len(all))
	for _, m := range all {
		if !m.Hidden {
			visible = append(visible, m)
		}
	}
	return visible
}

func snapshotName(key string) string {
	return key + ".json"
}
