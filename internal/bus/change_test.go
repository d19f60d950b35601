package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/share"
)

type fakeReader struct {
	convs map[string]*models.Conversation
}

func (f *fakeReader) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	if c, ok := f.convs[id]; ok {
		return c, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeReader) MessagesWithBody(ctx context.Context, conversationID string) ([]*models.Message, error) {
	return nil, errors.New("not used")
}

type fakeMeta struct {
	values map[string][]byte
}

func (f *fakeMeta) GetMeta(ctx context.Context, conversationID, key string) ([]byte, error) {
	if v, ok := f.values[conversationID]; ok {
		return v, nil
	}
	return nil, common.ErrNotFound
}

type recordingScheduler struct {
	seen []string
}

func (r *recordingScheduler) OnChange(conv *models.Conversation) {
	r.seen = append(r.seen, conv.ID)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sharedMeta(t *testing.T) []byte {
	t.Helper()
	m := share.NewMeta()
	m.Shared = true
	m.Key = "k"
	b, err := m.Encode()
	require.NoError(t, err)
	return b
}

func event(t *testing.T, typ, class string, ids ...string) []byte {
	t.Helper()
	b, err := json.Marshal(ChangeEvent{Type: typ, Class: class, IDs: ids})
	require.NoError(t, err)
	return b
}

func newChangeFixture(t *testing.T) (*ChangeHandler, *fakeReader, *fakeMeta, *recordingScheduler) {
	t.Helper()
	reader := &fakeReader{convs: map[string]*models.Conversation{}}
	meta := &fakeMeta{values: map[string][]byte{}}
	sched := &recordingScheduler{}
	h := NewChangeHandler(reader, meta, sched, share.DefaultMetaKey, testLogger())
	return h, reader, meta, sched
}

func TestChangeHandler_ForwardsSharedConversationPersist(t *testing.T) {
	h, reader, meta, sched := newChangeFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1", Subject: "Hi"}
	meta.values["c1"] = sharedMeta(t)

	h.Handle(context.Background(), event(t, ChangePersist, ClassConversation, "c1"))

	assert.Equal(t, []string{"c1"}, sched.seen)
}

func TestChangeHandler_IgnoresUnsharedConversations(t *testing.T) {
	h, reader, _, sched := newChangeFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1"}

	h.Handle(context.Background(), event(t, ChangePersist, ClassConversation, "c1"))

	assert.Empty(t, sched.seen)
}

func TestChangeHandler_IgnoresOtherClassesAndTypes(t *testing.T) {
	h, reader, meta, sched := newChangeFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1"}
	meta.values["c1"] = sharedMeta(t)

	h.Handle(context.Background(), event(t, "remove", ClassConversation, "c1"))
	h.Handle(context.Background(), event(t, ChangePersist, "Message", "c1"))

	assert.Empty(t, sched.seen)
}

func TestChangeHandler_UnknownConversationDoesNotAbortBatch(t *testing.T) {
	h, reader, meta, sched := newChangeFixture(t)
	reader.convs["c2"] = &models.Conversation{ID: "c2"}
	meta.values["c2"] = sharedMeta(t)

	h.Handle(context.Background(), event(t, ChangePersist, ClassConversation, "gone", "c2"))

	assert.Equal(t, []string{"c2"}, sched.seen)
}

func TestChangeHandler_DropsMalformedEvent(t *testing.T) {
	h, _, _, sched := newChangeFixture(t)

	h.Handle(context.Background(), []byte("not json"))

	assert.Empty(t, sched.seen)
}
