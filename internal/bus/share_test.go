package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/mailshare/internal/models"
)

type recordingPublisher struct {
	published   []string
	unpublished []string
	err         error
}

func (r *recordingPublisher) Publish(ctx context.Context, conv *models.Conversation) error {
	r.published = append(r.published, conv.ID)
	return r.err
}

func (r *recordingPublisher) Unpublish(ctx context.Context, conv *models.Conversation) error {
	r.unpublished = append(r.unpublished, conv.ID)
	return r.err
}

func newShareFixture(t *testing.T) (*ShareHandler, *fakeReader, *recordingPublisher) {
	t.Helper()
	reader := &fakeReader{convs: map[string]*models.Conversation{}}
	pub := &recordingPublisher{}
	return NewShareHandler(reader, pub, testLogger()), reader, pub
}

func TestShareHandler_ShareTriggersImmediatePublish(t *testing.T) {
	h, reader, pub := newShareFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1", Subject: "Hi"}

	h.Handle(context.Background(), []byte(`{"conversationId":"c1","shared":true}`))

	require.Equal(t, []string{"c1"}, pub.published)
	assert.Empty(t, pub.unpublished)
}

func TestShareHandler_UnshareTriggersUnpublish(t *testing.T) {
	h, reader, pub := newShareFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1", Subject: "Hi"}

	h.Handle(context.Background(), []byte(`{"conversationId":"c1","shared":false}`))

	require.Equal(t, []string{"c1"}, pub.unpublished)
	assert.Empty(t, pub.published)
}

func TestShareHandler_UnknownConversationIsDropped(t *testing.T) {
	h, _, pub := newShareFixture(t)

	h.Handle(context.Background(), []byte(`{"conversationId":"ghost","shared":true}`))

	assert.Empty(t, pub.published)
	assert.Empty(t, pub.unpublished)
}

func TestShareHandler_UndecodableCommandIsDropped(t *testing.T) {
	h, _, pub := newShareFixture(t)

	h.Handle(context.Background(), []byte(`{broken`))

	assert.Empty(t, pub.published)
	assert.Empty(t, pub.unpublished)
}

func TestShareHandler_PublishErrorIsSwallowed(t *testing.T) {
	h, reader, pub := newShareFixture(t)
	reader.convs["c1"] = &models.Conversation{ID: "c1", Subject: "Hi"}
	pub.err = errors.New("object store down")

	h.Handle(context.Background(), []byte(`{"conversationId":"c1","shared":true}`))

	// The command is fire-and-forget; the error must not panic or leak.
	require.Equal(t, []string{"c1"}, pub.published)
}
