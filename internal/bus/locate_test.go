package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/resolve"
)

type fakeResolver struct {
	conv *models.Conversation
	err  error
}

func (f *fakeResolver) Resolve(ctx context.Context, loc *models.Locator) (*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conv, nil
}

type hookRecorder struct {
	opened []string
	missed []string
}

func (h *hookRecorder) open(ctx context.Context, conv *models.Conversation) {
	h.opened = append(h.opened, conv.ID)
}

func (h *hookRecorder) miss(ctx context.Context, subject string) {
	h.missed = append(h.missed, subject)
}

func TestLocateHandler_OpensResolvedConversation(t *testing.T) {
	hooks := &hookRecorder{}
	h := NewLocateHandler(&fakeResolver{conv: &models.Conversation{ID: "c1"}}, hooks.open, hooks.miss, testLogger())

	h.Handle(context.Background(), []byte("subject=Hi&date=1030"))

	assert.Equal(t, []string{"c1"}, hooks.opened)
	assert.Empty(t, hooks.missed)
}

func TestLocateHandler_MissInvokesUserFacingHook(t *testing.T) {
	hooks := &hookRecorder{}
	h := NewLocateHandler(&fakeResolver{err: &resolve.NotFoundError{Subject: "Hi"}}, hooks.open, hooks.miss, testLogger())

	h.Handle(context.Background(), []byte("subject=Hi&date=1030"))

	assert.Equal(t, []string{"Hi"}, hooks.missed)
	assert.Empty(t, hooks.opened)
}

func TestLocateHandler_StoreFailureInvokesNeitherHook(t *testing.T) {
	hooks := &hookRecorder{}
	h := NewLocateHandler(&fakeResolver{err: errors.New("db down")}, hooks.open, hooks.miss, testLogger())

	h.Handle(context.Background(), []byte("subject=Hi&date=1030"))

	assert.Empty(t, hooks.opened)
	assert.Empty(t, hooks.missed)
}

func TestLocateHandler_UnparseableLocatorIsDropped(t *testing.T) {
	hooks := &hookRecorder{}
	h := NewLocateHandler(&fakeResolver{}, hooks.open, hooks.miss, testLogger())

	h.Handle(context.Background(), []byte("date=1030"))

	assert.Empty(t, hooks.opened)
	assert.Empty(t, hooks.missed)
}
