package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/quote"
)

func TestBuildDocument_CarriesIdentityAndFileURLs(t *testing.T) {
	conv := testConversation()
	meta := NewMeta()
	meta.FileURLs = map[string]string{"a1": "http://cdn/a1/x.pdf"}
	identity := models.Identity{FirstName: "Ada", LastName: "Byron", Email: "ada@example.com"}
	msgs := []*models.Message{{
		ID: "m1", From: "bob@example.com", SentAt: time.Unix(1500, 0).UTC(), Body: "<p>hi</p>",
		Attachments: []models.Attachment{{ID: "a1", Name: "x.pdf"}},
	}}

	doc := BuildDocument(conv, msgs, meta, identity, passStripper{})

	assert.True(t, doc.Shared)
	assert.Equal(t, conv.Subject, doc.Subject)
	assert.Equal(t, identity, doc.SharedBy)
	assert.Equal(t, meta.FileURLs, doc.FileURLs)
	require.Len(t, doc.Messages, 1)
	assert.Equal(t, []string{"a1"}, doc.Messages[0].Attachments)
}

func TestBuildDocument_StripsQuotesButKeepsWholeQuoteBodies(t *testing.T) {
	stripper := quote.New(quote.Options{KeepIfWholeBodyIsQuote: true})
	msgs := []*models.Message{
		{ID: "m1", Body: `<p>new text</p><blockquote>old</blockquote>`},
		{ID: "m2", Body: `<blockquote>forwarded only</blockquote>`},
	}

	doc := BuildDocument(testConversation(), msgs, NewMeta(), models.Identity{}, stripper)

	require.Len(t, doc.Messages, 2)
	assert.NotContains(t, doc.Messages[0].Body, "old")
	assert.Contains(t, doc.Messages[0].Body, "new text")
	assert.Contains(t, doc.Messages[1].Body, "forwarded only", "whole-quote body must survive")
}

func TestBuildDocument_EmptyConversation(t *testing.T) {
	doc := BuildDocument(testConversation(), nil, NewMeta(), models.Identity{}, passStripper{})

	assert.NotNil(t, doc.Messages)
	assert.Empty(t, doc.Messages)
}
