package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/mailshare/internal/config"
	"github.com/dkoval/mailshare/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.S3PublicBaseURL = "http://cdn.example.com/shares/"

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	store.retryDelay = time.Millisecond
	return store
}

func TestPostAsset_ReturnsPublicURL(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var gotKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotKey = *in.Key
		return &s3.PutObjectOutput{}, nil
	}

	store := newTestStore(t)
	url, err := store.PostAsset(context.Background(), "a1/report.pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "a1/report.pdf", gotKey)
	assert.Equal(t, "http://cdn.example.com/shares/a1/report.pdf", url)
}

func TestPostAsset_EscapesReservedCharactersInPublicURL(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var gotKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotKey = *in.Key
		return &s3.PutObjectOutput{}, nil
	}

	store := newTestStore(t)
	url, err := store.PostAsset(context.Background(), "a1/monthly report #3?.pdf", []byte("x"))
	require.NoError(t, err)

	// The object itself is stored under the raw name.
	assert.Equal(t, "a1/monthly report #3?.pdf", gotKey)
	assert.Equal(t, "http://cdn.example.com/shares/a1/monthly%20report%20%233%3F.pdf", url)
}

func TestPostAsset_RetriesThenSucceeds(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var calls int
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("connection reset")
		}
		return &s3.PutObjectOutput{}, nil
	}

	store := newTestStore(t)
	_, err := store.PostAsset(context.Background(), "k", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPostAsset_ExhaustedRetriesReturnError(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("service unavailable")
	}

	store := newTestStore(t)
	_, err := store.PostAsset(context.Background(), "k", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put object k")
}
