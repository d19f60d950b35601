// Package common defines shared sentinel errors used across the mailshare
// engine and its collaborators. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Publish pipeline errors.
	ErrAssetUnavailable = errors.New("asset unavailable")
	ErrUploadFailed     = errors.New("upload failed")

	// Locator parsing errors.
	ErrBadLocator = errors.New("bad locator")
)
