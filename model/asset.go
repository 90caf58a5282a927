package model

import (
	"sync"
)

/*
MediaAsset is one captured or selected image moving through the pipeline.

It is created at capture time with only the ephemeral URL set. The upload
worker later mutates it in place: a successful upload sets DurableURL, a
failed upload leaves it empty permanently (there is no retry). Callers that
need to wait for the outcome select on Resolved().
*/
type MediaAsset struct {
	// HandleID identifies the in-process byte handle; valid only for the
	// current session.
	HandleID string
	// EphemeralURL wraps the handle for immediate preview.
	EphemeralURL string
	// MimeType and Extension are the canonical pair assigned at capture.
	MimeType  string
	Extension string
	// OwnerScope is the dealership namespace for the storage path.
	OwnerScope string

	mu         sync.Mutex
	durableURL string
	resolved   chan struct{}
	once       sync.Once
}

func NewMediaAsset(handleID, ephemeralURL, mimeType, extension, ownerScope string) *MediaAsset {
	return &MediaAsset{
		HandleID:     handleID,
		EphemeralURL: ephemeralURL,
		MimeType:     mimeType,
		Extension:    extension,
		OwnerScope:   ownerScope,
		resolved:     make(chan struct{}),
	}
}

// DurableURL returns the permanent storage URL, or "" if the upload has not
// completed or failed permanently.
func (a *MediaAsset) DurableURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.durableURL
}

// SetDurableURL records a successful upload and closes Resolved().
func (a *MediaAsset) SetDurableURL(url string) {
	a.mu.Lock()
	a.durableURL = url
	a.mu.Unlock()
	a.once.Do(func() { close(a.resolved) })
}

// MarkUploadFailed closes Resolved() with no durable URL. The asset stays
// preview-only for the rest of its life.
func (a *MediaAsset) MarkUploadFailed() {
	a.once.Do(func() { close(a.resolved) })
}

// Resolved is closed once the upload outcome is known, either way.
func (a *MediaAsset) Resolved() <-chan struct{} {
	return a.resolved
}
