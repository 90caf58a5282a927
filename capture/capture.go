// Package capture produces raw image bytes from either a live camera device
// or a user-selected file, normalized to (bytes, declared MIME type,
// suggested name).
package capture

import (
	"errors"
	"fmt"
	"io"

	"github.com/dealerlot/lotposter/mediatype"
)

var (
	// ErrNoCamera means the device is unavailable or permission was denied.
	// Recoverable: the caller falls back to file selection.
	ErrNoCamera = errors.New("no camera available")
	// ErrNotImage means a selected file's declared type is not an image.
	ErrNotImage = errors.New("selected file is not an image")
)

// Capture is the output of either acquisition path.
type Capture struct {
	Bytes         []byte
	DeclaredMime  string
	SuggestedName string
}

// FromFile accepts a single user-selected file. Anything whose declared type
// is not an image is rejected with ErrNotImage and no side effects.
func FromFile(name, declaredMime string, r io.Reader) (Capture, error) {
	if !mediatype.IsImageMime(declaredMime) {
		return Capture{}, fmt.Errorf("%w: %s declared %q", ErrNotImage, name, declaredMime)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Capture{}, fmt.Errorf("reading selected file %s: %w", name, err)
	}
	return Capture{
		Bytes:         data,
		DeclaredMime:  declaredMime,
		SuggestedName: name,
	}, nil
}
