package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	log "github.com/sirupsen/logrus"
)

// snapshotQuality is the fixed JPEG quality every camera snapshot is encoded
// at.
const snapshotQuality = 85

/*
Device is a video input device. Acquire takes the exclusive device lock;
Frame reads the current frame from the live buffer; Release stops all tracks
and gives the lock back. Only one session may hold the device at a time.
*/
type Device interface {
	Acquire(ctx context.Context) error
	Frame() (image.Image, error)
	Release()
}

/*
Session is a scoped camera acquisition. The device is released on every exit
path: a successful Snapshot, an errored Snapshot, or Cancel. Holding the
device past the session leaks the device lock, so release is guaranteed and
idempotent.
*/
type Session struct {
	device Device

	mu       sync.Mutex
	released bool
}

// Open acquires the device. Unavailability and permission denial surface as
// ErrNoCamera so the caller can fall back to file selection; they are never
// fatal.
func Open(ctx context.Context, device Device) (*Session, error) {
	if err := device.Acquire(ctx); err != nil {
		log.WithField("cause", err).Info("camera unavailable, caller should fall back to file selection")
		return nil, fmt.Errorf("%w: %v", ErrNoCamera, err)
	}
	return &Session{device: device}, nil
}

// Snapshot captures the current frame as a JPEG blob at fixed quality and
// releases the device, success or not.
func (s *Session) Snapshot() (Capture, error) {
	defer s.release()

	frame, err := s.device.Frame()
	if err != nil {
		return Capture{}, fmt.Errorf("reading camera frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: snapshotQuality}); err != nil {
		return Capture{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	return Capture{
		Bytes:         buf.Bytes(),
		DeclaredMime:  "image/jpeg",
		SuggestedName: "camera-capture.jpg",
	}, nil
}

// Cancel releases the device without capturing.
func (s *Session) Cancel() {
	s.release()
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.device.Release()
}
