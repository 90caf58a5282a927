package handles

import (
	"fmt"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

// DefaultReleaseGrace is how long a released handle stays readable so that
// slower consumers (the display resolver's inline conversion, an in-flight
// upload) finish before the bytes go away. Several seconds is needed in
// practice.
const DefaultReleaseGrace = 5 * time.Second

type entry struct {
	data  []byte
	timer *time.Timer
}

/*
Tracker issues ephemeral blob URLs for captured bytes and frees them after a
grace delay. It is a process-scoped store that gets injected into whatever
needs it, so tests can run an isolated instance per case.
*/
type Tracker struct {
	grace time.Duration

	mu     sync.Mutex
	live   map[string]*entry
	closed bool
}

func NewTracker(grace time.Duration) *Tracker {
	if grace <= 0 {
		grace = DefaultReleaseGrace
	}
	return &Tracker{
		grace: grace,
		live:  map[string]*entry{},
	}
}

// Acquire registers the bytes in the live-set and returns the ephemeral URL
// wrapping them. It always succeeds.
func (t *Tracker) Acquire(data []byte) string {
	url := fmt.Sprintf("blob:lotposter/%s", cuid.New())
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		// Acquire after teardown still hands out a URL, it just resolves to
		// nothing. Matches the page-unload behavior.
		log.WithField("url", url).Warn("handle acquired after tracker close")
		return url
	}
	t.live[url] = &entry{data: data}
	return url
}

// Bytes reads the handle's data. The second return is false once the handle
// has been freed or was never issued.
func (t *Tracker) Bytes(url string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.live[url]
	if !ok {
		return nil, false
	}
	return e.data, true
}

/*
Release schedules the actual free for after the grace window. Releasing the
same URL again, or a URL that was never acquired, is a no-op and never
panics.
*/
func (t *Tracker) Release(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.live[url]
	if !ok || e.timer != nil {
		return
	}
	e.timer = time.AfterFunc(t.grace, func() {
		t.free(url)
	})
}

func (t *Tracker) free(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[url]; !ok {
		return
	}
	delete(t.live, url)
	log.WithField("url", url).Debug("freed ephemeral handle")
}

// Live returns the URLs currently readable, pending frees included.
func (t *Tracker) Live() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Keys(t.live)
}

// Close is the page-teardown path: every handle is freed immediately and
// pending grace timers are cancelled.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for url, e := range t.live {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(t.live, url)
	}
	t.closed = true
}
