// Package display maps any asset URL into something a rendering surface can
// show without cross-origin failures.
package display

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// placeholderSVG renders as a neutral gray tile wherever an image could not
// be fetched.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="160" height="120"><rect width="160" height="120" fill="#d4d4d4"/><text x="80" y="64" text-anchor="middle" fill="#737373" font-size="12">image unavailable</text></svg>`

// PlaceholderDataURL is returned for every failed resolution.
var PlaceholderDataURL = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(placeholderSVG))

/*
Cache stores resolved representations keyed by source URL for the life of the
process. There is no invalidation: storage URLs are immutable once written,
new uploads always get a new path. It is an explicit store injected into the
resolver so tests can run isolated instances.
*/
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: map[string]string{}}
}

func (c *Cache) get(url string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[url]
	return v, ok
}

func (c *Cache) put(url, rendered string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = rendered
}

// Len reports how many source URLs have been resolved so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

/*
Resolver converts asset URLs to renderable ones. Inline data URLs and
ephemeral blob URLs pass through unchanged; durable storage URLs are fetched
once, inlined as base64 and cached. Failures degrade to a placeholder and are
reported through the callback; Resolve never returns an error and never
retries a URL that already failed.
*/
type Resolver struct {
	httpClient *http.Client
	cache      *Cache
	onFailure  func(url string, err error)
}

func NewResolver(httpClient *http.Client, cache *Cache, onFailure func(url string, err error)) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{
		httpClient: httpClient,
		cache:      cache,
		onFailure:  onFailure,
	}
}

func (r *Resolver) Resolve(ctx context.Context, url string) string {
	// Already inline, nothing to fetch.
	if strings.HasPrefix(url, "data:") {
		return url
	}
	// Ephemeral handles are same-origin to the page.
	if strings.HasPrefix(url, "blob:") {
		return url
	}

	if rendered, ok := r.cache.get(url); ok {
		return rendered
	}

	rendered, err := r.inline(ctx, url)
	if err != nil {
		log.WithField("url", url).Warnf("display resolution failed: %v", err)
		if r.onFailure != nil {
			r.onFailure(url, err)
		}
		// Caching the placeholder is what makes the failure final: the next
		// Resolve for this URL serves it without another fetch.
		r.cache.put(url, PlaceholderDataURL)
		return PlaceholderDataURL
	}

	r.cache.put(url, rendered)
	return rendered
}

func (r *Resolver) inline(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
