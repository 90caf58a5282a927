// Package pipeline is the surface the rest of the dashboard talks to:
// capture an image, watch it become durable, resolve anything for display,
// publish a post.
package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/dealerlot/lotposter/capture"
	"github.com/dealerlot/lotposter/display"
	"github.com/dealerlot/lotposter/handles"
	"github.com/dealerlot/lotposter/mediatype"
	"github.com/dealerlot/lotposter/model"
	"github.com/dealerlot/lotposter/publisher"
	"github.com/dealerlot/lotposter/uploader"
)

type Pipeline struct {
	tracker   *handles.Tracker
	uploader  *uploader.Uploader
	resolver  *display.Resolver
	publisher *publisher.Publisher

	mu     sync.Mutex
	assets map[string]*model.MediaAsset
}

func New(tracker *handles.Tracker, up *uploader.Uploader, resolver *display.Resolver, pub *publisher.Publisher) *Pipeline {
	return &Pipeline{
		tracker:   tracker,
		uploader:  up,
		resolver:  resolver,
		publisher: pub,
		assets:    map[string]*model.MediaAsset{},
	}
}

/*
CaptureFromCamera snapshots the device and returns the asset with its
ephemeral URL set immediately; the durable URL arrives asynchronously
(asset.Resolved()). ErrNoCamera means fall back to CaptureFromFile.
*/
func (p *Pipeline) CaptureFromCamera(ctx context.Context, ownerScope string, device capture.Device) (*model.MediaAsset, error) {
	session, err := capture.Open(ctx, device)
	if err != nil {
		return nil, err
	}
	cap, err := session.Snapshot()
	if err != nil {
		return nil, err
	}
	return p.admit(ctx, ownerScope, cap), nil
}

// CaptureFromFile admits a user-selected file. Non-image selections are
// rejected with ErrNotImage and nothing is registered.
func (p *Pipeline) CaptureFromFile(ctx context.Context, ownerScope, name, declaredMime string, r io.Reader) (*model.MediaAsset, error) {
	cap, err := capture.FromFile(name, declaredMime, r)
	if err != nil {
		return nil, err
	}
	return p.admit(ctx, ownerScope, cap), nil
}

func (p *Pipeline) admit(ctx context.Context, ownerScope string, cap capture.Capture) *model.MediaAsset {
	ext, mime := mediatype.Normalize(cap.SuggestedName, cap.DeclaredMime, cap.Bytes)
	ephemeralURL := p.tracker.Acquire(cap.Bytes)
	asset := model.NewMediaAsset(ephemeralURL, ephemeralURL, mime, ext, ownerScope)
	p.mu.Lock()
	p.assets[ephemeralURL] = asset
	p.mu.Unlock()
	p.uploader.Enqueue(ctx, asset, cap.Bytes)
	return asset
}

// AssetsByEphemeralURL returns the admitted assets behind the given
// ephemeral URLs, in order. Unknown URLs are skipped.
func (p *Pipeline) AssetsByEphemeralURL(urls []string) []*model.MediaAsset {
	p.mu.Lock()
	defer p.mu.Unlock()
	assets := make([]*model.MediaAsset, 0, len(urls))
	for _, url := range urls {
		if asset, ok := p.assets[url]; ok {
			assets = append(assets, asset)
		}
	}
	return assets
}

// ResolveForDisplay maps any asset URL to one a rendering surface can show.
func (p *Pipeline) ResolveForDisplay(ctx context.Context, url string) string {
	return p.resolver.Resolve(ctx, url)
}

// Publish executes the platform protocol for one request.
func (p *Pipeline) Publish(ctx context.Context, req model.PublishRequest) model.PublishResult {
	return p.publisher.Publish(ctx, req)
}

// Release ends the caller's use of an asset's ephemeral handle; the actual
// free happens after the tracker's grace window.
func (p *Pipeline) Release(asset *model.MediaAsset) {
	p.mu.Lock()
	delete(p.assets, asset.EphemeralURL)
	p.mu.Unlock()
	p.tracker.Release(asset.EphemeralURL)
}
