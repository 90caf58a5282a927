// Package uploader is the asynchronous path from a captured asset to its
// durable URL.
package uploader

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/model"
)

// BlobUploader persists bytes and returns the durable public URL.
type BlobUploader interface {
	Upload(ctx context.Context, ownerScope, ext, contentType string, data []byte) (string, error)
}

// AssetStore is the publish ledger's media side. May be absent.
type AssetStore interface {
	AddMediaAsset(ctx context.Context, ownerScope, mimeType, extension string) (string, error)
	SetDurableURL(ctx context.Context, assetID, durableURL string) error
}

type job struct {
	asset    *model.MediaAsset
	data     []byte
	recordID string
}

/*
Uploader drains captured assets to object storage one at a time. Uploads are
sequential: each job mutates its asset in place before the next starts, and
concurrent writes into the same tenant path namespace would need coordination
the storage layout doesn't provide.
*/
type Uploader struct {
	storage BlobUploader
	store   AssetStore
	queue   chan job
}

func NewUploader(storage BlobUploader, store AssetStore) *Uploader {
	return &Uploader{
		storage: storage,
		store:   store,
		queue:   make(chan job, 64),
	}
}

// Enqueue registers the asset in the ledger and queues its upload. The
// asset's Resolved channel closes once the outcome is known.
func (u *Uploader) Enqueue(ctx context.Context, asset *model.MediaAsset, data []byte) {
	var recordID string
	if u.store != nil {
		var err error
		recordID, err = u.store.AddMediaAsset(ctx, asset.OwnerScope, asset.MimeType, asset.Extension)
		if err != nil {
			log.Warnf("asset not recorded in ledger, upload continues: %v", err)
		}
	}
	select {
	case u.queue <- job{asset: asset, data: data, recordID: recordID}:
	case <-ctx.Done():
		asset.MarkUploadFailed()
	}
}

// Run drains the queue until the context closes.
func (u *Uploader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Debug("exiting uploader by closing channel")
			return nil
		case j := <-u.queue:
			u.process(ctx, j)
		}
	}
}

func (u *Uploader) process(ctx context.Context, j job) {
	durableURL, err := u.storage.Upload(ctx, j.asset.OwnerScope, j.asset.Extension, j.asset.MimeType, j.data)
	if err != nil {
		/*
			The asset stays preview-only on its ephemeral URL. Deliberately
			NOT presenting the ephemeral URL as durable here: it stops
			resolving when the session ends, and pretending otherwise
			produces posts with dead images.
		*/
		log.WithField("handleID", j.asset.HandleID).Warnf("upload failed permanently, asset is preview-only: %v", err)
		j.asset.MarkUploadFailed()
		return
	}

	j.asset.SetDurableURL(durableURL)
	log.WithField("handleID", j.asset.HandleID).WithField("durableURL", durableURL).Debug("asset resolved")

	if u.store != nil && j.recordID != "" {
		if err := u.store.SetDurableURL(ctx, j.recordID, durableURL); err != nil {
			log.Warnf("durable URL not recorded in ledger: %v", err)
		}
	}
}
