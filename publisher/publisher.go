package publisher

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/graph"
	"github.com/dealerlot/lotposter/model"
)

/*
PlatformBackend is everything the orchestrator needs from the social
platform. The live graph client and the local simulation both satisfy it, so
the publish protocol is identical either way.
*/
type PlatformBackend interface {
	ListPages(ctx context.Context, credential string) ([]graph.Page, error)
	CreatePost(ctx context.Context, pageID, pageCredential, text string) (string, error)
	CreatePhotoPost(ctx context.Context, pageID, pageCredential, text, imageURL string) (string, error)
	CreateUnpublishedPhoto(ctx context.Context, pageID, pageCredential, imageURL string) (string, error)
	CreatePostWithAttachments(ctx context.Context, pageID, pageCredential, text string, photoIDs []string) (string, error)
}

// PublishRecorder persists outcomes to the publish ledger.
type PublishRecorder interface {
	AddPublishLog(ctx context.Context, platform model.Platform, pageID string, attachedPhotos int, result model.PublishResult) error
}

type Publisher struct {
	backend  PlatformBackend
	recorder PublishRecorder
}

// NewPublisher wires the orchestrator to a backend. recorder may be nil;
// ledger writes are best effort and never affect the publish outcome.
func NewPublisher(backend PlatformBackend, recorder PublishRecorder) *Publisher {
	return &Publisher{
		backend:  backend,
		recorder: recorder,
	}
}

/*
Publish turns one PublishRequest into one PublishResult.

Protocol by image count:

	zero images  -> one plain feed post
	one image    -> one inline photo+caption call
	two or more  -> stage each image as an unpublished photo, then one feed
	                post referencing the collected photo IDs

Assets that never acquired a durable URL are dropped with a warning before
the protocol starts; ephemeral URLs are only resolvable inside this process
and mean nothing to the platform. A staging failure drops that one asset. If
every staging call fails the post falls back to text-only rather than
failing. Only the final call's failure fails the whole request.
*/
func (p *Publisher) Publish(ctx context.Context, req model.PublishRequest) model.PublishResult {
	durableURLs := make([]string, 0, len(req.Assets))
	for _, asset := range req.Assets {
		if url := asset.DurableURL(); url != "" {
			durableURLs = append(durableURLs, url)
		} else {
			log.WithField("handleID", asset.HandleID).Warn("dropping asset with no durable URL from publish")
		}
	}

	var result model.PublishResult
	switch len(durableURLs) {
	case 0:
		result = p.textOnly(ctx, req)
	case 1:
		result = p.singlePhoto(ctx, req, durableURLs[0])
	default:
		result = p.staged(ctx, req, durableURLs)
	}

	p.record(ctx, req, len(durableURLs), result)
	return result
}

func (p *Publisher) textOnly(ctx context.Context, req model.PublishRequest) model.PublishResult {
	postID, err := p.backend.CreatePost(ctx, req.TargetAccountID, req.TargetAccountCredential, req.Text)
	if err != nil {
		return failure(model.PublishStageTextPost, err)
	}
	return model.PublishResult{PlatformPostID: postID}
}

func (p *Publisher) singlePhoto(ctx context.Context, req model.PublishRequest, imageURL string) model.PublishResult {
	postID, err := p.backend.CreatePhotoPost(ctx, req.TargetAccountID, req.TargetAccountCredential, req.Text, imageURL)
	if err != nil {
		return failure(model.PublishStagePhotoPost, err)
	}
	return model.PublishResult{PlatformPostID: postID}
}

func (p *Publisher) staged(ctx context.Context, req model.PublishRequest, imageURLs []string) model.PublishResult {
	// Sequential on purpose: each upload has to yield its ID before the
	// aggregate call can be built, and concurrent uploads into the same
	// tenant namespace would need coordination we don't have.
	photoIDs := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		photoID, err := p.backend.CreateUnpublishedPhoto(ctx, req.TargetAccountID, req.TargetAccountCredential, imageURL)
		if err != nil {
			log.WithField("imageURL", imageURL).Warnf("staging failed, asset will not be attached: %v", err)
			continue
		}
		photoIDs = append(photoIDs, photoID)
	}

	if len(photoIDs) == 0 {
		log.Warn("every staging call failed, falling back to text-only post")
		return p.textOnly(ctx, req)
	}

	postID, err := p.backend.CreatePostWithAttachments(ctx, req.TargetAccountID, req.TargetAccountCredential, req.Text, photoIDs)
	if err != nil {
		// The one condition that fails the whole request.
		return failure(model.PublishStageAttachments, err)
	}
	return model.PublishResult{PlatformPostID: postID}
}

func (p *Publisher) record(ctx context.Context, req model.PublishRequest, attachedPhotos int, result model.PublishResult) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.AddPublishLog(ctx, req.TargetPlatform, req.TargetAccountID, attachedPhotos, result); err != nil {
		log.Warnf("publish succeeded but wasn't recorded in the ledger: %v", err)
	}
}

func failure(stage model.PublishStage, err error) model.PublishResult {
	return model.PublishResult{
		Failure: &model.PublishFailure{
			Stage:  stage,
			Detail: fmt.Sprintf("%v", err),
		},
	}
}
