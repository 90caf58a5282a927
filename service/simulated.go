package service

import (
	"context"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/graph"
)

/*
SimulatedPlatform stands in for the live platform when no credential is
configured (or test mode is on). Every call logs what would have happened and
mints an ID, so the orchestrator and everything above it runs unchanged.
*/
type SimulatedPlatform struct{}

func NewSimulatedPlatform() *SimulatedPlatform {
	log.Info("no platform credential configured, publishing is simulated")
	return &SimulatedPlatform{}
}

func (s *SimulatedPlatform) ListPages(ctx context.Context, credential string) ([]graph.Page, error) {
	return []graph.Page{
		{ID: "sim-page", Name: "Simulated Dealership Page", PageCredential: "sim-page-token"},
	}, nil
}

func (s *SimulatedPlatform) CreatePost(ctx context.Context, pageID, pageCredential, text string) (string, error) {
	postID := cuid.New()
	log.WithField("pageID", pageID).WithField("text", text).Infof("simulating text post %s", postID)
	return postID, nil
}

func (s *SimulatedPlatform) CreatePhotoPost(ctx context.Context, pageID, pageCredential, text, imageURL string) (string, error) {
	postID := cuid.New()
	log.WithField("pageID", pageID).WithField("imageURL", imageURL).Infof("simulating photo post %s", postID)
	return postID, nil
}

func (s *SimulatedPlatform) CreateUnpublishedPhoto(ctx context.Context, pageID, pageCredential, imageURL string) (string, error) {
	photoID := cuid.New()
	log.WithField("pageID", pageID).WithField("imageURL", imageURL).Infof("simulating staged photo %s", photoID)
	return photoID, nil
}

func (s *SimulatedPlatform) CreatePostWithAttachments(ctx context.Context, pageID, pageCredential, text string, photoIDs []string) (string, error) {
	postID := cuid.New()
	log.WithField("pageID", pageID).WithField("photoIDs", photoIDs).Infof("simulating post with attachments %s", postID)
	return postID, nil
}
