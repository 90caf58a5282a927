package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dealerlot/lotposter/display"
	"github.com/dealerlot/lotposter/graph"
	"github.com/dealerlot/lotposter/handles"
	"github.com/dealerlot/lotposter/model"
	"github.com/dealerlot/lotposter/publisher"
	"github.com/dealerlot/lotposter/storage"
	"github.com/dealerlot/lotposter/uploader"
)

type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) Upload(ctx context.Context, ownerScope, ext, contentType string, data []byte) (string, error) {
	f.uploads++
	return fmt.Sprintf("https://cdn.example.com/lot-media/%s", storage.ObjectPath(ownerScope, ext)), nil
}

type fakeBackend struct {
	photoPosts int
	textPosts  int
	staged     int

	lastText     string
	lastImageURL string
}

func (f *fakeBackend) ListPages(ctx context.Context, credential string) ([]graph.Page, error) {
	return nil, nil
}

func (f *fakeBackend) CreatePost(ctx context.Context, pageID, pageCredential, text string) (string, error) {
	f.textPosts++
	return "text-post", nil
}

func (f *fakeBackend) CreatePhotoPost(ctx context.Context, pageID, pageCredential, text, imageURL string) (string, error) {
	f.photoPosts++
	f.lastText = text
	f.lastImageURL = imageURL
	return "photo-post-1", nil
}

func (f *fakeBackend) CreateUnpublishedPhoto(ctx context.Context, pageID, pageCredential, imageURL string) (string, error) {
	f.staged++
	return "staged", nil
}

func (f *fakeBackend) CreatePostWithAttachments(ctx context.Context, pageID, pageCredential, text string, photoIDs []string) (string, error) {
	return "attach-post", nil
}

// Walks one photo through the whole pipeline: mislabeled capture, async
// upload, publish with caption.
func TestCaptureUploadPublishFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := handles.NewTracker(time.Minute)
	defer tracker.Close()
	store := &fakeStorage{}
	up := uploader.NewUploader(store, nil)
	go up.Run(ctx)
	backend := &fakeBackend{}
	p := New(tracker, up, display.NewResolver(nil, display.NewCache(), nil), publisher.NewPublisher(backend, nil))

	// Declared MIME wins over the lying filename.
	pngBytes := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	asset, err := p.CaptureFromFile(ctx, "tenant-7", "IMG.JPG", "image/png", strings.NewReader(string(pngBytes)))
	assert.NoError(t, err)
	assert.Equal(t, "png", asset.Extension)
	assert.Equal(t, "image/png", asset.MimeType)
	assert.True(t, strings.HasPrefix(asset.EphemeralURL, "blob:lotposter/"))

	// Preview works immediately off the ephemeral URL.
	assert.Equal(t, asset.EphemeralURL, p.ResolveForDisplay(ctx, asset.EphemeralURL))

	select {
	case <-asset.Resolved():
	case <-time.After(2 * time.Second):
		t.Fatal("upload never resolved")
	}
	assert.Regexp(t, `^https://cdn\.example\.com/lot-media/tenant-7/\d+-[a-z0-9]+\.png$`, asset.DurableURL())
	assert.Equal(t, 1, store.uploads)

	result := p.Publish(ctx, model.PublishRequest{
		Text:                    "Just arrived!",
		Assets:                  []*model.MediaAsset{asset},
		TargetPlatform:          model.PlatformFacebook,
		TargetAccountID:         "987",
		TargetAccountCredential: "page-token",
	})
	assert.True(t, result.Succeeded())
	assert.Equal(t, "photo-post-1", result.PlatformPostID)
	assert.Equal(t, 1, backend.photoPosts, "one image means exactly one inline photo+caption call")
	assert.Zero(t, backend.staged)
	assert.Zero(t, backend.textPosts)
	assert.Equal(t, "Just arrived!", backend.lastText)
	assert.Equal(t, asset.DurableURL(), backend.lastImageURL)

	// Done with the preview; handle outlives the release by the grace window.
	p.Release(asset)
	_, ok := tracker.Bytes(asset.EphemeralURL)
	assert.True(t, ok)
}

func TestCaptureFromFileRejectsNonImagesWithoutSideEffects(t *testing.T) {
	tracker := handles.NewTracker(time.Minute)
	defer tracker.Close()
	up := uploader.NewUploader(&fakeStorage{}, nil)
	p := New(tracker, up, display.NewResolver(nil, display.NewCache(), nil), publisher.NewPublisher(&fakeBackend{}, nil))

	_, err := p.CaptureFromFile(context.Background(), "tenant-7", "sticker.pdf", "application/pdf", strings.NewReader("%PDF"))
	assert.Error(t, err)
	assert.Empty(t, tracker.Live(), "rejected selections must not register handles")
}
