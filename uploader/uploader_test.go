package uploader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dealerlot/lotposter/model"
)

type MockBlobUploader struct {
	mock.Mock
}

func (m *MockBlobUploader) Upload(ctx context.Context, ownerScope, ext, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, ownerScope, ext, contentType, data)
	return args.Get(0).(string), args.Error(1)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) AddMediaAsset(ctx context.Context, ownerScope, mimeType, extension string) (string, error) {
	args := m.Called(ctx, ownerScope, mimeType, extension)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockAssetStore) SetDurableURL(ctx context.Context, assetID, durableURL string) error {
	args := m.Called(ctx, assetID, durableURL)
	return args.Error(0)
}

func waitResolved(t *testing.T, asset *model.MediaAsset) {
	t.Helper()
	select {
	case <-asset.Resolved():
	case <-time.After(2 * time.Second):
		t.Fatal("asset never resolved")
	}
}

func TestRunResolvesAssetOnSuccess(t *testing.T) {
	storage := new(MockBlobUploader)
	storage.On("Upload", mock.Anything, "tenant-7", "png", "image/png", []byte("png bytes")).
		Return("https://cdn.example.com/lot-media/tenant-7/1-a.png", nil)
	store := new(MockAssetStore)
	store.On("AddMediaAsset", mock.Anything, "tenant-7", "image/png", "png").Return("rec-1", nil)
	store.On("SetDurableURL", mock.Anything, "rec-1", "https://cdn.example.com/lot-media/tenant-7/1-a.png").Return(nil)

	u := NewUploader(storage, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	asset := model.NewMediaAsset("h1", "blob:lotposter/h1", "image/png", "png", "tenant-7")
	u.Enqueue(ctx, asset, []byte("png bytes"))

	waitResolved(t, asset)
	assert.Equal(t, "https://cdn.example.com/lot-media/tenant-7/1-a.png", asset.DurableURL())
	storage.AssertNumberOfCalls(t, "Upload", 1)
	store.AssertNumberOfCalls(t, "SetDurableURL", 1)
}

func TestRunLeavesAssetPreviewOnlyOnFailure(t *testing.T) {
	storage := new(MockBlobUploader)
	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("both strategies failed"))

	u := NewUploader(storage, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	asset := model.NewMediaAsset("h2", "blob:lotposter/h2", "image/jpeg", "jpg", "tenant-7")
	u.Enqueue(ctx, asset, []byte("x"))

	waitResolved(t, asset)
	assert.Empty(t, asset.DurableURL(), "a failed upload must never leave an ephemeral URL posing as durable")
}

func TestEnqueueContinuesWhenLedgerIsDown(t *testing.T) {
	storage := new(MockBlobUploader)
	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/lot-media/tenant-7/2-b.jpg", nil)
	store := new(MockAssetStore)
	store.On("AddMediaAsset", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("ledger down"))

	u := NewUploader(storage, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	asset := model.NewMediaAsset("h3", "blob:lotposter/h3", "image/jpeg", "jpg", "tenant-7")
	u.Enqueue(ctx, asset, []byte("x"))

	waitResolved(t, asset)
	assert.NotEmpty(t, asset.DurableURL(), "ledger failures must not block uploads")
	store.AssertNotCalled(t, "SetDurableURL", mock.Anything, mock.Anything, mock.Anything)
}
