package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

type fakePutter struct {
	err   error
	calls int

	lastKey         string
	lastContentType string
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if params.Key != nil {
		f.lastKey = *params.Key
	}
	if params.ContentType != nil {
		f.lastContentType = *params.ContentType
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUploadSucceedsOnSDKCall(t *testing.T) {
	putter := &fakePutter{}
	client := NewClient(putter, nil, "lot-media", "https://cdn.example.com", "https://storage.example.com/upload")

	url, err := client.Upload(context.Background(), "tenant-7", "png", "image/png", []byte("png bytes"))
	assert.NoError(t, err)
	assert.Equal(t, 1, putter.calls)
	assert.Equal(t, "image/png", putter.lastContentType)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/lot-media/tenant-7/"), "got %s", url)
	assert.True(t, strings.HasSuffix(url, ".png"), "got %s", url)
}

func TestUploadFallsBackToMultipart(t *testing.T) {
	var gotPath, gotContentType string
	var gotFile []byte
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotPath = r.FormValue("path")
		gotContentType = r.FormValue("contentType")
		file, _, err := r.FormFile("file")
		assert.NoError(t, err)
		defer file.Close()
		gotFile, _ = io.ReadAll(file)
		w.WriteHeader(http.StatusOK)
	}))
	defer endpoint.Close()

	putter := &fakePutter{err: errors.New("sdk coerced the content type")}
	client := NewClient(putter, endpoint.Client(), "lot-media", "https://cdn.example.com", endpoint.URL)

	url, err := client.Upload(context.Background(), "tenant-7", "jpg", "image/jpeg", []byte("jpeg bytes"))
	assert.NoError(t, err, "multipart success must not surface the SDK error")
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, []byte("jpeg bytes"), gotFile)
	assert.Equal(t, fmt.Sprintf("https://cdn.example.com/lot-media/%s", gotPath), url)
}

func TestUploadReportsFailureWhenBothStrategiesFail(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer endpoint.Close()

	putter := &fakePutter{err: errors.New("sdk down")}
	client := NewClient(putter, endpoint.Client(), "lot-media", "https://cdn.example.com", endpoint.URL)

	url, err := client.Upload(context.Background(), "tenant-7", "jpg", "image/jpeg", []byte("x"))
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestObjectPathShape(t *testing.T) {
	path := ObjectPath("tenant-7", "webp")
	assert.Regexp(t, `^tenant-7/\d+-[a-z0-9]+\.webp$`, path)

	// Two uploads of identical bytes never collide.
	assert.NotEqual(t, path, ObjectPath("tenant-7", "webp"))
}
