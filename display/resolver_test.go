package display

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePassesThroughInlineAndEphemeralURLs(t *testing.T) {
	resolver := NewResolver(nil, NewCache(), nil)

	dataURL := "data:image/png;base64,aWNvbg=="
	assert.Equal(t, dataURL, resolver.Resolve(context.Background(), dataURL))

	blobURL := "blob:lotposter/c1234abcd"
	assert.Equal(t, blobURL, resolver.Resolve(context.Background(), blobURL))
}

func TestResolveFetchesDurableURLOnceAndCaches(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	cache := NewCache()
	resolver := NewResolver(server.Client(), cache, nil)

	want := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString([]byte("png bytes")))

	first := resolver.Resolve(context.Background(), server.URL+"/lot-media/tenant-7/1-a.png")
	second := resolver.Resolve(context.Background(), server.URL+"/lot-media/tenant-7/1-a.png")

	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, fetches, "second call must be cache-served with no network fetch")
	assert.Equal(t, 1, cache.Len())
}

func TestResolveFallsBackToPlaceholderAndReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	var failedURL string
	resolver := NewResolver(server.Client(), NewCache(), func(url string, err error) {
		failedURL = url
		assert.Error(t, err)
	})

	got := resolver.Resolve(context.Background(), server.URL+"/missing.jpg")
	assert.Equal(t, PlaceholderDataURL, got)
	assert.Equal(t, server.URL+"/missing.jpg", failedURL)
}

func TestResolveDoesNotRetryAfterFailure(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer server.Close()

	failures := 0
	resolver := NewResolver(server.Client(), NewCache(), func(string, error) { failures++ })

	url := server.URL + "/flaky.jpg"
	assert.Equal(t, PlaceholderDataURL, resolver.Resolve(context.Background(), url))
	assert.Equal(t, PlaceholderDataURL, resolver.Resolve(context.Background(), url))
	assert.Equal(t, 1, fetches, "a failed URL must not be fetched again")
	assert.Equal(t, 1, failures)
}
