// Package graph is a minimal client for the social platform's graph-style
// HTTP API: page listing, feed posts, and staged photo uploads.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	baseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL url.URL) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL.String(), "/"),
		HTTPClient: http.DefaultClient,
	}
}

// ListPages returns the pages the credential can post to.
func (c *Client) ListPages(ctx context.Context, credential string) ([]Page, error) {
	params := url.Values{}
	params.Set("access_token", credential)

	var resp ListPagesResponse
	if err := c.get(ctx, "/me/accounts", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreatePost publishes a plain text feed post and returns the platform post
// ID.
func (c *Client) CreatePost(ctx context.Context, pageID, pageCredential, text string) (string, error) {
	params := url.Values{}
	params.Set("message", text)
	params.Set("access_token", pageCredential)

	var resp CreatePostResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/feed", pageID), params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreatePhotoPost publishes one image with its caption in a single call.
func (c *Client) CreatePhotoPost(ctx context.Context, pageID, pageCredential, text, imageURL string) (string, error) {
	params := url.Values{}
	params.Set("url", imageURL)
	params.Set("caption", text)
	params.Set("access_token", pageCredential)

	var resp CreatePhotoResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/photos", pageID), params, &resp); err != nil {
		return "", err
	}
	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return resp.ID, nil
}

/*
CreateUnpublishedPhoto uploads an image without publishing it and returns the
platform-assigned photo ID. The API cannot attach more than one raw image URL
to a single post call, so multi-image posts stage each image through here
first and then reference the IDs.
*/
func (c *Client) CreateUnpublishedPhoto(ctx context.Context, pageID, pageCredential, imageURL string) (string, error) {
	params := url.Values{}
	params.Set("url", imageURL)
	params.Set("published", "false")
	params.Set("access_token", pageCredential)

	var resp CreatePhotoResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/photos", pageID), params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreatePostWithAttachments publishes a feed post referencing previously
// staged photos by ID.
func (c *Client) CreatePostWithAttachments(ctx context.Context, pageID, pageCredential, text string, photoIDs []string) (string, error) {
	params := url.Values{}
	params.Set("message", text)
	params.Set("access_token", pageCredential)
	for i, photoID := range photoIDs {
		attached, err := json.Marshal(AttachedMedia{MediaFBID: photoID})
		if err != nil {
			return "", err
		}
		params.Set(fmt.Sprintf("attached_media[%d]", i), string(attached))
	}

	var resp CreatePostResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/feed", pageID), params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode()), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Detail.Message != "" {
			errResp.StatusCode = resp.StatusCode
			return &errResp
		}
		return fmt.Errorf("graph API returned %s", resp.Status)
	}

	return json.Unmarshal(body, out)
}
