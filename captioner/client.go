// Package captioner is a client for the caption text-generation service. The
// service is an opaque collaborator: structured prompt in, one string out.
package captioner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type Client struct {
	baseURL    string
	apiKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string, baseURL url.URL) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL.String(),
		HTTPClient: http.DefaultClient,
	}
}

func (c Client) GenerateCaption(prompt CaptionPrompt) (string, error) {
	reqBody, err := json.Marshal(prompt)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/generate-caption", c.baseURL), bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Add("X-API-KEY", c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("captioner returned %s", resp.Status)
	}

	var gcr GenerateCaptionResponse
	if err = json.Unmarshal(respBody, &gcr); err != nil {
		return "", err
	}
	return gcr.Caption, nil
}
