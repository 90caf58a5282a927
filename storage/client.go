// Package storage pushes normalized image blobs into the deployment's object
// storage bucket and resolves their permanent public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
)

// ObjectPutter is the slice of the S3 API the client needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

/*
Client uploads blobs under a deterministic per-tenant path and returns the
asset's public URL.

Two strategies are tried in order: the SDK PutObject call with explicit
content-type metadata, then a raw multipart form POST against the storage
HTTP endpoint. The multipart path exists because the SDK has been seen
coercing content types on some backends; going through plain HTTP sidesteps
that.
*/
type Client struct {
	api            ObjectPutter
	httpClient     *http.Client
	bucket         string
	publicBaseURL  string
	uploadEndpoint string
}

func NewClient(api ObjectPutter, httpClient *http.Client, bucket, publicBaseURL, uploadEndpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		api:            api,
		httpClient:     httpClient,
		bucket:         bucket,
		publicBaseURL:  publicBaseURL,
		uploadEndpoint: uploadEndpoint,
	}
}

// ObjectPath builds the per-tenant storage path: {ownerScope}/{ts}-{rand}.{ext}.
func ObjectPath(ownerScope, ext string) string {
	return fmt.Sprintf("%s/%d-%s.%s", ownerScope, time.Now().UnixMilli(), cuid.Slug(), ext)
}

/*
Upload persists the blob and returns its durable public URL.

The URL is constructed locally from the known base, bucket and path rather
than read back from the API response: some backends intermittently omit URL
fields on success, and the path is deterministic anyway.
*/
func (c *Client) Upload(ctx context.Context, ownerScope, ext, contentType string, data []byte) (string, error) {
	path := ObjectPath(ownerScope, ext)

	sdkErr := c.putObject(ctx, path, contentType, data)
	if sdkErr == nil {
		return c.PublicURL(path), nil
	}
	log.WithField("path", path).Warnf("SDK upload failed, retrying as multipart form: %v", sdkErr)

	if formErr := c.putMultipart(ctx, path, contentType, data); formErr != nil {
		return "", fmt.Errorf("upload failed on both strategies: sdk: %v; multipart: %w", sdkErr, formErr)
	}
	return c.PublicURL(path), nil
}

// PublicURL is {storageBase}/{bucket}/{path}.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, path)
}

func (c *Client) putObject(ctx context.Context, path, contentType string, data []byte) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

func (c *Client) putMultipart(ctx context.Context, path, contentType string, data []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("bucket", c.bucket); err != nil {
		return err
	}
	if err := writer.WriteField("path", path); err != nil {
		return err
	}
	if err := writer.WriteField("contentType", contentType); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("file", path)
	if err != nil {
		return err
	}
	if _, err = part.Write(data); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadEndpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("storage endpoint returned %s", resp.Status)
	}
	return nil
}
