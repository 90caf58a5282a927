package service

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/config"
	"github.com/dealerlot/lotposter/graph"
)

/*
PlatformService is the live platform backend: a thin pass-through to the
graph client, constructed with the credential resolved at startup.
*/
type PlatformService struct {
	client     *graph.Client
	credential string
	pageID     string
}

func NewPlatformService(cfg config.Config, credential string) *PlatformService {
	client := graph.NewClient(cfg.Graph.ApiURL)
	log.Infof("graph client initialized. Host: %s", cfg.Graph.ApiURL.String())
	return &PlatformService{
		client:     client,
		credential: credential,
		pageID:     cfg.Graph.PageID,
	}
}

// Credential is the process-wide platform credential resolved at startup.
func (s *PlatformService) Credential() string {
	return s.credential
}

// PageID is the default page the dealership posts to.
func (s *PlatformService) PageID() string {
	return s.pageID
}

func (s *PlatformService) ListPages(ctx context.Context, credential string) ([]graph.Page, error) {
	return s.client.ListPages(ctx, credential)
}

func (s *PlatformService) CreatePost(ctx context.Context, pageID, pageCredential, text string) (string, error) {
	return s.client.CreatePost(ctx, pageID, pageCredential, text)
}

func (s *PlatformService) CreatePhotoPost(ctx context.Context, pageID, pageCredential, text, imageURL string) (string, error) {
	return s.client.CreatePhotoPost(ctx, pageID, pageCredential, text, imageURL)
}

func (s *PlatformService) CreateUnpublishedPhoto(ctx context.Context, pageID, pageCredential, imageURL string) (string, error) {
	return s.client.CreateUnpublishedPhoto(ctx, pageID, pageCredential, imageURL)
}

func (s *PlatformService) CreatePostWithAttachments(ctx context.Context, pageID, pageCredential, text string, photoIDs []string) (string, error) {
	return s.client.CreatePostWithAttachments(ctx, pageID, pageCredential, text, photoIDs)
}

/*
ResolvePlatformCredential finds the platform credential: a token set directly
in the environment wins, otherwise the configured Secrets Manager path is
read. An empty result is not an error; it just means publishing runs
simulated.
*/
func ResolvePlatformCredential(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) (string, error) {
	if cfg.Graph.AccessToken != "" {
		return cfg.Graph.AccessToken, nil
	}
	if cfg.Graph.SecretPath == "" {
		return "", nil
	}
	result, err := secretsManagerClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.Graph.SecretPath)})
	if err != nil {
		return "", err
	}
	var platformSecrets config.PlatformSecretData
	if err = json.Unmarshal([]byte(*result.SecretString), &platformSecrets); err != nil {
		return "", err
	}
	return platformSecrets.AccessToken, nil
}
