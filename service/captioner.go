package service

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"

	"github.com/dealerlot/lotposter/captioner"
	"github.com/dealerlot/lotposter/config"
)

type CaptionerService struct {
	client *captioner.Client
}

func NewCaptionerService(cfg config.Config, secretsManagerClient *secretsmanager.Client) *CaptionerService {
	// Get the captioner secrets from AWS Secrets Manager
	result, err := secretsManagerClient.GetSecretValue(
		context.Background(),
		&secretsmanager.GetSecretValueInput{
			SecretId: aws.String(cfg.Captioner.SecretPath),
		},
	)
	if err != nil {
		log.Fatal(err.Error())
	}
	var captionerSecrets config.CaptionerSecretData
	err = json.Unmarshal([]byte(*result.SecretString), &captionerSecrets)
	if err != nil {
		log.Panicf("captioner secrets read error: %v", err)
	}

	client := captioner.NewClient(captionerSecrets.ApiKey, cfg.Captioner.ApiURL)
	log.Infof("captioner client initialized. Host: %s", cfg.Captioner.ApiURL.String())

	return &CaptionerService{
		client: client,
	}
}

// GenerateCaption asks the text-generation service for a post body. The
// service is opaque; whatever string comes back is used as-is.
func (s *CaptionerService) GenerateCaption(prompt captioner.CaptionPrompt) (string, error) {
	return s.client.GenerateCaption(prompt)
}
