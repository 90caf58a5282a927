package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Storage   StorageConfig
	Graph     GraphConfig
	Captioner CaptionerConfig

	PostgresURL        string
	PostgresSecretPath string

	HandleReleaseGrace time.Duration

	LogLevel        log.Level
	LogFormat       LogFormat
	TestModeEnabled bool
}

type StorageConfig struct {
	// PublicBaseURL is the prefix public object URLs are constructed from.
	PublicBaseURL string
	Bucket        string
	// UploadEndpoint is the raw HTTP endpoint used by the multipart fallback
	// upload strategy.
	UploadEndpoint string
}

type GraphConfig struct {
	ApiURL     url.URL
	PageID     string
	SecretPath string
	// AccessToken set directly in the environment short-circuits the Secrets
	// Manager lookup.
	AccessToken string
}

type CaptionerConfig struct {
	ApiURL     url.URL
	SecretPath string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Postgres connection string to use for database connections
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	// Public base URL that durable object URLs are constructed from
	EnvfileKeyStorageBaseURL = "STORAGE_BASE_URL"
	// Bucket objects are uploaded into; one logical bucket per deployment
	EnvfileKeyStorageBucket = "STORAGE_BUCKET"
	// HTTP endpoint for the raw multipart upload fallback
	EnvfileKeyStorageUploadEndpoint = "STORAGE_UPLOAD_ENDPOINT"

	// Base URL of the social platform's graph API
	EnvfileKeyGraphAPI = "GRAPH_API"
	// Default page the dealership posts to
	EnvfileKeyGraphPageID = "PLATFORM_PAGE_ID"
	// AWS Secrets Manager path where the platform credential can be found
	EnvfileKeyGraphSecretPath = "PLATFORM_SECRETS_PATH"
	// Platform credential supplied directly, bypassing Secrets Manager.
	// Absence of both selects the simulated backend.
	EnvfileKeyGraphAccessToken = "PLATFORM_ACCESS_TOKEN"

	// Base URL of the caption generation service
	EnvfileKeyCaptionerAPI = "CAPTIONER_API"
	// AWS Secrets Manager path where the captioner API key can be found
	EnvfileKeyCaptionerSecretPath = "CAPTIONER_SECRETS_PATH"

	// Seconds a released ephemeral handle stays readable for slow consumers
	EnvfileKeyHandleReleaseGrace = "HANDLE_RELEASE_GRACE"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Enables "test mode" (publishing is simulated regardless of credentials)
	EnvfileKeyTestMode = "TEST_MODE"
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	graphURL, err := url.Parse(getConfigString(EnvfileKeyGraphAPI))
	if err != nil {
		log.Fatalf("error parsing graph API URL: %v", err)
	}

	captionerURL, err := url.Parse(getConfigString(EnvfileKeyCaptionerAPI))
	if err != nil {
		log.Fatalf("error parsing captioner URL: %v", err)
	}

	storageBase := getConfigString(EnvfileKeyStorageBaseURL)
	storageBucket := getConfigString(EnvfileKeyStorageBucket)
	if storageBase == "" || storageBucket == "" {
		log.Fatal("object storage not configured")
	}

	graceSeconds := getConfigInt(EnvfileKeyHandleReleaseGrace)
	if graceSeconds == 0 {
		// Needs to be several seconds so the display resolver finishes its
		// inline conversion before the handle goes away.
		graceSeconds = 5
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	postgresURL := getConfigString(EnvfileKeyPostgresURL)
	postgresSecretsPath := getConfigString(EnvfileKeyPostgresSecretsPath)
	if postgresURL == "" && postgresSecretsPath == "" {
		log.Fatal("postgres not configured")
	}

	isTestMode := viper.GetBool(EnvfileKeyTestMode)

	return Config{
		Storage: StorageConfig{
			PublicBaseURL:  storageBase,
			Bucket:         storageBucket,
			UploadEndpoint: getConfigString(EnvfileKeyStorageUploadEndpoint),
		},
		Graph: GraphConfig{
			ApiURL:      *graphURL,
			PageID:      getConfigString(EnvfileKeyGraphPageID),
			SecretPath:  getConfigString(EnvfileKeyGraphSecretPath),
			AccessToken: getConfigString(EnvfileKeyGraphAccessToken),
		},
		Captioner: CaptionerConfig{
			ApiURL:     *captionerURL,
			SecretPath: getConfigString(EnvfileKeyCaptionerSecretPath),
		},
		PostgresURL:        postgresURL,
		PostgresSecretPath: postgresSecretsPath,
		HandleReleaseGrace: time.Duration(graceSeconds) * time.Second,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		TestModeEnabled:    isTestMode,
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	envVarValue := os.Getenv(key)
	if envVarValue == "" {
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(envVarValue)
	if err != nil {
		return 0
	}
	return value
}
