package config

type PlatformSecretData struct {
	AccessToken string `json:"accessToken"`
}

type CaptionerSecretData struct {
	ApiKey string `json:"apiKey"`
}

type PostgresSecretData struct {
	ConnectionString string `json:"connectionString"`
}
