package utils

import (
	"os"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("REPACKHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("REPACKHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "repackhub"
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: 24 * time.Hour,
	}
}

type SourceConfig struct {
	BaseURL string
	FeedURL string
}

func LoadSourceConfig() SourceConfig {
	base := os.Getenv("REPACKHUB_BASE_URL")
	if base == "" {
		base = "https://fitgirl-repacks.site"
	}

	feed := os.Getenv("REPACKHUB_FEED_URL")
	if feed == "" {
		feed = base + "/feed/"
	}

	return SourceConfig{
		BaseURL: base,
		FeedURL: feed,
	}
}
