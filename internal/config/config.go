package config

import (
	"os"
)

type Config struct {
	AppPort string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURL  string

	FrontendURL string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string
}

func Load() Config {

	cfg := Config{

		AppPort: os.Getenv("APP_PORT"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURL:  os.Getenv("SPOTIFY_REDIRECT_URL"),

		FrontendURL: os.Getenv("FRONTEND_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8000"
	}

	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "/"
	}

	return cfg

}
