package core

import (
	"time"
)

type Config struct {
	YouTube YouTubeConfig
	Spotify SpotifyConfig
	Server  ServerConfig
	Store   StoreConfig
	Log     LogConfig
}

type YouTubeConfig struct {
	// APIKey enables the authoritative Data API tier. When empty the
	// resolver falls through to the public oEmbed tier for single videos;
	// playlist resolution is unavailable without it.
	APIKey           string
	RequestTimeout   time.Duration
	MaxPlaylistPages int
}

type SpotifyConfig struct {
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	MaxCandidates  int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Path           string
	CacheSize      int
	BloomCapacity  int
	BloomErrorRate float64
}

type LogConfig struct {
	Level string
}

func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			RequestTimeout:   10 * time.Second,
			MaxPlaylistPages: 20,
		},
		Spotify: SpotifyConfig{
			RequestTimeout: 10 * time.Second,
			MaxCandidates:  10,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:           "./tunebridge.db",
			CacheSize:      1024,
			BloomCapacity:  100000,
			BloomErrorRate: 0.001,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
