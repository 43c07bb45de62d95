// Package main provides the tunebridge service entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunebridge/internal/converter"
	"tunebridge/internal/core"
	httpserver "tunebridge/internal/http"
	"tunebridge/internal/spotify"
	"tunebridge/internal/store"
	"tunebridge/internal/youtube"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunebridge",
	Short: "tunebridge - YouTube → Spotify link converter",
	Long: `tunebridge resolves YouTube and YouTube Music links into normalized track
metadata and converts them to matching Spotify tracks, caching each
conversion by source URL.`,
	RunE: runTunebridge,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("youtube-api-key", "", "YouTube Data API key (enables the authoritative tier)")
	rootCmd.PersistentFlags().Int("youtube-max-playlist-pages", 20, "Cap on playlist pagination requests")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().Int("spotify-max-candidates", 10, "Maximum search candidates per formulation")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().String("store-path", "./tunebridge.db", "Path to the conversion database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("TUNEBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.YouTube.APIKey = viper.GetString("youtube-api-key")
	if pages := viper.GetInt("youtube-max-playlist-pages"); pages > 0 {
		cfg.YouTube.MaxPlaylistPages = pages
	}

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	if candidates := viper.GetInt("spotify-max-candidates"); candidates > 0 {
		cfg.Spotify.MaxCandidates = candidates
	}

	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("server-port"); port > 0 {
		cfg.Server.Port = port
	}

	if path := viper.GetString("store-path"); path != "" {
		cfg.Store.Path = path
	}

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runTunebridge(_ *cobra.Command, _ []string) error {
	defer func() {
		_ = logger.Sync()
	}()

	if config.Spotify.ClientID == "" || config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify-client-id and spotify-client-secret are required")
	}
	if config.YouTube.APIKey == "" {
		logger.Warn("No YouTube API key configured; playlist resolution is unavailable " +
			"and single videos fall back to the public embed tier")
	}

	conversionStore, err := store.Open(&config.Store)
	if err != nil {
		return fmt.Errorf("failed to open conversion store: %w", err)
	}
	defer func() {
		_ = conversionStore.Close()
	}()

	resolver := youtube.NewResolver(&config.YouTube, logger)
	matcher := spotify.NewMatcher(&config.Spotify, logger)
	service := converter.New(resolver, matcher, conversionStore, logger)
	server := httpserver.NewServer(&config.Server, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start(groupCtx)
	})

	logger.Info("tunebridge started",
		zap.String("addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.Bool("youtubeAPIKeyConfigured", config.YouTube.APIKey != ""))

	return group.Wait()
}
