// Package http serves the conversion API plus health and metrics endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunebridge/internal/core"
)

const (
	// defaultRecentLimit bounds the history listing when the caller does
	// not pass an explicit limit.
	defaultRecentLimit = 20
	// maxRecentLimit is the hard cap on the history listing.
	maxRecentLimit = 100
	// shutdownTimeout bounds graceful shutdown on context cancellation.
	shutdownTimeout = 10 * time.Second
)

// ConversionService is the slice of the converter the HTTP layer drives.
type ConversionService interface {
	GetOrCreateConversion(ctx context.Context, sourceURL string) (*core.ConversionRecord, error)
	ResolvePreview(ctx context.Context, sourceURL string) (*core.TrackDescriptor, error)
	ResolvePlaylist(ctx context.Context, sourceURL string) (*core.PlaylistDescriptor, error)
	RecentConversions(ctx context.Context, limit int) ([]core.ConversionRecord, error)
}

// Metrics holds the Prometheus instruments for the conversion pipeline.
type Metrics struct {
	ConversionsTotal *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunebridge_conversions_total",
				Help: "Total number of conversion requests by outcome",
			},
			[]string{"status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tunebridge_request_duration_seconds",
				Help:    "Time spent serving API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(metrics.ConversionsTotal, metrics.RequestDuration)
	return metrics
}

// Server exposes the converter over HTTP.
type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	service ConversionService
	server  *http.Server
	metrics *Metrics
}

// NewServer wires the gin router, metrics registry, and HTTP server.
func NewServer(config *core.ServerConfig, service ConversionService, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	metrics := newMetrics(registry)

	s := &Server{
		config:  config,
		logger:  logger,
		service: service,
		metrics: metrics,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tunebridge"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": "tunebridge"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/convert", s.handleConvert)
	api.GET("/preview", s.handlePreview)
	api.GET("/playlist", s.handlePlaylist)
	api.GET("/conversions/recent", s.handleRecent)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

type convertRequest struct {
	SourceURL string `json:"source_url" binding:"required"`
}

type conversionResponse struct {
	SourceURL    string `json:"source_url"`
	TargetURL    string `json:"target_url"`
	TrackName    string `json:"track_name"`
	ArtistName   string `json:"artist_name"`
	AlbumName    string `json:"album_name"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func toConversionResponse(record *core.ConversionRecord) conversionResponse {
	return conversionResponse{
		SourceURL:    record.SourceURL,
		TargetURL:    record.TargetURL,
		TrackName:    record.TrackName,
		ArtistName:   record.ArtistName,
		AlbumName:    record.AlbumName,
		ThumbnailURL: record.ThumbnailURL,
	}
}

func (s *Server) handleConvert(c *gin.Context) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("convert").Observe(time.Since(start).Seconds())
	}()

	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ConversionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_url is required"})
		return
	}

	record, err := s.service.GetOrCreateConversion(c.Request.Context(), req.SourceURL)
	if err != nil {
		s.metrics.ConversionsTotal.WithLabelValues(statusLabel(err)).Inc()
		s.respondError(c, err)
		return
	}

	s.metrics.ConversionsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, toConversionResponse(record))
}

func (s *Server) handlePreview(c *gin.Context) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("preview").Observe(time.Since(start).Seconds())
	}()

	sourceURL := c.Query("url")
	descriptor, err := s.service.ResolvePreview(c.Request.Context(), sourceURL)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source_id":      descriptor.SourceID,
		"track_name":     descriptor.TrackName,
		"artist_name":    descriptor.ArtistName,
		"thumbnail_url":  descriptor.ThumbnailURL,
		"original_title": descriptor.OriginalTitle,
	})
}

func (s *Server) handlePlaylist(c *gin.Context) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDuration.WithLabelValues("playlist").Observe(time.Since(start).Seconds())
	}()

	sourceURL := c.Query("url")
	playlist, err := s.service.ResolvePlaylist(c.Request.Context(), sourceURL)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, playlistResponse(playlist))
}

func (s *Server) handleRecent(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := s.service.RecentConversions(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	responses := make([]conversionResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toConversionResponse(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"conversions": responses})
}

func playlistResponse(playlist *core.PlaylistDescriptor) gin.H {
	tracks := make([]gin.H, 0, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		tracks = append(tracks, gin.H{
			"position":    track.Position,
			"source_id":   track.SourceID,
			"track_name":  track.TrackName,
			"artist_name": track.ArtistName,
		})
	}

	return gin.H{
		"title":       playlist.Title,
		"description": playlist.Description,
		"total_count": playlist.TotalCount,
		"tracks":      tracks,
	}
}

// statusLabel maps the pipeline's error taxonomy onto metric labels,
// mirroring the status-code mapping in respondError.
func statusLabel(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidURL):
		return "invalid"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrNoMatch):
		return "no_match"
	default:
		return "error"
	}
}

// respondError maps the pipeline's error taxonomy onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNoMatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Conversion request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream failure"})
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
