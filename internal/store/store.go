// Package store persists conversion records in sqlite, fronted by an LRU
// cache for hot records and a Bloom filter for cheap negative lookups.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"tunebridge/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	source_url    TEXT PRIMARY KEY,
	target_url    TEXT NOT NULL,
	track_name    TEXT NOT NULL,
	artist_name   TEXT NOT NULL,
	album_name    TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
`

// ConversionStore is a core.ConversionStore backed by sqlite. The source URL
// is the primary key, so a racing duplicate insert degrades into a read of
// the record the winner wrote.
type ConversionStore struct {
	db    *sql.DB
	cache *lru.Cache[string, *core.ConversionRecord]
	bloom *bloom.BloomFilter
	mutex sync.RWMutex
}

// Open opens (creating if necessary) the conversion database at path and
// warms the Bloom filter from the existing rows.
func Open(config *core.StoreConfig) (*ConversionStore, error) {
	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversion store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply conversion schema: %w", err)
	}

	cache, err := lru.New[string, *core.ConversionRecord](config.CacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}

	s := &ConversionStore{
		db:    db,
		cache: cache,
		bloom: bloom.NewWithEstimates(uint(config.BloomCapacity), config.BloomErrorRate),
	}

	if err := s.warmBloom(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *ConversionStore) Close() error {
	return s.db.Close()
}

// FindBySourceURL returns the record for the literal source URL string, or
// (nil, nil) when none exists.
func (s *ConversionStore) FindBySourceURL(ctx context.Context, sourceURL string) (*core.ConversionRecord, error) {
	s.mutex.RLock()
	inBloom := s.bloom.TestString(sourceURL)
	s.mutex.RUnlock()

	// The filter has no false negatives: a miss means the URL was never
	// stored and the database read can be skipped.
	if !inBloom {
		return nil, nil
	}

	if record, ok := s.cache.Get(sourceURL); ok {
		return record, nil
	}

	record, err := s.readRecord(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	if record != nil {
		s.cache.Add(sourceURL, record)
	}
	return record, nil
}

// Create persists a new record. When a racing writer already inserted the
// same source URL, the stored record wins and is returned.
func (s *ConversionStore) Create(ctx context.Context, record *core.ConversionRecord) (*core.ConversionRecord, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions
			(source_url, target_url, track_name, artist_name, album_name, thumbnail_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_url) DO NOTHING`,
		record.SourceURL, record.TargetURL, record.TrackName,
		record.ArtistName, record.AlbumName, record.ThumbnailURL, record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist conversion: %w", err)
	}

	stored, err := s.readRecord(ctx, record.SourceURL)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.New("conversion vanished after insert")
	}

	s.mutex.Lock()
	s.bloom.AddString(stored.SourceURL)
	s.mutex.Unlock()
	s.cache.Add(stored.SourceURL, stored)

	return stored, nil
}

// Recent returns up to limit records, newest first.
func (s *ConversionStore) Recent(ctx context.Context, limit int) ([]core.ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, target_url, track_name, artist_name, album_name, thumbnail_url, created_at
		 FROM conversions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []core.ConversionRecord
	for rows.Next() {
		var record core.ConversionRecord
		if err := rows.Scan(&record.SourceURL, &record.TargetURL, &record.TrackName,
			&record.ArtistName, &record.AlbumName, &record.ThumbnailURL, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversion row: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (s *ConversionStore) readRecord(ctx context.Context, sourceURL string) (*core.ConversionRecord, error) {
	var record core.ConversionRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT source_url, target_url, track_name, artist_name, album_name, thumbnail_url, created_at
		 FROM conversions WHERE source_url = ?`, sourceURL).
		Scan(&record.SourceURL, &record.TargetURL, &record.TrackName,
			&record.ArtistName, &record.AlbumName, &record.ThumbnailURL, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion: %w", err)
	}
	return &record, nil
}

func (s *ConversionStore) warmBloom() error {
	rows, err := s.db.Query(`SELECT source_url FROM conversions`)
	if err != nil {
		return fmt.Errorf("failed to warm bloom filter: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var sourceURL string
		if err := rows.Scan(&sourceURL); err != nil {
			return fmt.Errorf("failed to scan source URL: %w", err)
		}
		s.bloom.AddString(sourceURL)
	}

	return rows.Err()
}
