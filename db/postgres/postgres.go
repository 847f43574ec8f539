package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS sightings (
	id          SERIAL PRIMARY KEY,
	observed_at TIMESTAMPTZ NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	distance_km DOUBLE PRECISION NOT NULL,
	mode        TEXT NOT NULL
)`

// Store archives classified samples. Purely historical; the device never
// reads it back.
type Store struct {
	db *sql.DB
}

type WriteSightingParams struct {
	ObservedAt time.Time
	Latitude   float64
	Longitude  float64
	DistanceKm float64
	Mode       string
}

func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) WriteSighting(ctx context.Context, p WriteSightingParams) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sightings (observed_at, latitude, longitude, distance_km, mode)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ObservedAt, p.Latitude, p.Longitude, p.DistanceKm, p.Mode)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
