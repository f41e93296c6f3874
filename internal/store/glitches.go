package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/models"
)

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// GlitchStore persists validator-confirmed glitches and serves the windowed
// candidate queries the digest layer runs.
type GlitchStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewGlitchStore opens a connection and ensures the schema exists.
func NewGlitchStore(params ConnectionParams) (*GlitchStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &GlitchStore{
		db:     db,
		logger: log.With().Str("component", "glitch_store").Logger(),
	}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS validated_glitches (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			retailer TEXT NOT NULL,
			url TEXT,
			current_price DOUBLE PRECISION NOT NULL,
			original_price DOUBLE PRECISION NOT NULL,
			profit_margin DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			secondary_relevance DOUBLE PRECISION,
			reasoning TEXT,
			validated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// SaveValidated upserts a confirmed glitch, assigning an ID when absent.
func (s *GlitchStore) SaveValidated(ctx context.Context, g models.ValidatedGlitch) (models.ValidatedGlitch, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.ValidatedAt.IsZero() {
		g.ValidatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO validated_glitches (
			id, title, retailer, url, current_price, original_price,
			profit_margin, confidence, secondary_relevance, reasoning, validated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			retailer = EXCLUDED.retailer,
			url = EXCLUDED.url,
			current_price = EXCLUDED.current_price,
			original_price = EXCLUDED.original_price,
			profit_margin = EXCLUDED.profit_margin,
			confidence = EXCLUDED.confidence,
			secondary_relevance = EXCLUDED.secondary_relevance,
			reasoning = EXCLUDED.reasoning,
			validated_at = EXCLUDED.validated_at
	`,
		g.ID, g.Title, g.Retailer, g.URL, g.CurrentPrice, g.OriginalPrice,
		g.ProfitMargin, g.Confidence, g.SecondaryRelevanceScore, g.Reasoning, g.ValidatedAt)

	if err != nil {
		return models.ValidatedGlitch{}, fmt.Errorf("saving validated glitch: %w", err)
	}

	s.logger.Debug().Str("id", g.ID).Str("retailer", g.Retailer).Msg("validated glitch saved")
	return g, nil
}

// ListValidatedBetween returns glitches validated inside (since, until],
// newest first, up to limit rows.
func (s *GlitchStore) ListValidatedBetween(ctx context.Context, since, until time.Time, limit int) ([]models.ValidatedGlitch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, title, retailer, url, current_price, original_price,
			profit_margin, confidence, secondary_relevance, reasoning, validated_at
		FROM validated_glitches
		WHERE validated_at > $1 AND validated_at <= $2
		ORDER BY validated_at DESC
		LIMIT $3
	`, since, until, limit)
	if err != nil {
		return nil, fmt.Errorf("listing validated glitches: %w", err)
	}
	defer rows.Close()

	var glitches []models.ValidatedGlitch
	for rows.Next() {
		var g models.ValidatedGlitch
		var url sql.NullString
		var secondary sql.NullFloat64
		var reasoning sql.NullString

		if err := rows.Scan(
			&g.ID, &g.Title, &g.Retailer, &url, &g.CurrentPrice, &g.OriginalPrice,
			&g.ProfitMargin, &g.Confidence, &secondary, &reasoning, &g.ValidatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning validated glitch: %w", err)
		}

		if url.Valid {
			g.URL = url.String
		}
		if secondary.Valid {
			g.SecondaryRelevanceScore = secondary.Float64
		}
		if reasoning.Valid {
			g.Reasoning = reasoning.String
		}
		glitches = append(glitches, g)
	}
	return glitches, rows.Err()
}

// Close releases the underlying connection pool.
func (s *GlitchStore) Close() error {
	return s.db.Close()
}
