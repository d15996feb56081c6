package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Product is a purchasable suggestion returned by the vision model.
type Product struct {
	Name        string `json:"name"`
	Why         string `json:"why"`
	SearchQuery string `json:"search_query"`
}

// Category groups tips and one product suggestion for a design area.
type Category struct {
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	Tips    []string `json:"tips"`
	Product Product  `json:"product"`
}

// DesignReport is the structured critique produced for one room photo.
type DesignReport struct {
	ID                string     `json:"id,omitempty"`
	OverallImpression string     `json:"overall_impression"`
	Categories        []Category `json:"categories"`
	ImageURL          string     `json:"image_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at,omitempty"`
}

// QuizResult is one saved style-quiz submission.
type QuizResult struct {
	ID        string    `json:"id"`
	Vibe      string    `json:"vibe"`
	Priority  string    `json:"priority"`
	Budget    string    `json:"budget"`
	StyleTag  string    `json:"style_tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence behaviors the application relies on.
// Both record types are insert-only; nothing updates or deletes rows.
type Store interface {
	SaveQuizResult(ctx context.Context, input QuizResult) (QuizResult, error)
	SaveReport(ctx context.Context, input DesignReport) (DesignReport, error)
	ListReports(ctx context.Context) ([]DesignReport, error)
	Close()
}

// NewStore connects to Postgres and prepares the schema. Callers decide
// what to do when no database URL is configured; there is no silent
// in-memory fallback because the quiz endpoint must report missing
// configuration explicitly.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quiz_results (
        id TEXT PRIMARY KEY,
        vibe TEXT NOT NULL,
        priority TEXT NOT NULL,
        budget TEXT NOT NULL,
        style_tag TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
		`CREATE TABLE IF NOT EXISTS design_reports (
        id TEXT PRIMARY KEY,
        overall_impression TEXT NOT NULL,
        categories JSONB DEFAULT '[]'::jsonb,
        image_url TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
