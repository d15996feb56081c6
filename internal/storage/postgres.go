package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists quiz results and design reports in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// SaveQuizResult inserts one quiz submission.
func (s *PostgresStore) SaveQuizResult(ctx context.Context, input QuizResult) (QuizResult, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_results (id, vibe, priority, budget, style_tag, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		input.ID, input.Vibe, input.Priority, input.Budget, input.StyleTag, input.CreatedAt); err != nil {
		return QuizResult{}, fmt.Errorf("insert quiz result: %w", err)
	}

	return input, nil
}

// SaveReport inserts one design report.
func (s *PostgresStore) SaveReport(ctx context.Context, input DesignReport) (DesignReport, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	categories, err := json.Marshal(input.Categories)
	if err != nil {
		return DesignReport{}, fmt.Errorf("marshal categories: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO design_reports (id, overall_impression, categories, image_url, created_at) VALUES ($1, $2, $3, $4, $5)`,
		input.ID, input.OverallImpression, categories, input.ImageURL, input.CreatedAt); err != nil {
		return DesignReport{}, fmt.Errorf("insert design report: %w", err)
	}

	return input, nil
}

// ListReports returns the most recent design reports.
func (s *PostgresStore) ListReports(ctx context.Context) ([]DesignReport, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, overall_impression, categories, image_url, created_at FROM design_reports ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []DesignReport{}
	for rows.Next() {
		var (
			item       DesignReport
			categories []byte
		)
		if err := rows.Scan(&item.ID, &item.OverallImpression, &categories, &item.ImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if len(categories) > 0 {
			if err := json.Unmarshal(categories, &item.Categories); err != nil {
				return nil, fmt.Errorf("decode categories: %w", err)
			}
		}
		reports = append(reports, item)
	}

	return reports, rows.Err()
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
