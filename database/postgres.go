package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"seo-toolkit/models"
)

type PostgresDB struct {
	DB *sql.DB
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgDB := &PostgresDB{DB: db}
	if err := pgDB.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pgDB, nil
}

func (p *PostgresDB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			status_code INTEGER,
			depth INTEGER DEFAULT 0,
			performance_score INTEGER,
			rating TEXT,
			mobile_score INTEGER NOT NULL,
			mobile_friendly BOOLEAN NOT NULL,
			onpage_score INTEGER NOT NULL,
			report JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS keyword_estimates (
			id SERIAL PRIMARY KEY,
			keyword TEXT NOT NULL,
			volume INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			competition TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_url ON audits(url)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_created_at ON audits(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_keyword_estimates_keyword ON keyword_estimates(keyword)`,
	}

	for _, query := range queries {
		if _, err := p.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

func (p *PostgresDB) SaveAudit(ctx context.Context, audit *models.Audit) error {
	report, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("encode audit: %w", err)
	}

	var (
		score  sql.NullInt64
		rating sql.NullString
	)
	if audit.Performance != nil {
		score = sql.NullInt64{Int64: int64(audit.Performance.Score), Valid: true}
		rating = sql.NullString{String: string(audit.Performance.Rating), Valid: true}
	}

	query := `
		INSERT INTO audits (id, url, status_code, depth, performance_score, rating, mobile_score, mobile_friendly, onpage_score, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = p.DB.ExecContext(ctx, query,
		audit.ID, audit.URL, audit.StatusCode, audit.Depth, score, rating,
		audit.Mobile.Score, audit.Mobile.IsMobileFriendly, audit.OnPage.OverallScore,
		report, audit.CreatedAt,
	)
	return err
}

func (p *PostgresDB) RecentAudits(ctx context.Context, limit int) ([]models.Audit, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT report FROM audits ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []models.Audit
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var audit models.Audit
		if err := json.Unmarshal(raw, &audit); err != nil {
			return nil, fmt.Errorf("decode audit: %w", err)
		}
		audits = append(audits, audit)
	}

	return audits, rows.Err()
}

func (p *PostgresDB) SaveKeywordEstimate(ctx context.Context, m models.KeywordMetrics) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO keyword_estimates (keyword, volume, difficulty, competition) VALUES ($1, $2, $3, $4)`,
		m.Keyword, m.Volume, string(m.Difficulty), string(m.Competition),
	)
	return err
}

func (p *PostgresDB) Close() error {
	return p.DB.Close()
}
