package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/chartsight/internal/domain/analysis"
)

// AnalysisRepository is the Postgres twin of the MySQL backend: one JSON
// document per record, ordering columns alongside.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts the record; an id collision fails instead of upserting.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO chart_analyses (id, created_at, record_json)
VALUES ($1,$2,$3);
`
	_, err = r.db.ExecContext(ctx, q, string(a.ID), a.CreatedAt, doc)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, a.ID)
	}
	return err
}

func (r *AnalysisRepository) History(ctx context.Context) ([]*domain.Analysis, error) {
	const q = `
SELECT record_json
FROM chart_analyses
ORDER BY created_at DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		a, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	const q = `
SELECT record_json
FROM chart_analyses
WHERE id=$1 LIMIT 1;
`
	var doc []byte
	if err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decodeRecord(doc)
}

func (r *AnalysisRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chart_analyses;`)
	return err
}

func decodeRecord(doc []byte) (*domain.Analysis, error) {
	var a domain.Analysis
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, err
	}
	if a.DetailedAnalysis == nil {
		a.DetailedAnalysis = []domain.Section{}
	}
	return &a, nil
}
