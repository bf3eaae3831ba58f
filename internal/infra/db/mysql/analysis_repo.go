package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	domain "github.com/bryanwahyu/chartsight/internal/domain/analysis"
)

// AnalysisRepository stores each record as a JSON document plus the columns
// needed for ordering and lookup. Hosted-deployment alternative to the file
// store; same port, same recency semantics.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts the record. Plain INSERT on purpose: records are immutable
// once written and an id collision must fail, not upsert.
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
VALUES (?,?,?);
`
	_, err = r.db.ExecContext(ctx, q, string(a.ID), a.CreatedAt, doc)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, a.ID)
	}
	return err
}

// History returns every record most-recent-first.
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
WHERE id=? LIMIT 1;
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
