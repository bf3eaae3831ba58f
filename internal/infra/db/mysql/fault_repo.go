package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/chartsight/internal/domain/faults"
)

type FaultRepository struct {
	db *sql.DB
}

func NewFaultRepository(db *sql.DB) *FaultRepository { return &FaultRepository{db: db} }

func (r *FaultRepository) Save(ctx context.Context, f *domain.Fault) error {
	const q = `
INSERT INTO analysis_faults
  (phase, message, raw, created_at)
VALUES (?,?,?,?);
`
	phase := f.Phase
	if strings.TrimSpace(phase) == "" {
		phase = "-"
	}
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, phase, msg, f.Raw, created)
	return err
}

func (r *FaultRepository) Latest(ctx context.Context, limit int) ([]*domain.Fault, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, phase, message, raw, created_at
FROM analysis_faults
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Fault
	for rows.Next() {
		var f domain.Fault
		var created time.Time
		if err := rows.Scan(&f.ID, &f.Phase, &f.Message, &f.Raw, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = created
		out = append(out, &f)
	}
	return out, rows.Err()
}
