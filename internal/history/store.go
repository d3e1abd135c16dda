// Package history keeps an optional ledger of render jobs in PostgreSQL.
// When no database is configured the Nop store keeps the service fully
// stateless.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Status of a recorded render job.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// Record is one render job as persisted.
type Record struct {
	ID         string     `json:"id"`
	Template   string     `json:"template"`
	Status     Status     `json:"status"`
	OutputPath string     `json:"output_path,omitempty"`
	Delivery   string     `json:"delivery,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Store is the ledger contract.
type Store interface {
	Start(ctx context.Context, id, template string) error
	Finish(ctx context.Context, id string, status Status, outputPath, delivery, errText string) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// NewID generates a render job id.
func NewID() string {
	return fmt.Sprintf("job_%d", time.Now().UnixNano())
}

// PG is the PostgreSQL-backed store.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// EnsureSchema creates the ledger table if missing.
func (s *PG) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS render_jobs (
			id          TEXT PRIMARY KEY,
			template    TEXT NOT NULL,
			status      TEXT NOT NULL,
			output_path TEXT,
			delivery    TEXT,
			error_text  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ
		)`)
	return err
}

func (s *PG) Start(ctx context.Context, id, template string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO render_jobs (id, template, status, created_at)
		 VALUES ($1,$2,'RUNNING',NOW())`,
		id, template,
	)
	return err
}

func (s *PG) Finish(ctx context.Context, id string, status Status, outputPath, delivery, errText string) error {
	if len(errText) > 2000 {
		errText = errText[:2000]
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE render_jobs
		 SET status=$2, output_path=NULLIF($3,''), delivery=NULLIF($4,''),
		     error_text=NULLIF($5,''), finished_at=NOW()
		 WHERE id=$1`,
		id, string(status), outputPath, delivery, errText,
	)
	return err
}

func (s *PG) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, template, status, COALESCE(output_path,''), COALESCE(delivery,''),
		        COALESCE(error_text,''), created_at, finished_at
		 FROM render_jobs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.Template, &status, &rec.OutputPath,
			&rec.Delivery, &rec.Error, &rec.CreatedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Nop is the no-database store.
type Nop struct{}

func (Nop) Start(ctx context.Context, id, template string) error { return nil }

func (Nop) Finish(ctx context.Context, id string, status Status, outputPath, delivery, errText string) error {
	return nil
}

func (Nop) Recent(ctx context.Context, limit int) ([]Record, error) {
	return []Record{}, nil
}
