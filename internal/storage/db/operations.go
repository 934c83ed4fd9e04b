package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"modman/internal/domain"
)

// OperationFilter narrows ListOperations. Zero values match everything.
type OperationFilter struct {
	Profile string
	RunID   string
	Limit   int
}

// RecordOperation appends one journal entry and fills in its ID. A zero
// CreatedAt is set to the current time.
func (d *DB) RecordOperation(op *domain.Operation) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	res, err := d.Exec(`
        INSERT INTO operations (run_id, kind, profile, mod_name, status, error_kind, detail, bytes, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, op.RunID, string(op.Kind), op.Profile, op.ModName, string(op.Status),
		op.ErrorKind, op.Detail, op.Bytes, op.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		op.ID = id
	}
	return nil
}

// ListOperations returns journal entries newest first
func (d *DB) ListOperations(f OperationFilter) ([]domain.Operation, error) {
	var (
		where []string
		args  []any
	)
	if f.Profile != "" {
		where = append(where, "profile = ?")
		args = append(args, f.Profile)
	}
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}

	query := `SELECT id, run_id, kind, profile, mod_name, status, error_kind, detail, bytes, created_at FROM operations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		var (
			op           domain.Operation
			kind, status string
		)
		if err := rows.Scan(&op.ID, &op.RunID, &kind, &op.Profile, &op.ModName, &status,
			&op.ErrorKind, &op.Detail, &op.Bytes, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		op.Kind = domain.OperationKind(kind)
		op.Status = domain.OperationStatus(status)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// OperationStats aggregates the journal, optionally for a single profile
func (d *DB) OperationStats(profile string) (*domain.OperationStats, error) {
	where, args := "", []any{}
	if profile != "" {
		where = " WHERE profile = ?"
		args = append(args, profile)
	}

	var stats domain.OperationStats
	err := d.QueryRow(`
        SELECT
            COALESCE(SUM(CASE WHEN kind = 'install' AND status = 'ok' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN kind = 'update' AND status = 'ok' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'ok' THEN bytes ELSE 0 END), 0)
        FROM operations`+where, args...).Scan(&stats.Downloads, &stats.Updates, &stats.Failures, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("aggregating operations: %w", err)
	}

	err = d.QueryRow(`SELECT created_at FROM operations`+where+` ORDER BY id DESC LIMIT 1`, args...).Scan(&stats.LastActivity)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("getting last activity: %w", err)
	}

	return &stats, nil
}
