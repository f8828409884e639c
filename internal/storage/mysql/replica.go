package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

const (
	bucketOperation = "operation"
	bucketWorker    = "worker"
)

// PublishTeam replaces the team's rows with idx in one transaction.
func (s *Storage) PublishTeam(ctx context.Context, team string, idx storage.TeamIndex) error {
	const op = "storage.mysql.PublishTeam"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cost_object_hours WHERE team = ?`, team); err != nil {
		return fmt.Errorf("%s: clearing hours: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cost_object_totals WHERE team = ?`, team); err != nil {
		return fmt.Errorf("%s: clearing totals: %w", op, err)
	}

	totalStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cost_object_totals (team, cost_object_id, total_hours, last_activity_date, published_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer totalStmt.Close()

	hoursStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cost_object_hours (team, cost_object_id, bucket_kind, bucket, hours)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer hoursStmt.Close()

	now := time.Now().UTC()
	for id, t := range idx {
		if _, err := totalStmt.ExecContext(ctx, team, id, t.TotalHours, t.LastActivityDate, now); err != nil {
			return fmt.Errorf("%s: inserting %s: %w", op, id, err)
		}
		if err := insertBuckets(ctx, hoursStmt, team, id, bucketOperation, t.HoursByOperation); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := insertBuckets(ctx, hoursStmt, team, id, bucketWorker, t.HoursByWorker); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func insertBuckets(ctx context.Context, stmt *sql.Stmt, team, id, kind string, buckets map[string]float64) error {
	for bucket, h := range buckets {
		if _, err := stmt.ExecContext(ctx, team, id, kind, bucket, h); err != nil {
			return fmt.Errorf("inserting %s %s/%s: %w", kind, id, bucket, err)
		}
	}
	return nil
}

// LoadTeam reads a team's index back from the replica.
func (s *Storage) LoadTeam(ctx context.Context, team string) (storage.TeamIndex, error) {
	const op = "storage.mysql.LoadTeam"

	idx := storage.TeamIndex{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cost_object_id, total_hours, last_activity_date
		FROM cost_object_totals WHERE team = ?`, team)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			t  storage.CostObjectTotals
		)
		if err := rows.Scan(&id, &t.TotalHours, &t.LastActivityDate); err != nil {
			return nil, fmt.Errorf("%s: scanning totals: %w", op, err)
		}
		t.HoursByOperation = map[string]float64{}
		t.HoursByWorker = map[string]float64{}
		idx[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hrows, err := s.db.QueryContext(ctx, `
		SELECT cost_object_id, bucket_kind, bucket, hours
		FROM cost_object_hours WHERE team = ?`, team)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer hrows.Close()

	for hrows.Next() {
		var (
			id, kind, bucket string
			h                float64
		)
		if err := hrows.Scan(&id, &kind, &bucket, &h); err != nil {
			return nil, fmt.Errorf("%s: scanning hours: %w", op, err)
		}
		t, ok := idx[id]
		if !ok {
			continue
		}
		if kind == bucketOperation {
			t.HoursByOperation[bucket] = h
		} else {
			t.HoursByWorker[bucket] = h
		}
	}
	if err := hrows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return idx, nil
}
