package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// Storage is the reporting replica of the aggregation index. The JSON index
// on disk stays authoritative; the replica is overwritten team by team.
type Storage struct {
	db *sql.DB
}

func New(dsn string) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cost_object_totals (
		team               VARCHAR(64)   NOT NULL,
		cost_object_id     VARCHAR(128)  NOT NULL,
		total_hours        DECIMAL(12,4) NOT NULL,
		last_activity_date CHAR(10)      NOT NULL DEFAULT '',
		published_at       DATETIME(3)   NOT NULL,
		PRIMARY KEY (team, cost_object_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cost_object_hours (
		team           VARCHAR(64)   NOT NULL,
		cost_object_id VARCHAR(128)  NOT NULL,
		bucket_kind    ENUM('operation','worker') NOT NULL,
		bucket         VARCHAR(64)   NOT NULL,
		hours          DECIMAL(12,4) NOT NULL,
		PRIMARY KEY (team, cost_object_id, bucket_kind, bucket)
	)`,
}

// Migrate creates the replica tables if they do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.mysql.Migrate"

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
