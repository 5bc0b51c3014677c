package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/yelpleads/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	phone TEXT,
	website TEXT,
	yelp_url TEXT NOT NULL,
	score INTEGER NOT NULL,
	online_presence TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

const insertLead = `
INSERT INTO leads (
	run_id, position, name, phone, website, yelp_url, score, online_presence, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// New creates a new SQLite-backed storage.Backend. Each run's leads are kept
// under their own run_id.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, batch storage.Batch) (int, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertLead)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for i, l := range batch.Leads {
		_, err := stmt.ExecContext(ctx,
			batch.RunID,
			i+1,
			l.Name,
			l.Phone,
			l.Website,
			l.DirectoryURL,
			l.Score,
			l.OnlinePresence,
			batch.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert lead %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return len(batch.Leads), nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
