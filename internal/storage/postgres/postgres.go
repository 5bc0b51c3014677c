package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/yelpleads/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
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
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

var columns = []string{
	"run_id", "position", "name", "phone", "website", "yelp_url", "score", "online_presence", "created_at",
}

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, batch storage.Batch) (int, error) {
	rows := make([][]any, 0, len(batch.Leads))
	for i, l := range batch.Leads {
		rows = append(rows, []any{
			batch.RunID,
			i + 1,
			l.Name,
			l.Phone,
			l.Website,
			l.DirectoryURL,
			l.Score,
			l.OnlinePresence,
			batch.CreatedAt,
		})
	}

	n, err := b.pool.CopyFrom(ctx, pgx.Identifier{"leads"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy leads: %w", err)
	}
	return int(n), nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
