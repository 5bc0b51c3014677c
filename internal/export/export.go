// Package export writes a run's leads to the destination chosen by the operator.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranksOps/yelpleads/internal/lead"
	"github.com/FranksOps/yelpleads/internal/storage"
	"github.com/FranksOps/yelpleads/internal/storage/csvbackend"
	"github.com/FranksOps/yelpleads/internal/storage/jsonbackend"
	"github.com/FranksOps/yelpleads/internal/storage/postgres"
	"github.com/FranksOps/yelpleads/internal/storage/sqlite"
)

// DefaultDestination is used when no output is configured.
const DefaultDestination = "yelp_leads.csv"

// Format identifies the backend a destination resolves to.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

// Outcome describes what Export did.
type Outcome struct {
	Saved       bool   `json:"saved"`
	Rows        int    `json:"rows"`
	Destination string `json:"destination,omitempty"`
	Format      Format `json:"format,omitempty"`
}

// String returns the operator-facing message for the outcome.
func (o Outcome) String() string {
	if !o.Saved {
		return "No leads found. CSV not saved."
	}
	return fmt.Sprintf("Saved %d leads to %s", o.Rows, o.Destination)
}

// Options carries per-run metadata persisted by the database backends.
type Options struct {
	RunID string
	Now   func() time.Time
}

// Resolve maps a destination to its backend format. Unknown file extensions
// fall back to CSV.
func Resolve(dest string) Format {
	lower := strings.ToLower(dest)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return FormatPostgres
	}
	switch filepath.Ext(lower) {
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// Open creates the backend for dest.
func Open(ctx context.Context, dest string) (storage.Backend, Format, error) {
	format := Resolve(dest)
	var (
		b   storage.Backend
		err error
	)
	switch format {
	case FormatPostgres:
		b, err = postgres.New(ctx, dest)
	case FormatJSON:
		b, err = jsonbackend.New(dest)
	case FormatSQLite:
		b, err = sqlite.New(dest)
	default:
		b, err = csvbackend.New(dest)
	}
	if err != nil {
		return nil, format, fmt.Errorf("export: open %s: %w", format, err)
	}
	return b, format, nil
}

// Export sorts leads by score and writes them to dest. An empty collection
// writes nothing and leaves any existing destination untouched.
func Export(ctx context.Context, leads lead.Collection, dest string, opts Options) (Outcome, error) {
	if len(leads) == 0 {
		return Outcome{}, nil
	}
	if dest == "" {
		dest = DefaultDestination
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	// Opening a file backend truncates the destination.
	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("export: %w", err)
	}

	b, format, err := Open(ctx, dest)
	if err != nil {
		return Outcome{}, err
	}

	n, err := b.Save(ctx, storage.Batch{
		RunID:     opts.RunID,
		CreatedAt: now().UTC(),
		Leads:     lead.SortByScore(leads),
	})
	if cerr := b.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("export: %w", err)
	}

	return Outcome{Saved: true, Rows: n, Destination: redact(dest, format), Format: format}, nil
}

// redact hides a password embedded in a Postgres DSN.
func redact(dest string, format Format) string {
	if format != FormatPostgres {
		return dest
	}
	at := strings.LastIndex(dest, "@")
	scheme := strings.Index(dest, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dest
	}
	userinfo := dest[scheme+3 : at]
	if user, _, ok := strings.Cut(userinfo, ":"); ok {
		return dest[:scheme+3] + user + ":xxxxx" + dest[at:]
	}
	return dest
}
