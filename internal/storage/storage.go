package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/FranksOps/yelpleads/internal/lead"
)

// Columns is the header row shared by the tabular backends.
var Columns = []string{
	"Name",
	"Phone",
	"Website",
	"Yelp URL",
	"Score",
	"Online Presence",
}

// Batch is the full, already ordered output of one run.
type Batch struct {
	RunID     string
	CreatedAt time.Time
	Leads     lead.Collection
}

// Backend persists a run's leads to a single destination.
type Backend interface {
	// Save writes every lead in b and returns the number of rows written.
	Save(ctx context.Context, b Batch) (int, error)
	Close() error
}

// Row renders l in Columns order. Absent optional fields become empty cells.
func Row(l lead.Lead) []string {
	return []string{
		l.Name,
		lead.Value(l.Phone),
		lead.Value(l.Website),
		l.DirectoryURL,
		strconv.Itoa(l.Score),
		l.OnlinePresence,
	}
}
