package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/yelpleads/internal/lead"
	"github.com/FranksOps/yelpleads/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "leads.db")
	b, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}

	ctx := context.Background()
	phone := "+14165550100"
	url := "https://www.yelp.com/biz/brush-bros"

	batch := storage.Batch{
		RunID:     "run-sqlite",
		CreatedAt: time.Now().UTC(),
		Leads: lead.Collection{
			{Name: "Quiet Paint", Score: 6, OnlinePresence: "No profile."},
			{Name: "Brush Bros", Phone: &phone, Website: &url, DirectoryURL: url, Score: 1, OnlinePresence: "Has a profile."},
		},
	}

	n, err := b.Save(ctx, batch)
	if err != nil {
		t.Fatalf("Failed to save batch: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows, got %d", n)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Failed to close backend: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT position, name, phone, website, score FROM leads WHERE run_id = ? ORDER BY position`, "run-sqlite")
	if err != nil {
		t.Fatalf("Failed to query leads: %v", err)
	}
	defer rows.Close()

	type row struct {
		position int
		name     string
		phone    sql.NullString
		website  sql.NullString
		score    int
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.position, &r.name, &r.phone, &r.website, &r.score); err != nil {
			t.Fatalf("Failed to scan: %v", err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Row iteration failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0].name != "Quiet Paint" || got[0].score != 6 {
		t.Errorf("Unexpected first row: %+v", got[0])
	}
	if got[0].phone.Valid || got[0].website.Valid {
		t.Errorf("Expected NULL phone and website for absent fields")
	}
	if !got[1].phone.Valid || got[1].phone.String != phone {
		t.Errorf("Expected phone %s, got %+v", phone, got[1].phone)
	}
}

func TestSQLiteBackend_MultipleRuns(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b"} {
		b, err := New(dsn)
		if err != nil {
			t.Fatalf("Failed to create SQLite backend: %v", err)
		}
		if _, err := b.Save(ctx, storage.Batch{RunID: id, CreatedAt: time.Now().UTC(), Leads: lead.Collection{{Name: id, Score: 6}}}); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
		b.Close()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected rows from both runs, got %d", count)
	}
}
