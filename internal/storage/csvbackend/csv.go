package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/FranksOps/yelpleads/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New creates a CSV-backed storage.Backend. An existing file at filePath is
// replaced.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, batch storage.Batch) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := csv.NewWriter(b.file)
	if err := w.Write(storage.Columns); err != nil {
		return 0, fmt.Errorf("csvbackend: write header: %w", err)
	}

	for i, l := range batch.Leads {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := w.Write(storage.Row(l)); err != nil {
			return i, fmt.Errorf("csvbackend: write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("csvbackend: flush: %w", err)
	}

	return len(batch.Leads), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
