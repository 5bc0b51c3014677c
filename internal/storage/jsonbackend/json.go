package jsonbackend

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/FranksOps/yelpleads/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New creates an NDJSON-backed storage.Backend: one lead object per line,
// absent fields encoded as null. An existing file is replaced.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("jsonbackend: %w", err)
	}
	return &jsonBackend{file: f}, nil
}

func (b *jsonBackend) Save(ctx context.Context, batch storage.Batch) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := bufio.NewWriter(b.file)
	enc := json.NewEncoder(w)

	for i, l := range batch.Leads {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		// Encode terminates each value with a newline.
		if err := enc.Encode(l); err != nil {
			return i, fmt.Errorf("jsonbackend: encode lead %d: %w", i+1, err)
		}
	}

	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("jsonbackend: flush: %w", err)
	}
	return len(batch.Leads), nil
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
