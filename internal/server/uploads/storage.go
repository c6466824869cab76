package uploads

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Storage persists uploaded image bytes and returns an opaque reference
// (an object key or a file path) that is stored with the classification row.
type Storage interface {
	Save(ctx context.Context, r io.Reader, contentType string) (string, error)
}

// GetRandomStorageKey returns a date-partitioned object key for an upload.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
