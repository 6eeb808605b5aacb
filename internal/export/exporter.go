// Package export writes answer tables to the object store as Parquet files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/query"
	"github.com/menulens/menulens/internal/storage"
)

const ContentType = "application/vnd.apache.parquet"

var ErrNotFound = errors.New("export not found")

type Receipt struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size_bytes"`
	Rows      int64     `json:"rows"`
	Cells     int64     `json:"cells"`
	CreatedAt time.Time `json:"created_at"`
}

type Exporter struct {
	store storage.ObjectStore
	now   func() time.Time
	newID func() string
}

func NewExporter(store storage.ObjectStore) *Exporter {
	return &Exporter{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (e *Exporter) Export(ctx context.Context, question, statement string, result query.Result) (receipt Receipt, err error) {
	defer func() { observability.ObserveExport(err) }()

	if e == nil || e.store == nil {
		return Receipt{}, fmt.Errorf("export store is not configured")
	}
	encoded, err := Encode(question, statement, result)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode export: %w", err)
	}

	createdAt := e.now()
	key, err := storage.BuildExportPath(createdAt, e.newID())
	if err != nil {
		return Receipt{}, err
	}
	info, err := e.store.Put(ctx, key, bytes.NewReader(encoded.Data), int64(len(encoded.Data)), storage.PutOptions{ContentType: ContentType})
	if err != nil {
		return Receipt{}, fmt.Errorf("upload export: %w", err)
	}

	size := info.Size
	if size == 0 {
		size = int64(len(encoded.Data))
	}
	return Receipt{
		Key:       key,
		Size:      size,
		Rows:      encoded.RowCount,
		Cells:     encoded.CellCount,
		CreatedAt: createdAt,
	}, nil
}

// Open streams a previously written export. Keys outside the export layout
// are rejected before touching the store.
func (e *Exporter) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if e == nil || e.store == nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("export store is not configured")
	}
	if err := storage.ValidateExportKey(key); err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	info, err := e.store.Stat(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("stat export: %w", err)
	}
	reader, err := e.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("read export: %w", err)
	}
	return reader, info, nil
}
