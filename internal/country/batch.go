package country

import (
	"context"
	"strings"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"
)

const DefaultBatchSize = 100

// BatchUpserter buffers records and writes them through the run transaction
// one multi-row upsert at a time. Not safe for concurrent use.
type BatchUpserter struct {
	size   int
	buf    []domain.Country
	index  map[string]int
	writes int
}

func NewBatchUpserter(size int) *BatchUpserter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchUpserter{
		size:  size,
		buf:   make([]domain.Country, 0, size),
		index: make(map[string]int, size),
	}
}

// Append buffers c and flushes once the buffer reaches the batch size. A name
// already buffered, compared case-insensitively, is replaced in place.
func (b *BatchUpserter) Append(ctx context.Context, tx adapters.RefreshTx, c domain.Country) error {
	key := strings.ToLower(c.Name)
	if i, ok := b.index[key]; ok {
		b.buf[i] = c
		return nil
	}
	b.index[key] = len(b.buf)
	b.buf = append(b.buf, c)

	if len(b.buf) >= b.size {
		return b.Flush(ctx, tx)
	}
	return nil
}

// Flush writes whatever is buffered. Empty buffers are a no-op.
func (b *BatchUpserter) Flush(ctx context.Context, tx adapters.RefreshTx) error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := tx.UpsertCountries(ctx, b.buf); err != nil {
		return err
	}
	b.writes++
	b.buf = make([]domain.Country, 0, b.size)
	clear(b.index)
	return nil
}

// Pending is the number of buffered, unwritten records.
func (b *BatchUpserter) Pending() int { return len(b.buf) }

// Writes is the number of upsert statements issued so far.
func (b *BatchUpserter) Writes() int { return b.writes }
