package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a read-through cache over another Store. ReadAll results are kept
// for ttl; any write to a table drops that table's entry. Concurrent misses
// for the same table share one backend read.
type Cache struct {
	inner Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	gen     map[string]uint64
	group   singleflight.Group
}

// sharedReadTimeout bounds one backend read shared by concurrent misses.
const sharedReadTimeout = 30 * time.Second

type cacheEntry struct {
	rows    []Record
	expires time.Time
}

func NewCache(inner Store, ttl time.Duration) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
		gen:     map[string]uint64{},
	}
}

func (c *Cache) Append(ctx context.Context, table string, row Record) error {
	defer c.invalidate(table)
	return c.inner.Append(ctx, table, row)
}

func (c *Cache) AppendMany(ctx context.Context, table string, rows []Record) error {
	defer c.invalidate(table)
	return c.inner.AppendMany(ctx, table, rows)
}

func (c *Cache) Overwrite(ctx context.Context, table string, header []string, rows [][]any) error {
	defer c.invalidate(table)
	return c.inner.Overwrite(ctx, table, header, rows)
}

func (c *Cache) ReadAll(ctx context.Context, table string) ([]Record, error) {
	c.mu.Lock()
	e, ok := c.entries[table]
	c.mu.Unlock()
	if ok && c.now().Before(e.expires) {
		return copyRecords(e.rows), nil
	}

	ch := c.group.DoChan(table, func() (any, error) {
		c.mu.Lock()
		gen := c.gen[table]
		c.mu.Unlock()
		// The read is shared, so it must outlive whichever caller started it.
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		rows, err := c.inner.ReadAll(readCtx, table)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// A write that landed during the read makes rows stale.
		if c.gen[table] == gen {
			c.entries[table] = cacheEntry{rows: rows, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return rows, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copyRecords(res.Val.([]Record)), nil
	}
}

func (c *Cache) Header(ctx context.Context, table string) ([]string, error) {
	return c.inner.Header(ctx, table)
}

func (c *Cache) Close() error {
	return c.inner.Close()
}

func (c *Cache) invalidate(table string) {
	c.mu.Lock()
	delete(c.entries, table)
	c.gen[table]++
	c.mu.Unlock()
	c.group.Forget(table)
}

// copyRecords returns a shallow copy of each row so callers cannot mutate
// cached state.
func copyRecords(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

var _ Store = (*Cache)(nil)
