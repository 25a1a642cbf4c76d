package btree

import "sort"

// Cursor walks a Table's entries in ascending key order. It snapshots the
// set of keys at creation time, so concurrent mutation of the table
// during a scan is safe and keys inserted after creation are not
// visited. The values under each snapshotted key are read from the live
// table when Next reaches that key, so values added to or deleted from
// such a key during the scan are observed.
type Cursor struct {
	table  *Table
	keys   []string
	ki, vi int
}

// Cursor returns a cursor over every entry in the table, ascending.
func (t *Table) Cursor() *Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return &Cursor{table: t, keys: keys}
}

// RangeCursor returns a cursor over keys in [start, end) (or [start, end]
// when endInclusive is true), ascending. A nil start or end leaves that
// bound open.
func (t *Table) RangeCursor(start, end []byte, endInclusive bool) *Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	lo, hi := 0, len(t.keys)
	if start != nil {
		lo = sort.SearchStrings(t.keys, string(start))
	}
	if end != nil {
		hi = sort.SearchStrings(t.keys, string(end))
		if endInclusive && hi < len(t.keys) && t.keys[hi] == string(end) {
			hi++
		}
	}
	keys := make([]string, hi-lo)
	copy(keys, t.keys[lo:hi])
	return &Cursor{table: t, keys: keys}
}

// PrefixCursor returns a cursor over every key with the given prefix,
// ascending, used by the Search Engine's substring-initial optimization.
func (t *Table) PrefixCursor(prefix []byte) *Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := string(prefix)
	lo := sort.SearchStrings(t.keys, p)
	hi := lo
	for hi < len(t.keys) && len(t.keys[hi]) >= len(p) && t.keys[hi][:len(p)] == p {
		hi++
	}
	keys := make([]string, hi-lo)
	copy(keys, t.keys[lo:hi])
	return &Cursor{table: t, keys: keys}
}

// Next advances the cursor, returning the next key/value pair, or
// ok=false once exhausted.
func (c *Cursor) Next() (key, value []byte, ok bool) {
	c.table.mu.RLock()
	defer c.table.mu.RUnlock()
	for c.ki < len(c.keys) {
		vals := c.table.values[c.keys[c.ki]]
		if c.vi >= len(vals) {
			c.ki++
			c.vi = 0
			continue
		}
		key = []byte(c.keys[c.ki])
		value = vals[c.vi]
		c.vi++
		return key, value, true
	}
	return nil, nil, false
}

// Close releases the cursor's snapshot. Cursors hold no external
// resources, so Close is a no-op kept for symmetry with callers that
// defer it unconditionally.
func (c *Cursor) Close() {}
