package btree

import (
	"sort"
	"sync"
)

// Table is an ordered, binary-comparable key/value store. A key may map
// to more than one value (insertion order preserved per key), which is
// how the Partition Engine's one-level, sub-level and per-attribute user
// indexes represent one-to-many relationships; the master table and the
// RDN and entryUUID indexes use PutUnique to enforce one value per key.
type Table struct {
	mu     sync.RWMutex
	name   string
	keys   []string // sorted, unique string(key) forms present in values
	values map[string][][]byte
}

// New constructs an empty, named table.
func New(name string) *Table {
	return &Table{name: name, values: make(map[string][][]byte)}
}

// Name returns the table's name, used in error messages and metrics.
func (t *Table) Name() string { return t.name }

func (t *Table) insertKey(k string) {
	i := sort.SearchStrings(t.keys, k)
	if i < len(t.keys) && t.keys[i] == k {
		return
	}
	t.keys = append(t.keys, "")
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = k
}

func (t *Table) removeKey(k string) {
	i := sort.SearchStrings(t.keys, k)
	if i < len(t.keys) && t.keys[i] == k {
		t.keys = append(t.keys[:i], t.keys[i+1:]...)
	}
}

// Put appends value under key, skipping it if already present under that
// key, per the Partition Engine's index-entry semantics (adding an entry
// to the one-level index twice is a no-op, not a duplicate).
func (t *Table) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	existing := t.values[k]
	for _, v := range existing {
		if string(v) == string(value) {
			return nil
		}
	}
	if len(existing) == 0 {
		t.insertKey(k)
	}
	t.values[k] = append(existing, append([]byte{}, value...))
	return nil
}

// PutUnique inserts value under key, failing with ErrKeyExists if key
// already has a value. Used for the master table and any index where a
// key names exactly one entry.
func (t *Table) PutUnique(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	if _, ok := t.values[k]; ok {
		return ErrKeyExists
	}
	t.insertKey(k)
	t.values[k] = [][]byte{append([]byte{}, value...)}
	return nil
}

// ReplaceUnique overwrites the single value stored under key, creating
// the key if absent.
func (t *Table) ReplaceUnique(key, value []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	if _, ok := t.values[k]; !ok {
		t.insertKey(k)
	}
	t.values[k] = [][]byte{append([]byte{}, value...)}
}

// Get returns every value stored under key.
func (t *Table) Get(key []byte) ([][]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[string(key)]
	return v, ok
}

// GetOne returns the first value stored under key, for tables populated
// exclusively through PutUnique/ReplaceUnique.
func (t *Table) GetOne(key []byte) ([]byte, bool) {
	v, ok := t.Get(key)
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v[0], true
}

// Has reports whether key has any value at all.
func (t *Table) Has(key []byte) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.values[string(key)]
	return ok
}

// Delete removes a single value from key, deleting the key entirely once
// its last value is gone. Returns ErrKeyNotFound or ErrValueNotFound if
// key or value is absent.
func (t *Table) Delete(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	existing, ok := t.values[k]
	if !ok {
		return ErrKeyNotFound
	}
	idx := -1
	for i, v := range existing {
		if string(v) == string(value) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrValueNotFound
	}
	existing = append(existing[:idx], existing[idx+1:]...)
	if len(existing) == 0 {
		delete(t.values, k)
		t.removeKey(k)
		return nil
	}
	t.values[k] = existing
	return nil
}

// DeleteKey removes key and every value under it, reporting whether the
// key existed.
func (t *Table) DeleteKey(key []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := string(key)
	if _, ok := t.values[k]; !ok {
		return false
	}
	delete(t.values, k)
	t.removeKey(k)
	return true
}

// Len returns the number of distinct keys in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keys)
}
