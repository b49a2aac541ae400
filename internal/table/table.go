// Package table is an open-addressed, linearly probed hash map keyed by
// interned strings. It backs both global variables and the string intern set.
package table

import (
	"fave/internal/object"
	"fave/internal/value"
)

const maxLoad = 0.75

// Entry is empty when Key is nil and Value is nil; a tombstone when Key is
// nil and Value is true.
type Entry struct {
	Key   *object.String
	Value value.Value
}

func (e *Entry) isTombstone() bool {
	return e.Key == nil && !e.Value.IsNil()
}

type Table struct {
	count   int // live entries plus tombstones
	entries []Entry
}

func New() *Table {
	return &Table{}
}

func (t *Table) Capacity() int { return len(t.entries) }

// Len returns the number of live entries.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].Key != nil {
			n++
		}
	}
	return n
}

// findEntry returns the slot holding key, or the slot an insert of key should
// use: the first tombstone passed on the way, else the empty slot that ended
// the probe. Keys compare by reference.
func findEntry(entries []Entry, key *object.String) *Entry {
	capacity := uint32(len(entries))
	idx := key.Hash % capacity
	var tombstone *Entry

	for {
		entry := &entries[idx]
		if entry.Key == nil {
			if entry.Value.IsNil() {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			if tombstone == nil {
				tombstone = entry
			}
		} else if entry.Key == key {
			return entry
		}
		idx = (idx + 1) % capacity
	}
}

func (t *Table) Get(key *object.String) (value.Value, bool) {
	if t.count == 0 {
		return value.Nil, false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return value.Nil, false
	}
	return entry.Value, true
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// adjustCapacity rehashes live entries into a fresh array. Tombstones are not
// carried over, so count is recomputed.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]Entry, capacity)

	t.count = 0
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key == nil {
			continue
		}
		dest := findEntry(entries, entry.Key)
		dest.Key = entry.Key
		dest.Value = entry.Value
		t.count++
	}
	t.entries = entries
}

// Set binds key to v and reports whether key was not already present.
func (t *Table) Set(key *object.String, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	entry := findEntry(t.entries, key)
	isNewKey := entry.Key == nil
	if isNewKey && entry.Value.IsNil() {
		t.count++
	}

	entry.Key = key
	entry.Value = v
	return isNewKey
}

// Delete replaces the entry with a tombstone so probe chains that ran
// through it stay intact.
func (t *Table) Delete(key *object.String) bool {
	if t.count == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}
	entry.Key = nil
	entry.Value = value.Bool(true)
	return true
}

// FindString looks a string up by content. It is the one place keys are
// compared by value, used to find the canonical copy when interning.
func (t *Table) FindString(chars string, hash uint32) *object.String {
	if t.count == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	idx := hash % capacity
	for {
		entry := &t.entries[idx]
		if entry.Key == nil {
			if !entry.isTombstone() {
				return nil
			}
		} else if entry.Key.Hash == hash && entry.Key.Chars == chars {
			return entry.Key
		}
		idx = (idx + 1) % capacity
	}
}
