package frames

import (
	"slices"
)

// Entry is one frame of an animation. Location is an opaque address the
// renderer can dereference (a public URL once resolved).
type Entry struct {
	Ordinal  int    `json:"ordinal" yaml:"ordinal"`
	Location string `json:"location" yaml:"location"`
}

// List is the frame list of one animation.
//
// Invariant: entries are strictly ascending by ordinal. Every constructor and
// mutator preserves it, so consumers can rely on iteration order being
// playback order.
type List struct {
	entries []Entry
}

// FromEntries builds a List from entries in any order. When an ordinal
// appears more than once the later entry wins.
func FromEntries(entries []Entry) List {
	var l List
	for _, e := range entries {
		l.Put(e)
	}
	return l
}

func (l *List) search(ordinal int) (int, bool) {
	return slices.BinarySearchFunc(l.entries, ordinal, func(e Entry, target int) int {
		return e.Ordinal - target
	})
}

// Put inserts or replaces the entry at e.Ordinal. When an entry was replaced
// it is returned with ok=true.
func (l *List) Put(e Entry) (Entry, bool) {
	idx, found := l.search(e.Ordinal)
	if found {
		prev := l.entries[idx]
		l.entries[idx] = e
		return prev, true
	}
	l.entries = slices.Insert(l.entries, idx, e)
	return Entry{}, false
}

// Remove deletes exactly the entry at ordinal. Remaining ordinals are not
// renumbered.
func (l *List) Remove(ordinal int) (Entry, bool) {
	idx, found := l.search(ordinal)
	if !found {
		return Entry{}, false
	}
	removed := l.entries[idx]
	l.entries = slices.Delete(l.entries, idx, idx+1)
	return removed, true
}

// Get returns the entry at ordinal.
func (l List) Get(ordinal int) (Entry, bool) {
	idx, found := l.search(ordinal)
	if !found {
		return Entry{}, false
	}
	return l.entries[idx], true
}

// Len reports the frame count.
func (l List) Len() int { return len(l.entries) }

// Entries returns a sorted copy of the entries.
func (l List) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Ordinals returns the ordinals in playback order.
func (l List) Ordinals() []int {
	out := make([]int, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Ordinal
	}
	return out
}

// Locations returns the frame locations in playback order.
func (l List) Locations() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Location
	}
	return out
}

// First returns the entry with the lowest ordinal.
func (l List) First() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Map returns a copy of the list with every location rewritten by fn.
func (l List) Map(fn func(Entry) string) List {
	out := List{entries: make([]Entry, len(l.entries))}
	for i, e := range l.entries {
		out.entries[i] = Entry{Ordinal: e.Ordinal, Location: fn(e)}
	}
	return out
}
