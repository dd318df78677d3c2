// Package strtab implements the assembler's one associative container: a
// chained-bucket string hash table, optionally case-insensitive. It backs
// the reserved-word table and the symbol table; macro definitions, macro
// arguments and the binary-file cache use Go maps and slices instead.
package strtab

import "hash/fnv"

// Table is a string-keyed hash table with open chaining, matching the
// shape of a resizing bucket array rather than Go's builtin map so that
// key normalization (case folding) can be centralized in one place.
type Table[V any] struct {
	buckets       []bucket[V]
	count         int
	caseSensitive bool
}

type bucket[V any] struct {
	occupied bool
	key      string // normalized key
	original string // first-seen spelling, for reporting
	value    V
	next     *bucket[V]
}

// New creates a table with the given initial bucket count (minimum 16)
// and case sensitivity.
func New[V any](initialSize int, caseSensitive bool) *Table[V] {
	if initialSize < 16 {
		initialSize = 16
	}
	return &Table[V]{
		buckets:       make([]bucket[V], initialSize),
		caseSensitive: caseSensitive,
	}
}

// CaseSensitive reports whether keys are matched verbatim.
func (t *Table[V]) CaseSensitive() bool { return t.caseSensitive }

// Normalize applies the table's case-folding rule to a key. Bytes below
// 0x80 are upper-cased when the table is case-insensitive; bytes at or
// above 0x80 are passed through untouched, leaving non-ASCII spellings
// exactly as written. This mirrors the original assembler, whose
// upper-casing loop only ever touches ASCII.
func (t *Table[V]) Normalize(key string) string {
	if t.caseSensitive {
		return key
	}
	b := []byte(key)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Get looks up key (after normalization) and reports whether it was found.
func (t *Table[V]) Get(key string) (V, bool) {
	norm := t.Normalize(key)
	idx := hashString(norm) % uint64(len(t.buckets))
	for b := &t.buckets[idx]; b != nil; b = b.next {
		if b.occupied && b.key == norm {
			return b.value, true
		}
	}
	var zero V
	return zero, false
}

// Original returns the first-seen spelling of key, if present.
func (t *Table[V]) Original(key string) (string, bool) {
	norm := t.Normalize(key)
	idx := hashString(norm) % uint64(len(t.buckets))
	for b := &t.buckets[idx]; b != nil; b = b.next {
		if b.occupied && b.key == norm {
			return b.original, true
		}
	}
	return "", false
}

// Set stores value under key, overwriting any prior value but keeping the
// first-seen original spelling.
func (t *Table[V]) Set(key string, value V) {
	norm := t.Normalize(key)
	idx := hashString(norm) % uint64(len(t.buckets))
	head := &t.buckets[idx]

	if !head.occupied {
		head.occupied = true
		head.key = norm
		head.original = key
		head.value = value
		t.count++
		t.maybeGrow()
		return
	}
	if head.key == norm {
		head.value = value
		return
	}
	prev := head
	for b := head.next; b != nil; b = b.next {
		if b.key == norm {
			b.value = value
			return
		}
		prev = b
	}
	prev.next = &bucket[V]{occupied: true, key: norm, original: key, value: value}
	t.count++
	t.maybeGrow()
}

// Delete removes key, if present.
func (t *Table[V]) Delete(key string) {
	norm := t.Normalize(key)
	idx := hashString(norm) % uint64(len(t.buckets))
	head := &t.buckets[idx]
	if !head.occupied {
		return
	}
	if head.key == norm {
		if head.next != nil {
			*head = *head.next
		} else {
			*head = bucket[V]{}
		}
		t.count--
		return
	}
	prev := head
	for b := head.next; b != nil; b = b.next {
		if b.key == norm {
			prev.next = b.next
			t.count--
			return
		}
		prev = b
	}
}

// Len returns the number of stored entries.
func (t *Table[V]) Len() int { return t.count }

func (t *Table[V]) maybeGrow() {
	if float64(t.count)/float64(len(t.buckets)) <= 0.75 {
		return
	}
	old := t.buckets
	t.buckets = make([]bucket[V], len(old)*2)
	for i := range old {
		for b := &old[i]; b != nil && b.occupied; b = b.next {
			t.insert(b.key, b.original, b.value)
			if b.next == nil {
				break
			}
		}
	}
}

// insert places an already-normalized key directly into t.buckets without
// touching t.count or re-checking the load factor; used only by maybeGrow
// while rehashing into a fresh, larger bucket array.
func (t *Table[V]) insert(norm, original string, value V) {
	idx := hashString(norm) % uint64(len(t.buckets))
	head := &t.buckets[idx]
	if !head.occupied {
		head.occupied = true
		head.key = norm
		head.original = original
		head.value = value
		return
	}
	prev := head
	for b := head.next; b != nil; b = b.next {
		prev = b
	}
	prev.next = &bucket[V]{occupied: true, key: norm, original: original, value: value}
}

// Each calls fn for every entry, in unspecified order.
func (t *Table[V]) Each(fn func(key string, value V)) {
	for i := range t.buckets {
		for b := &t.buckets[i]; b != nil && b.occupied; b = b.next {
			fn(b.original, b.value)
			if b.next == nil {
				break
			}
		}
	}
}
