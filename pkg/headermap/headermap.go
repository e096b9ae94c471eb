// Package headermap provides a case-insensitive HTTP header collection with
// last-writer-wins merge semantics. Lookups hash the case-folded key with
// 64-bit xxHash (XXH64) before falling back to a string compare, mirroring the
// HashMapXxHash3_64 strategy the original implementation this library was
// distilled from uses for its header table.
package headermap

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

type entry struct {
	hash        uint64
	canonical   string // the key as first observed, case preserved
	foldedKey   string
	value       string
}

// Map is a case-insensitive, order-preserving header collection.
// The zero value is ready to use.
type Map struct {
	entries []entry
	index   map[uint64][]int // foldedKey hash -> indices into entries (collision bucket)
}

// New returns an empty Map.
func New() Map {
	return Map{index: make(map[uint64][]int)}
}

// FromPairs builds a Map from ordered name/value pairs, merging duplicate
// names case-insensitively with last-writer-wins.
func FromPairs(pairs [][2]string) Map {
	m := New()
	for _, p := range pairs {
		m.Set(p[0], p[1])
	}
	return m
}

func foldKey(key string) string {
	b := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func hashKey(folded string) uint64 {
	return xxhash.Sum64String(folded)
}

func (m *Map) ensureIndex() {
	if m.index == nil {
		m.index = make(map[uint64][]int)
	}
}

func (m *Map) find(folded string, h uint64) int {
	for _, idx := range m.index[h] {
		if m.entries[idx].foldedKey == folded {
			return idx
		}
	}
	return -1
}

// Set inserts or overwrites a header value, case-insensitively. Repeated
// calls with the same name (differing only in case) merge: the later call
// wins, matching the builder's documented ".Headers()" merge contract.
func (m *Map) Set(key, value string) {
	m.ensureIndex()
	folded := foldKey(key)
	h := hashKey(folded)
	if idx := m.find(folded, h); idx >= 0 {
		m.entries[idx].value = value
		return
	}
	m.entries = append(m.entries, entry{hash: h, canonical: key, foldedKey: folded, value: value})
	m.index[h] = append(m.index[h], len(m.entries)-1)
}

// Merge overlays other on top of m: keys in other replace keys in m, case
// insensitively, leaving everything else untouched.
func (m *Map) Merge(other Map) {
	for _, e := range other.entries {
		m.Set(e.canonical, e.value)
	}
}

// Get returns the value for key (case-insensitive) and whether it was
// present.
func (m Map) Get(key string) (string, bool) {
	folded := foldKey(key)
	h := hashKey(folded)
	for _, idx := range m.index[h] {
		if m.entries[idx].foldedKey == folded {
			return m.entries[idx].value, true
		}
	}
	return "", false
}

// Del removes key (case-insensitive) if present.
func (m *Map) Del(key string) {
	folded := foldKey(key)
	h := hashKey(folded)
	idx := m.find(folded, h)
	if idx < 0 {
		return
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	delete(m.index, h)
	// Rebuild the bucket indices after the shift; buckets are small so a
	// full rebuild of the index is cheaper than patching every entry.
	m.rebuildIndex()
}

func (m *Map) rebuildIndex() {
	m.index = make(map[uint64][]int, len(m.entries))
	for i, e := range m.entries {
		m.index[e.hash] = append(m.index[e.hash], i)
	}
}

// Len returns the number of distinct header names stored.
func (m Map) Len() int { return len(m.entries) }

// Keys returns the canonical (as-first-set) header names, sorted for
// deterministic iteration.
func (m Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.canonical
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn once per header in insertion order.
func (m Map) Each(fn func(key, value string)) {
	for _, e := range m.entries {
		fn(e.canonical, e.value)
	}
}

// Clone returns a deep copy safe for independent mutation.
func (m Map) Clone() Map {
	out := Map{
		entries: append([]entry(nil), m.entries...),
		index:   make(map[uint64][]int, len(m.index)),
	}
	out.rebuildIndex()
	return out
}
