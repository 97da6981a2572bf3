package headers

import (
	"net/http"
	"sort"
	"strings"
)

// Map is a case-insensitive multi-value header container.
//
// Keys are normalized to lower case. Values for a key keep their
// insertion order, and keys themselves iterate in first-insertion
// order, so Entries is deterministic for a given construction sequence.
type Map struct {
	order  []string
	values map[string][]string
}

// Entry is a single (name, value) pair yielded by Entries.
// Names are always lower case. A header with three values produces
// three entries.
type Entry struct {
	Name  string
	Value string
}

// New returns an empty header map.
func New() *Map {
	return &Map{values: make(map[string][]string)}
}

// FromMap builds a header map from a single-valued mapping. Go map
// iteration order is randomized, so keys are sorted to keep Entries
// deterministic for the same input.
func FromMap(m map[string]string) *Map {
	h := New()
	for _, name := range sortedKeys(m) {
		h.Add(name, m[name])
	}
	return h
}

// FromValues builds a header map from a multi-valued mapping.
// Nil or empty value slices are skipped. Keys are sorted as in FromMap.
func FromValues(m map[string][]string) *Map {
	h := New()
	for _, name := range sortedKeys(m) {
		for _, value := range m[name] {
			h.Add(name, value)
		}
	}
	return h
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromHTTP builds a header map from an http.Header.
func FromHTTP(src http.Header) *Map {
	return FromValues(src)
}

// Clone returns an independent copy of src. A nil src yields an empty map.
func Clone(src *Map) *Map {
	h := New()
	if src == nil {
		return h
	}
	for _, name := range src.order {
		for _, value := range src.values[name] {
			h.Add(name, value)
		}
	}
	return h
}

// Add appends a value under name, creating the key if needed.
func (h *Map) Add(name, value string) {
	key := strings.ToLower(name)
	if _, exists := h.values[key]; !exists {
		h.order = append(h.order, key)
	}
	h.values[key] = append(h.values[key], value)
}

// Has reports whether at least one value exists for name.
func (h *Map) Has(name string) bool {
	_, exists := h.values[strings.ToLower(name)]
	return exists
}

// Get returns the first value for name, or "" if absent.
func (h *Map) Get(name string) string {
	values := h.values[strings.ToLower(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns all values for name in insertion order.
// The returned slice is a copy.
func (h *Map) Values(name string) []string {
	values := h.values[strings.ToLower(name)]
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Len returns the number of distinct header names.
func (h *Map) Len() int {
	return len(h.order)
}

// Entries returns every (name, value) pair in insertion order.
// Multi-valued headers appear once per value.
func (h *Map) Entries() []Entry {
	var entries []Entry
	for _, name := range h.order {
		for _, value := range h.values[name] {
			entries = append(entries, Entry{Name: name, Value: value})
		}
	}
	return entries
}

// Flatten returns a single-valued projection taking the first value of
// each header. This is the normalization applied before fingerprinting.
func (h *Map) Flatten() map[string]string {
	flat := make(map[string]string, len(h.order))
	for _, name := range h.order {
		values := h.values[name]
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}
	return flat
}
