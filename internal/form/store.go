// Package form implements the sectioned form controller shared by every
// create/edit wizard in the console: a flat field store, a static section
// catalog, an index navigator over the catalog, and a submission adapter
// that validates, transforms and dispatches the final request.
package form

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is a field value: either a string or a number (float64).
type Value = any

// Store holds every input of one entity being created or edited,
// regardless of which section is active.
type Store struct {
	defaults map[string]Value
	values   map[string]Value
}

// NewStore creates a store initialized to defaults. The defaults map is copied.
func NewStore(defaults map[string]Value) *Store {
	s := &Store{defaults: maps.Clone(defaults)}
	if s.defaults == nil {
		s.defaults = map[string]Value{}
	}
	s.Reset()
	return s
}

// Set merges one key into the store. Last write wins; nothing is validated.
func (s *Store) Set(name string, v Value) {
	s.values[name] = v
}

// Get returns the raw value for name.
func (s *Store) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// String returns the value for name rendered as a string.
// Missing keys render as "".
func (s *Store) String(name string) string {
	v, ok := s.values[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// Number returns the value for name parsed as a number, falling back to 0.
func (s *Store) Number(name string) float64 {
	v, ok := s.values[name]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		return ParseNumber(t)
	default:
		return 0
	}
}

// List returns the value for name split as a comma-separated list.
func (s *Store) List(name string) []string {
	return SplitList(s.String(name))
}

// Has reports whether name has a default, i.e. belongs to this store.
func (s *Store) Has(name string) bool {
	_, ok := s.defaults[name]
	return ok
}

// Keys returns the sorted field names known to the store.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Reset restores every field to its default.
func (s *Store) Reset() {
	s.values = maps.Clone(s.defaults)
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() map[string]Value {
	return maps.Clone(s.values)
}

// IsPristine reports whether every value equals its default.
func (s *Store) IsPristine() bool {
	for k, d := range s.defaults {
		if s.values[k] != d {
			return false
		}
	}
	return len(s.values) == len(s.defaults)
}

// SplitList splits a comma-separated string into trimmed, non-empty entries.
// "USA, Canada ,UK" -> [USA Canada UK]; "" and "  ,  " -> [].
func SplitList(s string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseNumber parses s as a number, returning 0 when s is not numeric.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
