package core

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnrepresentable is returned when a mapping names a note outside [0,127].
	ErrUnrepresentable = errors.New("note name has no MIDI note number")
	// ErrDuplicateSource is returned when one category maps a source twice.
	ErrDuplicateSource = errors.New("source note mapped twice in the same category")
)

// Mapping sends one source note name to a destination note name.
type Mapping struct {
	From NoteName
	To   NoteName
	// Label names the articulation, e.g. "hi-hat open". Informational only.
	Label string
}

// Category groups the mappings of one kit piece (kick, snare, ride...).
type Category struct {
	Name     string
	Mappings []Mapping
}

// Override records a source note claimed by two categories. The later
// category wins.
type Override struct {
	From     NoteName
	Loser    string
	LoserTo  NoteName
	Winner   string
	WinnerTo NoteName
}

// Entry is a resolved mapping together with the category that owns it.
type Entry struct {
	Mapping
	Category string
}

// MappingTable is an immutable lookup from source to destination note name.
// It is safe for concurrent use.
type MappingTable struct {
	name       string
	categories []string
	entries    map[NoteName]Entry
	overrides  []Override
}

// NewMappingTable builds a table from categories applied in order.
//
// When a category maps a source note already mapped by an earlier category,
// the later category wins and the replaced mapping is recorded in
// Overrides. Every source and destination must name a note in [0,127], so
// the middle C fallback of ToID is never reached through a table.
func NewMappingTable(name string, categories ...Category) (*MappingTable, error) {
	t := &MappingTable{
		name:    name,
		entries: make(map[NoteName]Entry),
	}

	for _, c := range categories {
		t.categories = append(t.categories, c.Name)

		seen := make(map[NoteName]struct{}, len(c.Mappings))
		for _, m := range c.Mappings {
			if _, ok := ParseName(m.From); !ok {
				return nil, fmt.Errorf("category %q: source %q: %w", c.Name, m.From, ErrUnrepresentable)
			}
			if _, ok := ParseName(m.To); !ok {
				return nil, fmt.Errorf("category %q: destination %q for %q: %w", c.Name, m.To, m.From, ErrUnrepresentable)
			}
			if _, dup := seen[m.From]; dup {
				return nil, fmt.Errorf("category %q: source %q: %w", c.Name, m.From, ErrDuplicateSource)
			}
			seen[m.From] = struct{}{}

			if prev, ok := t.entries[m.From]; ok {
				t.overrides = append(t.overrides, Override{
					From:     m.From,
					Loser:    prev.Category,
					LoserTo:  prev.To,
					Winner:   c.Name,
					WinnerTo: m.To,
				})
			}
			t.entries[m.From] = Entry{Mapping: m, Category: c.Name}
		}
	}

	return t, nil
}

// Name returns the name the table was built with.
func (t *MappingTable) Name() string { return t.name }

// Len returns the number of distinct source notes.
func (t *MappingTable) Len() int { return len(t.entries) }

// Lookup returns the destination of name, if the table maps it.
func (t *MappingTable) Lookup(name NoteName) (NoteName, bool) {
	e, ok := t.entries[name]
	return e.To, ok
}

// CategoryOf returns the category that owns the mapping of name.
func (t *MappingTable) CategoryOf(name NoteName) (string, bool) {
	e, ok := t.entries[name]
	return e.Category, ok
}

// Categories returns the category names in precedence order, lowest first.
func (t *MappingTable) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Overrides returns the replaced mappings in the order they happened.
func (t *MappingTable) Overrides() []Override {
	return append([]Override(nil), t.overrides...)
}

// Entries returns every mapping, ordered by source note number.
func (t *MappingTable) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return ToID(out[i].From) < ToID(out[j].From)
	})
	return out
}
