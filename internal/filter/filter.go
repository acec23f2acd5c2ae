// Package filter provides row filtering for the event pipeline.
//
// Two kinds of filters exist:
//   - Keep-sets: inclusion filters on currency codes and impact labels.
//     A row is kept only when its currency and its impact are both members.
//   - Speech annotations: rows such as "Fed Chair Speaks" that are not real
//     calendar releases and are dropped by the sanitize stage.
//
// Example usage:
//
//	f := filter.New([]string{"USD"}, []string{"high", "holiday"})
//	kept := f.Apply(rows)
package filter

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/ff-calendar/internal/event"
)

// KeepSet is a set of accepted values
type KeepSet map[string]struct{}

// NewKeepSet builds a set from values after applying norm to each one.
// Empty values are ignored.
func NewKeepSet(values []string, norm func(string) string) KeepSet {
	set := make(KeepSet, len(values))
	for _, v := range values {
		v = norm(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// Has reports whether v is in the set
func (s KeepSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the set
func (s KeepSet) Len() int {
	return len(s)
}

// Values returns the set members sorted
func (s KeepSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter is the currency and impact inclusion filter
type Filter struct {
	Currencies KeepSet
	Impacts    KeepSet
}

// New creates a Filter. Currencies are upper-cased and impacts normalized the
// same way event impacts are.
func New(currencies, impacts []string) Filter {
	return Filter{
		Currencies: NewKeepSet(currencies, strings.ToUpper),
		Impacts:    NewKeepSet(impacts, event.NormalizeImpact),
	}
}

// Matches checks whether a row passes both keep-sets
func (f Filter) Matches(row event.Row) bool {
	return f.Currencies.Has(row.Currency) && f.Impacts.Has(row.Impact)
}

// Apply returns the rows that match, preserving order
func (f Filter) Apply(rows []event.Row) []event.Row {
	kept := make([]event.Row, 0, len(rows))
	for _, row := range rows {
		if f.Matches(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

// IsSpeech reports whether a row is a speech annotation rather than an
// economic release: its impact label is a speech category, or its title
// contains the word "speaks".
func IsSpeech(row event.Row) bool {
	impact := strings.ToLower(row.Impact)
	if impact == "speaks" || impact == "speech" || impact == "speeches" {
		return true
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(row.Title), isSeparator) {
		if word == "speaks" {
			return true
		}
	}
	return false
}

// RemoveSpeeches drops speech annotations, preserving order
func RemoveSpeeches(rows []event.Row) []event.Row {
	kept := make([]event.Row, 0, len(rows))
	for _, row := range rows {
		if !IsSpeech(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}
