// Package resolve turns free-text names into unique catalogue records.
//
// Every lookup is classified into exactly one of three outcomes: NotFound,
// Unique or Ambiguous. Handlers that need several lookups per request
// compose them with a Chain, which fixes the order in which failures are
// reported.
package resolve

import (
	"github.com/HendryAvila/foreman/internal/apperr"
)

// Kind is the three-way classification of a lookup.
type Kind int

const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Outcome is the result of resolving one name.
type Outcome[T any] struct {
	Kind   Kind
	Entity string
	Query  string
	// Scope describes the parent the lookup ran in, e.g. `in project "Tower A"`.
	Scope string
	// Match is set when Kind is Unique.
	Match T
	// Candidates holds every match when Kind is Ambiguous.
	Candidates []T
}

// Classify maps a match list onto an Outcome.
func Classify[T any](entity, query string, matches []T) Outcome[T] {
	o := Outcome[T]{Entity: entity, Query: query}
	switch len(matches) {
	case 0:
		o.Kind = NotFound
	case 1:
		o.Kind = Unique
		o.Match = matches[0]
	default:
		o.Kind = Ambiguous
		o.Candidates = matches
	}
	return o
}

// Value returns the unique match.
func (o Outcome[T]) Value() (T, bool) {
	return o.Match, o.Kind == Unique
}

// Err converts a non-unique outcome into a user-facing error. label renders
// one candidate for the disambiguation list. It returns nil for Unique.
func (o Outcome[T]) Err(label func(T) string) error {
	switch o.Kind {
	case Unique:
		return nil
	case Ambiguous:
		labels := make([]string, len(o.Candidates))
		for i, c := range o.Candidates {
			labels[i] = label(c)
		}
		return apperr.Ambiguous(o.Entity, o.Query, o.Scope, labels)
	default:
		return apperr.NotFound(o.Entity, o.Query, o.Scope)
	}
}
