// Package filter selects test cases by substring terms.
package filter

import (
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/framework"
)

// Matches reports whether description contains every term.
// Matching is case-sensitive; an empty term list matches everything.
func Matches(description string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(description, term) {
			return false
		}
	}
	return true
}

// Spec is an immutable, ordered set of filter terms.
type Spec struct {
	terms []string
}

// New creates a Spec from the given terms. The slice is copied.
func New(terms []string) Spec {
	return Spec{terms: append([]string(nil), terms...)}
}

// Empty reports whether the spec matches everything.
func (s Spec) Empty() bool {
	return len(s.terms) == 0
}

// Terms returns a copy of the terms.
func (s Spec) Terms() []string {
	return append([]string(nil), s.terms...)
}

// Match applies the spec to a description.
func (s Spec) Match(description string) bool {
	return Matches(description, s.terms)
}

// Predicate adapts the spec to the framework's filter hook.
func (s Spec) Predicate() func(framework.Case) bool {
	return func(c framework.Case) bool {
		return s.Match(c.Description())
	}
}

// String renders the terms quoted and space separated.
func (s Spec) String() string {
	quoted := make([]string, len(s.terms))
	for i, term := range s.terms {
		quoted[i] = strconv.Quote(term)
	}
	return strings.Join(quoted, " ")
}
