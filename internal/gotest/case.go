package gotest

import (
	"time"

	"github.com/AndreyAkinshin/testtask/internal/framework"
)

// Case is a top-level Go test, example or fuzz target.
type Case struct {
	pkg  string
	name string

	started bool
	outcome framework.Outcome
	message string
	stack   string
	elapsed time.Duration
	output  []string
}

var _ framework.Case = (*Case)(nil)

// Description is "<import path> <TestName>", or just the name when the package is unknown.
func (c *Case) Description() string {
	if c.pkg == "" {
		return c.name
	}
	return c.pkg + " " + c.name
}

// Package returns the import path of the test's package.
func (c *Case) Package() string { return c.pkg }

// Name returns the test function name.
func (c *Case) Name() string { return c.name }

func (c *Case) Outcome() framework.Outcome { return c.outcome }
func (c *Case) Message() string            { return c.message }
func (c *Case) StackTrace() string         { return c.stack }
func (c *Case) RunningTime() time.Duration { return c.elapsed }

// registry holds the cases known to a framework and its installed configuration.
type registry struct {
	cases    []*Case
	index    map[string]*Case
	observer framework.Observer
	keep     func(framework.Case) bool
}

func caseKey(pkg, name string) string {
	return pkg + "\x00" + name
}

// add registers a case once; later calls return the existing case.
func (r *registry) add(pkg, name string) *Case {
	if r.index == nil {
		r.index = make(map[string]*Case)
	}
	key := caseKey(pkg, name)
	if c, ok := r.index[key]; ok {
		return c
	}
	c := &Case{pkg: pkg, name: name}
	r.index[key] = c
	r.cases = append(r.cases, c)
	return c
}

func (r *registry) SetConfiguration(o framework.Observer) {
	r.observer = o
	o.OnInit()
}

func (r *registry) SetFilter(keep func(framework.Case) bool) {
	r.keep = keep
}

func (r *registry) Cases() []framework.Case {
	eligible := r.eligible()
	out := make([]framework.Case, len(eligible))
	for i, c := range eligible {
		out[i] = c
	}
	return out
}

func (r *registry) eligible() []*Case {
	var out []*Case
	for _, c := range r.cases {
		if r.keep == nil || r.keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// lookup returns the registered, eligible case for pkg and name, or nil.
func (r *registry) lookup(pkg, name string) *Case {
	c, ok := r.index[caseKey(pkg, name)]
	if !ok {
		return nil
	}
	if r.keep != nil && !r.keep(c) {
		return nil
	}
	return c
}
