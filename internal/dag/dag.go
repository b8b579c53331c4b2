// SPDX-License-Identifier: MPL-2.0

// Package dag orders module requirement graphs and rejects cyclic ones.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is wrapped by CycleError.
var ErrCycle = errors.New("requirement cycle")

type (
	// CycleError reports a requirement cycle. Cycle starts and ends with
	// the same module, e.g. [a b a].
	CycleError struct {
		Cycle []string
	}

	// Graph is a module requirement graph. Modules are kept in the order
	// they were first mentioned so Order is deterministic.
	Graph struct {
		requires map[string][]string
		modules  []string
	}

	visitState uint8
)

const (
	unvisited visitState = iota
	onPath
	done
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("requirement cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle for errors.Is compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{requires: make(map[string][]string)}
}

// Add records a module with no requirements of its own. Adding a known
// module is a no-op.
func (g *Graph) Add(module string) {
	if _, ok := g.requires[module]; ok {
		return
	}
	g.requires[module] = nil
	g.modules = append(g.modules, module)
}

// Require records that module requires dependency. Repeated edges are
// ignored.
func (g *Graph) Require(module, dependency string) {
	g.Add(module)
	g.Add(dependency)
	if !slices.Contains(g.requires[module], dependency) {
		g.requires[module] = append(g.requires[module], dependency)
	}
}

// Requirements returns the direct requirements of module in declaration order.
func (g *Graph) Requirements(module string) []string {
	return slices.Clone(g.requires[module])
}

// Order returns every module with each one placed before the modules it
// requires. Sibling requirements keep their declaration order. A cycle
// yields a *CycleError naming the modules on it.
func (g *Graph) Order() ([]string, error) {
	state := make(map[string]visitState, len(g.modules))
	var (
		path []string
		post []string
	)

	var visit func(m string) error
	visit = func(m string) error {
		switch state[m] {
		case done:
			return nil
		case onPath:
			start := slices.Index(path, m)
			cycle := append(slices.Clone(path[start:]), m)
			return &CycleError{Cycle: cycle}
		}
		state[m] = onPath
		path = append(path, m)
		// Reverse iteration keeps declaration order once post is reversed.
		reqs := g.requires[m]
		for i := len(reqs) - 1; i >= 0; i-- {
			if err := visit(reqs[i]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[m] = done
		post = append(post, m)
		return nil
	}

	for i := len(g.modules) - 1; i >= 0; i-- {
		if err := visit(g.modules[i]); err != nil {
			return nil, err
		}
	}
	slices.Reverse(post)
	return post, nil
}
