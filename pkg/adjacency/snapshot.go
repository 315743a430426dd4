// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adjacency

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kraklabs/parseltongue/pkg/storage"
)

// EdgeKey identifies one directed edge by its endpoints and type, matching
// DependencyEdges' composite key exactly.
type EdgeKey struct {
	From string
	To   string
	Type string
}

// Graph is one immutable directed-graph snapshot built from DependencyEdges.
// Callers must not mutate the slices/maps returned by its accessors.
type Graph struct {
	forward  map[string][]string
	reverse  map[string][]string
	edgeType map[EdgeKey]string
	nodes    map[string]struct{}
	edgeCnt  int
}

// Forward returns key's outgoing neighbours, in insertion (Datalog scan)
// order. Returns nil if key has no outgoing edges.
func (g *Graph) Forward(key string) []string { return g.forward[key] }

// Reverse returns key's incoming neighbours.
func (g *Graph) Reverse(key string) []string { return g.reverse[key] }

// EdgeType returns the edge type recorded for (from, to), and whether one
// exists. Multiple edge types between the same pair keep only the first
// seen, matching DependencyEdges' put-is-keyed-by-(from,to,type) semantics
// for lookups that only need "a" type, not all of them.
func (g *Graph) EdgeType(from, to string) (string, bool) {
	t, ok := g.edgeType[EdgeKey{From: from, To: to}]
	return t, ok
}

// Nodes returns every node key present in the snapshot, sorted for
// deterministic iteration.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NodeCount and EdgeCount report the snapshot's size.
func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return g.edgeCnt }

// Empty reports whether the snapshot has no nodes. Every pkg/graphalgo
// function checks this before running and returns an empty result rather
// than an error when it's true.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }

// Build performs the single O(E) pass over DependencyEdges described in the
// builder's contract.
func Build(ctx context.Context, backend storage.Backend) (*Graph, error) {
	res, err := backend.Query(ctx, `?[from_key, to_key, edge_type] := *DependencyEdges{from_key, to_key, edge_type}`)
	if err != nil {
		return nil, fmt.Errorf("adjacency: query dependency edges: %w", err)
	}

	edges := make([]EdgeKey, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 3 {
			continue
		}
		from, _ := row[0].(string)
		to, _ := row[1].(string)
		etype, _ := row[2].(string)
		if from == "" || to == "" {
			continue
		}
		edges = append(edges, EdgeKey{From: from, To: to, Type: etype})
	}

	return FromEdges(edges), nil
}

// FromEdges builds a Graph snapshot directly from an in-memory edge list,
// without a storage round trip. Fixture construction for algorithm tests
// uses this; it follows the same single-pass accumulation Build uses once
// it has rows in hand.
func FromEdges(edges []EdgeKey) *Graph {
	g := &Graph{
		forward:  make(map[string][]string),
		reverse:  make(map[string][]string),
		edgeType: make(map[EdgeKey]string),
		nodes:    make(map[string]struct{}),
	}

	for _, e := range edges {
		if e.From == "" || e.To == "" {
			continue
		}
		g.nodes[e.From] = struct{}{}
		g.nodes[e.To] = struct{}{}
		g.forward[e.From] = append(g.forward[e.From], e.To)
		g.reverse[e.To] = append(g.reverse[e.To], e.From)
		ek := EdgeKey{From: e.From, To: e.To}
		if _, exists := g.edgeType[ek]; !exists {
			g.edgeType[ek] = e.Type
		}
		g.edgeCnt++
	}

	return g
}

// DefaultTTL is the cache lifetime for Builder.Snapshot: short enough that
// a stale snapshot never survives long past the reindex that invalidated
// it.
const DefaultTTL = 60 * time.Second

// Builder memoizes the last snapshot it built, invalidating it when the TTL
// elapses or Invalidate is called (call it on every successful reindex).
type Builder struct {
	backend storage.Backend
	ttl     time.Duration

	mu         sync.Mutex
	cached     *Graph
	builtAt    time.Time
	generation int64
}

// NewBuilder wraps backend with TTL-based snapshot memoization. A zero ttl
// selects DefaultTTL.
func NewBuilder(backend storage.Backend, ttl time.Duration) *Builder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Builder{backend: backend, ttl: ttl}
}

// Invalidate bumps the generation counter, forcing the next Snapshot call to
// rebuild regardless of TTL. Call this after every successful reindex.
func (b *Builder) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.cached = nil
}

// Snapshot returns the current cached graph, rebuilding it if the cache is
// empty, expired, or was invalidated since the last call.
func (b *Builder) Snapshot(ctx context.Context) (*Graph, error) {
	b.mu.Lock()
	if b.cached != nil && time.Since(b.builtAt) < b.ttl {
		g := b.cached
		b.mu.Unlock()
		return g, nil
	}
	b.mu.Unlock()

	g, err := Build(ctx, b.backend)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.cached = g
	b.builtAt = time.Now()
	b.mu.Unlock()

	return g, nil
}
