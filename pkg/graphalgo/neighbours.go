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

package graphalgo

import (
	"sort"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
)

// NeighbourEdge is one direct edge's endpoint and type.
type NeighbourEdge struct {
	Key      string
	EdgeType string
}

// NeighboursResult is a single-hop direct-edge lookup's output.
type NeighboursResult struct {
	Key            string
	Neighbours     []NeighbourEdge
	TokensEstimate int
}

// ForwardNeighbours returns every entity key directly called/used/
// implemented by key.
func ForwardNeighbours(g *adjacency.Graph, key string) NeighboursResult {
	return buildNeighbours(g, key, g.Forward(key), func(to string) (string, string) { return key, to })
}

// ReverseNeighbours returns every entity key that directly calls/uses/
// implements key.
func ReverseNeighbours(g *adjacency.Graph, key string) NeighboursResult {
	return buildNeighbours(g, key, g.Reverse(key), func(from string) (string, string) { return from, key })
}

func buildNeighbours(g *adjacency.Graph, key string, raw []string, edgeArgs func(other string) (string, string)) NeighboursResult {
	if g.Empty() {
		return NeighboursResult{Key: key}
	}

	out := make([]NeighbourEdge, 0, len(raw))
	for _, other := range raw {
		from, to := edgeArgs(other)
		t, _ := g.EdgeType(from, to)
		out = append(out, NeighbourEdge{Key: other, EdgeType: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	chars := 0
	for _, n := range out {
		chars += len(n.Key) + len(n.EdgeType) + 4
	}

	return NeighboursResult{Key: key, Neighbours: out, TokensEstimate: estimateTokens(chars)}
}
