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

// BetweennessNode is one node's centrality score.
type BetweennessNode struct {
	Key   string
	Score float64
}

// BetweennessResult is Brandes' algorithm output. Truncated is set when the
// node count exceeds the soft cap and the computation was skipped to honour
// the query layer's deadline contract rather than run unbounded.
type BetweennessResult struct {
	Nodes          []BetweennessNode
	Truncated      bool
	TokensEstimate int
}

// betweennessSoftCap is the node count above which Betweenness honors its
// soft deadline by returning a result tagged Truncated rather than running
// unbounded (its cost is O(V*E)); that result holds no per-node scores.
const betweennessSoftCap = 10000

// Betweenness computes Brandes' betweenness centrality over g, O(V*E).
func Betweenness(g *adjacency.Graph) BetweennessResult {
	if g.Empty() {
		return BetweennessResult{}
	}

	nodes := g.Nodes()
	if len(nodes) > betweennessSoftCap {
		return BetweennessResult{Truncated: true}
	}

	centrality := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		centrality[n] = 0
	}

	for _, s := range nodes {
		stack := make([]string, 0, len(nodes))
		pred := make(map[string][]string, len(nodes))
		sigma := make(map[string]float64, len(nodes))
		dist := make(map[string]int, len(nodes))
		for _, n := range nodes {
			sigma[n] = 0
			dist[n] = -1
		}
		sigma[s] = 1
		dist[s] = 0

		queue := []string{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.Forward(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[string]float64, len(nodes))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] != 0 {
					delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
				}
			}
			if w != s {
				centrality[w] += delta[w]
			}
		}
	}

	out := make([]BetweennessNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, BetweennessNode{Key: n, Score: centrality[n]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})

	chars := 0
	for _, o := range out {
		chars += len(o.Key) + 10
	}

	return BetweennessResult{Nodes: out, TokensEstimate: estimateTokens(chars)}
}
