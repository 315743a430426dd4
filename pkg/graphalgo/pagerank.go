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

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
	pageRankMaxIter   = 20
)

// PageRankNode is one node's normalised score.
type PageRankNode struct {
	Key   string
	Score float64
}

// PageRankResult is the converged (or iteration-capped) scores, normalised
// to sum to 1 and sorted by descending score then ascending key.
type PageRankResult struct {
	Nodes          []PageRankNode
	Iterations     int
	Converged      bool
	TokensEstimate int
}

// PageRank runs the standard power-iteration PageRank with damping 0.85,
// redistributing dangling-node mass uniformly across all nodes each
// iteration, capped at 20 iterations or a 1e-6 L1 convergence threshold.
func PageRank(g *adjacency.Graph) PageRankResult {
	return PageRankWithDamping(g, 0)
}

// PageRankWithDamping is PageRank with an explicit damping factor. A
// damping outside (0, 1) selects the default 0.85.
func PageRankWithDamping(g *adjacency.Graph, damping float64) PageRankResult {
	if g.Empty() {
		return PageRankResult{}
	}
	if damping <= 0 || damping >= 1 {
		damping = pageRankDamping
	}

	nodes := g.Nodes()
	n := len(nodes)
	idx := make(map[string]int, n)
	for i, node := range nodes {
		idx[node] = i
	}

	outDeg := make([]int, n)
	for i, node := range nodes {
		outDeg[i] = len(g.Forward(node))
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	base := (1.0 - damping) / float64(n)
	converged := false
	iter := 0

	for iter = 0; iter < pageRankMaxIter; iter++ {
		next := make([]float64, n)

		danglingMass := 0.0
		for i, node := range nodes {
			if outDeg[i] == 0 {
				danglingMass += scores[i]
			} else {
				share := damping * scores[i] / float64(outDeg[i])
				for _, to := range g.Forward(node) {
					next[idx[to]] += share
				}
			}
		}

		danglingShare := damping * danglingMass / float64(n)
		diff := 0.0
		for i := range next {
			next[i] += base + danglingShare
			diff += abs(next[i] - scores[i])
		}

		scores = next
		if diff < pageRankTolerance {
			converged = true
			iter++
			break
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total > 0 {
		for i := range scores {
			scores[i] /= total
		}
	}

	out := make([]PageRankNode, n)
	for i, node := range nodes {
		out[i] = PageRankNode{Key: node, Score: scores[i]}
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

	return PageRankResult{
		Nodes:          out,
		Iterations:     iter,
		Converged:      converged,
		TokensEstimate: estimateTokens(chars),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
