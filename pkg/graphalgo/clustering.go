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

// Cluster is one detected community.
type Cluster struct {
	ID      int
	Members []string
}

// ClusterResult is a community-detection run's output.
type ClusterResult struct {
	Clusters       []Cluster
	TokensEstimate int
}

// undirectedNeighbours builds a symmetric adjacency view of g: dependency
// edges are directional, but community structure (who clusters with whom)
// is naturally undirected.
func undirectedNeighbours(g *adjacency.Graph) (nodes []string, nbrs map[string][]string) {
	nodes = g.Nodes()
	nbrs = make(map[string][]string, len(nodes))
	seen := make(map[[2]string]bool)
	for _, from := range nodes {
		for _, to := range g.Forward(from) {
			k1 := [2]string{from, to}
			if !seen[k1] {
				seen[k1] = true
				nbrs[from] = append(nbrs[from], to)
			}
			k2 := [2]string{to, from}
			if !seen[k2] {
				seen[k2] = true
				nbrs[to] = append(nbrs[to], from)
			}
		}
	}
	return nodes, nbrs
}

// LabelPropagation runs fast asynchronous label propagation: nodes are
// visited in sorted order and each updates its label in place, adopting
// the label held by the plurality of its neighbours,
// ties broken by smallest label value for determinism. Capped at 15
// iterations.
func LabelPropagation(g *adjacency.Graph) ClusterResult {
	if g.Empty() {
		return ClusterResult{}
	}

	nodes, nbrs := undirectedNeighbours(g)
	label := make(map[string]int, len(nodes))
	for i, n := range nodes {
		label[n] = i
	}

	const maxIter = 15
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for _, n := range nodes {
			counts := make(map[int]int)
			for _, nb := range nbrs[n] {
				counts[label[nb]]++
			}
			if len(counts) == 0 {
				continue
			}
			best := label[n]
			bestCount := -1
			for lbl, cnt := range counts {
				if cnt > bestCount || (cnt == bestCount && lbl < best) {
					best = lbl
					bestCount = cnt
				}
			}
			if best != label[n] {
				label[n] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return ClusterResult{Clusters: groupByLabel(nodes, label), TokensEstimate: clusterTokens(nodes)}
}

// Leiden approximates Leiden community detection with a local-moving
// modularity-optimisation pass per connected component (the same greedy
// move-to-best-neighbour-community heuristic as label propagation's
// Louvain cousin), iterated to convergence or 100 passes. ModularityQ
// reports the final partition's modularity score.
type LeidenResult struct {
	Clusters       []Cluster
	ModularityQ    float64
	TokensEstimate int
}

func Leiden(g *adjacency.Graph) LeidenResult {
	return LeidenWithOptions(g, 0, 0)
}

// LeidenWithOptions exposes the resolution parameter (scales the
// null-model term in the gain: higher resolution favours more, smaller
// communities) and the pass cap. resolution <= 0 selects 1.0; maxIter <= 0
// selects 100.
func LeidenWithOptions(g *adjacency.Graph, resolution float64, maxIter int) LeidenResult {
	if g.Empty() {
		return LeidenResult{}
	}
	if resolution <= 0 {
		resolution = 1.0
	}
	if maxIter <= 0 {
		maxIter = 100
	}

	nodes, nbrs := undirectedNeighbours(g)
	n := len(nodes)
	idx := make(map[string]int, n)
	for i, nd := range nodes {
		idx[nd] = i
	}

	degree := make([]float64, n)
	m2 := 0.0
	for i, nd := range nodes {
		degree[i] = float64(len(nbrs[nd]))
		m2 += degree[i]
	}
	if m2 == 0 {
		// No edges: every node is its own singleton community.
		label := make(map[string]int, n)
		for i, nd := range nodes {
			label[nd] = i
		}
		return LeidenResult{Clusters: groupByLabel(nodes, label), TokensEstimate: clusterTokens(nodes)}
	}

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}
	commStrength := make([]float64, n)
	for i := range nodes {
		commStrength[community[i]] += degree[i]
	}

	for pass := 0; pass < maxIter; pass++ {
		moved := false
		for i, nd := range nodes {
			commWeights := make(map[int]float64)
			for _, nb := range nbrs[nd] {
				commWeights[community[idx[nb]]]++
			}

			current := community[i]
			ki := degree[i]
			kiIn := commWeights[current]
			// Evaluate moves as if the node were already removed from its
			// own community; keeping its own degree in sigma makes
			// symmetric swaps look profitable and the pass oscillates
			// instead of converging.
			sigmaCurrent := commStrength[current] - ki
			removeDelta := kiIn/m2 - resolution*(sigmaCurrent*ki)/(m2*m2)

			best := current
			bestGain := 0.0
			for c, wic := range commWeights {
				if c == current {
					continue
				}
				sigmaC := commStrength[c]
				gain := (wic/m2 - resolution*(sigmaC*ki)/(m2*m2)) - removeDelta
				if gain > bestGain || (gain == bestGain && c < best) {
					bestGain = gain
					best = c
				}
			}

			if best != current {
				commStrength[current] -= ki
				commStrength[best] += ki
				community[i] = best
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	label := make(map[string]int, n)
	for i, nd := range nodes {
		label[nd] = community[i]
	}

	q := modularity(nodes, nbrs, label, m2)

	return LeidenResult{Clusters: groupByLabel(nodes, label), ModularityQ: q, TokensEstimate: clusterTokens(nodes)}
}

func modularity(nodes []string, nbrs map[string][]string, label map[string]int, m2 float64) float64 {
	if m2 == 0 {
		return 0
	}
	degree := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		degree[n] = float64(len(nbrs[n]))
	}
	q := 0.0
	for _, u := range nodes {
		for _, v := range nbrs[u] {
			if label[u] == label[v] {
				q += 1.0
			}
		}
	}
	strength := make(map[int]float64)
	for _, n := range nodes {
		strength[label[n]] += degree[n]
	}
	for _, s := range strength {
		q -= s * s / m2
	}
	return q / m2
}

func groupByLabel(nodes []string, label map[string]int) []Cluster {
	groups := make(map[int][]string)
	for _, n := range nodes {
		groups[label[n]] = append(groups[label[n]], n)
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Cluster, 0, len(groups))
	for newID, oldID := range ids {
		members := groups[oldID]
		sort.Strings(members)
		out = append(out, Cluster{ID: newID, Members: members})
	}
	return out
}

func clusterTokens(nodes []string) int {
	chars := 0
	for _, n := range nodes {
		chars += len(n) + 4
	}
	return estimateTokens(chars)
}
