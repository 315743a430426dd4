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

// CoreLayer classifies a node by its coreness value.
type CoreLayer string

const (
	LayerCore       CoreLayer = "Core"
	LayerMid        CoreLayer = "Mid"
	LayerPeripheral CoreLayer = "Peripheral"
)

func layerForCoreness(k int) CoreLayer {
	switch {
	case k >= 8:
		return LayerCore
	case k >= 3:
		return LayerMid
	default:
		return LayerPeripheral
	}
}

// CoreNode is one node's k-core result.
type CoreNode struct {
	Key      string
	Coreness int
	Layer    CoreLayer
}

// KCoreResult is the decomposition's output, sorted by descending coreness
// then ascending key.
type KCoreResult struct {
	Nodes          []CoreNode
	TokensEstimate int
}

// KCore runs the Batagelj-Zaversnik bucket algorithm over g's undirected
// degree (forward+reverse union), O(E). Degree counts both directions since
// coreness is defined over an undirected view of the dependency graph.
func KCore(g *adjacency.Graph) KCoreResult {
	if g.Empty() {
		return KCoreResult{}
	}

	nodes := g.Nodes()
	neighbours := make(map[string]map[string]struct{}, len(nodes))
	for _, n := range nodes {
		neighbours[n] = make(map[string]struct{})
	}
	for _, from := range nodes {
		for _, to := range g.Forward(from) {
			if _, ok := neighbours[to]; !ok {
				neighbours[to] = make(map[string]struct{})
			}
			neighbours[from][to] = struct{}{}
			neighbours[to][from] = struct{}{}
		}
	}

	degree := make(map[string]int, len(neighbours))
	maxDeg := 0
	for n, nbrs := range neighbours {
		degree[n] = len(nbrs)
		if len(nbrs) > maxDeg {
			maxDeg = len(nbrs)
		}
	}

	// Bucket sort nodes by current degree.
	buckets := make([][]string, maxDeg+1)
	pos := make(map[string]int, len(degree))
	bucketOf := make(map[string]int, len(degree))
	for n, d := range degree {
		buckets[d] = append(buckets[d], n)
		pos[n] = len(buckets[d]) - 1
		bucketOf[n] = d
	}

	removed := make(map[string]bool, len(degree))
	coreness := make(map[string]int, len(degree))

	remaining := len(degree)
	for remaining > 0 {
		// Find smallest non-empty bucket.
		d := 0
		for d <= maxDeg && len(buckets[d]) == 0 {
			d++
		}
		if d > maxDeg {
			break
		}

		// Pop one node from bucket d.
		bucket := buckets[d]
		v := bucket[len(bucket)-1]
		buckets[d] = bucket[:len(bucket)-1]
		if removed[v] {
			continue
		}
		removed[v] = true
		coreness[v] = d
		remaining--

		for nbr := range neighbours[v] {
			if removed[nbr] {
				continue
			}
			oldDeg := bucketOf[nbr]
			if oldDeg <= d {
				continue
			}
			// Remove nbr from its current bucket (swap-remove).
			b := buckets[oldDeg]
			idx := pos[nbr]
			last := len(b) - 1
			b[idx] = b[last]
			pos[b[idx]] = idx
			buckets[oldDeg] = b[:last]

			newDeg := oldDeg - 1
			if newDeg < d {
				newDeg = d
			}
			buckets[newDeg] = append(buckets[newDeg], nbr)
			pos[nbr] = len(buckets[newDeg]) - 1
			bucketOf[nbr] = newDeg
		}
	}

	out := make([]CoreNode, 0, len(coreness))
	for n, k := range coreness {
		out = append(out, CoreNode{Key: n, Coreness: k, Layer: layerForCoreness(k)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coreness != out[j].Coreness {
			return out[i].Coreness > out[j].Coreness
		}
		return out[i].Key < out[j].Key
	})

	chars := 0
	for _, n := range out {
		chars += len(n.Key) + 8
	}

	return KCoreResult{Nodes: out, TokensEstimate: estimateTokens(chars)}
}
