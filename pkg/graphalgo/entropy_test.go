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
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
)

// typedStar builds a node "src" with one outgoing edge per type in types,
// each to a distinct target.
func typedStar(types ...string) *adjacency.Graph {
	edges := make([]adjacency.EdgeKey, 0, len(types))
	for i, typ := range types {
		edges = append(edges, adjacency.EdgeKey{From: "src", To: fmt.Sprintf("t%d", i), Type: typ})
	}
	return adjacency.FromEdges(edges)
}

func entropyOf(t *testing.T, g *adjacency.Graph, key string) EntropyNode {
	t.Helper()
	result := EdgeTypeEntropy(g)
	for _, n := range result.Nodes {
		if n.Key == key {
			return n
		}
	}
	t.Fatalf("no entropy row for %s", key)
	return EntropyNode{}
}

func TestEdgeTypeEntropy_UniformDistribution(t *testing.T) {
	// Uniform over n edge types must yield H = log2(n) within 1e-9.
	for _, n := range []int{2, 3, 4, 8} {
		types := make([]string, n)
		for i := range types {
			types[i] = fmt.Sprintf("type%d", i)
		}
		node := entropyOf(t, typedStar(types...), "src")
		assert.InDelta(t, math.Log2(float64(n)), node.Entropy, 1e-9, "n=%d", n)
	}
}

func TestEdgeTypeEntropy_SingleTypeIsZero(t *testing.T) {
	node := entropyOf(t, typedStar("Calls", "Calls", "Calls"), "src")
	assert.Zero(t, node.Entropy)
	assert.Equal(t, EntropyLow, node.Class)
}

func TestEdgeTypeEntropy_Classification(t *testing.T) {
	// 2 types: H = 1.0 -> Low. 3 types: H ~= 1.585 -> Moderate.
	low := entropyOf(t, typedStar("Calls", "Uses"), "src")
	assert.Equal(t, EntropyLow, low.Class)

	moderate := entropyOf(t, typedStar("Calls", "Uses", "Implements"), "src")
	assert.Equal(t, EntropyModerate, moderate.Class)

	// 12 distinct types: H ~= 3.585 -> High.
	types := make([]string, 12)
	for i := range types {
		types[i] = fmt.Sprintf("k%d", i)
	}
	high := entropyOf(t, typedStar(types...), "src")
	assert.Equal(t, EntropyHigh, high.Class)
}

func TestEdgeTypeEntropy_SkipsNodesWithoutOutgoingEdges(t *testing.T) {
	result := EdgeTypeEntropy(typedStar("Calls", "Uses"))
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, "src", result.Nodes[0].Key)
}
