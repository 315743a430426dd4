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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
)

// graphFromPairs builds a test snapshot from (from, to) pairs, all edges
// typed Calls.
func graphFromPairs(pairs ...[2]string) *adjacency.Graph {
	edges := make([]adjacency.EdgeKey, 0, len(pairs))
	for _, p := range pairs {
		edges = append(edges, adjacency.EdgeKey{From: p[0], To: p[1], Type: "Calls"})
	}
	return adjacency.FromEdges(edges)
}

func TestTarjanSCC_EightNodeFixture(t *testing.T) {
	// A->B, A->C, B->D, C->D, D->E, E->F, F->D, G->H, H->G
	g := graphFromPairs(
		[2]string{"A", "B"}, [2]string{"A", "C"},
		[2]string{"B", "D"}, [2]string{"C", "D"},
		[2]string{"D", "E"}, [2]string{"E", "F"}, [2]string{"F", "D"},
		[2]string{"G", "H"}, [2]string{"H", "G"},
	)

	result := TarjanSCC(g)
	require.Len(t, result.Components, 5)

	byFirst := make(map[string]SCCComponent)
	for _, c := range result.Components {
		byFirst[c.Members[0]] = c
	}

	assert.Equal(t, []string{"D", "E", "F"}, byFirst["D"].Members)
	assert.Equal(t, RiskHigh, byFirst["D"].Risk)

	assert.Equal(t, []string{"G", "H"}, byFirst["G"].Members)
	assert.Equal(t, RiskMedium, byFirst["G"].Risk)

	for _, single := range []string{"A", "B", "C"} {
		comp, ok := byFirst[single]
		require.True(t, ok, "missing singleton component %s", single)
		assert.Equal(t, []string{single}, comp.Members)
		assert.Equal(t, RiskNone, comp.Risk)
	}
}

func TestTarjanSCC_PartitionInvariant(t *testing.T) {
	g := graphFromPairs(
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
		[2]string{"c", "d"}, [2]string{"d", "e"},
	)

	result := TarjanSCC(g)

	seen := make(map[string]bool)
	for _, comp := range result.Components {
		for _, m := range comp.Members {
			assert.False(t, seen[m], "node %s appears in two components", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, g.NodeCount(), "components must cover every node")
}

func TestTarjanSCC_Deterministic(t *testing.T) {
	pairs := [][2]string{
		{"x", "y"}, {"y", "z"}, {"z", "x"}, {"z", "w"},
	}
	a := TarjanSCC(graphFromPairs(pairs...))
	// Same edges, reversed insertion order.
	rev := make([][2]string, len(pairs))
	for i, p := range pairs {
		rev[len(pairs)-1-i] = p
	}
	b := TarjanSCC(graphFromPairs(rev...))
	assert.Equal(t, a.Components, b.Components)
}

func TestTarjanSCC_EmptyGraph(t *testing.T) {
	result := TarjanSCC(adjacency.FromEdges(nil))
	assert.Empty(t, result.Components)
	assert.Zero(t, result.TokensEstimate)
}
