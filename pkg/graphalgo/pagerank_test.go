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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageRankChain() map[string]float64 {
	g := graphFromPairs(
		[2]string{"A", "B"}, [2]string{"B", "C"},
		[2]string{"C", "D"}, [2]string{"D", "E"},
	)
	result := PageRank(g)
	scores := make(map[string]float64, len(result.Nodes))
	for _, n := range result.Nodes {
		scores[n.Key] = n.Score
	}
	return scores
}

func TestPageRank_ScoresSumToOne(t *testing.T) {
	scores := pageRankChain()
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestPageRank_FiveNodeChain(t *testing.T) {
	// A->B->C->D->E with E dangling: damped uniform redistribution of E's
	// mass, 20 iterations. Fixture values computed by running the same
	// power iteration by hand.
	scores := pageRankChain()
	require.Len(t, scores, 5)

	assert.InDelta(t, 0.0812, scores["A"], 0.001)
	assert.InDelta(t, 0.1502, scores["B"], 0.001)
	assert.InDelta(t, 0.2088, scores["C"], 0.001)
	assert.InDelta(t, 0.2587, scores["D"], 0.001)
	assert.InDelta(t, 0.3011, scores["E"], 0.001)

	// Rank strictly increases along the chain.
	assert.Less(t, scores["A"], scores["B"])
	assert.Less(t, scores["B"], scores["C"])
	assert.Less(t, scores["C"], scores["D"])
	assert.Less(t, scores["D"], scores["E"])
}

func TestPageRank_InvariantUnderNodeReordering(t *testing.T) {
	pairs := [][2]string{
		{"n1", "n2"}, {"n2", "n3"}, {"n3", "n1"}, {"n1", "n4"},
	}
	a := PageRank(graphFromPairs(pairs...))

	rev := make([][2]string, len(pairs))
	for i, p := range pairs {
		rev[len(pairs)-1-i] = p
	}
	b := PageRank(graphFromPairs(rev...))

	require.Equal(t, len(a.Nodes), len(b.Nodes))
	for i := range a.Nodes {
		assert.Equal(t, a.Nodes[i].Key, b.Nodes[i].Key)
		assert.True(t, math.Abs(a.Nodes[i].Score-b.Nodes[i].Score) < 1e-12)
	}
}

func TestPageRank_SortedByScoreThenKey(t *testing.T) {
	result := PageRank(graphFromPairs(
		[2]string{"a", "hub"}, [2]string{"b", "hub"}, [2]string{"c", "hub"},
	))
	require.NotEmpty(t, result.Nodes)
	assert.Equal(t, "hub", result.Nodes[0].Key)
	for i := 1; i < len(result.Nodes); i++ {
		prev, cur := result.Nodes[i-1], result.Nodes[i]
		ordered := prev.Score > cur.Score || (prev.Score == cur.Score && prev.Key < cur.Key)
		assert.True(t, ordered, "nodes out of order at %d", i)
	}
}

func TestPageRank_EmptyGraph(t *testing.T) {
	result := PageRank(graphFromPairs())
	assert.Empty(t, result.Nodes)
	assert.False(t, result.Converged)
}
