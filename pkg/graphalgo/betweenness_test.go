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
)

func betweennessScores(t *testing.T, pairs ...[2]string) map[string]float64 {
	t.Helper()
	result := Betweenness(graphFromPairs(pairs...))
	require.False(t, result.Truncated)
	scores := make(map[string]float64, len(result.Nodes))
	for _, n := range result.Nodes {
		scores[n.Key] = n.Score
	}
	return scores
}

func TestBetweenness_DirectedPath(t *testing.T) {
	// a->b->c: the only shortest path a~>c passes through b.
	scores := betweennessScores(t,
		[2]string{"a", "b"}, [2]string{"b", "c"},
	)
	assert.Equal(t, 0.0, scores["a"])
	assert.Equal(t, 1.0, scores["b"])
	assert.Equal(t, 0.0, scores["c"])
}

func TestBetweenness_Bridge(t *testing.T) {
	// Two fans joined by a single bridge node: every cross pair routes
	// through it.
	scores := betweennessScores(t,
		[2]string{"a1", "bridge"}, [2]string{"a2", "bridge"},
		[2]string{"bridge", "b1"}, [2]string{"bridge", "b2"},
	)
	// 2 sources x 2 sinks, each dependent pair counts once.
	assert.Equal(t, 4.0, scores["bridge"])
	for _, leaf := range []string{"a1", "a2", "b1", "b2"} {
		assert.Equal(t, 0.0, scores[leaf], "leaf %s", leaf)
	}
}

func TestBetweenness_SplitShortestPaths(t *testing.T) {
	// a->{m1,m2}->z: two equal-length paths, each middle node carries half.
	scores := betweennessScores(t,
		[2]string{"a", "m1"}, [2]string{"a", "m2"},
		[2]string{"m1", "z"}, [2]string{"m2", "z"},
	)
	assert.InDelta(t, 0.5, scores["m1"], 1e-12)
	assert.InDelta(t, 0.5, scores["m2"], 1e-12)
}

func TestBetweenness_EmptyGraph(t *testing.T) {
	result := Betweenness(graphFromPairs())
	assert.Empty(t, result.Nodes)
	assert.False(t, result.Truncated)
}
