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

func TestBlastRadius_GroupsByHopDistance(t *testing.T) {
	g := graphFromPairs(
		[2]string{"a", "b"}, [2]string{"b", "c"},
		[2]string{"c", "d"}, [2]string{"a", "e"},
	)

	result := BlastRadius(g, "a", 2)
	assert.Equal(t, "a", result.Source)
	require.Len(t, result.Hops, 2)

	assert.Equal(t, 1, result.Hops[0].Hop)
	assert.Equal(t, []string{"b", "e"}, result.Hops[0].Members)
	assert.Equal(t, 2, result.Hops[1].Hop)
	assert.Equal(t, []string{"c"}, result.Hops[1].Members)
}

func TestBlastRadius_ZeroHopsIsEmpty(t *testing.T) {
	g := graphFromPairs([2]string{"a", "b"})
	result := BlastRadius(g, "a", 0)
	assert.Empty(t, result.Hops)
}

func TestBlastRadius_NegativeHopsSelectsDefault(t *testing.T) {
	g := graphFromPairs(
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"},
	)
	result := BlastRadius(g, "a", -1)
	require.Len(t, result.Hops, DefaultBlastRadiusHops)
	assert.Equal(t, []string{"c"}, result.Hops[1].Members)
}

func TestBlastRadius_CycleVisitedOnce(t *testing.T) {
	g := graphFromPairs(
		[2]string{"a", "b"}, [2]string{"b", "a"},
	)
	result := BlastRadius(g, "a", 5)
	require.Len(t, result.Hops, 1)
	assert.Equal(t, []string{"b"}, result.Hops[0].Members)
}
