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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/parseltongue/pkg/adjacency"
)

func ckByKey(t *testing.T, g *adjacency.Graph) (map[string]CKMetrics, CKResult) {
	t.Helper()
	result := ComputeCK(g)
	byKey := make(map[string]CKMetrics, len(result.Metrics))
	for _, m := range result.Metrics {
		byKey[m.Key] = m
	}
	return byKey, result
}

func TestComputeCK_StarGraph(t *testing.T) {
	byKey, _ := ckByKey(t, graphFromPairs(
		[2]string{"hub", "l1"}, [2]string{"hub", "l2"},
	))

	hub := byKey["hub"]
	assert.Equal(t, 2, hub.CBO)
	assert.Equal(t, 3, hub.RFC)
	assert.Equal(t, 2, hub.WMC)
	// l1 and l2 have no forward edges, so they share no second-hop
	// neighbour: hub's collaborators are fully disjoint.
	assert.Equal(t, 1.0, hub.LCOM)

	leaf := byKey["l1"]
	assert.Equal(t, 1, leaf.CBO)
	assert.Equal(t, 1, leaf.RFC)
	assert.Equal(t, 0, leaf.WMC)
	assert.Equal(t, 0.0, leaf.LCOM)
}

func TestComputeCK_CohesiveCollaborators(t *testing.T) {
	// hub's two collaborators both call shared: cohesive, LCOM 0.
	byKey, _ := ckByKey(t, graphFromPairs(
		[2]string{"hub", "x"}, [2]string{"hub", "y"},
		[2]string{"x", "shared"}, [2]string{"y", "shared"},
	))
	assert.Equal(t, 0.0, byKey["hub"].LCOM)
}

func TestComputeCK_InheritanceMetricsUnsupported(t *testing.T) {
	_, result := ckByKey(t, graphFromPairs([2]string{"a", "b"}))
	require.Len(t, result.Unsupported, 2)
	names := []string{result.Unsupported[0].Metric, result.Unsupported[1].Metric}
	assert.Contains(t, names, "DIT")
	assert.Contains(t, names, "NOC")
	for _, u := range result.Unsupported {
		assert.NotEmpty(t, u.Reason)
	}
}

func TestComputeSQALE_FixedRemediationConstants(t *testing.T) {
	// A hub with 11 disjoint leaf collaborators violates CBO>10 (4h) and
	// LCOM>0.8 (8h) but not CC>15.
	var pairs [][2]string
	for i := 0; i < 11; i++ {
		pairs = append(pairs, [2]string{"hub", fmt.Sprintf("leaf%02d", i)})
	}
	result := ComputeSQALE(graphFromPairs(pairs...))

	require.Len(t, result.Debts, 1)
	debt := result.Debts[0]
	assert.Equal(t, "hub", debt.Key)
	assert.Equal(t, 12.0, debt.RemediationHrs)
	assert.ElementsMatch(t, []string{"CBO>10", "LCOM>0.8"}, debt.Violations)
	assert.Equal(t, 12.0, result.TotalHrs)
}

func TestComputeSQALE_NoViolationsMeansNoDebt(t *testing.T) {
	result := ComputeSQALE(graphFromPairs([2]string{"a", "b"}))
	assert.Empty(t, result.Debts)
	assert.Zero(t, result.TotalHrs)
}
