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

var searchFixture = []SearchableEntity{
	{Key: "python:function:process_payment:src_billing_py:10-30", Name: "process_payment"},
	{Key: "python:function:process_refund:src_billing_py:32-50", Name: "process_refund"},
	{Key: "python:class:PaymentGateway:src_gateway_py:1-80", Name: "PaymentGateway"},
	{Key: "go:function:HealthCheck:cmd_server_go:5-12", Name: "HealthCheck"},
}

func TestFuzzySearch_SubstringMatchesRankFirst(t *testing.T) {
	result := FuzzySearch(searchFixture, "payment", 0.75, 10)
	require.NotEmpty(t, result.Hits)

	// Case-insensitive substring hits carry similarity 1.0.
	assert.Equal(t, 1.0, result.Hits[0].Similarity)
	keys := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		keys = append(keys, h.Name)
	}
	assert.Contains(t, keys, "process_payment")
	assert.Contains(t, keys, "PaymentGateway")
}

func TestFuzzySearch_ThresholdFiltersWeakMatches(t *testing.T) {
	result := FuzzySearch(searchFixture, "zzzzqqqq", 0.9, 10)
	assert.Empty(t, result.Hits)
}

func TestFuzzySearch_LimitTruncates(t *testing.T) {
	result := FuzzySearch(searchFixture, "process", 0.75, 1)
	assert.Len(t, result.Hits, 1)
}

func TestFuzzySearch_EmptyQueryOrCorpus(t *testing.T) {
	assert.Empty(t, FuzzySearch(nil, "x", 0.75, 10).Hits)
	assert.Empty(t, FuzzySearch(searchFixture, "", 0.75, 10).Hits)
}

func TestFuzzySearch_DeterministicOrdering(t *testing.T) {
	a := FuzzySearch(searchFixture, "process", 0.5, 10)
	b := FuzzySearch(searchFixture, "process", 0.5, 10)
	assert.Equal(t, a.Hits, b.Hits)
	for i := 1; i < len(a.Hits); i++ {
		prev, cur := a.Hits[i-1], a.Hits[i]
		ordered := prev.Similarity > cur.Similarity ||
			(prev.Similarity == cur.Similarity && prev.Key < cur.Key)
		assert.True(t, ordered, "hits out of order at %d", i)
	}
}
