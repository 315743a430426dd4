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

// SmartContextResult is the greedy token-budgeted selection's output.
type SmartContextResult struct {
	Selected       []string
	TokensEstimate int
	BudgetTokens   int
}

// SmartContext greedily expands from focus by alternating reverse and
// forward neighbours (closer entities first, ties broken by key), adding
// each candidate's estimated signature token cost (sigTokens, falling back
// to a flat per-entity estimate when a key is absent from it) until the
// running total would exceed budgetTokens. focus itself is always
// included regardless of budget.
func SmartContext(g *adjacency.Graph, focus string, budgetTokens int, sigTokens map[string]int) SmartContextResult {
	if g.Empty() || focus == "" {
		return SmartContextResult{}
	}
	if budgetTokens <= 0 {
		budgetTokens = 2000
	}

	const flatEstimate = 40

	costOf := func(key string) int {
		if c, ok := sigTokens[key]; ok {
			return c
		}
		return flatEstimate
	}

	selected := map[string]struct{}{focus: {}}
	order := []string{focus}
	total := costOf(focus)

	frontier := []string{focus}
	visited := map[string]bool{focus: true}

	for len(frontier) > 0 && total < budgetTokens {
		var candidates []string
		for _, n := range frontier {
			for _, nb := range g.Reverse(n) {
				if !visited[nb] {
					candidates = append(candidates, nb)
				}
			}
			for _, nb := range g.Forward(n) {
				if !visited[nb] {
					candidates = append(candidates, nb)
				}
			}
		}
		if len(candidates) == 0 {
			break
		}

		dedup := make(map[string]struct{}, len(candidates))
		var unique []string
		for _, c := range candidates {
			if _, ok := dedup[c]; !ok {
				dedup[c] = struct{}{}
				unique = append(unique, c)
			}
		}
		sort.Strings(unique)

		var next []string
		for _, c := range unique {
			visited[c] = true
			next = append(next, c)

			cost := costOf(c)
			if total+cost > budgetTokens {
				continue
			}
			total += cost
			selected[c] = struct{}{}
			order = append(order, c)
		}
		frontier = next
	}

	out := make([]string, 0, len(selected))
	for _, k := range order {
		if _, ok := selected[k]; ok {
			out = append(out, k)
		}
	}

	return SmartContextResult{Selected: out, TokensEstimate: total, BudgetTokens: budgetTokens}
}
