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

// Package graphalgo is the graph-analytic algorithm library: every function
// here takes a *adjacency.Graph snapshot and returns a result sized for LLM
// consumption, carrying a TokensEstimate. Every algorithm is deterministic
// (ties are broken by a fixed, documented rule), side-effect-free, and
// returns an empty result rather than an error when the snapshot is empty.
package graphalgo

// estimateTokens is the crude chars/4 heuristic every endpoint uses to
// size its TokensEstimate field.
func estimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + 3) / 4
}
