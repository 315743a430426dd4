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

// DefaultBlastRadiusHops is the default bound when a caller doesn't supply
// one.
const DefaultBlastRadiusHops = 2

// HopGroup is every entity reachable at exactly one hop distance.
type HopGroup struct {
	Hop     int
	Members []string
}

// BlastRadiusResult is the bounded-BFS output, grouped by hop distance.
type BlastRadiusResult struct {
	Source         string
	Hops           []HopGroup
	TokensEstimate int
}

// blastRadiusNodeCap is the safety limit on nodes explored, matching the
// BFS trace's own maxNodesExplored safeguard against pathological fan-out.
const blastRadiusNodeCap = 5000

// BlastRadius performs a bounded forward BFS from source up to maxHops,
// grouping reached nodes by their hop distance. A negative maxHops selects
// DefaultBlastRadiusHops; maxHops == 0 is a deliberate zero-hop request and
// returns an empty result rather than being treated as "unspecified".
func BlastRadius(g *adjacency.Graph, source string, maxHops int) BlastRadiusResult {
	if g.Empty() {
		return BlastRadiusResult{}
	}
	if maxHops < 0 {
		maxHops = DefaultBlastRadiusHops
	}

	visited := map[string]int{source: 0}
	queue := []string{source}
	explored := 0

	for hop := 0; hop < maxHops && len(queue) > 0; hop++ {
		var next []string
		for _, n := range queue {
			if explored >= blastRadiusNodeCap {
				break
			}
			explored++
			for _, nb := range g.Forward(n) {
				if _, seen := visited[nb]; !seen {
					visited[nb] = hop + 1
					next = append(next, nb)
				}
			}
		}
		queue = next
	}

	byHop := make(map[int][]string)
	for node, hop := range visited {
		if node == source {
			continue
		}
		byHop[hop] = append(byHop[hop], node)
	}

	hops := make([]int, 0, len(byHop))
	for h := range byHop {
		hops = append(hops, h)
	}
	sort.Ints(hops)

	out := make([]HopGroup, 0, len(hops))
	chars := len(source)
	for _, h := range hops {
		members := byHop[h]
		sort.Strings(members)
		out = append(out, HopGroup{Hop: h, Members: members})
		for _, m := range members {
			chars += len(m) + 4
		}
	}

	return BlastRadiusResult{Source: source, Hops: out, TokensEstimate: estimateTokens(chars)}
}
