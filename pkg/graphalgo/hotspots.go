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

// Hotspot is one entity ranked by coupling.
type Hotspot struct {
	Key          string
	OutDegree    int
	TypeCoupling int
}

// HotspotsResult is the top-N ranking's output.
type HotspotsResult struct {
	Hotspots       []Hotspot
	TokensEstimate int
}

// Hotspots ranks entities by outgoing degree, breaking ties by the count
// of distinct outgoing edge types touched (a node calling via Calls, Uses,
// and Implements is more broadly coupled than one using a single edge
// type for the same out-degree), returning the top N.
func Hotspots(g *adjacency.Graph, topN int) HotspotsResult {
	if g.Empty() {
		return HotspotsResult{}
	}
	if topN <= 0 {
		topN = 20
	}

	var out []Hotspot
	for _, n := range g.Nodes() {
		targets := g.Forward(n)
		if len(targets) == 0 {
			continue
		}
		types := make(map[string]struct{})
		for _, to := range targets {
			if t, ok := g.EdgeType(n, to); ok {
				types[t] = struct{}{}
			}
		}
		out = append(out, Hotspot{Key: n, OutDegree: len(targets), TypeCoupling: len(types)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].OutDegree != out[j].OutDegree {
			return out[i].OutDegree > out[j].OutDegree
		}
		if out[i].TypeCoupling != out[j].TypeCoupling {
			return out[i].TypeCoupling > out[j].TypeCoupling
		}
		return out[i].Key < out[j].Key
	})

	if len(out) > topN {
		out = out[:topN]
	}

	chars := 0
	for _, h := range out {
		chars += len(h.Key) + 16
	}

	return HotspotsResult{Hotspots: out, TokensEstimate: estimateTokens(chars)}
}
