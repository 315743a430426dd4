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

// CKMetrics is one entity's Chidamber-Kemerer suite, restricted to the four
// metrics this schema can actually compute.
//
// The graph here is entity-level, not class-member-level, so RFC/WMC/LCOM
// are necessarily coarser than the metric's original class+method
// definition: WMC is approximated by out-degree (a proxy for the number of
// distinct operations an entity invokes, standing in for per-method
// cyclomatic complexity this schema doesn't track), and LCOM by how often
// an entity's neighbours are NOT shared with each other (a collaboration-
// graph cohesion proxy, not a field-access-set computation).
type CKMetrics struct {
	Key  string
	CBO  int
	RFC  int
	WMC  int
	LCOM float64
}

// UnsupportedCKMetric names a Chidamber-Kemerer metric ComputeCK cannot
// produce, with the reason why, so a caller asking for it gets an explicit
// refusal in the response rather than a silently absent field.
type UnsupportedCKMetric struct {
	Metric string
	Reason string
}

// ckUnsupportedMetrics is fixed for every call: DIT and NOC both require an
// Inherits edge type, and edge_type here is Calls/Uses/Implements only.
var ckUnsupportedMetrics = []UnsupportedCKMetric{
	{Metric: "DIT", Reason: "requires an Inherits edge type this schema does not model"},
	{Metric: "NOC", Reason: "requires an Inherits edge type this schema does not model"},
}

// CKResult is the per-entity CK metric computation's output. Unsupported
// lists the suite metrics that were not computed, at the result level since
// the reason is schema-wide, not per entity.
type CKResult struct {
	Metrics        []CKMetrics
	Unsupported    []UnsupportedCKMetric
	TokensEstimate int
}

// ComputeCK computes CBO, RFC, WMC, and LCOM for every node in g. CBO
// counts distinct coupled entities across all edge types in either
// direction, per this project's equal-weight-edges convention.
func ComputeCK(g *adjacency.Graph) CKResult {
	if g.Empty() {
		return CKResult{}
	}

	nodes := g.Nodes()
	metrics := make([]CKMetrics, 0, len(nodes))

	for _, n := range nodes {
		out := g.Forward(n)
		in := g.Reverse(n)

		coupled := make(map[string]struct{})
		for _, o := range out {
			if o != n {
				coupled[o] = struct{}{}
			}
		}
		for _, i := range in {
			if i != n {
				coupled[i] = struct{}{}
			}
		}

		distinctOut := make(map[string]struct{}, len(out))
		for _, o := range out {
			distinctOut[o] = struct{}{}
		}

		lcom := cohesionGap(out, g)

		metrics = append(metrics, CKMetrics{
			Key:  n,
			CBO:  len(coupled),
			RFC:  1 + len(distinctOut),
			WMC:  len(distinctOut),
			LCOM: lcom,
		})
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Key < metrics[j].Key })

	chars := 0
	for _, m := range metrics {
		chars += len(m.Key) + 24
	}
	for _, u := range ckUnsupportedMetrics {
		chars += len(u.Metric) + len(u.Reason) + 4
	}

	return CKResult{Metrics: metrics, Unsupported: ckUnsupportedMetrics, TokensEstimate: estimateTokens(chars)}
}

// cohesionGap estimates LCOM as the fraction of an entity's outgoing
// neighbour pairs that share no common second-hop neighbour — a proxy for
// "these collaborators don't actually interact with each other", the same
// intuition LCOM captures for methods that don't share instance fields.
// Returns 0 for entities with fewer than two outgoing edges (trivially
// cohesive).
func cohesionGap(out []string, g *adjacency.Graph) float64 {
	if len(out) < 2 {
		return 0
	}

	secondHop := make([]map[string]struct{}, len(out))
	for i, o := range out {
		set := make(map[string]struct{})
		for _, nb := range g.Forward(o) {
			set[nb] = struct{}{}
		}
		secondHop[i] = set
	}

	pairs := 0
	disjoint := 0
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			pairs++
			shared := false
			for k := range secondHop[i] {
				if _, ok := secondHop[j][k]; ok {
					shared = true
					break
				}
			}
			if !shared {
				disjoint++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(disjoint) / float64(pairs)
}
