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

package query

import (
	"context"

	"github.com/kraklabs/parseltongue/internal/contract"
	"github.com/kraklabs/parseltongue/internal/errors"
	"github.com/kraklabs/parseltongue/pkg/graphalgo"
)

// Cycles runs strongly-connected-component detection over the current
// adjacency snapshot.
func (s *Service) Cycles(ctx context.Context) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("cycles", storeFail(err))
	}
	res := graphalgo.TarjanSCC(g)
	return ok("cycles", res, res.TokensEstimate)
}

// HotspotsEndpoint ranks entities by out-degree and edge-type coupling.
func (s *Service) HotspotsEndpoint(ctx context.Context, topN int) Envelope {
	topN = contract.ClampLimit(topN, 25, contract.MaxListLimit)
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("hotspots", storeFail(err))
	}
	res := graphalgo.Hotspots(g, topN)
	return ok("hotspots", res, res.TokensEstimate)
}

// SemanticClusters runs label propagation over the undirected projection
// of the current adjacency snapshot.
func (s *Service) SemanticClusters(ctx context.Context) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("semantic_clusters", storeFail(err))
	}
	res := graphalgo.LabelPropagation(g)
	return ok("semantic_clusters", res, res.TokensEstimate)
}

// LeidenClusters runs greedy modularity optimization over the current
// adjacency snapshot. resolution <= 0 and maxIter <= 0 select the
// defaults (1.0 and 100).
func (s *Service) LeidenClusters(ctx context.Context, resolution float64, maxIter int) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("leiden_clusters", storeFail(err))
	}
	res := graphalgo.LeidenWithOptions(g, resolution, maxIter)
	return ok("leiden_clusters", res, res.TokensEstimate)
}

// KCoreEndpoint computes k-core decomposition layers. A positive k keeps
// only nodes with coreness >= k.
func (s *Service) KCoreEndpoint(ctx context.Context, k int) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("kcore", storeFail(err))
	}
	res := graphalgo.KCore(g)
	if k > 0 {
		filtered := res.Nodes[:0]
		for _, n := range res.Nodes {
			if n.Coreness >= k {
				filtered = append(filtered, n)
			}
		}
		res.Nodes = filtered
	}
	return ok("kcore", res, res.TokensEstimate)
}

// CentralityMode selects which centrality measure CentralityEndpoint runs.
type CentralityMode string

const (
	CentralityPageRank    CentralityMode = "pagerank"
	CentralityBetweenness CentralityMode = "betweenness"
)

// CentralityEndpoint runs PageRank or Brandes' betweenness over the
// current adjacency snapshot. A positive top truncates the ranked list;
// damping applies to PageRank only (out of (0,1) selects 0.85).
func (s *Service) CentralityEndpoint(ctx context.Context, mode CentralityMode, top int, damping float64) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("centrality", storeFail(err))
	}
	switch mode {
	case CentralityBetweenness:
		res := graphalgo.Betweenness(g)
		if top > 0 && len(res.Nodes) > top {
			res.Nodes = res.Nodes[:top]
		}
		return ok("centrality", res, res.TokensEstimate)
	case CentralityPageRank, "":
		res := graphalgo.PageRankWithDamping(g, damping)
		if top > 0 && len(res.Nodes) > top {
			res.Nodes = res.Nodes[:top]
		}
		return ok("centrality", res, res.TokensEstimate)
	default:
		return fail("centrality", errors.NewCategoryError(errors.CategoryBadRequest, "unknown centrality mode", string(mode), "use pagerank or betweenness", nil))
	}
}

// EntropyEndpoint computes per-node Shannon entropy over outgoing edge
// types. A positive threshold keeps only nodes at or above it.
func (s *Service) EntropyEndpoint(ctx context.Context, threshold float64) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("entropy", storeFail(err))
	}
	res := graphalgo.EdgeTypeEntropy(g)
	if threshold > 0 {
		filtered := res.Nodes[:0]
		for _, n := range res.Nodes {
			if n.Entropy >= threshold {
				filtered = append(filtered, n)
			}
		}
		res.Nodes = filtered
	}
	return ok("entropy", res, res.TokensEstimate)
}

// CKMetricsEndpoint computes entity-level CBO/RFC/WMC/LCOM approximations.
// DIT and NOC are part of the Chidamber-Kemerer suite but need an Inherits
// edge type this schema doesn't model; res.Unsupported carries that refusal
// through to the caller instead of the response silently omitting them.
// A non-empty key scopes the result to that single entity.
func (s *Service) CKMetricsEndpoint(ctx context.Context, key string) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("ck_metrics", storeFail(err))
	}
	res := graphalgo.ComputeCK(g)
	if key != "" {
		filtered := res.Metrics[:0]
		for _, m := range res.Metrics {
			if m.Key == key {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) == 0 {
			return fail("ck_metrics", errors.NewCategoryError(errors.CategoryNotFound, "entity not present in graph", key, "", nil))
		}
		res.Metrics = filtered
	}
	return ok("ck_metrics", res, res.TokensEstimate)
}

// SQALEDebtEndpoint scores remediation debt hours from CK metrics
// thresholds. A non-empty key scopes to one entity; a positive minDebt
// drops entities below it.
func (s *Service) SQALEDebtEndpoint(ctx context.Context, key string, minDebt float64) Envelope {
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("sqale_debt", storeFail(err))
	}
	res := graphalgo.ComputeSQALE(g)
	if key != "" || minDebt > 0 {
		filtered := res.Debts[:0]
		total := 0.0
		for _, d := range res.Debts {
			if key != "" && d.Key != key {
				continue
			}
			if minDebt > 0 && d.RemediationHrs < minDebt {
				continue
			}
			filtered = append(filtered, d)
			total += d.RemediationHrs
		}
		res.Debts = filtered
		res.TotalHrs = total
	}
	return ok("sqale_debt", res, res.TokensEstimate)
}

// BlastRadiusEndpoint runs a bounded forward BFS from source, grouped by hop.
// maxHops == 0 is a deliberate zero-hop request and yields an empty result;
// a negative maxHops (unset) selects graphalgo.DefaultBlastRadiusHops.
func (s *Service) BlastRadiusEndpoint(ctx context.Context, source string, maxHops int) Envelope {
	if v := contract.ValidateKey("source key", source); !v.OK {
		return fail("blast_radius", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}
	if maxHops < 0 {
		maxHops = graphalgo.DefaultBlastRadiusHops
	}
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("blast_radius", storeFail(err))
	}
	if !g.Empty() && len(g.Forward(source)) == 0 && len(g.Reverse(source)) == 0 {
		return fail("blast_radius", errors.NewCategoryError(errors.CategoryNotFound, "source not present in graph", source, "", nil))
	}
	res := graphalgo.BlastRadius(g, source, maxHops)
	return ok("blast_radius", res, res.TokensEstimate)
}

// ForwardCallees returns source's direct outgoing neighbours.
func (s *Service) ForwardCallees(ctx context.Context, key string) Envelope {
	if v := contract.ValidateKey("key", key); !v.OK {
		return fail("forward_callees", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("forward_callees", storeFail(err))
	}
	res := graphalgo.ForwardNeighbours(g, key)
	return ok("forward_callees", res, res.TokensEstimate)
}

// ReverseCallers returns source's direct incoming neighbours.
func (s *Service) ReverseCallers(ctx context.Context, key string) Envelope {
	if v := contract.ValidateKey("key", key); !v.OK {
		return fail("reverse_callers", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("reverse_callers", storeFail(err))
	}
	res := graphalgo.ReverseNeighbours(g, key)
	return ok("reverse_callers", res, res.TokensEstimate)
}

// FuzzySearchEndpoint ranks CodeGraph entity names against query by
// Jaro-Winkler similarity.
func (s *Service) FuzzySearchEndpoint(ctx context.Context, q string, threshold float64, limit int) Envelope {
	if v := contract.ValidateKey("query", q); !v.OK {
		return fail("fuzzy_search", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}
	if threshold <= 0 {
		threshold = 0.75
	}
	limit = contract.ClampLimit(limit, 20, contract.MaxListLimit)

	rows, err := s.backend.Query(ctx, `?[isgl1_key, file_path] := *CodeGraph{isgl1_key, file_path}`)
	if err != nil {
		return fail("fuzzy_search", storeFail(err))
	}

	entities := make([]graphalgo.SearchableEntity, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		if len(row) < 2 {
			continue
		}
		key := asString(row[0])
		entities = append(entities, graphalgo.SearchableEntity{Key: key, Name: nameFromEntityKey(key)})
	}

	res := graphalgo.FuzzySearch(entities, q, threshold, limit)
	return ok("fuzzy_search", res, res.TokensEstimate)
}

// SmartContextEndpoint greedily expands from focus within a token budget.
func (s *Service) SmartContextEndpoint(ctx context.Context, focus string, budgetTokens int) Envelope {
	if v := contract.ValidateKey("focus key", focus); !v.OK {
		return fail("smart_context", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}
	if budgetTokens <= 0 {
		budgetTokens = 4000
	}
	g, err := s.adj.Snapshot(ctx)
	if err != nil {
		return fail("smart_context", storeFail(err))
	}

	sigTokens, err := s.signatureTokenSizes(ctx)
	if err != nil {
		return fail("smart_context", storeFail(err))
	}

	res := graphalgo.SmartContext(g, focus, budgetTokens, sigTokens)
	return ok("smart_context", res, res.TokensEstimate)
}

// signatureTokenSizes estimates a token cost per entity from its stored
// interface signature, used by SmartContext's greedy budget accounting.
func (s *Service) signatureTokenSizes(ctx context.Context) (map[string]int, error) {
	rows, err := s.backend.Query(ctx, `?[isgl1_key, interface_signature] := *CodeGraph{isgl1_key, interface_signature}`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows.Rows))
	for _, row := range rows.Rows {
		if len(row) < 2 {
			continue
		}
		out[asString(row[0])] = estimateTokens(len(asString(row[1])))
	}
	return out, nil
}

func storeFail(err error) error {
	return errors.NewCategoryError(errors.CategoryStoreFailure, "adjacency snapshot failed", err.Error(), "", err)
}

// nameFromEntityKey recovers the sanitized-name field (third colon-delimited
// segment) from an ISGL1 key for fuzzy matching against a query string.
func nameFromEntityKey(key string) string {
	fields := splitNColon(key, 5)
	if len(fields) >= 3 {
		return fields[2]
	}
	return key
}

func splitNColon(s string, n int) []string {
	var out []string
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
