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
	"fmt"
	"sort"

	"github.com/kraklabs/parseltongue/internal/contract"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
)

// EdgeRow is one DependencyEdges row.
type EdgeRow struct {
	From     string `json:"from_key"`
	To       string `json:"to_key"`
	EdgeType string `json:"edge_type"`
}

// ListEdges returns dependency edges, optionally filtered to those
// touching a single key (as either endpoint).
func (s *Service) ListEdges(ctx context.Context, aroundKey string, limit int) Envelope {
	limit = contract.ClampLimit(limit, 2000, contract.MaxListLimit)

	var q string
	if aroundKey != "" {
		q = fmt.Sprintf(`?[from_key, to_key, edge_type] := *DependencyEdges{from_key, to_key, edge_type}, from_key = %s
?[from_key, to_key, edge_type] := *DependencyEdges{from_key, to_key, edge_type}, to_key = %s`,
			ingestion.QuoteString(aroundKey), ingestion.QuoteString(aroundKey))
	} else {
		q = `?[from_key, to_key, edge_type] := *DependencyEdges{from_key, to_key, edge_type}`
	}

	res, err := s.backend.Query(ctx, q)
	if err != nil {
		return fail("list_edges", storeFail(err))
	}

	out := make([]EdgeRow, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 3 {
			continue
		}
		out = append(out, EdgeRow{From: asString(row[0]), To: asString(row[1]), EdgeType: asString(row[2])})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].EdgeType < out[j].EdgeType
	})
	if len(out) > limit {
		out = out[:limit]
	}

	chars := 0
	for _, e := range out {
		chars += len(e.From) + len(e.To) + len(e.EdgeType)
	}
	return ok("list_edges", out, estimateTokens(chars))
}
