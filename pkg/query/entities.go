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
	"github.com/kraklabs/parseltongue/internal/errors"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
)

// EntitySummary is one CodeGraph row, trimmed to list-view fields.
type EntitySummary struct {
	Key        string `json:"isgl1_key"`
	FilePath   string `json:"file_path"`
	Language   string `json:"language"`
	EntityType string `json:"entity_type"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
}

// EntityDetail is one CodeGraph row with its full body.
type EntityDetail struct {
	EntitySummary
	CurrentCode        string `json:"current_code,omitempty"`
	InterfaceSignature string `json:"interface_signature"`
	LastModified       int64  `json:"last_modified"`
}

// ListEntities returns entities, optionally filtered by a file-path
// substring, sorted by isgl1_key for stable pagination.
func (s *Service) ListEntities(ctx context.Context, pathFilter string, limit int) Envelope {
	limit = contract.ClampLimit(limit, contract.DefaultListLimit, contract.MaxListLimit)

	q := `?[isgl1_key, file_path, language, entity_type, line_start, line_end] := *CodeGraph{isgl1_key, file_path, language, entity_type, line_start, line_end}`
	res, err := s.backend.Query(ctx, q)
	if err != nil {
		return fail("list_entities", errors.NewCategoryError(errors.CategoryStoreFailure, "query failed", err.Error(), "", err))
	}

	var out []EntitySummary
	for _, row := range res.Rows {
		if len(row) < 6 {
			continue
		}
		fp, _ := row[1].(string)
		if pathFilter != "" && !contains(fp, pathFilter) {
			continue
		}
		out = append(out, EntitySummary{
			Key:        asString(row[0]),
			FilePath:   fp,
			Language:   asString(row[2]),
			EntityType: asString(row[3]),
			LineStart:  asInt(row[4]),
			LineEnd:    asInt(row[5]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}

	chars := 0
	for _, e := range out {
		chars += len(e.Key) + len(e.FilePath) + 24
	}
	return ok("list_entities", out, estimateTokens(chars))
}

// EntityDetail fetches one entity's full CodeGraph row by key.
func (s *Service) EntityDetail(ctx context.Context, key string) Envelope {
	if v := contract.ValidateKey("key", key); !v.OK {
		return fail("entity_detail", errors.NewCategoryError(errors.CategoryBadRequest, v.Message, "", "", nil))
	}

	q := fmt.Sprintf(`?[isgl1_key, file_path, language, entity_type, line_start, line_end, current_code, interface_signature, last_modified] := *CodeGraph{isgl1_key: %s, file_path, language, entity_type, line_start, line_end, current_code, interface_signature, last_modified}`, ingestion.QuoteString(key))
	res, err := s.backend.Query(ctx, q)
	if err != nil {
		return fail("entity_detail", errors.NewCategoryError(errors.CategoryStoreFailure, "query failed", err.Error(), "", err))
	}
	if len(res.Rows) == 0 {
		return fail("entity_detail", errors.NewCategoryError(errors.CategoryNotFound, "entity not found", key, "", nil))
	}

	row := res.Rows[0]
	detail := EntityDetail{
		EntitySummary: EntitySummary{
			Key:        asString(row[0]),
			FilePath:   asString(row[1]),
			Language:   asString(row[2]),
			EntityType: asString(row[3]),
			LineStart:  asInt(row[4]),
			LineEnd:    asInt(row[5]),
		},
		CurrentCode:        asString(row[6]),
		InterfaceSignature: asString(row[7]),
		LastModified:       int64(asInt(row[8])),
	}

	chars := len(detail.CurrentCode) + len(detail.InterfaceSignature) + len(detail.Key) + 64
	return ok("entity_detail", detail, estimateTokens(chars))
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
