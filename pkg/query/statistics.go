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
	"os"

	"github.com/kraklabs/parseltongue/internal/errors"
)

// IngestionDiagnostics returns the raw contents of the most recent
// ingestion-errors.txt log.
func (s *Service) IngestionDiagnostics(ctx context.Context) Envelope {
	if s.errorsLogPath == "" {
		return fail("ingestion_diagnostics", errors.NewCategoryError(errors.CategoryNotFound, "no errors log configured for this workspace", "", "", nil))
	}

	contents, err := os.ReadFile(s.errorsLogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("ingestion_diagnostics", errors.NewCategoryError(errors.CategoryNotFound, "no ingestion has run yet", s.errorsLogPath, "run ingest first", err))
		}
		return fail("ingestion_diagnostics", errors.NewCategoryError(errors.CategoryStoreFailure, "failed to read errors log", err.Error(), "", err))
	}

	return ok("ingestion_diagnostics", string(contents), estimateTokens(len(contents)))
}

// StatisticsReport summarizes the store's current size.
type StatisticsReport struct {
	EntityCount     int            `json:"entity_count"`
	EdgeCount       int            `json:"edge_count"`
	TestEntityCount int            `json:"test_entity_count"`
	ByLanguage      map[string]int `json:"by_language"`
	ByEntityType    map[string]int `json:"by_entity_type"`
}

// Statistics aggregates CodeGraph and DependencyEdges row counts, broken
// down by language and entity type.
func (s *Service) Statistics(ctx context.Context) Envelope {
	byLang, err := s.countBy(ctx, `?[language, count(isgl1_key)] := *CodeGraph{isgl1_key, language}`)
	if err != nil {
		return fail("statistics", storeFail(err))
	}
	byType, err := s.countBy(ctx, `?[entity_type, count(isgl1_key)] := *CodeGraph{isgl1_key, entity_type}`)
	if err != nil {
		return fail("statistics", storeFail(err))
	}

	entityCount := 0
	for _, n := range byLang {
		entityCount += n
	}

	edgeRes, err := s.backend.Query(ctx, `?[count(from_key)] := *DependencyEdges{from_key}`)
	if err != nil {
		return fail("statistics", storeFail(err))
	}
	edgeCount := 0
	if len(edgeRes.Rows) > 0 && len(edgeRes.Rows[0]) > 0 {
		edgeCount = asInt(edgeRes.Rows[0][0])
	}

	testRes, err := s.backend.Query(ctx, `?[count(isgl1_key)] := *TestEntitiesExcluded{isgl1_key}`)
	if err != nil {
		return fail("statistics", storeFail(err))
	}
	testCount := 0
	if len(testRes.Rows) > 0 && len(testRes.Rows[0]) > 0 {
		testCount = asInt(testRes.Rows[0][0])
	}

	report := StatisticsReport{
		EntityCount:     entityCount,
		EdgeCount:       edgeCount,
		TestEntityCount: testCount,
		ByLanguage:      byLang,
		ByEntityType:    byType,
	}
	return ok("statistics", report, estimateTokens(256))
}

func (s *Service) countBy(ctx context.Context, q string) (map[string]int, error) {
	res, err := s.backend.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 2 {
			continue
		}
		out[asString(row[0])] = asInt(row[1])
	}
	return out, nil
}

// HealthReport is the liveness payload: whether the backend answers a
// trivial query within budget.
type HealthReport struct {
	StoreReachable bool `json:"store_reachable"`
}

// Health probes the backend with a cheap query to confirm it's responsive.
func (s *Service) Health(ctx context.Context) Envelope {
	_, err := s.backend.Query(ctx, `?[x] := x = 1`)
	if err != nil {
		return fail("health", errors.NewCategoryError(errors.CategoryStoreFailure, "store unreachable", err.Error(), "", err))
	}
	return ok("health", HealthReport{StoreReachable: true}, 8)
}
