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

package reindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/parseltongue/internal/errors"
	"github.com/kraklabs/parseltongue/internal/metrics"
	"github.com/kraklabs/parseltongue/pkg/extractor"
	"github.com/kraklabs/parseltongue/pkg/grammar"
	"github.com/kraklabs/parseltongue/pkg/identity"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
	"github.com/kraklabs/parseltongue/pkg/storage"
)

// Delta is the result of one Reindex call: the counts of entities and
// edges added or removed, whether the content hash actually changed, and
// how long the cycle took.
type Delta struct {
	HashChanged      bool
	EntitiesBefore   int
	EntitiesAfter    int
	EntitiesRemoved  int
	EntitiesAdded    int
	EdgesRemoved     int
	EdgesAdded       int
	ProcessingTimeMs int64
}

// Engine is the Incremental Reindex Engine. One Engine serves every path
// in a workspace; per-path serialisation is internal (see singleFlight).
type Engine struct {
	backend  *storage.EmbeddedBackend
	registry *grammar.Registry
	ex       *extractor.Extractor
	logger   *slog.Logger
	flight   singleFlight
}

// New builds an Engine over backend, compiling the grammar registry's
// queries once up front (the same compiled-query reuse the ingestion
// Pipeline does, since a reindex is just ingestion scoped to one file).
func New(backend *storage.EmbeddedBackend, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := grammar.NewRegistry()
	ex, err := extractor.New(registry)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	return &Engine{backend: backend, registry: registry, ex: ex, logger: logger}, nil
}

// Reindex reconciles the graph with the current on-disk content of the
// file at relPath (workspace-relative), resolved against rootPath.
func (e *Engine) Reindex(ctx context.Context, rootPath, relPath string) (*Delta, error) {
	start := time.Now()

	if relPath == "" {
		return nil, errors.NewCategoryError(errors.CategoryBadRequest, "reindex path is required", "", "pass a non-empty workspace-relative file path", nil)
	}

	fullPath := filepath.Join(rootPath, relPath)
	info, statErr := os.Stat(fullPath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, errors.NewCategoryError(errors.CategoryNotFound, "file not found", statErr.Error(), "reindex only an existing file", statErr)
		}
		return nil, errors.NewCategoryError(errors.CategoryBadRequest, "cannot stat file", statErr.Error(), "", statErr)
	}
	if info.IsDir() {
		return nil, errors.NewCategoryError(errors.CategoryBadRequest, "path is a directory", relPath, "reindex takes a single file path, not a directory", nil)
	}

	release, ok := e.flight.TryAcquire(relPath)
	if !ok {
		metrics.RecordReindexBusy()
		return nil, errors.NewCategoryError(errors.CategoryBusy, "reindex already in flight for this path", relPath, "retry after the in-flight reindex completes", nil)
	}
	defer release()

	relSlash := identity.ToWorkspaceRelativeSlash(relPath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryBadRequest, "cannot read file", err.Error(), "", err)
	}
	newHash := ingestion.HashContent(data)

	oldHash, hadHash, err := e.lookupHash(ctx, relSlash)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "hash lookup failed", err.Error(), "", err)
	}
	if hadHash && oldHash == newHash {
		metrics.RecordReindex(false, false, time.Since(start).Seconds())
		return &Delta{HashChanged: false, ProcessingTimeMs: time.Since(start).Milliseconds()}, nil
	}

	entitiesBefore, err := e.countEntities(ctx, relSlash)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "entity count failed", err.Error(), "", err)
	}

	oldKeys, err := e.entityKeys(ctx, relSlash)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "entity key lookup failed", err.Error(), "", err)
	}

	edgesRemoved, err := e.deleteOutgoingEdges(ctx, oldKeys)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "edge deletion failed", err.Error(), "", err)
	}
	entitiesRemoved, err := e.deleteEntities(ctx, oldKeys)
	if err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "entity deletion failed", err.Error(), "", err)
	}

	e.logger.Info("reindex.deleted", "path", relSlash, "entities_removed", entitiesRemoved, "edges_removed", edgesRemoved)

	wc := e.ex.NewWorkerContext()
	result := wc.Extract(ctx, relSlash, data)

	var entitiesAdded, edgesAdded int
	extractFailed := false
	for _, d := range result.Diagnostics {
		if d.Category == "PARSE_ERROR" || d.Category == "EXTRACT_FAIL" || d.Category == "UNSUPPORTED" {
			extractFailed = true
			e.logger.Warn("reindex.extract_failed", "path", relSlash, "category", d.Category, "message", d.Message)
		}
	}

	if !extractFailed {
		now := time.Now().Unix()
		converted := ingestion.MintKeys(result.Entities, now)

		var entityRows []ingestion.EntityRow
		var testExcluded []ingestion.TestExcludedRow
		var codeConverted []ingestion.ConvertedEntity
		for _, c := range converted {
			if c.Entity.Class == extractor.ClassTestImplementation {
				testExcluded = append(testExcluded, ingestion.ToTestExcludedRow(c, "test_heuristic"))
				continue
			}
			entityRows = append(entityRows, ingestion.ToEntityRow(c, now))
			codeConverted = append(codeConverted, c)
		}

		resolver, err := e.buildResolver(ctx, relSlash, codeConverted)
		if err != nil {
			return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "resolver build failed", err.Error(), "", err)
		}

		fileDeps := map[string][]extractor.RawDependency{relSlash: result.Dependencies}
		fileEntities := map[string][]ingestion.ConvertedEntity{relSlash: codeConverted}
		edgeRows := ingestion.ResolveEdges(fileDeps, fileEntities, resolver)

		if script := ingestion.BuildEntityInsert(entityRows); script != "" {
			if err := e.backend.Execute(ctx, script); err != nil {
				return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "entity insert failed", err.Error(), "", err)
			}
		}
		if script := ingestion.BuildEdgeInsert(edgeRows); script != "" {
			if err := e.backend.Execute(ctx, script); err != nil {
				return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "edge insert failed", err.Error(), "", err)
			}
		}
		if script := ingestion.BuildTestExcludedInsert(testExcluded); script != "" {
			if err := e.backend.Execute(ctx, script); err != nil {
				e.logger.Warn("reindex.test_excluded_insert_failed", "path", relSlash, "err", err)
			}
		}

		entitiesAdded = len(entityRows)
		edgesAdded = len(edgeRows)
	}

	hashScript := ingestion.BuildHashUpsert(relSlash, newHash)
	if err := e.backend.Execute(ctx, hashScript); err != nil {
		return nil, errors.NewCategoryError(errors.CategoryStoreFailure, "hash cache update failed", err.Error(), "", err)
	}

	delta := &Delta{
		HashChanged:      true,
		EntitiesBefore:   entitiesBefore,
		EntitiesAfter:    entitiesAdded,
		EntitiesRemoved:  entitiesRemoved,
		EntitiesAdded:    entitiesAdded,
		EdgesRemoved:     edgesRemoved,
		EdgesAdded:       edgesAdded,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	e.logger.Info("reindex.complete", "path", relSlash,
		"entities_before", delta.EntitiesBefore, "entities_after", delta.EntitiesAfter,
		"duration_ms", delta.ProcessingTimeMs)

	metrics.RecordReindex(true, extractFailed, time.Since(start).Seconds())

	return delta, nil
}

func (e *Engine) lookupHash(ctx context.Context, path string) (string, bool, error) {
	q := fmt.Sprintf(`?[content_hash] := *FileHashCache{file_path: %s, content_hash}`, ingestion.QuoteString(path))
	res, err := e.backend.Query(ctx, q)
	if err != nil {
		return "", false, err
	}
	if len(res.Rows) == 0 {
		return "", false, nil
	}
	hash, _ := res.Rows[0][0].(string)
	return hash, true, nil
}

func (e *Engine) countEntities(ctx context.Context, path string) (int, error) {
	q := fmt.Sprintf(`?[count(isgl1_key)] := *CodeGraph{isgl1_key, file_path: %s}`, ingestion.QuoteString(path))
	res, err := e.backend.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	return anyToInt(res.Rows[0][0]), nil
}

func (e *Engine) entityKeys(ctx context.Context, path string) ([]string, error) {
	q := fmt.Sprintf(`?[isgl1_key] := *CodeGraph{isgl1_key, file_path: %s}`, ingestion.QuoteString(path))
	res, err := e.backend.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if s, ok := row[0].(string); ok {
			keys = append(keys, s)
		}
	}
	return keys, nil
}

func (e *Engine) deleteOutgoingEdges(ctx context.Context, fromKeys []string) (int, error) {
	if len(fromKeys) == 0 {
		return 0, nil
	}
	count, err := e.countOutgoingEdges(ctx, fromKeys)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	script := ingestion.BuildEdgeDeleteByFromKeys(fromKeys)
	if err := e.backend.Execute(ctx, script); err != nil {
		return 0, err
	}
	return count, nil
}

func (e *Engine) countOutgoingEdges(ctx context.Context, fromKeys []string) (int, error) {
	var vals string
	for i, k := range fromKeys {
		if i > 0 {
			vals += ", "
		}
		vals += ingestion.QuoteString(k)
	}
	q := fmt.Sprintf(`?[count(from_key)] := *DependencyEdges{from_key, to_key, edge_type}, from_key in [%s]`, vals)
	res, err := e.backend.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	return anyToInt(res.Rows[0][0]), nil
}

func (e *Engine) deleteEntities(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	script := ingestion.BuildEntityDelete(keys)
	if err := e.backend.Execute(ctx, script); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// buildResolver builds a name index scoped to the whole current graph
// (minus the file being reindexed, whose old rows are already deleted)
// plus the freshly parsed entities of that file, so a call from the
// reindexed file can resolve against both its own new siblings and every
// other file already in the store.
func (e *Engine) buildResolver(ctx context.Context, path string, fresh []ingestion.ConvertedEntity) (*ingestion.Resolver, error) {
	q := `?[isgl1_key, entity_type, file_path] := *CodeGraph{isgl1_key, entity_type, file_path}`
	res, err := e.backend.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	var entities []ingestion.ResolvedEntity
	for _, row := range res.Rows {
		key, _ := row[0].(string)
		filePath, _ := row[2].(string)
		if filePath == path {
			continue // superseded by fresh below
		}
		name := nameFromKey(key)
		if name == "" {
			continue
		}
		entities = append(entities, ingestion.ResolvedEntity{Key: key, Name: name, FilePath: filePath})
	}
	for _, c := range fresh {
		entities = append(entities, ingestion.ResolvedEntity{Key: c.Key, Name: c.Name, FilePath: c.FilePath})
	}

	return ingestion.NewResolver(entities), nil
}

// nameFromKey recovers the sanitized-name field of an ISGL1 v2 key
// (`lang:type:name:path:lines`) without re-parsing the whole key grammar —
// the name is always the third colon-delimited field.
func nameFromKey(key string) string {
	fields := splitN(key, ':', 5)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

func splitN(s string, sep byte, n int) []string {
	var out []string
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func anyToInt(v any) int {
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
