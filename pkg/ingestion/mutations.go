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

package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EntityRow is one CodeGraph row, ready to batch-insert.
type EntityRow struct {
	ISGL1Key           string
	FilePath           string
	Language           string
	EntityType         string
	EntityClass        string
	CurrentCode        string
	HasCode            bool
	InterfaceSignature string
	LineStart          int
	LineEnd            int
	LastModified       int64
	LanguageMetadata   map[string]string
}

// EdgeRow is one DependencyEdges row.
type EdgeRow struct {
	FromKey        string
	ToKey          string
	EdgeType       string
	SourceLocation string
	HasLocation    bool
}

// TestExcludedRow is one TestEntitiesExcluded diagnostic row.
type TestExcludedRow struct {
	EntityName string
	FolderPath string
	Filename   string
	ISGL1Key   string
	Reason     string
}

// WordCoverageRow is one FileWordCoverage diagnostic row.
type WordCoverageRow struct {
	FolderPath           string
	Filename             string
	SourceWords          int
	EntityWords          int
	ImportWords          int
	CommentWords         int
	RawCoveragePct       float64
	EffectiveCoveragePct float64
	EntityCount          int
}

// cozoString renders a Go string as a double-quoted CozoScript string
// literal, escaping backslash and the quote character. CozoScript's
// string-literal grammar is JSON-compatible for these two escapes, so
// encoding/json's string encoding, surrounding quotes included, is reused
// rather than hand duplicating it.
func cozoString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

// QuoteString exports cozoString for callers outside this package (the
// reindex engine) that need to inline a value into a hand-built
// CozoScript query rather than a batch :put/:rm mutation.
func QuoteString(s string) string {
	return cozoString(s)
}

// cozoJSON renders a string-keyed map as a CozoScript `json(...)` literal
// expression, the idiom `pkg/cozodb`'s Json-typed columns expect.
func cozoJSON(m map[string]string) string {
	if m == nil {
		m = map[string]string{}
	}
	encoded, _ := json.Marshal(m)
	return fmt.Sprintf("json(%s)", cozoString(string(encoded)))
}

func cozoOptString(s string, has bool) string {
	if !has {
		return "null"
	}
	return cozoString(s)
}

// BuildEntityInsert renders a `:put CodeGraph` mutation inserting every row
// in rows in one round trip. Idempotent: re-inserting an unchanged
// isgl1_key is a no-op overwrite of identical data.
func BuildEntityInsert(rows []EntityRow) string {
	if len(rows) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, r := range rows {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s, %s, %s, %s, %s, %s, %s, %d, %d, %d, %s]",
			cozoString(r.ISGL1Key),
			cozoString(r.FilePath),
			cozoString(r.Language),
			cozoString(r.EntityType),
			cozoString(r.EntityClass),
			cozoOptString(r.CurrentCode, r.HasCode),
			cozoString(r.InterfaceSignature),
			r.LineStart,
			r.LineEnd,
			r.LastModified,
			cozoJSON(r.LanguageMetadata),
		)
	}
	return fmt.Sprintf(
		`?[isgl1_key, file_path, language, entity_type, entity_class, current_code, interface_signature, line_start, line_end, last_modified, language_metadata] <- [%s] :put CodeGraph {isgl1_key => file_path, language, entity_type, entity_class, current_code, interface_signature, line_start, line_end, last_modified, language_metadata}`,
		vals.String(),
	)
}

// BuildEdgeInsert renders a `:put DependencyEdges` mutation. Composite-key
// idempotency (from_key, to_key, edge_type) is CozoDB's own :put semantics.
func BuildEdgeInsert(rows []EdgeRow) string {
	if len(rows) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, r := range rows {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s, %s, %s, %s]",
			cozoString(r.FromKey), cozoString(r.ToKey), cozoString(r.EdgeType),
			cozoOptString(r.SourceLocation, r.HasLocation),
		)
	}
	return fmt.Sprintf(
		`?[from_key, to_key, edge_type, source_location] <- [%s] :put DependencyEdges {from_key, to_key, edge_type => source_location}`,
		vals.String(),
	)
}

// BuildHashUpsert renders a `:put FileHashCache` mutation for one file.
func BuildHashUpsert(filePath, contentHash string) string {
	return fmt.Sprintf(
		`?[file_path, content_hash] <- [[%s, %s]] :put FileHashCache {file_path => content_hash}`,
		cozoString(filePath), cozoString(contentHash),
	)
}

// BuildHashUpsertBatch renders one mutation covering every (path, hash)
// pair in a run, avoiding one round trip per file.
func BuildHashUpsertBatch(hashes map[string]string) string {
	if len(hashes) == 0 {
		return ""
	}
	var vals strings.Builder
	first := true
	for path, hash := range hashes {
		if !first {
			vals.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&vals, "[%s, %s]", cozoString(path), cozoString(hash))
	}
	return fmt.Sprintf(
		`?[file_path, content_hash] <- [%s] :put FileHashCache {file_path => content_hash}`,
		vals.String(),
	)
}

// BuildTestExcludedInsert renders a `:put TestEntitiesExcluded` mutation.
func BuildTestExcludedInsert(rows []TestExcludedRow) string {
	if len(rows) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, r := range rows {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s, %s, %s, %s, %s]",
			cozoString(r.EntityName), cozoString(r.FolderPath), cozoString(r.Filename),
			cozoString(r.ISGL1Key), cozoString(r.Reason),
		)
	}
	return fmt.Sprintf(
		`?[entity_name, folder_path, filename, isgl1_key, reason] <- [%s] :put TestEntitiesExcluded {entity_name, folder_path, filename => isgl1_key, reason}`,
		vals.String(),
	)
}

// BuildWordCoverageInsert renders a `:put FileWordCoverage` mutation.
func BuildWordCoverageInsert(rows []WordCoverageRow) string {
	if len(rows) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, r := range rows {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s, %s, %d, %d, %d, %d, %s, %s, %d]",
			cozoString(r.FolderPath), cozoString(r.Filename),
			r.SourceWords, r.EntityWords, r.ImportWords, r.CommentWords,
			strconv.FormatFloat(r.RawCoveragePct, 'f', -1, 64),
			strconv.FormatFloat(r.EffectiveCoveragePct, 'f', -1, 64),
			r.EntityCount,
		)
	}
	return fmt.Sprintf(
		`?[folder_path, filename, source_words, entity_words, import_words, comment_words, raw_coverage_pct, effective_coverage_pct, entity_count] <- [%s] :put FileWordCoverage {folder_path, filename => source_words, entity_words, import_words, comment_words, raw_coverage_pct, effective_coverage_pct, entity_count}`,
		vals.String(),
	)
}

// BuildEntityDelete renders a `:rm CodeGraph` mutation removing every key
// in keys, wrapped in braces the way pkg/cozodb's documented :rm idiom
// requires for a standalone chained statement.
func BuildEntityDelete(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, k := range keys {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s]", cozoString(k))
	}
	return fmt.Sprintf(`{ ?[isgl1_key] <- [%s] :rm CodeGraph {isgl1_key} }`, vals.String())
}

// BuildEdgeDeleteByFromKeys renders a `:rm` mutation removing every
// DependencyEdges row whose from_key is in fromKeys. CozoScript's :rm
// consumes whatever rows its block's query rule produces, so the matching
// (from_key, to_key, edge_type) triples are looked up and fed straight
// into the same block's :rm clause — no intermediate round trip needed.
func BuildEdgeDeleteByFromKeys(fromKeys []string) string {
	if len(fromKeys) == 0 {
		return ""
	}
	var vals strings.Builder
	for i, k := range fromKeys {
		if i > 0 {
			vals.WriteString(", ")
		}
		fmt.Fprintf(&vals, "[%s]", cozoString(k))
	}
	return fmt.Sprintf(
		`{ ?[from_key, to_key, edge_type] := *DependencyEdges{from_key, to_key, edge_type}, from_key in [%s] :rm DependencyEdges {from_key, to_key, edge_type} }`,
		vals.String(),
	)
}
