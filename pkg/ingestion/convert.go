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
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kraklabs/parseltongue/pkg/extractor"
	"github.com/kraklabs/parseltongue/pkg/identity"
)

// ConvertedEntity is one extracted entity after key minting, still
// carrying its class so the caller can route it to CodeGraph or
// TestEntitiesExcluded.
type ConvertedEntity struct {
	Key      string
	Name     string
	FilePath string
	Language string
	Lines    extractor.LineRange
	Entity   extractor.ParsedEntity
}

// MintKeys assigns every parsed entity its ISGL1 v2 key. Entities from the
// same file are assigned in the order the extractor produced them, which
// is itself the tree-sitter query's match order — deterministic for a
// fixed grammar and source buffer.
func MintKeys(entities []extractor.ParsedEntity, modTime int64) []ConvertedEntity {
	out := make([]ConvertedEntity, 0, len(entities))
	for _, e := range entities {
		key := identity.MakeKey(
			string(e.Language),
			e.Type,
			e.Name,
			e.FilePath,
			identity.LineRange{Start: e.Lines.Start, End: e.Lines.End},
		)
		out = append(out, ConvertedEntity{
			Key:      key,
			Name:     e.Name,
			FilePath: e.FilePath,
			Language: string(e.Language),
			Lines:    e.Lines,
			Entity:   e,
		})
	}
	return out
}

// ToEntityRow converts one converted CODE entity into its CodeGraph row.
func ToEntityRow(c ConvertedEntity, modTime int64) EntityRow {
	return EntityRow{
		ISGL1Key:           c.Key,
		FilePath:           identity.ToWorkspaceRelativeSlash(c.FilePath),
		Language:           c.Language,
		EntityType:         c.Entity.Type,
		EntityClass:        string(extractor.ClassCode),
		CurrentCode:        c.Entity.Text,
		HasCode:            c.Entity.Text != "",
		InterfaceSignature: signatureOf(c.Entity),
		LineStart:          c.Lines.Start,
		LineEnd:            c.Lines.End,
		LastModified:       modTime,
		LanguageMetadata:   c.Entity.Metadata,
	}
}

// signatureOf derives a crude interface_signature: the entity's own text up
// to (not including) its first newline — close enough to a signature line
// for every profile's function/method/class/interface entity captures,
// since the query always captures the declaration node starting at its
// keyword/name, not its body alone.
func signatureOf(e extractor.ParsedEntity) string {
	for i, r := range e.Text {
		if r == '\n' {
			return e.Text[:i]
		}
	}
	return e.Text
}

// ToTestExcludedRow converts one converted TestImplementation entity into
// its TestEntitiesExcluded diagnostic row.
func ToTestExcludedRow(c ConvertedEntity, reason string) TestExcludedRow {
	return TestExcludedRow{
		EntityName: c.Name,
		FolderPath: filepath.ToSlash(filepath.Dir(c.FilePath)),
		Filename:   filepath.Base(c.FilePath),
		ISGL1Key:   c.Key,
		Reason:     reason,
	}
}

// ownerEntity finds the smallest entity in entities whose line range
// encloses line, the locality rule that attributes a call site to the
// function/method it's lexically inside. Entities are assumed to come
// from a single file. Ties (identical ranges, e.g. a one-line function)
// are broken by the narrower End-Start span; ties on span are broken by
// the entity's position in entities, which is deterministic given the
// extractor's stable query-match order.
func ownerEntity(entities []ConvertedEntity, line int) (ConvertedEntity, bool) {
	best := -1
	bestSpan := -1
	for i, e := range entities {
		if line < e.Lines.Start || line > e.Lines.End {
			continue
		}
		span := e.Lines.End - e.Lines.Start
		if best == -1 || span < bestSpan {
			best = i
			bestSpan = span
		}
	}
	if best == -1 {
		return ConvertedEntity{}, false
	}
	return entities[best], true
}

// ResolveEdges attributes every raw dependency to its enclosing CODE
// entity and resolves its callee name against resolver, producing final
// DependencyEdge rows. Dependencies whose call site falls inside a test
// entity, or inside no entity at all, are dropped: the graph's own
// invariant (every from_key must exist in CodeGraph, or be the unresolved
// sentinel) would otherwise be violated by an edge originating from a row
// that was never inserted.
func ResolveEdges(fileDeps map[string][]extractor.RawDependency, fileEntities map[string][]ConvertedEntity, resolver *Resolver) []EdgeRow {
	var rows []EdgeRow

	files := make([]string, 0, len(fileDeps))
	for f := range fileDeps {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		deps := fileDeps[file]
		entities := fileEntities[file]
		for _, dep := range deps {
			owner, ok := ownerEntity(entities, dep.CallerRange.Start)
			if !ok || owner.Entity.Class != extractor.ClassCode {
				continue
			}
			toKey, _ := resolver.Resolve(file, dep.CalleeName)
			if toKey == "" {
				toKey = identity.UnresolvedKey(owner.Language)
			}
			loc := sourceLocation(file, dep.SourceLocation.Start)
			rows = append(rows, EdgeRow{
				FromKey:        owner.Key,
				ToKey:          toKey,
				EdgeType:       string(dep.EdgeTypeGuess),
				SourceLocation: loc,
				HasLocation:    true,
			})
		}
	}
	return rows
}

func sourceLocation(filePath string, line int) string {
	return identity.ToWorkspaceRelativeSlash(filePath) + ":" + strconv.Itoa(line)
}
