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

import "path/filepath"

// ResolvedEntity is the minimal shape the Resolver's name index needs:
// one extracted entity, already assigned its ISGL1 key.
type ResolvedEntity struct {
	Key      string
	Name     string
	FilePath string
}

// Resolver maps a dependency's callee name to an entity key, preferring
// the caller's own file, then the caller's folder, then any file in the
// workspace — the locality rule a reader would expect a name reference to
// follow. The first entity seen for a given (scope, name) pair wins; ties
// are broken by insertion order, which callers make deterministic by
// feeding entities in sorted-file order.
type Resolver struct {
	byFile   map[string]map[string]string
	byFolder map[string]map[string]string
	byName   map[string]string
}

// NewResolver builds the three-tier name index from every entity
// extracted in the run.
func NewResolver(entities []ResolvedEntity) *Resolver {
	r := &Resolver{
		byFile:   make(map[string]map[string]string),
		byFolder: make(map[string]map[string]string),
		byName:   make(map[string]string),
	}

	for _, e := range entities {
		if e.Name == "" {
			continue
		}
		folder := filepath.ToSlash(filepath.Dir(e.FilePath))

		if _, ok := r.byFile[e.FilePath]; !ok {
			r.byFile[e.FilePath] = make(map[string]string)
		}
		if _, exists := r.byFile[e.FilePath][e.Name]; !exists {
			r.byFile[e.FilePath][e.Name] = e.Key
		}

		if _, ok := r.byFolder[folder]; !ok {
			r.byFolder[folder] = make(map[string]string)
		}
		if _, exists := r.byFolder[folder][e.Name]; !exists {
			r.byFolder[folder][e.Name] = e.Key
		}

		if _, exists := r.byName[e.Name]; !exists {
			r.byName[e.Name] = e.Key
		}
	}

	return r
}

// ResolutionTier names which locality tier satisfied a Resolve call, for
// diagnostics/metrics.
type ResolutionTier string

const (
	TierSameFile   ResolutionTier = "same_file"
	TierSameFolder ResolutionTier = "same_folder"
	TierGlobal     ResolutionTier = "global"
	TierUnresolved ResolutionTier = "unresolved"
)

// simpleName strips a qualifying package/object prefix ("pkg.Foo",
// "obj.Method") down to the trailing identifier most languages' call
// syntax actually names; most profiles' dependency queries already emit
// just the trailing identifier, but resolving against the full qualified
// form first preserves an exact match if one exists.
func simpleName(calleeName string) string {
	idx := -1
	for i := len(calleeName) - 1; i >= 0; i-- {
		if calleeName[i] == '.' || calleeName[i] == ':' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return calleeName
	}
	return calleeName[idx+1:]
}

// Resolve looks up calleeName starting from callerFilePath's own file,
// widening to its folder and then the whole index.
func (r *Resolver) Resolve(callerFilePath, calleeName string) (string, ResolutionTier) {
	folder := filepath.ToSlash(filepath.Dir(callerFilePath))

	for _, name := range []string{calleeName, simpleName(calleeName)} {
		if names, ok := r.byFile[callerFilePath]; ok {
			if key, ok := names[name]; ok {
				return key, TierSameFile
			}
		}
	}
	for _, name := range []string{calleeName, simpleName(calleeName)} {
		if names, ok := r.byFolder[folder]; ok {
			if key, ok := names[name]; ok {
				return key, TierSameFolder
			}
		}
	}
	for _, name := range []string{calleeName, simpleName(calleeName)} {
		if key, ok := r.byName[name]; ok {
			return key, TierGlobal
		}
	}
	return "", TierUnresolved
}
