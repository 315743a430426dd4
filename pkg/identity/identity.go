// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package identity mints and parses ISGL1 v2 keys: the stable semantic
// identity used for every CodeEntity and DependencyEdge endpoint.
//
// A key has the form:
//
//	<lang>:<type-tag>:<sanitized-name>:<sanitized-semantic-path>:<line_start>-<line_end>
//
// It is deliberately independent of any runtime object identity or
// monotonic counter, so re-ingesting unchanged source produces
// byte-identical keys and a workspace can be shared as an artifact.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
)

// UnresolvedReferenceTag is the semantic-path tag used for sentinel edges
// pointing at a dependency target the resolver could not locate by name.
const UnresolvedReferenceTag = "unresolved-reference"

// LineRange is a 1-indexed, inclusive start/end pair.
type LineRange struct {
	Start int
	End   int
}

// Key is a parsed ISGL1 v2 identity. String() reproduces the canonical form.
type Key struct {
	Language     string
	TypeTag      string
	Name         string // already sanitized
	SemanticPath string // already sanitized
	Lines        LineRange
}

// String renders the canonical ISGL1 v2 key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s:%d-%d", k.Language, k.TypeTag, k.Name, k.SemanticPath, k.Lines.Start, k.Lines.End)
}

// MakeKey mints an ISGL1 v2 key. It is total and deterministic: identical
// inputs always yield a byte-identical string.
func MakeKey(lang, typeTag, rawName, filePath string, lines LineRange) string {
	k := Key{
		Language:     lang,
		TypeTag:      typeTag,
		Name:         SanitizeEntityName(rawName),
		SemanticPath: ExtractSemanticPath(filePath),
		Lines:        lines,
	}
	return k.String()
}

// UnresolvedKey mints the sentinel key used for dependency targets that the
// name-index resolver could not locate. Edges are never silently dropped;
// they point here instead.
func UnresolvedKey(lang string) string {
	return Key{
		Language:     lang,
		TypeTag:      UnresolvedReferenceTag,
		Name:         UnresolvedReferenceTag,
		SemanticPath: UnresolvedReferenceTag,
		Lines:        LineRange{0, 0},
	}.String()
}

// IsUnresolved reports whether a key is the unresolved-reference sentinel.
func IsUnresolved(key string) bool {
	return strings.Contains(key, ":"+UnresolvedReferenceTag+":")
}

// nameEscapeTable maps each punctuation rune this package escapes to its
// marker text. Space is included: a bare space not adjacent to one of the
// other runes here becomes a plain "_".
var nameEscapeTable = map[rune]string{
	' ': "_",
	'<': "__lt__",
	'>': "__gt__",
	',': "__c__",
	'[': "__lb__",
	']': "__rb__",
	'{': "__lc__",
	'}': "__rc__",
}

// SanitizeEntityName makes a raw entity name safe to embed in an ISGL1 v2
// key and safe to use unquoted inside Datalog queries. It scans raw once,
// left to right, and never re-examines output it has already written, so an
// escape sequence produced for one rune can't be mangled by the rule for the
// next. Generic/template argument lists conventionally separate entries with
// ", " — the space there is a formatting artifact of the separator, not
// semantic, so a space immediately following one of the other escaped runes
// is dropped rather than separately rendered as "_". A bare space anywhere
// else still becomes "_". Time is O(n); output is at most 6n (the longest
// marker, "__lt__"/"__gt__", is six characters for one input rune).
func SanitizeEntityName(raw string) string {
	var out strings.Builder
	out.Grow(len(raw))
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		esc, ok := nameEscapeTable[r]
		if !ok {
			out.WriteRune(r)
			continue
		}
		out.WriteString(esc)
		if r != ' ' && i+1 < len(runes) && runes[i+1] == ' ' {
			i++ // absorb the separator space following this punctuation escape
		}
	}
	return out.String()
}

// pathEscapes replaces path separators and dots so a semantic path can sit
// inside a colon-delimited key without ambiguity.
var pathEscapes = []struct {
	from string
	to   string
}{
	{"/", "_"},
	{"\\", "_"},
	{".", "_"},
}

// ExtractSemanticPath normalises a file path into the separator-sanitised,
// forward-slash form used as part of an entity's identity: backslashes are
// converted to forward slashes first (so Windows-origin paths key
// identically to POSIX ones), then every remaining '/', '\' and '.' is
// replaced with '_'.
func ExtractSemanticPath(filePath string) string {
	p := filepath.ToSlash(filePath)
	for _, esc := range pathEscapes {
		p = strings.ReplaceAll(p, esc.from, esc.to)
	}
	return p
}

// ToWorkspaceRelativeSlash converts a path to the forward-slash,
// workspace-relative form CodeEntity.file_path stores (distinct from the
// sanitized semantic path used inside keys).
func ToWorkspaceRelativeSlash(filePath string) string {
	return filepath.ToSlash(filePath)
}

// ComputeBirthTimestamp derives a deterministic "birth" timestamp for an
// entity from its first-occurrence inputs: the same entity appearing at the
// same file/name pair always yields the same value, so re-ingestion never
// perturbs derived ordering even though no wall-clock time is involved.
func ComputeBirthTimestamp(filePath, entityName string) uint64 {
	h := sha256.Sum256([]byte(filePath + "\x00" + entityName))
	return binary.BigEndian.Uint64(h[:8])
}
