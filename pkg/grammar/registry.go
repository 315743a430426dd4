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

// Package grammar is the Grammar Registry: it maps a file extension to one
// of twelve language profiles, each owning a tree-sitter grammar handle, an
// entity-extraction query, a dependency-extraction query, a comment-node-kind
// set, and a test-detection heuristic.
package grammar

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language is one of the twelve supported source languages.
type Language string

const (
	Go         Language = "go"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	C          Language = "c"
	Cpp        Language = "cpp"
	Rust       Language = "rust"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	CSharp     Language = "csharp"
	Bash       Language = "bash"

	// Unsupported is returned by DetectLanguage for any extension with no
	// registered profile.
	Unsupported Language = ""
)

// TestHeuristic decides whether a single extracted entity should be
// classified as a test implementation rather than production code. It is
// evaluated per entity, not per file, so a file mixing test and production
// code contributes to both CodeGraph and TestEntitiesExcluded.
type TestHeuristic func(entityName, filePath string) bool

// Profile is everything the rest of the pipeline needs to parse one
// language: the grammar, its two capture-based queries, and the language's
// own notion of a comment and a test.
type Profile struct {
	Language Language

	// Extensions this profile claims, including the leading dot.
	Extensions []string

	// newLanguage constructs the tree-sitter language handle. Deferred
	// behind a function so registry construction is cheap and a profile
	// that is never used never pays for language initialization.
	newLanguage func() *sitter.Language

	// EntityQuery captures whole-entity nodes: functions, methods, types,
	// classes, interfaces. Entity kind is inferred from which named
	// capture matched, not from a separate field.
	EntityQuery string

	// DependencyQuery captures call expressions (@call.node/@callee.name),
	// type-usage sites (@use.node/@use.name), implementation clauses
	// (@impl.node/@impl.name), and import/include/use/require/using
	// regions (@dependency.<keyword>), using a fixed capture vocabulary
	// shared across all profiles.
	DependencyQuery string

	// CommentNodeKinds are tree-sitter node type names this language's
	// grammar uses for comments, consulted by the word-coverage counter.
	CommentNodeKinds map[string]bool

	// IsTest is the profile-owned test-detection heuristic.
	IsTest TestHeuristic

	// Known limitations encoded as flags rather than runtime errors.
	SelectorAmbiguous  bool // Go: selector_expression can't distinguish field access from method call
	IncludeUnresolved  bool // C/C++: #include targets are not resolved
	ReflectiveDispatch bool // Ruby: include/extend are not tracked
}

// Grammar returns the tree-sitter language handle for this profile,
// constructed on each call.
func (p *Profile) Grammar() *sitter.Language {
	if p.newLanguage == nil {
		return nil
	}
	return p.newLanguage()
}

// Registry is the total map from Language to Profile, plus the
// extension → Language lookup used by DetectLanguage.
type Registry struct {
	profiles   map[Language]*Profile
	extensions map[string]Language
}

// NewRegistry builds the registry of all twelve built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles:   make(map[Language]*Profile),
		extensions: make(map[string]Language),
	}
	for _, p := range builtinProfiles() {
		r.register(p)
	}
	return r
}

func (r *Registry) register(p *Profile) {
	r.profiles[p.Language] = p
	for _, ext := range p.Extensions {
		r.extensions[ext] = p.Language
	}
}

// DetectLanguage returns the language profile matching path's extension, or
// Unsupported if no profile claims it. Pure function of the extension set;
// it never inspects file contents.
func (r *Registry) DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		// Extensionless files (e.g. "Makefile", shebang scripts) are never
		// guessed at by extension; callers needing shebang sniffing do it
		// before calling DetectLanguage.
		return Unsupported
	}
	if lang, ok := r.extensions[ext]; ok {
		return lang
	}
	return Unsupported
}

// ProfileFor returns the profile for lang. Total over Language: a lookup
// miss returns nil, ok=false rather than panicking, so callers can treat an
// unrecognized Language value the same as Unsupported.
func (r *Registry) ProfileFor(lang Language) (*Profile, bool) {
	p, ok := r.profiles[lang]
	return p, ok
}

// Languages returns every registered language, in a stable order.
func (r *Registry) Languages() []Language {
	order := []Language{Go, Python, JavaScript, TypeScript, Java, C, Cpp, Rust, Ruby, PHP, CSharp, Bash}
	out := make([]Language, 0, len(order))
	for _, l := range order {
		if _, ok := r.profiles[l]; ok {
			out = append(out, l)
		}
	}
	return out
}
