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

// Package extractor turns one (file_path, source) pair into the parsed
// entities, raw dependencies, and word-coverage statistics the ingestion
// pipeline needs. It is the Query-Based Extractor: entity and dependency
// shapes come from running the grammar registry's tree-sitter queries
// against the parsed tree, not from a hand-written recursive walk.
package extractor

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/parseltongue/pkg/grammar"
)

// EntityClass classifies a parsed entity: a test implementation is
// diagnosed and excluded from the main graph, never inserted into
// CodeGraph.
type EntityClass string

const (
	ClassCode               EntityClass = "CODE"
	ClassTestImplementation EntityClass = "TestImplementation"
)

// LineRange is a 1-indexed, inclusive start/end pair.
type LineRange struct {
	Start int
	End   int
}

// ParsedEntity is a single extracted function/method/type/class/interface,
// value-typed and owned by the caller until flushed to storage.
type ParsedEntity struct {
	Type     string // grammar.Profile entity-query capture, e.g. "function", "method", "type", "class", "interface"
	Name     string
	Language grammar.Language
	Lines    LineRange
	FilePath string
	Text     string
	Class    EntityClass
	Metadata map[string]string
}

// EdgeTypeGuess is the extractor's best guess at a DependencyEdge's
// edge_type, fixed by which capture pair the dependency query matched:
// @call.* yields Calls, @use.* (composite literals, typed declarations,
// constructor calls) yields Uses, @impl.* (implements/trait clauses)
// yields Implements.
type EdgeTypeGuess string

const (
	GuessCalls      EdgeTypeGuess = "Calls"
	GuessUses       EdgeTypeGuess = "Uses"
	GuessImplements EdgeTypeGuess = "Implements"
)

// RawDependency is one un-resolved call site: a callee name that still
// needs to be turned into an isgl1_key by the Dependency Resolver.
type RawDependency struct {
	CallerRange    LineRange
	CalleeName     string
	EdgeTypeGuess  EdgeTypeGuess
	SourceLocation LineRange
}

// FileWordCoverage is the word-accounting result for one file.
type FileWordCoverage struct {
	SourceWords          int
	EntityWords          int
	ImportWords          int
	CommentWords         int
	RawCoveragePct       float64
	EffectiveCoveragePct float64
	EntityCount          int
}

// Diagnostic is one ingestion-log line in the category-tagged format:
// "[TAG] message".
type Diagnostic struct {
	Category string // PARSE_ERROR, EXTRACT_FAIL, UNSUPPORTED, ...
	FilePath string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Category, d.FilePath, d.Message)
}

// Result is everything Extract produces for one file.
type Result struct {
	Entities     []ParsedEntity
	Dependencies []RawDependency
	Coverage     FileWordCoverage
	Diagnostics  []Diagnostic
}

// parserSlot is one worker's private tree-sitter parser, never shared
// across goroutines. Tree-sitter parsers carry internal mutable parse
// state, so "one parser per worker" is a hard requirement, not an
// optimization.
type parserSlot struct {
	parser *sitter.Parser
	lang   grammar.Language
}

// Extractor runs the registry's queries against source text. A single
// Extractor is safe for concurrent use by multiple callers as long as each
// caller uses its own WorkerContext (see NewWorkerContext) — the registry
// and its compiled queries are immutable and freely shared, but each
// in-flight parse needs its own tree-sitter parser instance.
type Extractor struct {
	registry *grammar.Registry
	queries  map[grammar.Language]*compiledQueries
}

type compiledQueries struct {
	entity     *sitter.Query
	dependency *sitter.Query
}

// New builds an Extractor over registry, pre-compiling every profile's
// entity and dependency queries once so per-file extraction only pays for
// query execution, not query compilation.
func New(registry *grammar.Registry) (*Extractor, error) {
	e := &Extractor{
		registry: registry,
		queries:  make(map[grammar.Language]*compiledQueries),
	}
	for _, lang := range registry.Languages() {
		profile, _ := registry.ProfileFor(lang)
		entityQuery, err := sitter.NewQuery([]byte(profile.EntityQuery), profile.Grammar())
		if err != nil {
			return nil, fmt.Errorf("compile entity query for %s: %w", lang, err)
		}
		depQuery, err := sitter.NewQuery([]byte(profile.DependencyQuery), profile.Grammar())
		if err != nil {
			return nil, fmt.Errorf("compile dependency query for %s: %w", lang, err)
		}
		e.queries[lang] = &compiledQueries{entity: entityQuery, dependency: depQuery}
	}
	return e, nil
}

// WorkerContext is the thread-local state a single ingestion worker keeps
// across many Extract calls: one tree-sitter parser per language it has
// needed so far, lazily created and reused.
type WorkerContext struct {
	extractor *Extractor
	parsers   map[grammar.Language]*sitter.Parser
	cursor    *sitter.QueryCursor
}

// NewWorkerContext allocates a fresh per-worker context. Call one per
// goroutine in the ingestion pipeline's worker pool; never share a
// WorkerContext across goroutines.
func (e *Extractor) NewWorkerContext() *WorkerContext {
	return &WorkerContext{
		extractor: e,
		parsers:   make(map[grammar.Language]*sitter.Parser),
		cursor:    sitter.NewQueryCursor(),
	}
}

func (wc *WorkerContext) parserFor(lang grammar.Language, profile *grammar.Profile) *sitter.Parser {
	if p, ok := wc.parsers[lang]; ok {
		return p
	}
	p := sitter.NewParser()
	p.SetLanguage(profile.Grammar())
	wc.parsers[lang] = p
	return p
}

// Extract parses one file and runs entity extraction, test classification,
// dependency-query capture, comment accounting, and word-coverage math
// over it, in that order.
func (wc *WorkerContext) Extract(ctx context.Context, filePath string, source []byte) Result {
	lang := wc.extractor.registry.DetectLanguage(filePath)
	if lang == grammar.Unsupported {
		return Result{Diagnostics: []Diagnostic{{Category: "UNSUPPORTED", FilePath: filePath, Message: "no grammar profile for extension"}}}
	}
	profile, ok := wc.extractor.registry.ProfileFor(lang)
	if !ok {
		return Result{Diagnostics: []Diagnostic{{Category: "UNSUPPORTED", FilePath: filePath, Message: "no grammar profile registered"}}}
	}

	parser := wc.parserFor(lang, profile)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Result{Diagnostics: []Diagnostic{{Category: "PARSE_ERROR", FilePath: filePath, Message: err.Error()}}}
	}
	defer tree.Close()
	root := tree.RootNode()

	queries := wc.extractor.queries[lang]

	entities, entityRanges := wc.runEntityQuery(queries.entity, root, source, lang, filePath, profile)
	deps, importRanges := wc.runDependencyQuery(queries.dependency, root, source)
	commentRanges := walkComments(root, profile.CommentNodeKinds)

	coverage := computeCoverage(source, entityRanges, importRanges, commentRanges, len(entities))

	return Result{
		Entities:     entities,
		Dependencies: deps,
		Coverage:     coverage,
	}
}

type byteRange struct {
	start, end uint32
}

func (wc *WorkerContext) runEntityQuery(q *sitter.Query, root *sitter.Node, source []byte, lang grammar.Language, filePath string, profile *grammar.Profile) ([]ParsedEntity, []byteRange) {
	var entities []ParsedEntity
	var ranges []byteRange
	// Tree-sitter fires every pattern that matches a node, so two query
	// arms covering the same declaration would each yield a match. The
	// profiles keep their arms mutually exclusive, and this span set
	// guards the invariant anyway: one entity per declaration node, first
	// match wins (matches for the same node arrive in pattern order, so
	// profiles list specific arms before general ones).
	seen := make(map[byteRange]bool)

	wc.cursor.Exec(q, root)
	for {
		m, ok := wc.cursor.NextMatch()
		if !ok {
			break
		}
		var entityNode *sitter.Node
		var nameNode *sitter.Node
		entityType := ""
		for _, c := range m.Captures {
			capName := q.CaptureNameForId(c.Index)
			switch {
			case capName == "entity.name":
				nameNode = c.Node
			case strings.HasPrefix(capName, "entity."):
				entityNode = c.Node
				entityType = strings.TrimPrefix(capName, "entity.")
			}
		}
		if entityNode == nil || nameNode == nil {
			continue
		}
		span := byteRange{start: entityNode.StartByte(), end: entityNode.EndByte()}
		if seen[span] {
			continue
		}
		seen[span] = true
		name := string(source[nameNode.StartByte():nameNode.EndByte()])
		text := string(source[entityNode.StartByte():entityNode.EndByte()])
		lines := LineRange{
			Start: int(entityNode.StartPoint().Row) + 1,
			End:   int(entityNode.EndPoint().Row) + 1,
		}
		class := ClassCode
		if profile.IsTest(name, filePath) {
			class = ClassTestImplementation
		}
		entities = append(entities, ParsedEntity{
			Type:     entityType,
			Name:     name,
			Language: lang,
			Lines:    lines,
			FilePath: filePath,
			Text:     text,
			Class:    class,
		})
		ranges = append(ranges, byteRange{start: entityNode.StartByte(), end: entityNode.EndByte()})
	}
	return entities, ranges
}

func (wc *WorkerContext) runDependencyQuery(q *sitter.Query, root *sitter.Node, source []byte) ([]RawDependency, []byteRange) {
	var deps []RawDependency
	var importRanges []byteRange

	wc.cursor.Exec(q, root)
	for {
		m, ok := wc.cursor.NextMatch()
		if !ok {
			break
		}
		// Each pattern carries exactly one node/name capture pair; the
		// pair's prefix picks the edge-type guess (call -> Calls,
		// use -> Uses, impl -> Implements).
		var edgeNode *sitter.Node
		var edgeName *sitter.Node
		guess := GuessCalls
		for _, c := range m.Captures {
			capName := q.CaptureNameForId(c.Index)
			switch {
			case capName == "call.node":
				edgeNode = c.Node
			case capName == "callee.name":
				edgeName = c.Node
			case capName == "use.node":
				edgeNode = c.Node
				guess = GuessUses
			case capName == "use.name":
				edgeName = c.Node
				guess = GuessUses
			case capName == "impl.node":
				edgeNode = c.Node
				guess = GuessImplements
			case capName == "impl.name":
				edgeName = c.Node
				guess = GuessImplements
			case strings.HasPrefix(capName, "dependency."):
				importRanges = append(importRanges, byteRange{start: c.Node.StartByte(), end: c.Node.EndByte()})
			}
		}
		if edgeNode == nil || edgeName == nil {
			continue
		}
		calleeName := string(source[edgeName.StartByte():edgeName.EndByte()])
		line := LineRange{
			Start: int(edgeNode.StartPoint().Row) + 1,
			End:   int(edgeNode.EndPoint().Row) + 1,
		}
		deps = append(deps, RawDependency{
			CallerRange:    line,
			CalleeName:     calleeName,
			EdgeTypeGuess:  guess,
			SourceLocation: line,
		})
	}
	return deps, importRanges
}

// walkComments collects byte ranges of top-level comment nodes, keyed by
// the profile's own set of tree-sitter comment node-type names.
func walkComments(node *sitter.Node, commentKinds map[string]bool) []byteRange {
	var ranges []byteRange
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if commentKinds[n.Type()] {
			ranges = append(ranges, byteRange{start: n.StartByte(), end: n.EndByte()})
			return // comment nodes have no children worth descending into
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return ranges
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// dedupeRangeWords counts whitespace-separated tokens across a set of byte
// ranges after merging overlaps, so a byte counted once by an entity range
// is never double-counted by an overlapping import/comment range sharing
// the same text.
func dedupeRangeWords(source []byte, ranges []byteRange) int {
	if len(ranges) == 0 {
		return 0
	}
	merged := mergeRanges(ranges)
	total := 0
	for _, r := range merged {
		total += wordCount(string(source[r.start:r.end]))
	}
	return total
}

func mergeRanges(ranges []byteRange) []byteRange {
	if len(ranges) < 2 {
		return ranges
	}
	sorted := append([]byteRange(nil), ranges...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].start > sorted[j].start; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	merged := []byteRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func computeCoverage(source []byte, entityRanges, importRanges, commentRanges []byteRange, entityCount int) FileWordCoverage {
	sourceWords := wordCount(string(source))
	entityWords := dedupeRangeWords(source, entityRanges)
	importWords := dedupeRangeWords(source, importRanges)
	commentWords := dedupeRangeWords(source, commentRanges)

	raw := saturate(percentage(entityWords, sourceWords))

	denom := sourceWords - importWords - commentWords
	if denom < 1 {
		denom = 1
	}
	effective := saturate(percentage(entityWords, denom))

	return FileWordCoverage{
		SourceWords:          sourceWords,
		EntityWords:          entityWords,
		ImportWords:          importWords,
		CommentWords:         commentWords,
		RawCoveragePct:       raw,
		EffectiveCoveragePct: effective,
		EntityCount:          entityCount,
	}
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func saturate(pct float64) float64 {
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
