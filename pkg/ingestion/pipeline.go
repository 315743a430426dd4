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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/kraklabs/parseltongue/internal/metrics"
	"github.com/kraklabs/parseltongue/pkg/extractor"
	"github.com/kraklabs/parseltongue/pkg/grammar"
	"github.com/kraklabs/parseltongue/pkg/storage"
)

// Pipeline drives one full ingestion pass: walk, parallel-extract,
// resolve, batch-insert. One Pipeline is built per process and reused
// across runs — it owns the compiled tree-sitter queries, which are
// expensive to build and safe to share.
type Pipeline struct {
	registry  *grammar.Registry
	extractor *extractor.Extractor
	logger    *slog.Logger
}

// New builds a Pipeline, compiling every grammar profile's queries once.
func New(logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := grammar.NewRegistry()
	ex, err := extractor.New(registry)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	return &Pipeline{registry: registry, extractor: ex, logger: logger}, nil
}

// Result summarizes one completed ingestion run.
type Result struct {
	RunID                string
	FilesWalked          int
	FilesParsed          int
	EntitiesInserted     int
	EdgesInserted        int
	TestEntitiesExcluded int
	ParseErrors          int
	SkipReasons          map[string]int
	Diagnostics          []Diagnostic
	Duration             time.Duration
}

type fileParse struct {
	file    FileInfo
	result  extractor.Result
	hash    string
	readErr error
}

// generateRunID derives a deterministic-per-second identifier from the
// root path and the wall-clock second ingestion started. Distinct runs
// started in the same second against the same root collide, which is
// acceptable since run IDs only label log events and the run's Result;
// workspace directories are named separately by internal/bootstrap.
func generateRunID(rootPath string, startTime time.Time) string {
	rounded := startTime.UTC().Truncate(time.Second)
	base := fmt.Sprintf("run-%s-%d", rootPath, rounded.Unix())
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:8])
}

// Run executes the full ingestion pipeline against cfg, writing results
// into backend. errorsLogPath, when non-empty, receives the
// ingestion-errors.txt diagnostics log.
func (p *Pipeline) Run(ctx context.Context, cfg Config, backend *storage.EmbeddedBackend, backendKind, errorsLogPath string) (*Result, error) {
	start := time.Now()
	runID := generateRunID(cfg.RootPath, start)
	p.logger.Info("ingestion.start", "run_id", runID, "root", cfg.RootPath)

	files, skipReasons, err := Walk(cfg)
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	p.logger.Info("ingestion.step.walk", "run_id", runID, "files", len(files))

	workers := cfg.ParseWorkers
	if workers <= 0 {
		workers = 4
	}

	parses := p.parseFilesParallel(ctx, files, workers)

	var diagnostics []Diagnostic
	var parseErrors int
	fileEntities := make(map[string][]ConvertedEntity)
	fileDeps := make(map[string][]extractor.RawDependency)
	fileHashes := make(map[string]string)
	var wordCoverageRows []WordCoverageRow
	var allResolvedEntities []ResolvedEntity
	var allEntities []ConvertedEntity
	var testExcluded []TestExcludedRow

	now := time.Now().Unix()

	for _, fp := range parses {
		if fp.readErr != nil {
			parseErrors++
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryWalkError, FilePath: fp.file.Path, Message: fp.readErr.Error()})
			continue
		}
		for _, d := range fp.result.Diagnostics {
			diagnostics = append(diagnostics, Diagnostic{Category: DiagnosticCategory(d.Category), FilePath: fp.file.Path, Message: d.Message})
			if d.Category == "PARSE_ERROR" || d.Category == "EXTRACT_FAIL" {
				parseErrors++
			}
		}

		converted := MintKeys(fp.result.Entities, now)
		fileEntities[fp.file.Path] = converted
		fileDeps[fp.file.Path] = fp.result.Dependencies
		fileHashes[fp.file.Path] = fp.hash

		for _, c := range converted {
			allEntities = append(allEntities, c)
			if c.Entity.Class == extractor.ClassTestImplementation {
				testExcluded = append(testExcluded, ToTestExcludedRow(c, "test_heuristic"))
				continue
			}
			allResolvedEntities = append(allResolvedEntities, ResolvedEntity{Key: c.Key, Name: c.Name, FilePath: c.FilePath})
		}

		cov := fp.result.Coverage
		wordCoverageRows = append(wordCoverageRows, WordCoverageRow{
			FolderPath:           dirOf(fp.file.Path),
			Filename:             baseOf(fp.file.Path),
			SourceWords:          cov.SourceWords,
			EntityWords:          cov.EntityWords,
			ImportWords:          cov.ImportWords,
			CommentWords:         cov.CommentWords,
			RawCoveragePct:       cov.RawCoveragePct,
			EffectiveCoveragePct: cov.EffectiveCoveragePct,
			EntityCount:          cov.EntityCount,
		})
	}

	p.logger.Info("ingestion.step.build_name_index", "run_id", runID, "resolvable_entities", len(allResolvedEntities))
	resolver := NewResolver(allResolvedEntities)

	edgeRows := ResolveEdges(fileDeps, fileEntities, resolver)

	var entityRows []EntityRow
	for _, c := range allEntities {
		if c.Entity.Class == extractor.ClassTestImplementation {
			continue
		}
		entityRows = append(entityRows, ToEntityRow(c, now))
	}

	p.logger.Info("ingestion.step.batch_insert", "run_id", runID,
		"entities", len(entityRows), "edges", len(edgeRows), "test_excluded", len(testExcluded))

	if script := BuildEntityInsert(entityRows); script != "" {
		if err := backend.Execute(ctx, script); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryDBInsert, FilePath: cfg.RootPath, Message: err.Error()})
		}
	}
	if script := BuildEdgeInsert(edgeRows); script != "" {
		if err := backend.Execute(ctx, script); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryDBInsert, FilePath: cfg.RootPath, Message: err.Error()})
		}
	}
	if script := BuildTestExcludedInsert(testExcluded); script != "" {
		if err := backend.Execute(ctx, script); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryDBInsert, FilePath: cfg.RootPath, Message: err.Error()})
		}
	}
	if script := BuildWordCoverageInsert(wordCoverageRows); script != "" {
		if err := backend.Execute(ctx, script); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryDBInsert, FilePath: cfg.RootPath, Message: err.Error()})
		}
	}
	if script := BuildHashUpsertBatch(fileHashes); script != "" {
		if err := backend.Execute(ctx, script); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Category: CategoryDBInsert, FilePath: cfg.RootPath, Message: err.Error()})
		}
	}

	for _, reason := range []string{"too_large"} {
		if n, ok := skipReasons[reason]; ok {
			for i := 0; i < n; i++ {
				diagnostics = append(diagnostics, Diagnostic{Category: CategoryTooLarge, FilePath: cfg.RootPath, Message: "skipped: file exceeds MaxFileSizeBytes"})
			}
		}
	}

	duration := time.Since(start)

	if errorsLogPath != "" {
		report := DiagnosticsReport{
			Timestamp: time.Now(),
			Backend:   backendKind,
			StorePath: errorsLogPath,
			SourceDir: cfg.RootPath,
			Total:     len(files),
			Processed: len(files) - parseErrors,
		}
		if err := WriteDiagnosticsLog(errorsLogPath, report, diagnostics); err != nil {
			p.logger.Warn("ingestion.diagnostics.write_failed", "err", err)
		}
	}

	result := &Result{
		RunID:                runID,
		FilesWalked:          len(files),
		FilesParsed:          len(files) - parseErrors,
		EntitiesInserted:     len(entityRows),
		EdgesInserted:        len(edgeRows),
		TestEntitiesExcluded: len(testExcluded),
		ParseErrors:          parseErrors,
		SkipReasons:          skipReasons,
		Diagnostics:          diagnostics,
		Duration:             duration,
	}

	p.logger.Info("ingestion.complete", "run_id", runID,
		"files", result.FilesWalked, "entities", result.EntitiesInserted,
		"edges", result.EdgesInserted, "duration_ms", duration.Milliseconds())

	metrics.RecordIngestion(result.FilesWalked, result.FilesParsed, result.ParseErrors,
		result.EntitiesInserted, result.EdgesInserted, result.TestEntitiesExcluded, duration.Seconds())

	return result, nil
}

// parseFilesParallel fans file reads and extraction out across workers
// goroutines, each owning its own extractor.WorkerContext (and therefore
// its own per-language tree-sitter parsers) so no parser is ever touched
// by two goroutines at once.
func (p *Pipeline) parseFilesParallel(ctx context.Context, files []FileInfo, workers int) []fileParse {
	if len(files) == 0 {
		return nil
	}
	if len(files) < workers {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, len(files))
	results := make([]fileParse, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wc := p.extractor.NewWorkerContext()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				f := files[i]
				data, err := os.ReadFile(f.FullPath)
				if err != nil {
					results[i] = fileParse{file: f, readErr: err}
					continue
				}
				res := wc.Extract(ctx, f.Path, data)
				results[i] = fileParse{file: f, result: res, hash: HashContent(data)}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func dirOf(p string) string  { return path.Dir(p) }
func baseOf(p string) string { return path.Base(p) }
