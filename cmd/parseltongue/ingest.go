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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/parseltongue/internal/bootstrap"
	"github.com/kraklabs/parseltongue/internal/output"
	"github.com/kraklabs/parseltongue/internal/ui"
	"github.com/kraklabs/parseltongue/pkg/ingestion"
	"github.com/kraklabs/parseltongue/pkg/workspace"
)

// runIngest executes 'parseltongue ingest': it opens a fresh timestamped
// workspace (internal/bootstrap.InitWorkspace) and runs the full ingestion
// pipeline against --root.
func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	root := fs.String("root", ".", "Source directory to ingest")
	configPath := fs.String("config", "", "Path to .parseltongue/workspace.yaml (default: ./.parseltongue/workspace.yaml)")
	jsonOutput := fs.Bool("json", false, "Output the ingestion result as JSON")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: parseltongue ingest [options]

Walks --root, extracts entities and dependencies in parallel, and
batch-inserts them into a fresh workspace.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := workspace.LoadConfig(*configPath)
	if err != nil {
		cfg = workspace.DefaultConfig("parseltongue")
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	ws, err := bootstrap.InitWorkspace(bootstrap.WorkspaceConfig{
		Root:   cfg.DataRoot,
		Engine: cfg.Engine,
	}, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot init workspace: %v", err))
		os.Exit(1)
	}
	defer ws.Close()

	pipeline, err := ingestion.New(logger)
	if err != nil {
		ui.Error(fmt.Sprintf("cannot build pipeline: %v", err))
		os.Exit(1)
	}

	ingCfg := ingestion.Config{
		RootPath:         *root,
		ExcludeGlobs:     cfg.Indexing.Exclude,
		MaxFileSizeBytes: cfg.Indexing.MaxFileSize,
		ParseWorkers:     cfg.Indexing.ParseWorkers,
	}

	result, err := pipeline.Run(ctx, ingCfg, ws.Backend, cfg.Engine, ws.ErrorsPath)
	if err != nil {
		ui.Error(fmt.Sprintf("ingestion failed: %v", err))
		os.Exit(1)
	}

	if *jsonOutput {
		_ = output.JSON(result)
		return
	}

	ui.Header("Ingestion complete")
	ui.Successf("workspace: %s", ws.Dir)
	ui.Infof("files walked: %d, parsed: %d, errors: %d", result.FilesWalked, result.FilesParsed, result.ParseErrors)
	ui.Infof("entities: %d, edges: %d, test entities excluded: %d",
		result.EntitiesInserted, result.EdgesInserted, result.TestEntitiesExcluded)
	ui.Infof("duration: %s", result.Duration)
}
