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

// Package bootstrap creates and opens Workspaces.
//
// A workspace is the canonical unit of shareable analysis output: a
// timestamped directory holding one ingestion run's graph store and its
// ingestion-errors.txt diagnostics log. This package owns the directory
// layout and the store lifecycle; it has no opinion on what gets written
// into the store.
//
// # Initialization Workflow
//
// A typical workflow for a new ingestion:
//
//	ws, err := bootstrap.InitWorkspace(bootstrap.WorkspaceConfig{
//	    Root:   ".parseltongue/workspaces",
//	    Engine: "rocksdb", // Optional: platform-appropriate default otherwise
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ws.Close()
//	fmt.Printf("workspace created at: %s\n", ws.Dir)
//
//	// Later, reopen the same workspace for querying
//	ws, err = bootstrap.OpenWorkspace(ws.Dir, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ws.Close()
//
// # Directory Layout
//
// Each workspace directory contains:
//
//   - store/: the CozoDB data directory (EnsureSchema is called on init)
//   - ingestion-errors.txt: per-file diagnostics accumulated during ingestion
//
// # Storage Engines
//
// Parseltongue supports three CozoDB storage engines, selected by
// WorkspaceConfig.Engine:
//
//   - rocksdb: persistent storage, the default on every platform but Windows
//   - sqlite: lightweight persistent storage for smaller workspaces
//   - mem: in-memory storage, the default on Windows — RocksDB's file
//     locking semantics there make concurrent open/close across reindex
//     cycles unreliable, so Workspace.Close backs up to a file explicitly
//     instead of relying on engine persistence
//
// # Workspace Discovery
//
// List existing workspaces under a root directory, most recent first:
//
//	dirs, err := bootstrap.ListWorkspaces(".parseltongue/workspaces")
//	for _, dir := range dirs {
//	    fmt.Println(dir)
//	}
package bootstrap
