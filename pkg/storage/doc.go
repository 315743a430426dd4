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

// Package storage provides storage backend abstractions for Parseltongue.
//
// This package defines the Backend interface, which pkg/adjacency works
// against, and EmbeddedBackend, the embedded Datalog store that implements
// it and that the ingestion, reindex and query packages take directly.
//
// # Available Backends
//
// The package provides one backend implementation:
//
//   - EmbeddedBackend: Local CozoDB instance, one per workspace.
//
// # Quick Start
//
// Create an embedded backend and execute queries:
//
//	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
//	    DataDir: "/path/to/workspace/store",
//	    Engine:  "rocksdb",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	// Initialize schema
//	if err := backend.EnsureSchema(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Execute a query
//	result, err := backend.Query(ctx, `
//	    ?[isgl1_key, file_path] := *CodeGraph{isgl1_key, file_path}
//	    :limit 10
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range result.Rows {
//	    fmt.Printf("%v in %v\n", row[0], row[1])
//	}
//
// # Schema Initialization
//
// Before ingesting code, initialize the schema:
//
//	// Create the five Parseltongue relations (idempotent)
//	err := backend.EnsureSchema()
//
// The schema is exactly five relations:
//   - CodeGraph: one row per non-test named construct
//   - DependencyEdges: Calls/Uses/Implements edges between CodeGraph keys
//   - FileHashCache: content hash per file path, for incremental reindex
//   - TestEntitiesExcluded: entities classified as test code
//   - FileWordCoverage: per-file word-coverage accounting
//
// # Query vs Execute
//
// Use Query for read operations and Execute for mutations:
//
//	// Read-only query (uses RunReadOnly internally)
//	result, err := backend.Query(ctx, `?[count(k)] := *CodeGraph{isgl1_key: k}`)
//
//	// Mutation (uses Run internally)
//	err := backend.Execute(ctx, `:rm CodeGraph { isgl1_key: "go:function:..." }`)
//
// # Configuration
//
// EmbeddedConfig controls the backend behavior:
//
//	config := storage.EmbeddedConfig{
//	    DataDir:   "/path/to/workspace/store", // Where to store CozoDB data
//	    Engine:    "rocksdb",                  // Storage engine: mem, sqlite, rocksdb
//	    ProjectID: "myproject",                // Namespaces the default data directory
//	}
//
// Default values if not specified:
//   - DataDir: ~/.parseltongue/data/<project_id>
//   - Engine: "rocksdb" (recommended for production; "mem" is used by
//     internal/bootstrap on Windows, flushed via BackupToFile)
//
// # Thread Safety
//
// EmbeddedBackend is safe for concurrent use. Read operations use a read
// lock while write operations use an exclusive lock, allowing concurrent
// reads but exclusive writes.
//
// # Direct Database Access
//
// For advanced operations, access the underlying CozoDB instance:
//
//	db := backend.DB()
//	result, err := db.Run(`::relations`, nil)  // List all relations
//
// Use with caution - prefer the Backend interface methods for normal operations.
package storage
