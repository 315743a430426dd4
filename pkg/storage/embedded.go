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

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	cozo "github.com/kraklabs/parseltongue/pkg/cozodb"
)

// EmbeddedBackend implements Backend using a local CozoDB instance.
// This is the default backend for standalone/open-source Parseltongue.
type EmbeddedBackend struct {
	db     *cozo.CozoDB
	mu     sync.RWMutex
	closed bool
}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// DataDir is the directory where CozoDB stores its data.
	// Defaults to ~/.parseltongue/data/<project_id>
	DataDir string

	// Engine is the CozoDB storage engine: "rocksdb", "sqlite", or "mem".
	// Defaults to "rocksdb" for persistence.
	Engine string

	// ProjectID is used to namespace the data directory.
	ProjectID string
}

// NewEmbeddedBackend creates a new embedded CozoDB backend.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	// Set defaults
	if config.Engine == "" {
		config.Engine = "rocksdb"
	}
	if config.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		config.DataDir = filepath.Join(homeDir, ".parseltongue", "data")
		if config.ProjectID != "" {
			config.DataDir = filepath.Join(config.DataDir, config.ProjectID)
		}
	}

	// Ensure data directory exists
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// Open CozoDB
	db, err := cozo.New(config.Engine, config.DataDir, nil)
	if err != nil {
		return nil, fmt.Errorf("open cozodb: %w", err)
	}

	return &EmbeddedBackend{
		db: &db,
	}, nil
}

// Query executes a read-only Datalog query.
func (b *EmbeddedBackend) Query(ctx context.Context, datalog string) (*QueryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("backend is closed")
	}

	// Check context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := b.db.RunReadOnly(datalog, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return FromNamedRows(result), nil
}

// Execute runs a Datalog mutation.
func (b *EmbeddedBackend) Execute(ctx context.Context, datalog string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	// Check context cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := b.db.Run(datalog, nil)
	if err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (b *EmbeddedBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	b.db.Close()
	return nil
}

// DB returns the underlying CozoDB instance for advanced operations.
// Use with caution - prefer the Backend interface methods.
func (b *EmbeddedBackend) DB() *cozo.CozoDB {
	return b.db
}

// BackupToFile snapshots the store to a single file at path. Used on
// Windows, where the "mem" engine holds no on-disk state of its own and
// a workspace must flush explicitly before Close.
func (b *EmbeddedBackend) BackupToFile(path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	if err := b.db.Backup(path); err != nil {
		return fmt.Errorf("backup store: %w", err)
	}
	return nil
}

// EnsureSchema creates the five Parseltongue relations if they don't
// exist. Safe to call multiple times; CozoDB's :create returns an error
// when the relation already exists, and every create error here is
// ignored rather than treated as fatal, including one for an existing
// relation of a different shape.
func (b *EmbeddedBackend) EnsureSchema() error {
	// CodeGraph: one row per non-test named construct. entity_class is
	// always "CODE" here — TestImplementation rows never reach this
	// relation, they're diverted to TestEntitiesExcluded instead.
	relations := []string{
		`:create CodeGraph {
			isgl1_key: String
			=>
			file_path: String,
			language: String,
			entity_type: String,
			entity_class: String,
			current_code: String?,
			interface_signature: String,
			line_start: Int,
			line_end: Int,
			last_modified: Int,
			language_metadata: Json
		}`,
		`:create DependencyEdges {
			from_key: String,
			to_key: String,
			edge_type: String
			=>
			source_location: String?
		}`,
		`:create FileHashCache {
			file_path: String
			=>
			content_hash: String
		}`,
		`:create TestEntitiesExcluded {
			entity_name: String,
			folder_path: String,
			filename: String
			=>
			isgl1_key: String,
			reason: String
		}`,
		`:create FileWordCoverage {
			folder_path: String,
			filename: String
			=>
			source_words: Int,
			entity_words: Int,
			import_words: Int,
			comment_words: Int,
			raw_coverage_pct: Float,
			effective_coverage_pct: Float,
			entity_count: Int
		}`,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rel := range relations {
		if _, err := b.db.Run(rel, nil); err != nil {
			// Ignore "already exists" — CozoDB returns that as a normal
			// script error, not a distinct error type.
			continue
		}
	}

	return nil
}
