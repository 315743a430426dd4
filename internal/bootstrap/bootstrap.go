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

// Package bootstrap creates and opens Workspaces: the timestamped
// directories that hold one ingestion's graph store and its
// ingestion-errors.txt diagnostics log.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kraklabs/parseltongue/pkg/storage"
)

// ErrorsFileName is the fixed diagnostics log name inside every workspace.
const ErrorsFileName = "ingestion-errors.txt"

// StoreDirName is the fixed CozoDB data directory name inside every
// workspace.
const StoreDirName = "store"

// WorkspaceConfig configures a new or existing workspace.
type WorkspaceConfig struct {
	// Root is the parent directory new timestamped workspace directories
	// are created under. Defaults to "./.parseltongue/workspaces".
	Root string

	// Engine is the CozoDB storage engine: "rocksdb", "sqlite", or "mem".
	// Defaults to "rocksdb", except on Windows where "mem" is used and the
	// store is flushed to a backup file on Close — see
	// EmbeddedBackend.BackupToFile.
	Engine string
}

// Workspace is one ingestion's on-disk unit of shareable analysis: a
// timestamped directory containing the graph store and the diagnostics
// log.
type Workspace struct {
	Dir        string
	ErrorsPath string
	Backend    *storage.EmbeddedBackend
}

func defaultEngine() string {
	if runtime.GOOS == "windows" {
		// RocksDB's file locking semantics on Windows make concurrent
		// open/close across reindex cycles unreliable; fall back to an
		// in-memory engine and persist explicitly via BackupToFile instead.
		return "mem"
	}
	return "rocksdb"
}

// InitWorkspace creates a new timestamped workspace directory, opens its
// embedded store, and ensures the schema exists. Idempotent within the
// same process only in the sense that calling it twice creates two
// distinct workspaces — workspaces are never reused across ingestions by
// design; each workspace is the canonical, shareable unit of one analysis
// run.
func InitWorkspace(config WorkspaceConfig, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Root == "" {
		config.Root = filepath.Join(".parseltongue", "workspaces")
	}
	if config.Engine == "" {
		config.Engine = defaultEngine()
	}

	if err := os.MkdirAll(config.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	base := time.Now().UTC().Format("20060102T150405Z")
	dir := filepath.Join(config.Root, base)
	for i := 1; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
		dir = filepath.Join(config.Root, fmt.Sprintf("%s-%d", base, i))
	}

	storeDir := filepath.Join(dir, StoreDirName)
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir: storeDir,
		Engine:  config.Engine,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := backend.EnsureSchema(); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	errorsPath := filepath.Join(dir, ErrorsFileName)

	logger.Info("bootstrap.workspace.init",
		"dir", dir,
		"engine", config.Engine,
	)

	return &Workspace{
		Dir:        dir,
		ErrorsPath: errorsPath,
		Backend:    backend,
	}, nil
}

// OpenWorkspace reopens an existing workspace directory's store for
// querying. It does not truncate or recreate the errors log.
func OpenWorkspace(dir string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("workspace not found: %w", err)
	}

	storeDir := filepath.Join(dir, StoreDirName)
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir: storeDir,
		Engine:  defaultEngine(),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger.Debug("bootstrap.workspace.open", "dir", dir)

	return &Workspace{
		Dir:        dir,
		ErrorsPath: filepath.Join(dir, ErrorsFileName),
		Backend:    backend,
	}, nil
}

// Close flushes an in-memory-engine store to its backup file (Windows
// workaround) and releases the underlying database handle.
func (w *Workspace) Close() error {
	if w.Backend == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		backupPath := filepath.Join(w.Dir, StoreDirName+".backup")
		if err := w.Backend.BackupToFile(backupPath); err != nil {
			return fmt.Errorf("backup store on close: %w", err)
		}
	}
	return w.Backend.Close()
}

// ListWorkspaces returns every workspace directory under root, most recent
// first (the timestamped naming scheme sorts lexicographically by age).
func ListWorkspaces(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspaces root: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs, nil
}
