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

// Package workspace reads and writes .parseltongue/workspace.yaml, the
// per-project configuration the CLI dispatcher loads before running
// ingest/reindex/query commands. The graph store's own workspace
// directory (store/ + ingestion-errors.txt, see internal/bootstrap)
// is a distinct concept: this Config only says how to build one.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigDirName is the fixed project-config directory name.
const ConfigDirName = ".parseltongue"

// ConfigFileName is the fixed project-config file name inside ConfigDirName.
const ConfigFileName = "workspace.yaml"

// IndexingConfig controls one project's ingestion defaults.
type IndexingConfig struct {
	// Exclude holds extra doublestar glob patterns layered on top of
	// ingestion.DefaultExcludeGlobs.
	Exclude []string `yaml:"exclude"`

	// MaxFileSize skips files larger than this many bytes. 0 means no
	// limit.
	MaxFileSize int64 `yaml:"max_file_size"`

	// ParseWorkers is the number of parallel extraction goroutines.
	ParseWorkers int `yaml:"parse_workers"`
}

// ReindexConfig controls the incremental reindex engine / file-watcher
// contract.
type ReindexConfig struct {
	// DebounceMs is the interval within which the external file watcher
	// must coalesce repeated events for one path into a single
	// reindex_file call. Mirrors reindex.DebounceWindow; the value is stored
	// in the config only, and nothing in this module reads it.
	DebounceMs int `yaml:"debounce_ms"`
}

// Config is the on-disk shape of .parseltongue/workspace.yaml.
type Config struct {
	// ProjectID names the project; defaults to the directory basename.
	ProjectID string `yaml:"project_id"`

	// Engine is the CozoDB storage engine: "rocksdb", "sqlite", or "mem".
	Engine string `yaml:"engine"`

	// DataRoot is the parent directory new timestamped workspace
	// directories (internal/bootstrap.Workspace) are created under.
	DataRoot string `yaml:"data_root"`

	Indexing IndexingConfig `yaml:"indexing"`
	Reindex  ReindexConfig  `yaml:"reindex"`
}

// DefaultConfig returns the configuration a fresh `parseltongue init`
// writes for the given project ID, before any user overrides are
// applied.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Engine:    "rocksdb",
		DataRoot:  filepath.Join(ConfigDirName, "workspaces"),
		Indexing: IndexingConfig{
			ParseWorkers: 4,
		},
		Reindex: ReindexConfig{
			DebounceMs: 100,
		},
	}
}

// ConfigDir returns the .parseltongue directory under cwd.
func ConfigDir(cwd string) string {
	return filepath.Join(cwd, ConfigDirName)
}

// ConfigPath returns the workspace.yaml path under cwd.
func ConfigPath(cwd string) string {
	return filepath.Join(ConfigDir(cwd), ConfigFileName)
}

// LoadConfig reads and parses the YAML config at path. If path is empty,
// it loads from ConfigPath(cwd) using the process's current directory.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Engine == "" {
		cfg.Engine = "rocksdb"
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
