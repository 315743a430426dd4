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
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo describes one file selected for extraction.
type FileInfo struct {
	Path     string // relative to the walk root, forward-slash normalized
	FullPath string
	Size     int64
}

const binarySniffBytes = 8192

// Walk collects every eligible file under cfg.RootPath: not excluded by
// glob, not a directory or symlink, within the size limit, and not
// detected as binary by a NUL-byte sniff of its first 8KB. It returns the
// eligible files plus a count of how many were skipped for each reason,
// so callers can report skip totals without a second pass.
func Walk(cfg Config) ([]FileInfo, map[string]int, error) {
	excludes := append(append([]string{}, DefaultExcludeGlobs...), cfg.ExcludeGlobs...)
	skipReasons := make(map[string]int)
	var files []FileInfo

	err := filepath.WalkDir(cfg.RootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skipReasons["walk_error"]++
			return nil
		}

		relPath, relErr := filepath.Rel(cfg.RootPath, path)
		if relErr != nil {
			return nil
		}
		normalized := filepath.ToSlash(relPath)

		if d.IsDir() {
			if normalized != "." && matchesAny(normalized+"/", excludes) {
				skipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(normalized, excludes) {
			skipReasons["excluded"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			skipReasons["stat_error"]++
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			skipReasons["symlink"]++
			return nil
		}

		if cfg.MaxFileSizeBytes > 0 && info.Size() > cfg.MaxFileSizeBytes {
			skipReasons["too_large"]++
			return nil
		}

		if looksBinary(path) {
			skipReasons["binary"]++
			return nil
		}

		files = append(files, FileInfo{
			Path:     normalized,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, skipReasons, err
	}

	return files, skipReasons, nil
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// looksBinary scans the first 8KB of the file at path for a NUL byte. Any
// error opening or reading the file is treated as "not binary" — later
// stages (parsing) will surface the real problem as a diagnostic instead.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, binarySniffBytes)
	n, _ := io.ReadFull(f, buf)
	if n <= 0 {
		return false
	}
	return bytes.IndexByte(buf[:n], 0x00) >= 0
}
