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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

func walkPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestWalk_CollectsEligibleFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", []byte("package main\n"))
	writeFile(t, root, "src/app.py", []byte("def f(): pass\n"))

	files, _, err := Walk(Config{RootPath: root})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "src/app.py"}, walkPaths(files))
}

func TestWalk_DefaultExcludesSkipVendoredTrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", []byte("package main\n"))
	writeFile(t, root, "node_modules/lib/index.js", []byte("module.exports = {}\n"))
	writeFile(t, root, "vendor/dep/dep.go", []byte("package dep\n"))

	files, _, err := Walk(Config{RootPath: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, walkPaths(files))
}

func TestWalk_CallerExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", []byte("x = 1\n"))
	writeFile(t, root, "gen/schema.py", []byte("y = 2\n"))

	files, skips, err := Walk(Config{
		RootPath:     root,
		ExcludeGlobs: []string{"gen/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.py"}, walkPaths(files))
	assert.Positive(t, skips["excluded"]+skips["excluded_dir"])
}

func TestWalk_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.py", []byte("x = 1\n"))
	writeFile(t, root, "big.py", make([]byte, 4096))

	files, skips, err := Walk(Config{RootPath: root, MaxFileSizeBytes: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, walkPaths(files))
	assert.Equal(t, 1, skips["too_large"])
}

func TestWalk_SkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "code.py", []byte("x = 1\n"))
	writeFile(t, root, "blob.bin", []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01, 0x02})

	files, skips, err := Walk(Config{RootPath: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"code.py"}, walkPaths(files))
	assert.Equal(t, 1, skips["binary"])
}
