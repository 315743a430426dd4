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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagReport() DiagnosticsReport {
	return DiagnosticsReport{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Backend:   "rocksdb",
		StorePath: "/tmp/ws/store",
		SourceDir: "/home/dev/project",
		Total:     10,
		Processed: 9,
	}
}

func TestWriteDiagnosticsLog_BannerAndErrorLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingestion-errors.txt")

	err := WriteDiagnosticsLog(path, diagReport(), []Diagnostic{
		{Category: CategoryParseError, FilePath: "src/broken.py", Message: "syntax error at line 3"},
		{Category: CategoryUnsupported, FilePath: "README.md", Message: "no grammar for extension"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	assert.Equal(t, "# Parseltongue Ingestion Error Log", lines[0])
	assert.Equal(t, "# Generated: 2025-06-01T12:00:00Z", lines[1])
	assert.Equal(t, "# Database: rocksdb:/tmp/ws/store", lines[2])
	assert.Equal(t, "# Source: /home/dev/project", lines[3])
	assert.Equal(t, "# Total files: 10, Processed: 9, Errors: 2", lines[4])
	assert.Equal(t, "#", lines[5])
	assert.Equal(t, "[PARSE_ERROR] src/broken.py: syntax error at line 3", lines[6])
	assert.Equal(t, "[UNSUPPORTED] README.md: no grammar for extension", lines[7])

	// UTF-8, LF only.
	assert.NotContains(t, content, "\r")
}

func TestWriteDiagnosticsLog_ZeroErrorsStillWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingestion-errors.txt")

	require.NoError(t, WriteDiagnosticsLog(path, diagReport(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# No errors encountered during ingestion.")
}

func TestDiagnosticCategories_MatchLogTags(t *testing.T) {
	want := map[DiagnosticCategory]string{
		CategoryParseError:  "PARSE_ERROR",
		CategoryExtractFail: "EXTRACT_FAIL",
		CategoryConvertFail: "CONVERT_FAIL",
		CategoryDBInsert:    "DB_INSERT",
		CategoryWalkError:   "WALK_ERROR",
		CategoryUnsupported: "UNSUPPORTED",
		CategoryTooLarge:    "TOO_LARGE",
	}
	for cat, tag := range want {
		assert.Equal(t, tag, string(cat))
	}
}
