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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteString_EscapesQuotesAndBackslashes(t *testing.T) {
	assert.Equal(t, `"plain"`, QuoteString("plain"))
	assert.Equal(t, `"say \"hi\""`, QuoteString(`say "hi"`))
	assert.Equal(t, `"a\\b"`, QuoteString(`a\b`))
}

func TestBuildEntityInsert_EmptyRowsIsNoOp(t *testing.T) {
	assert.Empty(t, BuildEntityInsert(nil))
	assert.Empty(t, BuildEdgeInsert(nil))
	assert.Empty(t, BuildTestExcludedInsert(nil))
	assert.Empty(t, BuildWordCoverageInsert(nil))
	assert.Empty(t, BuildHashUpsertBatch(nil))
	assert.Empty(t, BuildEntityDelete(nil))
	assert.Empty(t, BuildEdgeDeleteByFromKeys(nil))
}

func TestBuildEntityInsert_TargetsCodeGraph(t *testing.T) {
	script := BuildEntityInsert([]EntityRow{{
		ISGL1Key:    "python:function:f:src_app_py:1-2",
		FilePath:    "src/app.py",
		Language:    "python",
		EntityType:  "function",
		EntityClass: "CODE",
	}})
	assert.Contains(t, script, ":put CodeGraph")
	assert.Contains(t, script, `"python:function:f:src_app_py:1-2"`)
	// Absent code renders as a null, not an empty string.
	assert.Contains(t, script, "null")
}

func TestBuildEdgeInsert_CompositeKeyColumns(t *testing.T) {
	script := BuildEdgeInsert([]EdgeRow{{
		FromKey:        "from-key",
		ToKey:          "to-key",
		EdgeType:       "Calls",
		SourceLocation: "src/app.py:3",
		HasLocation:    true,
	}})
	assert.Contains(t, script, ":put DependencyEdges")
	assert.Contains(t, script, "{from_key, to_key, edge_type => source_location}")
	assert.Contains(t, script, `"src/app.py:3"`)
}

func TestBuildHashUpsert_SingleFile(t *testing.T) {
	script := BuildHashUpsert("src/app.py", "deadbeefdeadbeef")
	assert.Contains(t, script, ":put FileHashCache")
	assert.Contains(t, script, `"src/app.py"`)
	assert.Contains(t, script, `"deadbeefdeadbeef"`)
}

func TestBuildEntityDelete_RemovesEachKey(t *testing.T) {
	script := BuildEntityDelete([]string{"k1", "k2"})
	assert.Contains(t, script, ":rm CodeGraph")
	assert.Contains(t, script, `["k1"], ["k2"]`)
}

func TestBuildEdgeDeleteByFromKeys_ScopedToOwnedEdges(t *testing.T) {
	script := BuildEdgeDeleteByFromKeys([]string{"owner-key"})
	assert.Contains(t, script, ":rm DependencyEdges")
	assert.Contains(t, script, "*DependencyEdges{from_key, to_key, edge_type}")
	assert.Contains(t, script, `"owner-key"`)
}

func TestBuildWordCoverageInsert_FormatsFloatsPlainly(t *testing.T) {
	script := BuildWordCoverageInsert([]WordCoverageRow{{
		FolderPath:           "src",
		Filename:             "app.py",
		SourceWords:          100,
		EntityWords:          40,
		RawCoveragePct:       40,
		EffectiveCoveragePct: 44.5,
		EntityCount:          3,
	}})
	assert.Contains(t, script, ":put FileWordCoverage")
	assert.Contains(t, script, "44.5")
	assert.False(t, strings.Contains(script, "%!"), "missing format verb in %s", script)
}
