// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeKey_DeterministicKeyGeneration(t *testing.T) {
	// C# generic entity name with angle brackets and a comma in its type args.
	key := MakeKey("csharp", "class", "Dictionary<string, object>", "src/Collections.cs", LineRange{10, 20})
	require.Equal(t, "csharp:class:Dictionary__lt__string__c__object__gt__:src_Collections_cs:10-20", key)
}

func TestMakeKey_Determinism(t *testing.T) {
	a := MakeKey("go", "function", "DoThing", "pkg/foo/bar.go", LineRange{1, 5})
	b := MakeKey("go", "function", "DoThing", "pkg/foo/bar.go", LineRange{1, 5})
	assert.Equal(t, a, b)
}

func TestSanitizeEntityName_NoForbiddenRunes(t *testing.T) {
	cases := []string{
		"Dictionary<string, object>",
		"Map[string]int",
		"Foo Bar",
		"Struct{Field}",
		"a,b,c",
	}
	forbidden := []string{"<", ">", ",", "[", "]", "{", "}", " "}
	for _, c := range cases {
		s := SanitizeEntityName(c)
		for _, f := range forbidden {
			assert.NotContains(t, s, f, "sanitized %q still contains %q", c, f)
		}
	}
}

func TestSanitizeEntityName_AbsorbsSeparatorSpace(t *testing.T) {
	// A space immediately following an escaped punctuation rune is a
	// generic-argument-list separator artifact, not semantic content, so it's
	// dropped rather than rendered as its own "_". A bare space elsewhere
	// (the one before "int" here) still becomes "_".
	got := SanitizeEntityName("List< int >")
	assert.Equal(t, "List__lt__int___gt__", got)
}

func TestSanitizeEntityName_SinglePassNoDoubleEscaping(t *testing.T) {
	// A comma immediately followed by a space (the common ", " separator in
	// multi-arg generic/template names) collapses to one "__c__", not
	// "__c__" plus a stray "_" for the space.
	got := SanitizeEntityName("Map<string, List<int, bool>>")
	assert.Equal(t, "Map__lt__string__c__List__lt__int__c__bool__gt____gt__", got)
}

func TestExtractSemanticPath(t *testing.T) {
	assert.Equal(t, "src_pkg_foo_go", ExtractSemanticPath("src/pkg/foo.go"))
	assert.Equal(t, "src_pkg_foo_go", ExtractSemanticPath(`src\pkg\foo.go`))
}

func TestComputeBirthTimestamp_Deterministic(t *testing.T) {
	a := ComputeBirthTimestamp("a.go", "Foo")
	b := ComputeBirthTimestamp("a.go", "Foo")
	c := ComputeBirthTimestamp("a.go", "Bar")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestUnresolvedKey(t *testing.T) {
	k := UnresolvedKey("python")
	assert.True(t, IsUnresolved(k))
	assert.Contains(t, k, ":0-0")
	assert.False(t, IsUnresolved("python:function:foo:a_py:1-2"))
}
