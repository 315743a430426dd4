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

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		path string
		want Language
	}{
		{"main.go", Go},
		{"src/app.py", Python},
		{"src/index.js", JavaScript},
		{"src/index.jsx", JavaScript},
		{"src/app.ts", TypeScript},
		{"src/app.tsx", TypeScript},
		{"Main.java", Java},
		{"lib.c", C},
		{"header.h", C},
		{"lib.cpp", Cpp},
		{"lib.hpp", Cpp},
		{"main.rs", Rust},
		{"app.rb", Ruby},
		{"index.php", PHP},
		{"Collections.cs", CSharp},
		{"deploy.sh", Bash},
		{"README.md", Unsupported},
		{"Makefile", Unsupported},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			assert.Equal(t, c.want, r.DetectLanguage(c.path))
		})
	}
}

func TestProfileForIsTotal(t *testing.T) {
	r := NewRegistry()
	for _, lang := range r.Languages() {
		p, ok := r.ProfileFor(lang)
		require.True(t, ok, "expected profile for %s", lang)
		require.NotNil(t, p)
		assert.Equal(t, lang, p.Language)
		assert.NotEmpty(t, p.EntityQuery)
		assert.NotEmpty(t, p.DependencyQuery)
		assert.NotEmpty(t, p.CommentNodeKinds)
		assert.NotNil(t, p.IsTest)
		assert.NotNil(t, p.Grammar())
	}

	_, ok := r.ProfileFor(Unsupported)
	assert.False(t, ok)
}

func TestRegistryHasTwelveLanguages(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Languages(), 12)
}

func TestKnownLimitationFlags(t *testing.T) {
	r := NewRegistry()

	goP, _ := r.ProfileFor(Go)
	assert.True(t, goP.SelectorAmbiguous)

	cP, _ := r.ProfileFor(C)
	assert.True(t, cP.IncludeUnresolved)

	cppP, _ := r.ProfileFor(Cpp)
	assert.True(t, cppP.IncludeUnresolved)

	rubyP, _ := r.ProfileFor(Ruby)
	assert.True(t, rubyP.ReflectiveDispatch)
}

func TestGoTestHeuristic(t *testing.T) {
	p, _ := NewRegistry().ProfileFor(Go)
	assert.True(t, p.IsTest("TestFoo", "pkg/foo_test.go"))
	assert.False(t, p.IsTest("Foo", "pkg/foo.go"))
	assert.False(t, p.IsTest("Foo", "pkg/foo_test.go"))
}

func TestPythonTestHeuristic(t *testing.T) {
	p, _ := NewRegistry().ProfileFor(Python)
	assert.True(t, p.IsTest("test_foo", "tests/test_foo.py"))
	assert.True(t, p.IsTest("helper", "tests/test_foo.py"))
	assert.False(t, p.IsTest("helper", "src/app.py"))
}

func TestCSharpDeterministicKeyScenario(t *testing.T) {
	// Confirms the csharp profile is registered under the key used by
	// pkg/identity's deterministic key generation.
	p, ok := NewRegistry().ProfileFor(CSharp)
	require.True(t, ok)
	assert.Equal(t, CSharp, p.Language)
	assert.Equal(t, Language("csharp"), p.Language)
}
