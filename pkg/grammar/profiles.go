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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// builtinProfiles returns the twelve language profiles shipped with the
// registry. Query text is written as tree-sitter S-expression patterns
// with @capture names, using a fixed dependency-query vocabulary across
// every language: @call.node / @callee.name for calls, @use.node /
// @use.name for type usage (composite literals, typed declarations,
// constructor calls), @impl.node / @impl.name for interface/trait
// implementation clauses, and @dependency.<keyword> for import regions.
// Not every language produces every edge kind: Go has no implements
// clause (structural typing), and C# base lists mix the base class with
// interfaces, so neither contributes Implements edges.
func builtinProfiles() []*Profile {
	return []*Profile{
		goProfile(),
		pythonProfile(),
		javascriptProfile(),
		typescriptProfile(),
		javaProfile(),
		cProfile(),
		cppProfile(),
		rustProfile(),
		rubyProfile(),
		phpProfile(),
		csharpProfile(),
		bashProfile(),
	}
}

func hasAnyPrefix(name string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func goProfile() *Profile {
	return &Profile{
		Language:    Go,
		Extensions:  []string{".go"},
		newLanguage: func() *sitter.Language { return golang.GetLanguage() },
		// The three type_spec arms are mutually exclusive on the type
		// field: the last one enumerates every non-struct, non-interface
		// type kind instead of catching all, so a declaration never
		// matches twice.
		EntityQuery: `
			(function_declaration name: (identifier) @entity.name) @entity.function
			(method_declaration name: (field_identifier) @entity.name) @entity.method
			(type_spec name: (type_identifier) @entity.name type: (struct_type)) @entity.type
			(type_spec name: (type_identifier) @entity.name type: (interface_type)) @entity.interface
			(type_spec name: (type_identifier) @entity.name type: [(type_identifier) (qualified_type) (map_type) (slice_type) (array_type) (pointer_type) (channel_type) (function_type) (generic_type)]) @entity.type
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(call_expression function: (selector_expression field: (field_identifier) @callee.name)) @call.node
			(composite_literal type: (type_identifier) @use.name) @use.node
			(var_spec type: (type_identifier) @use.name) @use.node
			(import_spec path: (interpreted_string_literal) @dependency.import)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "_test.go") && strings.HasPrefix(name, "Test")
		},
		// Go selector_expression covers both obj.Field and obj.Method();
		// without type information the dependency query can't tell which.
		SelectorAmbiguous: true,
	}
}

func pythonProfile() *Profile {
	return &Profile{
		Language:    Python,
		Extensions:  []string{".py"},
		newLanguage: func() *sitter.Language { return python.GetLanguage() },
		EntityQuery: `
			(function_definition name: (identifier) @entity.name) @entity.function
			(class_definition name: (identifier) @entity.name) @entity.class
		`,
		DependencyQuery: `
			(call function: (identifier) @callee.name) @call.node
			(call function: (attribute attribute: (identifier) @callee.name)) @call.node
			(import_statement name: (dotted_name) @dependency.use)
			(import_from_statement module_name: (dotted_name) @dependency.use)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			base := filePath
			if i := strings.LastIndexByte(base, '/'); i >= 0 {
				base = base[i+1:]
			}
			return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py") ||
				hasAnyPrefix(name, "test_", "Test")
		},
	}
}

func javascriptProfile() *Profile {
	return &Profile{
		Language:    JavaScript,
		Extensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		newLanguage: func() *sitter.Language { return javascript.GetLanguage() },
		EntityQuery: `
			(function_declaration name: (identifier) @entity.name) @entity.function
			(method_definition name: (property_identifier) @entity.name) @entity.method
			(class_declaration name: (identifier) @entity.name) @entity.class
			(variable_declarator name: (identifier) @entity.name value: [(arrow_function) (function_expression)]) @entity.function
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(call_expression function: (member_expression property: (property_identifier) @callee.name)) @call.node
			(new_expression constructor: (identifier) @use.name) @use.node
			(import_statement source: (string) @dependency.import)
			(call_expression function: (identifier) @_req (#eq? @_req "require") arguments: (arguments (string) @dependency.require))
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.Contains(filePath, ".test.") || strings.Contains(filePath, ".spec.") ||
				strings.Contains(filePath, "__tests__/")
		},
	}
}

func typescriptProfile() *Profile {
	return &Profile{
		Language:    TypeScript,
		Extensions:  []string{".ts", ".tsx"},
		newLanguage: func() *sitter.Language { return typescript.GetLanguage() },
		EntityQuery: `
			(function_declaration name: (identifier) @entity.name) @entity.function
			(method_definition name: (property_identifier) @entity.name) @entity.method
			(class_declaration name: (type_identifier) @entity.name) @entity.class
			(interface_declaration name: (type_identifier) @entity.name) @entity.interface
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(call_expression function: (member_expression property: (property_identifier) @callee.name)) @call.node
			(new_expression constructor: (identifier) @use.name) @use.node
			(implements_clause (type_identifier) @impl.name) @impl.node
			(import_statement source: (string) @dependency.import)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.Contains(filePath, ".test.") || strings.Contains(filePath, ".spec.") ||
				strings.Contains(filePath, "__tests__/")
		},
	}
}

func javaProfile() *Profile {
	return &Profile{
		Language:    Java,
		Extensions:  []string{".java"},
		newLanguage: func() *sitter.Language { return java.GetLanguage() },
		EntityQuery: `
			(method_declaration name: (identifier) @entity.name) @entity.method
			(class_declaration name: (identifier) @entity.name) @entity.class
			(interface_declaration name: (identifier) @entity.name) @entity.interface
		`,
		DependencyQuery: `
			(method_invocation name: (identifier) @callee.name) @call.node
			(object_creation_expression type: (type_identifier) @use.name) @use.node
			(super_interfaces (type_list (type_identifier) @impl.name)) @impl.node
			(import_declaration (scoped_identifier) @dependency.import)
		`,
		CommentNodeKinds: map[string]bool{"line_comment": true, "block_comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "Test.java") || strings.HasPrefix(name, "test")
		},
	}
}

func cProfile() *Profile {
	return &Profile{
		Language:    C,
		Extensions:  []string{".c", ".h"},
		newLanguage: func() *sitter.Language { return c.GetLanguage() },
		EntityQuery: `
			(function_definition declarator: (function_declarator declarator: (identifier) @entity.name)) @entity.function
			(struct_specifier name: (type_identifier) @entity.name) @entity.type
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(preproc_include path: (_) @dependency.include)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.Contains(filePath, "test_") || strings.HasSuffix(filePath, "_test.c")
		},
		// #include targets name a file, not a symbol; resolving them to an
		// entity would require running the preprocessor's search path.
		IncludeUnresolved: true,
	}
}

func cppProfile() *Profile {
	return &Profile{
		Language:    Cpp,
		Extensions:  []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		newLanguage: func() *sitter.Language { return cpp.GetLanguage() },
		EntityQuery: `
			(function_definition declarator: (function_declarator declarator: (identifier) @entity.name)) @entity.function
			(function_definition declarator: (function_declarator declarator: (field_identifier) @entity.name)) @entity.method
			(class_specifier name: (type_identifier) @entity.name) @entity.class
			(struct_specifier name: (type_identifier) @entity.name) @entity.type
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(call_expression function: (field_expression field: (field_identifier) @callee.name)) @call.node
			(new_expression type: (type_identifier) @use.name) @use.node
			(preproc_include path: (_) @dependency.include)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.Contains(filePath, "test_") || strings.HasSuffix(filePath, "_test.cpp")
		},
		IncludeUnresolved: true,
	}
}

func rustProfile() *Profile {
	return &Profile{
		Language:    Rust,
		Extensions:  []string{".rs"},
		newLanguage: func() *sitter.Language { return rust.GetLanguage() },
		EntityQuery: `
			(function_item name: (identifier) @entity.name) @entity.function
			(struct_item name: (type_identifier) @entity.name) @entity.type
			(trait_item name: (type_identifier) @entity.name) @entity.interface
			(impl_item type: (type_identifier) @entity.name) @entity.class
		`,
		DependencyQuery: `
			(call_expression function: (identifier) @callee.name) @call.node
			(call_expression function: (field_expression field: (field_identifier) @callee.name)) @call.node
			(impl_item trait: (type_identifier) @impl.name) @impl.node
			(use_declaration argument: (_) @dependency.use)
		`,
		CommentNodeKinds: map[string]bool{"line_comment": true, "block_comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "_test.rs") || strings.Contains(filePath, "/tests/") ||
				name == "test" || strings.HasPrefix(name, "test_")
		},
	}
}

func rubyProfile() *Profile {
	return &Profile{
		Language:    Ruby,
		Extensions:  []string{".rb"},
		newLanguage: func() *sitter.Language { return ruby.GetLanguage() },
		EntityQuery: `
			(method name: (identifier) @entity.name) @entity.method
			(class name: (constant) @entity.name) @entity.class
			(module name: (constant) @entity.name) @entity.class
		`,
		DependencyQuery: `
			(call method: (identifier) @callee.name) @call.node
			(call method: (identifier) @_req (#any-of? @_req "require" "require_relative") arguments: (argument_list (string) @dependency.require))
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "_spec.rb") || strings.HasSuffix(filePath, "_test.rb") ||
				strings.HasPrefix(name, "test_")
		},
		// include/extend rewire the method-resolution order at load time;
		// without executing the module system there's no static target.
		ReflectiveDispatch: true,
	}
}

func phpProfile() *Profile {
	return &Profile{
		Language:    PHP,
		Extensions:  []string{".php"},
		newLanguage: func() *sitter.Language { return php.GetLanguage() },
		EntityQuery: `
			(function_definition name: (name) @entity.name) @entity.function
			(method_declaration name: (name) @entity.name) @entity.method
			(class_declaration name: (name) @entity.name) @entity.class
			(interface_declaration name: (name) @entity.name) @entity.interface
		`,
		DependencyQuery: `
			(function_call_expression function: (name) @callee.name) @call.node
			(member_call_expression name: (name) @callee.name) @call.node
			(object_creation_expression (name) @use.name) @use.node
			(class_interface_clause (name) @impl.name) @impl.node
			(namespace_use_declaration (namespace_use_clause (qualified_name) @dependency.use))
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "Test.php") || strings.HasPrefix(name, "test")
		},
	}
}

func csharpProfile() *Profile {
	return &Profile{
		Language:    CSharp,
		Extensions:  []string{".cs"},
		newLanguage: func() *sitter.Language { return csharp.GetLanguage() },
		EntityQuery: `
			(method_declaration name: (identifier) @entity.name) @entity.method
			(class_declaration name: (identifier) @entity.name) @entity.class
			(interface_declaration name: (identifier) @entity.name) @entity.interface
			(struct_declaration name: (identifier) @entity.name) @entity.type
		`,
		DependencyQuery: `
			(invocation_expression function: (identifier) @callee.name) @call.node
			(invocation_expression function: (member_access_expression name: (identifier) @callee.name)) @call.node
			(object_creation_expression type: (identifier) @use.name) @use.node
			(using_directive (qualified_name) @dependency.using)
			(using_directive (identifier) @dependency.using)
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.HasSuffix(filePath, "Tests.cs") || strings.HasSuffix(filePath, "Test.cs") ||
				strings.HasPrefix(name, "Test")
		},
	}
}

func bashProfile() *Profile {
	return &Profile{
		Language:    Bash,
		Extensions:  []string{".sh", ".bash"},
		newLanguage: func() *sitter.Language { return bash.GetLanguage() },
		EntityQuery: `
			(function_definition name: (word) @entity.name) @entity.function
		`,
		DependencyQuery: `
			(command name: (command_name (word) @callee.name)) @call.node
		`,
		CommentNodeKinds: map[string]bool{"comment": true},
		IsTest: func(name, filePath string) bool {
			return strings.Contains(filePath, "test_") || strings.HasSuffix(filePath, ".bats")
		},
	}
}
