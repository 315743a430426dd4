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

// Config controls one ingestion run.
type Config struct {
	// RootPath is the directory to walk. Required.
	RootPath string

	// ExcludeGlobs are doublestar patterns matched against paths relative
	// to RootPath, forward-slash normalized (e.g. "vendor/**", "**/*.min.js").
	ExcludeGlobs []string

	// MaxFileSizeBytes skips any file larger than this. 0 means no limit.
	MaxFileSizeBytes int64

	// ParseWorkers is the number of goroutines extracting files in
	// parallel. Defaults to 4 when <= 0.
	ParseWorkers int
}

// DefaultExcludeGlobs are skipped even when the caller supplies none of
// their own — vendored/generated trees that are never worth indexing.
var DefaultExcludeGlobs = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/.parseltongue/**",
	"**/dist/**",
	"**/build/**",
}
