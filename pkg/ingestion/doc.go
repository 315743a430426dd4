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

// Package ingestion drives one full pass over a source tree: walk eligible
// files, extract entities and dependencies with pkg/extractor, resolve
// dependency names to ISGL1 keys, and write the result into a
// pkg/storage.EmbeddedBackend.
//
// # Pipeline
//
//	pipeline := ingestion.New(logger)
//	result, err := pipeline.Run(ctx, cfg, backend, backendKind, errorsLogPath)
//
// Run calls Walk, which applies the exclude-glob, size, and binary-content
// eligibility filters; Run then fans parsing out across a worker pool,
// resolves calls against a name index built from every file's entities,
// and writes
// CodeGraph/DependencyEdges/FileHashCache/TestEntitiesExcluded/
// FileWordCoverage rows in one batch per run.
package ingestion
