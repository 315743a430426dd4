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

// Package adjacency builds one in-memory directed-graph snapshot of
// DependencyEdges, the shared structure every algorithm in pkg/graphalgo
// operates on. A snapshot is immutable once built and is cheap to cache:
// Builder.Snapshot memoizes the last snapshot for a configurable TTL, and
// Builder.Invalidate drops it (call it on every successful reindex to force
// a rebuild).
package adjacency
