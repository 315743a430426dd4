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

package reindex

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is the contract an external file-watcher must honor before
// calling Engine.Reindex: bursts of filesystem events for the same path
// within DebounceWindow are expected to have already been coalesced into
// one event. The watcher itself is an external collaborator, out of scope
// here; this type only fixes the shape of what it hands the engine,
// reusing fsnotify's own Event/Op vocabulary rather than inventing a
// parallel one.
type ChangeEvent struct {
	Path string
	Op   fsnotify.Op
	At   time.Time
}

// DebounceWindow is the interval within which a well-behaved watcher must
// coalesce repeated events for the same path into one ChangeEvent.
const DebounceWindow = 100 * time.Millisecond

// Engine.Reindex is idempotent under redelivery: a duplicate ChangeEvent
// for a path whose content hasn't changed since the last successful
// reindex is a no-op (hash_changed=false), so an over-eager or
// imperfectly-debounced watcher cannot corrupt the graph by firing twice.
