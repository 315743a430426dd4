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

import "sync"

// singleFlight is a key-scoped mutex registry: one *sync.Mutex per path,
// created on first use and never removed (paths are a bounded, slowly
// growing set for the lifetime of a workspace). TryAcquire reports
// whether the caller won the lock; a lost race means another reindex for
// the same path is already in flight and the caller should return Busy
// rather than block, keeping at most one reindex in flight per path.
type singleFlight struct {
	locks sync.Map // string -> *sync.Mutex
}

func (s *singleFlight) mutexFor(key string) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// TryAcquire attempts to take the per-path lock without blocking. The
// caller must call the returned release func exactly once, and only if ok
// is true.
func (s *singleFlight) TryAcquire(key string) (release func(), ok bool) {
	mu := s.mutexFor(key)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
