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
	"testing"

	"github.com/stretchr/testify/assert"
)

func localityResolver() *Resolver {
	return NewResolver([]ResolvedEntity{
		{Key: "k-same-file", Name: "helper", FilePath: "src/billing/payment.py"},
		{Key: "k-same-folder", Name: "helper", FilePath: "src/billing/refund.py"},
		{Key: "k-global", Name: "helper", FilePath: "src/auth/tokens.py"},
		{Key: "k-unique", Name: "unique_fn", FilePath: "src/auth/tokens.py"},
	})
}

func TestResolver_PrefersSameFile(t *testing.T) {
	key, tier := localityResolver().Resolve("src/billing/payment.py", "helper")
	assert.Equal(t, "k-same-file", key)
	assert.Equal(t, TierSameFile, tier)
}

func TestResolver_FallsBackToSameFolder(t *testing.T) {
	r := NewResolver([]ResolvedEntity{
		{Key: "k-folder", Name: "helper", FilePath: "src/billing/refund.py"},
		{Key: "k-far", Name: "helper", FilePath: "src/auth/tokens.py"},
	})
	key, tier := r.Resolve("src/billing/payment.py", "helper")
	assert.Equal(t, "k-folder", key)
	assert.Equal(t, TierSameFolder, tier)
}

func TestResolver_FallsBackToGlobal(t *testing.T) {
	key, tier := localityResolver().Resolve("cmd/main.go", "unique_fn")
	assert.Equal(t, "k-unique", key)
	assert.Equal(t, TierGlobal, tier)
}

func TestResolver_UnresolvedName(t *testing.T) {
	key, tier := localityResolver().Resolve("src/billing/payment.py", "does_not_exist")
	assert.Empty(t, key)
	assert.Equal(t, TierUnresolved, tier)
}

func TestResolver_QualifiedNameFallsBackToTrailingIdentifier(t *testing.T) {
	key, tier := localityResolver().Resolve("cmd/main.go", "tokens.unique_fn")
	assert.Equal(t, "k-unique", key)
	assert.Equal(t, TierGlobal, tier)
}

func TestResolver_FirstEntityWinsOnCollision(t *testing.T) {
	r := NewResolver([]ResolvedEntity{
		{Key: "first", Name: "dup", FilePath: "a/x.go"},
		{Key: "second", Name: "dup", FilePath: "b/y.go"},
	})
	key, _ := r.Resolve("c/z.go", "dup")
	assert.Equal(t, "first", key)
}
