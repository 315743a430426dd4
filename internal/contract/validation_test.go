// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateKeyRejectsEmpty(t *testing.T) {
	v := ValidateKey("key", "")
	require.False(t, v.OK)
	require.Equal(t, "key is required", v.Message)
}

func TestValidateKeyRejectsOversize(t *testing.T) {
	v := ValidateKey("query", strings.Repeat("x", DefaultKeyMaxBytes+1))
	require.False(t, v.OK)
	require.Equal(t, "query exceeds soft limit", v.Message)
}

func TestValidateKeyAcceptsNormalInput(t *testing.T) {
	v := ValidateKey("key", "go:function:Foo:pkg_foo_go:1-10")
	require.True(t, v.OK)
}

func TestKeyMaxBytesEnvOverride(t *testing.T) {
	t.Setenv("PARSELTONGUE_KEY_MAX_BYTES", "16")
	require.Equal(t, 16, KeyMaxBytes())
	os.Unsetenv("PARSELTONGUE_KEY_MAX_BYTES")
	require.Equal(t, DefaultKeyMaxBytes, KeyMaxBytes())
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, 200, ClampLimit(0, 200, 5000))
	require.Equal(t, 200, ClampLimit(-5, 200, 5000))
	require.Equal(t, 5000, ClampLimit(999999, 200, 5000))
	require.Equal(t, 50, ClampLimit(50, 200, 5000))
}
