package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--season", "2025-2026",
		"--category", "starsi-zaci-a",
		"--debug-dir", "/tmp/dumps",
		"--browser",
	}))

	for name, want := range map[string]string{
		"season":    "2025-2026",
		"category":  "starsi-zaci-a",
		"debug-dir": "/tmp/dumps",
		"browser":   "true",
		"persist":   "false",
	} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.Value.String(), name)
	}
}
