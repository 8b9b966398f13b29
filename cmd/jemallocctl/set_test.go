// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/ctl"
)

func TestSetCommand(t *testing.T) {
	output, s, err := runSim(t, "set", "background_thread", "true")
	require.NoError(t, err)
	assert.Equal(t, "background_thread: false -> true\n", output)

	enabled, err := ctl.BackgroundThread.Read(s)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetVoidControl(t *testing.T) {
	output, s, err := runSim(t, "set", "arena.4096.purge")
	require.NoError(t, err)
	assert.Equal(t, "arena.4096.purge: done\n", output)
	assert.Equal(t, int64(1), s.Purges())
}

func TestSetJSON(t *testing.T) {
	output, _, err := runSim(t, "set", "--json", "epoch", "1")
	require.NoError(t, err)

	result := decodeJSON(t, output)
	assert.Equal(t, "epoch", result["control"])
	assert.Equal(t, "1", result["new"])
	assert.Contains(t, result, "old")
}

func TestSetErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "missing value", args: []string{"set", "background_thread"}},
		{name: "unparsable value", args: []string{"set", "background_thread", "sometimes"}},
		{name: "read-only control", args: []string{"set", "arenas.narenas", "8"}, wantErr: jemalloc.ErrPermissionDenied},
		{name: "rejected value", args: []string{"set", "max_background_threads", "0"}, wantErr: jemalloc.ErrInvalidArgument},
		{name: "too many args", args: []string{"set", "epoch", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runSim(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
