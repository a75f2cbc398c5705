package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandSurface(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{
		"available": false,
		"installed": false,
		"rm":        false,
		"use":       false,
		"shard":     false,
		"shell":     false,
		"bin":       false,
		"src":       false,
		"pre":       false,
		"post":      false,
		"doctor":    false,
		"version":   false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		require.True(t, found, "missing subcommand %s", name)
	}
	for _, flag := range []string{"stable", "latest", "build-flags"} {
		require.NotNil(t, root.Flags().Lookup(flag), "missing flag %s", flag)
	}
	for _, flag := range []string{"config", "json", "log-level"} {
		require.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}
}

func TestRootAcceptsAtMostOneArg(t *testing.T) {
	root := newRootCmd()
	require.Error(t, root.Args(root, []string{"3.6", "4.0"}))
	require.NoError(t, root.Args(root, []string{"3.6"}))
	require.NoError(t, root.Args(root, nil))
}
