package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(&bytes.Buffer{}, &stdout, &stderr)

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["config"])
	require.True(t, names["describe"])
	require.True(t, names["query"])
	require.True(t, names["repl"])
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(&bytes.Buffer{}, &stdout, &stderr)
	root.SetArgs([]string{"config"})
	require.NoError(t, root.Execute())
	require.Contains(t, stdout.String(), "backend")
}
