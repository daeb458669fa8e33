package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	require.NotNil(t, root)
	assert.Equal(t, "vidscribe", root.Use)

	subcommands := map[string]bool{}
	for _, sub := range root.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range []string{"analyze", "chat", "config", "auth", "version"} {
		assert.True(t, subcommands[name], "missing subcommand %s", name)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"service-url", "timeout", "output", "debug"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, isURL("http://example.com/v.mp4"))
	assert.False(t, isURL("./recording.mp4"))
	assert.False(t, isURL("recording.mp4"))
}
