// AngelaMos | 2026
// commands_test.go

package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		kind  commandKind
		args  []string
	}{
		{"/login a@b.co secret", cmdLogin, []string{"a@b.co", "secret"}},
		{"  /REGISTER a@b.co secret alice ", cmdRegister, []string{"a@b.co", "secret", "alice"}},
		{"/logout", cmdLogout, []string{}},
		{"/status", cmdStatus, []string{}},
		{"/cls", cmdClear, []string{}},
		{"/?", cmdHelp, []string{}},
		{"/upgrade", cmdUpgrade, []string{}},
		{"/exit", cmdQuit, []string{}},
		{"/teleport now", cmdUnknown, []string{"now"}},
	}

	for _, tt := range tests {
		cmd, ok := parseCommand(tt.input)
		assert.True(t, ok, tt.input)
		assert.Equal(t, tt.kind, cmd.kind, tt.input)
		assert.Equal(t, tt.args, cmd.args, tt.input)
	}
}

func TestParseCommandChatText(t *testing.T) {
	_, ok := parseCommand("build me a Grover search")
	assert.False(t, ok)

	cmd, ok := parseCommand("/")
	assert.True(t, ok)
	assert.Equal(t, cmdUnknown, cmd.kind)
}
