package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/auth"
)

func TestHashPasswordCommand_Run(t *testing.T) {
	var out bytes.Buffer
	cmd := &HashPasswordCommand{Cost: 4, in: strings.NewReader("a long enough password\n"), out: &out}

	require.NoError(t, cmd.Run())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, auth.CheckPassword("a long enough password", hash))
}

func TestHashPasswordCommand_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{name: "empty input", input: "", err: "no password"},
		{name: "too short", input: "short\n", err: "at least 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &HashPasswordCommand{Cost: 4, in: strings.NewReader(tt.input), out: &bytes.Buffer{}}
			assert.ErrorContains(t, cmd.Run(), tt.err)
		})
	}
}

func TestHashPasswordCommand_ParseFlags(t *testing.T) {
	cmd := NewHashPasswordCommand(12)
	require.NoError(t, cmd.ParseFlags([]string{"-cost", "10"}))
	assert.Equal(t, 10, cmd.Cost)
}
