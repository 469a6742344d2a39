package commandline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CastilloDel/debugito/internal/terminal/commandline"
)

func TestTokenise_SplitsOnWhitespace(t *testing.T) {
	tk := commandline.Tokenise("breakpoint main.c:10")
	require.Equal(t, 2, tk.Len())

	tok, ok := tk.Get()
	require.True(t, ok)
	assert.Equal(t, "breakpoint", tok)

	tok, ok = tk.Get()
	require.True(t, ok)
	assert.Equal(t, "main.c:10", tok)

	_, ok = tk.Get()
	assert.False(t, ok)
}

func TestTokenise_HonoursQuotedSubstrings(t *testing.T) {
	tk := commandline.Tokenise(`load "my program.elf"`)
	require.Equal(t, 2, tk.Len())

	_, _ = tk.Get()
	tok, ok := tk.Get()
	require.True(t, ok)
	assert.Equal(t, "my program.elf", tok)
}

func TestTokens_PeekDoesNotAdvance(t *testing.T) {
	tk := commandline.Tokenise("print x")
	first, ok := tk.Peek()
	require.True(t, ok)
	assert.Equal(t, "print", first)

	again, ok := tk.Peek()
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestTokens_Remainder(t *testing.T) {
	tk := commandline.Tokenise("breakpoint main.c 10")
	_, _ = tk.Get()
	assert.Equal(t, "main.c 10", tk.Remainder())
}
