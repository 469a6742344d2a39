package repl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CastilloDel/debugito/internal/repl"
	"github.com/CastilloDel/debugito/internal/session"
	"github.com/CastilloDel/debugito/internal/terminal"
)

type recordingPrinter struct {
	lines []string
	styles []terminal.Style
}

func (p *recordingPrinter) Print(style terminal.Style, line string) {
	p.styles = append(p.styles, style)
	p.lines = append(p.lines, line)
}

func newTestREPL(t *testing.T) (*repl.REPL, *recordingPrinter) {
	t.Helper()
	sess := session.New(func(string) bool { return true }, nil)
	printer := &recordingPrinter{}
	r, err := repl.New(sess, printer, "(test) ", 10, nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, printer
}

func TestDispatch_UnknownCommandReportsErrorAndShowsHelp(t *testing.T) {
	r, printer := newTestREPL(t)
	quit := r.Dispatch("frobnicate")
	assert.False(t, quit)
	require.NotEmpty(t, printer.lines)
	assert.Equal(t, terminal.StyleError, printer.styles[0])
	assert.Contains(t, printer.lines[0], "frobnicate")
	assert.Equal(t, terminal.StyleHelp, printer.styles[len(printer.styles)-1])
}

func TestDispatch_QuitStopsTheLoop(t *testing.T) {
	r, _ := newTestREPL(t)
	assert.True(t, r.Dispatch("quit"))
	assert.True(t, r.Dispatch("q"))
	assert.True(t, r.Dispatch("exit"))
}

func TestDispatch_EmptyLineIsANoOp(t *testing.T) {
	r, printer := newTestREPL(t)
	quit := r.Dispatch("   ")
	assert.False(t, quit)
	assert.Empty(t, printer.lines)
}

func TestDispatch_BreakpointWithoutBinaryReportsError(t *testing.T) {
	r, printer := newTestREPL(t)
	r.Dispatch("breakpoint main.c:10")
	require.NotEmpty(t, printer.lines)
	assert.Equal(t, terminal.StyleError, printer.styles[len(printer.styles)-1])
}

func TestDispatch_BreakpointWithoutColonReportsUsage(t *testing.T) {
	r, printer := newTestREPL(t)
	r.Dispatch("breakpoint main.c")
	require.NotEmpty(t, printer.lines)
	assert.Contains(t, printer.lines[len(printer.lines)-1], "expected")
}

func TestDispatch_HelpPrintsEveryCommand(t *testing.T) {
	r, printer := newTestREPL(t)
	r.Dispatch("help")
	assert.GreaterOrEqual(t, len(printer.lines), 9)
	for _, s := range printer.styles {
		assert.Equal(t, terminal.StyleHelp, s)
	}
}
