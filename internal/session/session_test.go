package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CastilloDel/debugito/internal/session"
)

func alwaysYes(string) bool { return true }

func TestState_StartsEmpty(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	assert.Equal(t, session.StateEmpty, sess.State())
}

func TestAddBreakpoint_FailsWithoutLoadedBinary(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	err := sess.AddBreakpoint("main.c", 10)
	assert.Error(t, err)
}

func TestRun_FailsWithoutLoadedBinary(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	_, err := sess.Run()
	assert.Error(t, err)
}

func TestContinue_FailsWithoutRunningProgram(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	_, err := sess.Continue()
	assert.Error(t, err)
}

func TestPrint_FailsWithoutRunningProgram(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	_, err := sess.Print("x")
	assert.Error(t, err)
}

func TestFunctions_FailsWithoutLoadedBinary(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	_, err := sess.Functions()
	assert.Error(t, err)
}

func TestBreakpoints_StartsEmpty(t *testing.T) {
	sess := session.New(alwaysYes, nil)
	assert.Empty(t, sess.Breakpoints())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", session.StateEmpty.String())
	assert.Equal(t, "loaded", session.StateLoaded.String())
	assert.Equal(t, "stopped-at-trap", session.StateStoppedAtTrap.String())
}
