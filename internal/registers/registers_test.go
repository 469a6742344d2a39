package registers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/CastilloDel/debugito/internal/registers"
)

func TestFromPtraceRegs_PC(t *testing.T) {
	raw := unix.PtraceRegs{Rip: 0x401234}
	snap := registers.FromPtraceRegs(raw)
	assert.Equal(t, uint64(0x401234), snap.PC())
}

func TestValue_KnownRegisters(t *testing.T) {
	raw := unix.PtraceRegs{
		Rax: 1, Rdx: 2, Rcx: 3, Rbx: 4,
		Rsi: 5, Rdi: 6, Rbp: 7, Rsp: 8,
		R8: 9, R9: 10, R10: 11, R11: 12,
		R12: 13, R13: 14, R14: 15, R15: 16,
		Rip: 17,
	}
	snap := registers.FromPtraceRegs(raw)

	cases := []struct {
		reg  int
		want uint64
	}{
		{registers.Rax, 1}, {registers.Rbp, 7}, {registers.Rsp, 8},
		{registers.R8, 9}, {registers.R15, 16}, {registers.Rip, 17},
	}
	for _, c := range cases {
		got, err := snap.Value(c.reg)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestValue_UnknownRegister(t *testing.T) {
	snap := registers.FromPtraceRegs(unix.PtraceRegs{})
	_, err := snap.Value(99)
	assert.Error(t, err)
}
