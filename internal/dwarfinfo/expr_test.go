package dwarfinfo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/CastilloDel/debugito/internal/registers"
)

func TestDecodeULEB128(t *testing.T) {
	cases := []struct {
		in       []byte
		want     uint64
		wantSize int
	}{
		{[]byte{0x02}, 2, 1},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, c := range cases {
		got, n := decodeULEB128(c.in)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.wantSize, n)
	}
}

func TestDecodeSLEB128(t *testing.T) {
	cases := []struct {
		in   []byte
		want int64
	}{
		{[]byte{0x02}, 2},
		{[]byte{0x7e}, -2},
		{[]byte{0x9b, 0xf1, 0x59}, -624485},
	}
	for _, c := range cases {
		got, n := decodeSLEB128(c.in)
		assert.Equal(t, c.want, got)
		assert.NotZero(t, n)
	}
}

func TestEvaluateExpression_Addr(t *testing.T) {
	var expr [9]byte
	expr[0] = opAddr
	binary.LittleEndian.PutUint64(expr[1:], 0x400000)

	loc, err := evaluateExpression(expr[:], registers.Snapshot{}, nil)
	require.NoError(t, err)
	assert.Equal(t, locationAddress, loc.kind)
	assert.Equal(t, uint64(0x400000), loc.address)
}

func TestEvaluateExpression_Breg(t *testing.T) {
	regs := registers.FromPtraceRegs(unix.PtraceRegs{Rbp: 0x7ffe0000})
	// DW_OP_breg6 (rbp), offset -8
	expr := []byte{opBreg0 + 6, 0x78} // 0x78 is SLEB128 for -8
	loc, err := evaluateExpression(expr, regs, nil)
	require.NoError(t, err)
	assert.Equal(t, locationAddress, loc.kind)
	assert.Equal(t, uint64(0x7ffe0000-8), loc.address)
}

func TestEvaluateExpression_Fbreg(t *testing.T) {
	frameBase := func() (uint64, error) { return 0x1000, nil }
	expr := []byte{opFbreg, 0x04} // offset +4
	loc, err := evaluateExpression(expr, registers.Snapshot{}, frameBase)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1004), loc.address)
}

func TestEvaluateExpression_Register(t *testing.T) {
	// DW_OP_reg6 alone means "value lives in rbp itself".
	expr := []byte{opReg0 + 6}
	loc, err := evaluateExpression(expr, registers.Snapshot{}, nil)
	require.NoError(t, err)
	assert.Equal(t, locationRegister, loc.kind)
	assert.Equal(t, 6, loc.register)
}

func TestEvaluateExpression_UnsupportedOpcode(t *testing.T) {
	_, err := evaluateExpression([]byte{0xff}, registers.Snapshot{}, nil)
	assert.Error(t, err)
}

func TestEvaluateExpression_FbregWithoutFrameBaseFails(t *testing.T) {
	expr := []byte{opFbreg, 0x04}
	_, err := evaluateExpression(expr, registers.Snapshot{}, nil)
	assert.Error(t, err)
}
