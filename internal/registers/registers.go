// Package registers maps DWARF register numbers, as used in DWARF location
// expressions, to the x86-64 register snapshot ptrace hands back for a
// stopped tracee.
package registers

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Snapshot is the subset of the host register state a DWARF expression
// evaluator needs: a lookup from DWARF register number to its current
// 64-bit value.
type Snapshot struct {
	regs unix.PtraceRegs
}

// FromPtraceRegs wraps a raw ptrace register struct as a Snapshot.
func FromPtraceRegs(regs unix.PtraceRegs) Snapshot {
	return Snapshot{regs: regs}
}

// PC returns the current instruction pointer.
func (s Snapshot) PC() uint64 {
	return s.regs.Rip
}

// DWARF register numbering for x86-64 (System V ABI). This is the only
// table that may reference Go register struct fields; every other
// component addresses registers purely by DWARF number.
const (
	Rax = 0
	Rdx = 1
	Rcx = 2
	Rbx = 3
	Rsi = 4
	Rdi = 5
	Rbp = 6
	Rsp = 7
	R8  = 8
	R9  = 9
	R10 = 10
	R11 = 11
	R12 = 12
	R13 = 13
	R14 = 14
	R15 = 15
	Rip = 16
)

// Value returns the current value of the given DWARF register number.
func (s Snapshot) Value(dwarfRegNum int) (uint64, error) {
	switch dwarfRegNum {
	case Rax:
		return s.regs.Rax, nil
	case Rdx:
		return s.regs.Rdx, nil
	case Rcx:
		return s.regs.Rcx, nil
	case Rbx:
		return s.regs.Rbx, nil
	case Rsi:
		return s.regs.Rsi, nil
	case Rdi:
		return s.regs.Rdi, nil
	case Rbp:
		return s.regs.Rbp, nil
	case Rsp:
		return s.regs.Rsp, nil
	case R8:
		return s.regs.R8, nil
	case R9:
		return s.regs.R9, nil
	case R10:
		return s.regs.R10, nil
	case R11:
		return s.regs.R11, nil
	case R12:
		return s.regs.R12, nil
	case R13:
		return s.regs.R13, nil
	case R14:
		return s.regs.R14, nil
	case R15:
		return s.regs.R15, nil
	case Rip:
		return s.regs.Rip, nil
	default:
		return 0, fmt.Errorf("invalid register number: %d", dwarfRegNum)
	}
}
