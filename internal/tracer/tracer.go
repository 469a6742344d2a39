// Package tracer is debugito's ptrace-driven state machine: it forks the
// target, installs INT3 software breakpoints, and drives the
// continue/trap/restore dance described in spec §4.2.
//
// Every exported method must be called from the same goroutine, and that
// goroutine must never migrate OS threads mid-session - ptrace ties a
// tracer to the thread that attached. Launch calls runtime.LockOSThread
// for exactly this reason and never unlocks it, matching the
// single-threaded cooperative model of §5.
package tracer

import (
	"os"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/CastilloDel/debugito/internal/curated"
	"github.com/CastilloDel/debugito/internal/procmaps"
	"github.com/CastilloDel/debugito/internal/registers"
)

// breakpointByte is the x86-64 single-byte trap instruction (INT3) used
// to implement software breakpoints.
const breakpointByte = 0xCC

// StopKind classifies why a wait on the tracee returned.
type StopKind int

const (
	// StopBreakpoint means the tracee hit a known, installed breakpoint.
	StopBreakpoint StopKind = iota
	// StopExited means the tracee's process has exited.
	StopExited
	// StopOther means the tracee stopped for a reason this debugger does
	// not interpret (any signal other than SIGTRAP at a known trap).
	StopOther
)

// Stop describes the result of a wait on the tracee.
type Stop struct {
	Kind       StopKind
	Address    uint64 // runtime address, valid when Kind == StopBreakpoint
	ExitStatus int    // valid when Kind == StopExited
}

// Tracer owns one traced child process and its installed breakpoints.
type Tracer struct {
	pid         int
	executable  procmaps.Entry
	breakpoints map[uint64]uint64 // runtime address -> original word
	pendingStop uint64            // runtime address of the last unrestored trap, 0 if none
}

// Launch forks the target executable, requests tracing, replaces the
// child's image with execPath, and waits for the initial stop the
// traceme+exec protocol guarantees. argv is a single empty argument, per
// spec §4.2 - debugito never forwards arguments to the tracee.
func Launch(execPath string) (*Tracer, error) {
	runtime.LockOSThread()

	proc, err := os.StartProcess(execPath, []string{""}, &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		Sys: &syscall.SysProcAttr{
			Ptrace:    true,
			Pdeathsig: syscall.SIGKILL,
		},
	})
	if err != nil {
		return nil, curated.Errorf("launching target: %w", err)
	}

	var status unix.WaitStatus
	_, err = unix.Wait4(proc.Pid, &status, 0, nil)
	if err != nil {
		return nil, curated.Errorf("waiting for initial stop: %w", err)
	}
	if status.Exited() {
		return nil, curated.Errorf("target exited immediately on launch (status %d)", status.ExitStatus())
	}

	canonicalPath, err := canonicalizeExecPath(execPath)
	if err != nil {
		return nil, err
	}

	exe, err := procmaps.FindExecutable(proc.Pid, canonicalPath)
	if err != nil {
		return nil, err
	}

	return &Tracer{
		pid:         proc.Pid,
		executable:  exe,
		breakpoints: make(map[uint64]uint64),
	}, nil
}

// Pid returns the traced child's process ID.
func (t *Tracer) Pid() int {
	return t.pid
}

// Executable returns the child's resolved executable mapping.
func (t *Tracer) Executable() procmaps.Entry {
	return t.executable
}

// RegisterSnapshot reads the tracee's current registers. The tracee must
// be stopped; callers only ever reach this after a wait has returned.
func (t *Tracer) RegisterSnapshot() (registers.Snapshot, error) {
	regs, err := t.getRegs()
	if err != nil {
		return registers.Snapshot{}, curated.Errorf("reading registers: %w", err)
	}
	return registers.FromPtraceRegs(regs), nil
}

// ReadWord reads one machine word at a runtime address in the tracee's
// memory, for the print command.
func (t *Tracer) ReadWord(runtimeAddr uint64) (uint64, error) {
	return t.readWord(runtimeAddr)
}

// InstallBreakpoints writes an INT3 at every given file-relative address,
// recording the original word so it can later be restored. It is called
// exactly once per run, right after the initial stop.
func (t *Tracer) InstallBreakpoints(fileRelativeAddrs []uint64) error {
	for _, va := range fileRelativeAddrs {
		runtimeAddr := FileRelativeToRuntime(va, t.executable)

		original, err := t.readWord(runtimeAddr)
		if err != nil {
			return curated.Errorf("reading memory at breakpoint address: %w", err)
		}

		trapped := (original &^ 0xFF) | breakpointByte
		if err := t.writeWord(runtimeAddr, trapped); err != nil {
			return curated.Errorf("installing breakpoint: %w", err)
		}

		t.breakpoints[runtimeAddr] = original
	}
	return nil
}

// Resume continues the tracee. If a trap is pending at a known
// breakpoint address (i.e. the previous Resume or Run stopped there), it
// performs the restore-step-rearm dance from spec §4.2 before issuing the
// continue; otherwise it continues directly.
func (t *Tracer) Resume() (Stop, error) {
	if t.pendingStop != 0 {
		if err := t.restoreStepRearm(t.pendingStop); err != nil {
			return Stop{}, err
		}
		t.pendingStop = 0
	}

	if err := unix.PtraceCont(t.pid, 0); err != nil {
		panic(curated.Errorf("ptrace cont failed on a known-stopped tracee: %w", err))
	}

	return t.wait()
}

// restoreStepRearm implements spec §4.2's "Continue (pending SIGTRAP at a
// known breakpoint)" sequence.
func (t *Tracer) restoreStepRearm(breakpointAddr uint64) error {
	regs, err := t.getRegs()
	if err != nil {
		panic(curated.Errorf("reading registers after a known trap: %w", err))
	}

	regs.Rip--
	if err := t.setRegs(regs); err != nil {
		panic(curated.Errorf("writing registers after a known trap: %w", err))
	}

	original, ok := t.breakpoints[regs.Rip]
	if !ok {
		panic(curated.Errorf("no saved original instruction for breakpoint at %#x", regs.Rip))
	}

	if err := t.writeWord(regs.Rip, original); err != nil {
		panic(curated.Errorf("restoring original instruction: %w", err))
	}

	if err := unix.PtraceSingleStep(t.pid); err != nil {
		panic(curated.Errorf("single-stepping over restored instruction: %w", err))
	}

	var status unix.WaitStatus
	if _, err := unix.Wait4(t.pid, &status, 0, nil); err != nil {
		panic(curated.Errorf("waiting for single-step: %w", err))
	}
	if status.Exited() {
		return curated.Errorf("target exited while stepping over a breakpoint")
	}

	rearmed := (original &^ 0xFF) | breakpointByte
	if err := t.writeWord(regs.Rip, rearmed); err != nil {
		panic(curated.Errorf("re-arming breakpoint: %w", err))
	}

	return nil
}

// wait blocks until the tracee changes state and classifies the result.
func (t *Tracer) wait() (Stop, error) {
	var status unix.WaitStatus
	if _, err := unix.Wait4(t.pid, &status, 0, nil); err != nil {
		return Stop{}, curated.Errorf("waiting on tracee: %w", err)
	}

	if status.Exited() {
		return Stop{Kind: StopExited, ExitStatus: status.ExitStatus()}, nil
	}

	if status.Stopped() && status.StopSignal() == unix.SIGTRAP {
		regs, err := t.getRegs()
		if err != nil {
			panic(curated.Errorf("reading registers after trap: %w", err))
		}

		// the CPU has already executed the INT3, so Rip is one past it
		addr := regs.Rip - 1
		if _, known := t.breakpoints[addr]; known {
			t.pendingStop = addr
			return Stop{Kind: StopBreakpoint, Address: addr}, nil
		}
	}

	return Stop{Kind: StopOther}, nil
}

// Kill terminates the traced child explicitly and reaps it. Spec §9
// documents that a re-run historically left the previous child for the
// OS to reap; debugito closes that gap by calling Kill before forking a
// new child (see session.Session.Run).
func (t *Tracer) Kill() error {
	if err := unix.Kill(t.pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return curated.Errorf("killing previous target: %w", err)
	}
	var status unix.WaitStatus
	_, _ = unix.Wait4(t.pid, &status, 0, nil)
	return nil
}

func (t *Tracer) getRegs() (unix.PtraceRegs, error) {
	var regs unix.PtraceRegs
	err := unix.PtraceGetRegs(t.pid, &regs)
	return regs, err
}

func (t *Tracer) setRegs(regs unix.PtraceRegs) error {
	return unix.PtraceSetRegs(t.pid, &regs)
}

// readWord reads one machine word (8 bytes) at addr in the tracee.
func (t *Tracer) readWord(addr uint64) (uint64, error) {
	var buf [8]byte
	n, err := unix.PtracePeekData(t.pid, uintptr(addr), buf[:])
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return 0, curated.Errorf("short read at %#x: got %d bytes, want %d", addr, n, len(buf))
	}
	return hostEndian.Uint64(buf[:]), nil
}

// writeWord writes one machine word at addr in the tracee.
func (t *Tracer) writeWord(addr uint64, word uint64) error {
	var buf [8]byte
	hostEndian.PutUint64(buf[:], word)
	n, err := unix.PtracePokeData(t.pid, uintptr(addr), buf[:])
	if err != nil {
		return err
	}
	if n != len(buf) {
		return curated.Errorf("short write at %#x: wrote %d bytes, want %d", addr, n, len(buf))
	}
	return nil
}
