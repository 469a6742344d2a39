// Package session implements debugito's ordered lifecycle: the state
// machine binding the DWARF resolver and the tracer controller together,
// exactly as described in spec §4.3 - no-binary -> binary-loaded ->
// program-running(stopped-at-trap | running).
//
// Session never touches a terminal directly. It takes a ConfirmFunc
// collaborator for the (y/n) prompts spec §7 requires, mirroring the
// teacher's separation of debugger state from its terminal.Terminal
// interface.
package session

import (
	"path/filepath"

	"github.com/CastilloDel/debugito/internal/curated"
	"github.com/CastilloDel/debugito/internal/dwarfinfo"
	"github.com/CastilloDel/debugito/internal/logger"
	"github.com/CastilloDel/debugito/internal/tracer"
)

// State is the session's current position in the lifecycle of spec §4.3.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateStoppedAtTrap
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateStoppedAtTrap:
		return "stopped-at-trap"
	default:
		return "unknown"
	}
}

// Breakpoint identifies a breakpoint by canonical file path and 1-based
// line number. It is the same pair dwarfinfo keys its line-to-address map
// on.
type Breakpoint = dwarfinfo.SourceLine

// LoadedBinary is the binary-loaded half of spec §3's data model.
type LoadedBinary struct {
	Path                string
	Resolver            *dwarfinfo.Resolver
	PossibleBreakpoints map[Breakpoint]uint64
}

// RunningProgram is the running half of spec §3's data model.
type RunningProgram struct {
	Tracer *tracer.Tracer
}

// ConfirmFunc asks the user a (y/n) question and reports whether they
// answered with an affirmative; any other answer counts as "no".
type ConfirmFunc func(prompt string) bool

// StopReport is what Run and Continue hand back to the REPL layer to
// print: either the program exited, or it is stopped at a resolved
// source location.
type StopReport struct {
	Exited     bool
	ExitStatus int
	Location   *dwarfinfo.LinePosition
}

// Session holds the loaded binary, the user's ordered breakpoint list,
// and the running program record, per spec §3.
type Session struct {
	confirm ConfirmFunc
	log     *logger.Logger

	binary      *LoadedBinary
	breakpoints []Breakpoint
	running     *RunningProgram
}

// New creates an empty session (state S0).
func New(confirm ConfirmFunc, log *logger.Logger) *Session {
	return &Session{confirm: confirm, log: log}
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	switch {
	case s.running != nil:
		return StateStoppedAtTrap
	case s.binary != nil:
		return StateLoaded
	default:
		return StateEmpty
	}
}

// Breakpoints returns the user-entered breakpoint list, in insertion
// order.
func (s *Session) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(s.breakpoints))
	copy(out, s.breakpoints)
	return out
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", curated.Errorf("resolving path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", curated.Errorf("resolving path: %w", err)
	}
	return resolved, nil
}

// Load parses execPath's DWARF data and stores its possible breakpoints.
// If a binary is already loaded, it asks for confirmation (spec §7's
// "confirmation-required transitions") before replacing it; on any answer
// other than "yes" the command is a no-op. Reloading discards the
// previous running program (explicitly killing it, closing the §9 gap)
// and the previous breakpoint list, since those breakpoints were
// validated against the old binary's possible breakpoints and may no
// longer be valid positions in the new one.
func (s *Session) Load(execPath string) error {
	if s.binary != nil {
		if !s.confirm("a binary is already loaded; reload? (y/n)") {
			return nil
		}
		s.discardRunningProgram()
		s.breakpoints = nil
	}

	canonicalPath, err := canonicalize(execPath)
	if err != nil {
		return curated.Errorf("loading binary: %w", err)
	}

	resolver, err := dwarfinfo.Load(canonicalPath)
	if err != nil {
		return err
	}

	possible, err := resolver.EnumerateLineBreakpoints()
	if err != nil {
		resolver.Close()
		return err
	}

	s.binary = &LoadedBinary{
		Path:                canonicalPath,
		Resolver:            resolver,
		PossibleBreakpoints: possible,
	}

	if s.log != nil {
		s.log.Info("binary loaded", "path", canonicalPath, "breakpointPositions", len(possible))
	}

	return nil
}

// AddBreakpoint registers a user breakpoint. The path is canonicalized
// before matching, per spec §6. It fails with a distinct error if the
// position is not a key of the loaded binary's possible breakpoints.
func (s *Session) AddBreakpoint(path string, line int) error {
	if s.binary == nil {
		return curated.Errorf("no binary loaded")
	}

	canonicalPath, err := canonicalize(path)
	if err != nil {
		return curated.Errorf("not a valid breakpoint position: %w", err)
	}

	bp := Breakpoint{Path: canonicalPath, Line: line}
	if _, ok := s.binary.PossibleBreakpoints[bp]; !ok {
		return curated.Errorf("not a valid breakpoint position")
	}

	for _, existing := range s.breakpoints {
		if existing == bp {
			return nil // already registered; adding it again is a no-op
		}
	}

	s.breakpoints = append(s.breakpoints, bp)
	return nil
}

// Run launches the target, installs every registered breakpoint, and
// continues to the first hit. If a program is already running it asks
// for confirmation before re-running, per spec §4.3.
func (s *Session) Run() (StopReport, error) {
	if s.binary == nil {
		return StopReport{}, curated.Errorf("no binary loaded")
	}
	if len(s.breakpoints) == 0 {
		return StopReport{}, curated.Errorf("no breakpoints set")
	}

	if s.running != nil {
		if !s.confirm("program is already running; re-run? (y/n)") {
			return StopReport{}, nil
		}
		s.discardRunningProgram()
	}

	tr, err := tracer.Launch(s.binary.Path)
	if err != nil {
		return StopReport{}, err
	}

	addrs := make([]uint64, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		addrs = append(addrs, s.binary.PossibleBreakpoints[bp])
	}

	if err := tr.InstallBreakpoints(addrs); err != nil {
		_ = tr.Kill()
		return StopReport{}, err
	}

	s.running = &RunningProgram{Tracer: tr}

	if s.log != nil {
		s.log.Info("target launched", "pid", tr.Pid(), "breakpoints", len(addrs))
	}

	stop, err := tr.Resume()
	if err != nil {
		return StopReport{}, err
	}
	return s.handleStop(stop)
}

// Continue resumes the tracee from its current stop.
func (s *Session) Continue() (StopReport, error) {
	if s.running == nil {
		return StopReport{}, curated.Errorf("program is not running")
	}

	stop, err := s.running.Tracer.Resume()
	if err != nil {
		return StopReport{}, err
	}
	return s.handleStop(stop)
}

// handleStop classifies a tracer.Stop into a StopReport, resolving the
// source location for a breakpoint hit.
func (s *Session) handleStop(stop tracer.Stop) (StopReport, error) {
	switch stop.Kind {
	case tracer.StopExited:
		s.running = nil
		return StopReport{Exited: true, ExitStatus: stop.ExitStatus}, nil

	case tracer.StopBreakpoint:
		fileRelative := tracer.RuntimeToFileRelative(stop.Address, s.running.Tracer.Executable())
		pos, found, err := s.binary.Resolver.ResolveLineAt(fileRelative)
		if err != nil {
			return StopReport{}, err
		}
		if !found {
			return StopReport{}, curated.Errorf("stopped at %#x, which is not a resolvable source location", fileRelative)
		}
		return StopReport{Location: &dwarfinfo.LinePosition{Path: pos.Path, Line: pos.Line}}, nil

	default:
		return StopReport{}, curated.Errorf("target stopped for an unsupported reason")
	}
}

// Print reads and returns the unsigned 32-bit value of the named local
// variable's current word in target memory, per spec §6.
func (s *Session) Print(name string) (uint32, error) {
	if s.running == nil {
		return 0, curated.Errorf("program is not running")
	}

	regs, err := s.running.Tracer.RegisterSnapshot()
	if err != nil {
		return 0, err
	}

	variable, err := s.binary.Resolver.AddressOfVariable(name, regs)
	if err != nil {
		return 0, err
	}

	word, err := s.running.Tracer.ReadWord(variable.RuntimeAddress)
	if err != nil {
		return 0, curated.Errorf("reading variable memory: %w", err)
	}

	return uint32(word), nil
}

// discardRunningProgram kills and releases the current running program,
// if any.
func (s *Session) discardRunningProgram() {
	if s.running == nil {
		return
	}
	if err := s.running.Tracer.Kill(); err != nil && s.log != nil {
		s.log.Warn("failed to kill previous target", "error", err)
	}
	s.running = nil
}

// Functions enumerates the loaded binary's subprograms, for the
// dwarfgraph diagnostic command.
func (s *Session) Functions() ([]dwarfinfo.Function, error) {
	if s.binary == nil {
		return nil, curated.Errorf("no binary loaded")
	}
	return s.binary.Resolver.EnumerateFunctions()
}

// RecentLogs returns the debugger's most recently emitted log lines,
// oldest first, for the REPL's log/logs introspection command.
func (s *Session) RecentLogs() []string {
	if s.log == nil {
		return nil
	}
	return s.log.Recent()
}

// Close releases every resource the session currently holds.
func (s *Session) Close() {
	s.discardRunningProgram()
	if s.binary != nil {
		s.binary.Resolver.Close()
		s.binary = nil
	}
}
