// Package repl is debugito's read-eval-print loop: it reads a line,
// tokenises it, dispatches to a session.Session method, and prints the
// result - the same shape as the teacher's debugger input loop, with
// chzyer/readline standing in for the teacher's hand-rolled line editor.
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/CastilloDel/debugito/internal/curated"
	"github.com/CastilloDel/debugito/internal/diagnostics"
	"github.com/CastilloDel/debugito/internal/logger"
	"github.com/CastilloDel/debugito/internal/session"
	"github.com/CastilloDel/debugito/internal/terminal"
	"github.com/CastilloDel/debugito/internal/terminal/commandline"
)

// REPL drives one interactive debugito session.
type REPL struct {
	sess    *session.Session
	printer terminal.Printer
	rl      *readline.Instance
	log     *logger.Logger
	radix   int
}

// New builds a REPL over sess, printing through printer, reading lines
// with the given prompt. radix controls the base print formats variable
// values in (2, 8, 10 or 16; anything else falls back to 10). log, if
// non-nil, receives the panic that a fatal tracer failure is reported
// through before the process exits.
func New(sess *session.Session, printer terminal.Printer, prompt string, radix int, log *logger.Logger) (*REPL, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return nil, curated.Errorf("initialising input: %w", err)
	}
	return &REPL{sess: sess, printer: printer, rl: rl, log: log, radix: radix}, nil
}

// Close releases the line editor's resources.
func (r *REPL) Close() error {
	return r.rl.Close()
}

// Run reads and dispatches lines until EOF (Ctrl-D) or an explicit
// quit/exit command.
//
// A panic escaping Dispatch means the tracer hit an invariant it cannot
// recover from (see internal/tracer). That is reported as a fatal error
// rather than a bare Go panic trace, then the process exits: there is no
// safe way to keep driving a ptrace session whose internal bookkeeping may
// no longer match the tracee.
func (r *REPL) Run() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.log != nil {
				r.log.Error("unrecoverable debugger failure", "panic", rec)
			}
			os.Exit(1)
		}
	}()

	for {
		line, readErr := r.rl.Readline()
		if readErr == io.EOF || readErr == readline.ErrInterrupt {
			return nil
		}
		if readErr != nil {
			return curated.Errorf("reading input: %w", readErr)
		}

		if r.Dispatch(line) {
			return nil
		}
	}
}

// Dispatch executes one input line and reports whether the REPL should
// exit.
func (r *REPL) Dispatch(line string) bool {
	tk := commandline.Tokenise(line)
	cmd, ok := tk.Get()
	if !ok {
		return false
	}

	switch strings.ToLower(cmd) {
	case "load", "l":
		r.cmdLoad(tk)
	case "breakpoint", "b":
		r.cmdBreakpoint(tk)
	case "run", "r":
		r.cmdRun()
	case "continue", "c":
		r.cmdContinue()
	case "print", "p":
		r.cmdPrint(tk)
	case "source", "src":
		r.cmdSource(tk)
	case "dwarfgraph", "dg":
		r.cmdDwarfgraph(tk)
	case "log", "logs":
		r.cmdLog()
	case "help", "h", "?":
		r.cmdHelp()
	case "quit", "q", "exit":
		return true
	default:
		r.printer.Print(terminal.StyleError, fmt.Sprintf("unrecognised command: %s", cmd))
		r.cmdHelp()
	}

	return false
}

func (r *REPL) cmdLoad(tk *commandline.Tokens) {
	path, ok := tk.Get()
	if !ok {
		r.printer.Print(terminal.StyleError, "usage: load <path>")
		return
	}
	if err := r.sess.Load(path); err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}
	r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("loaded %s", path))
}

func (r *REPL) cmdBreakpoint(tk *commandline.Tokens) {
	if _, ok := tk.Peek(); !ok {
		r.printer.Print(terminal.StyleError, "usage: breakpoint <path>:<line>")
		return
	}

	path, line, err := tk.GetPathLine()
	if err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}

	if err := r.sess.AddBreakpoint(path, line); err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}
	r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("breakpoint set at %s:%d", path, line))
}

func (r *REPL) cmdRun() {
	report, err := r.sess.Run()
	r.printStopReport(report, err)
}

func (r *REPL) cmdContinue() {
	report, err := r.sess.Continue()
	r.printStopReport(report, err)
}

func (r *REPL) printStopReport(report session.StopReport, err error) {
	if err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}
	switch {
	case report.Exited:
		r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("program exited with status %d", report.ExitStatus))
	case report.Location != nil:
		r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("stopped at %s:%d", report.Location.Path, report.Location.Line))
	default:
		// re-run/reload declined by the user; nothing to report
	}
}

func (r *REPL) cmdPrint(tk *commandline.Tokens) {
	name, ok := tk.Get()
	if !ok {
		r.printer.Print(terminal.StyleError, "usage: print <variable>")
		return
	}
	value, err := r.sess.Print(name)
	if err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}
	r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("%s = %s", name, formatRadix(value, r.radix)))
}

// formatRadix renders v in base radix, prefixed the way C literals in that
// base usually are. Any radix other than 2, 8 or 16 prints in decimal.
func formatRadix(v uint32, radix int) string {
	switch radix {
	case 2:
		return "0b" + strconv.FormatUint(uint64(v), 2)
	case 8:
		return "0" + strconv.FormatUint(uint64(v), 8)
	case 16:
		return "0x" + strconv.FormatUint(uint64(v), 16)
	default:
		return strconv.FormatUint(uint64(v), 10)
	}
}

// cmdSource reads a YAML file holding a list of "path:line" breakpoint
// entries and registers each one through the same validation as an
// interactive breakpoint command, in order.
func (r *REPL) cmdSource(tk *commandline.Tokens) {
	path, ok := tk.Get()
	if !ok {
		r.printer.Print(terminal.StyleError, "usage: source <path>")
		return
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		r.printer.Print(terminal.StyleError, curated.Errorf("reading script: %w", err).Error())
		return
	}

	var specs []string
	if err := yaml.Unmarshal(contents, &specs); err != nil {
		r.printer.Print(terminal.StyleError, curated.Errorf("parsing script: %w", err).Error())
		return
	}

	for _, spec := range specs {
		bpPath, line, err := commandline.SplitPathLine(spec)
		if err != nil {
			r.printer.Print(terminal.StyleError, err.Error())
			continue
		}
		if err := r.sess.AddBreakpoint(bpPath, line); err != nil {
			r.printer.Print(terminal.StyleError, err.Error())
			continue
		}
		r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("breakpoint set at %s:%d", bpPath, line))
	}
}

func (r *REPL) cmdDwarfgraph(tk *commandline.Tokens) {
	if r.sess.State() == session.StateEmpty {
		r.printer.Print(terminal.StyleError, "no binary loaded")
		return
	}

	path, hasPath := tk.Get()
	var w io.Writer = os.Stdout
	var f *os.File
	if hasPath {
		var err error
		f, err = os.Create(path)
		if err != nil {
			r.printer.Print(terminal.StyleError, curated.Errorf("creating graph file: %w", err).Error())
			return
		}
		defer f.Close()
		w = f
	}

	functions, err := r.sess.Functions()
	if err != nil {
		r.printer.Print(terminal.StyleError, err.Error())
		return
	}

	diagnostics.WriteFunctionGraph(w, functions)
	if hasPath {
		r.printer.Print(terminal.StyleFeedback, fmt.Sprintf("wrote %s", path))
	}
}

// cmdLog prints the debugger's recent log output, oldest first.
func (r *REPL) cmdLog() {
	lines := r.sess.RecentLogs()
	if len(lines) == 0 {
		r.printer.Print(terminal.StyleLog, "(no log output yet)")
		return
	}
	for _, line := range lines {
		r.printer.Print(terminal.StyleLog, line)
	}
}

func (r *REPL) cmdHelp() {
	for _, line := range []string{
		"load, l <path>              load a binary's DWARF information",
		"breakpoint, b <path>:<line> register a breakpoint at a source position",
		"run, r                      launch the target and continue to the first breakpoint",
		"continue, c                 resume a stopped target",
		"print, p <variable>         print a local variable's current value",
		"source, src <path>          load breakpoints from a YAML script file",
		"dwarfgraph, dg [path]       dump the loaded binary's function graph as DOT",
		"log, logs                   show recent log output",
		"help, h, ?                  show this text",
		"quit, q, exit               leave debugito",
	} {
		r.printer.Print(terminal.StyleHelp, line)
	}
}
