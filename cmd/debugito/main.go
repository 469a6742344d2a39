// Command debugito is an interactive source-level debugger for x86-64
// ELF binaries built with DWARF debug info.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CastilloDel/debugito/internal/config"
	"github.com/CastilloDel/debugito/internal/logger"
	"github.com/CastilloDel/debugito/internal/repl"
	"github.com/CastilloDel/debugito/internal/session"
	"github.com/CastilloDel/debugito/internal/terminal"
)

var (
	flagCfgFile  string
	flagBinary   string
	flagSource   []string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "debugito",
	Short: "An interactive ptrace/DWARF source-level debugger",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&flagCfgFile, "config", "", "config file (default: ./.debugito.yaml or $HOME/.debugito.yaml)")
	rootCmd.Flags().StringVar(&flagBinary, "binary", "", "executable to load at startup")
	rootCmd.Flags().StringArrayVar(&flagSource, "source", nil, "script file to run at startup (repeatable)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagCfgFile)
	if err != nil {
		return err
	}
	if flagBinary != "" {
		cfg.Binary = flagBinary
	}
	if len(flagSource) > 0 {
		cfg.Source = flagSource
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	log := logger.New(os.Stderr, parseLevel(cfg.LogLevel))
	printer := terminal.NewColorPrinter(os.Stdout)

	sess := session.New(repl.Confirm, log)
	defer sess.Close()

	r, err := repl.New(sess, printer, cfg.Prompt, cfg.Radix, log)
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.Binary != "" {
		r.Dispatch(fmt.Sprintf("load %s", cfg.Binary))
	}
	for _, bp := range cfg.Breakpoints {
		r.Dispatch(fmt.Sprintf("breakpoint %s", bp))
	}
	for _, src := range cfg.Source {
		r.Dispatch(fmt.Sprintf("source %s", src))
	}

	return r.Run()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
