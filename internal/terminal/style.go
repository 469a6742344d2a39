// Package terminal renders REPL output with the same style-tagged
// approach as a full-screen debugger front end, minus the screen: a
// Printer takes a Style and a line of text, and decides how to colour it.
package terminal

// Style identifies the category of text passed to Printer.Print, so a
// given front end can colour or filter it however it likes.
type Style int

const (
	// StyleEcho is user input echoed back (source listings, command
	// confirmation).
	StyleEcho Style = iota
	// StyleFeedback is the normal result of a command (a stop location, a
	// printed value).
	StyleFeedback
	// StyleHelp is output from the help command.
	StyleHelp
	// StyleError is a reported error.
	StyleError
	// StyleLog mirrors a log line, for commands that surface recent
	// logger output.
	StyleLog
)

// Printer renders one line of REPL output in a given style.
type Printer interface {
	Print(style Style, line string)
}
