// Package commandline tokenises REPL input lines into space-separated
// words, honouring double-quoted substrings so a breakpoint path containing
// a space can still be given as one argument, and understands the
// "<path>:<line>" shape debugito uses for a breakpoint position.
package commandline

import (
	"strconv"
	"strings"

	"github.com/CastilloDel/debugito/internal/curated"
)

// Tokens lets a command handler walk through a tokenised input line one
// word at a time.
type Tokens struct {
	raw    string
	tokens []string
	curr   int
}

// Tokenise splits input into Tokens, trimming surrounding whitespace first.
func Tokenise(input string) *Tokens {
	input = strings.TrimSpace(input)
	return &Tokens{raw: input, tokens: tokenise(input)}
}

// Raw returns the original, untrimmed-of-tokens input line.
func (tk *Tokens) Raw() string {
	return tk.raw
}

// Len returns the number of tokens.
func (tk *Tokens) Len() int {
	return len(tk.tokens)
}

// Get returns the next token and true, or "" and false at the end of the
// list.
func (tk *Tokens) Get() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	tk.curr++
	return tk.tokens[tk.curr-1], true
}

// Peek returns the next token without advancing past it.
func (tk *Tokens) Peek() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	return tk.tokens[tk.curr], true
}

// Remainder joins every not-yet-consumed token back into a single string.
func (tk *Tokens) Remainder() string {
	return strings.Join(tk.tokens[tk.curr:], " ")
}

// GetPathLine consumes the next token and splits it as a "<path>:<line>"
// breakpoint position.
func (tk *Tokens) GetPathLine() (string, int, error) {
	spec, ok := tk.Get()
	if !ok {
		return "", 0, curated.Errorf("expected <path>:<line>, got nothing")
	}
	return SplitPathLine(spec)
}

// SplitPathLine splits a "<path>:<line>" breakpoint specification into its
// path and 1-based line number. The line number is taken from the text
// after the last colon, so a Windows-style drive letter in path ("C:...")
// is not mistaken for the separator.
func SplitPathLine(spec string) (string, int, error) {
	idx := strings.LastIndex(spec, ":")
	if idx < 0 {
		return "", 0, curated.Errorf("expected <path>:<line>, got %s", spec)
	}
	line, err := strconv.Atoi(spec[idx+1:])
	if err != nil {
		return "", 0, curated.Errorf("invalid line number in %s: %w", spec, err)
	}
	return spec[:idx], line, nil
}

// tokenise divides input into words, treating a "double-quoted" run as one
// word and stripping the quotes. It walks input rune by rune, accumulating
// the current word in a builder and flushing it on every unquoted space or
// at end of input, rather than tracking substring boundaries into the
// original string.
func tokenise(input string) []string {
	var tokens []string
	var current strings.Builder
	open := false
	pending := false

	flush := func() {
		if pending {
			tokens = append(tokens, current.String())
			current.Reset()
			pending = false
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			open = !open
			pending = true
		case r == ' ' && !open:
			flush()
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	flush()

	return tokens
}
