package terminal

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ColorPrinter is the default Printer: it writes styled, coloured lines
// to an io.Writer (normally os.Stdout).
type ColorPrinter struct {
	w io.Writer

	echo     *color.Color
	feedback *color.Color
	help     *color.Color
	errColor *color.Color
	log      *color.Color
}

// NewColorPrinter builds a Printer writing coloured output to w.
func NewColorPrinter(w io.Writer) *ColorPrinter {
	return &ColorPrinter{
		w:        w,
		echo:     color.New(color.FgHiBlack),
		feedback: color.New(color.FgWhite),
		help:     color.New(color.FgCyan),
		errColor: color.New(color.FgRed, color.Bold),
		log:      color.New(color.FgMagenta),
	}
}

// Print implements Printer.
func (p *ColorPrinter) Print(style Style, line string) {
	var c *color.Color
	switch style {
	case StyleEcho:
		c = p.echo
	case StyleHelp:
		c = p.help
	case StyleError:
		c = p.errColor
	case StyleLog:
		c = p.log
	default:
		c = p.feedback
	}
	fmt.Fprintln(p.w, c.Sprint(line))
}
