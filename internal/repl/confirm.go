package repl

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// Confirm prints prompt and waits for a single keypress, without
// requiring Enter, by switching stdin into cbreak mode for the
// duration of the read. It reports true only for 'y' or 'Y'. It is a
// session.ConfirmFunc.
func Confirm(prompt string) bool {
	fmt.Printf("%s ", prompt)
	defer fmt.Println()

	fd := os.Stdin.Fd()

	var original syscall.Termios
	if err := termios.Tcgetattr(fd, &original); err != nil {
		// not a terminal (e.g. piped input in a script); fall back to
		// reading a whole line and treating anything but "y" or "Y" as a no
		return readConfirmFallback()
	}

	cbreak := original
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &cbreak); err != nil {
		return readConfirmFallback()
	}
	defer termios.Tcsetattr(fd, termios.TCSANOW, &original)

	var buf [1]byte
	n, err := os.Stdin.Read(buf[:])
	if err != nil || n == 0 {
		return false
	}

	return buf[0] == 'y' || buf[0] == 'Y'
}

func readConfirmFallback() bool {
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y"
}
