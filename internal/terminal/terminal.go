package terminal

import (
	"os"

	"golang.org/x/term"
)

func IsStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func IsStdoutTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
