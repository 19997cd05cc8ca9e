package prep

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY. When output is piped or
// captured by a pipeline runner, the CLI switches to machine-readable
// JSON logs.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
