package cli

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive checks if stdin is a TTY, indicating that the user can
// answer the approval prompt. Returns false in CI environments, when input
// is piped, or when running as a background process.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}
