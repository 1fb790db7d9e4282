// cmd/promotor/main.go
//
// Entry point for the promotor CLI. Each invocation performs one action
// (init, add, generate, list, history) against the project directory and
// exits with a code that tells scripts what went wrong.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/promotor/internal/ids"
	"github.com/kingrea/promotor/internal/promote"
	"github.com/kingrea/promotor/internal/proposal"
	"github.com/kingrea/promotor/internal/selector"
	"github.com/kingrea/promotor/internal/store"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitStorage = 3
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitFailure)
		}
	}()

	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: operator mistakes
// exit 2, storage problems exit 3, anything else exits 1.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		syntaxErr *selector.SyntaxError
		inputErr  *promote.InputError
		consErr   *store.ConsistencyError
	)
	switch {
	case errors.As(err, &syntaxErr),
		errors.As(err, &inputErr),
		errors.Is(err, proposal.ErrNoAuthors),
		errors.Is(err, proposal.ErrBadAI):
		return exitUsage
	case errors.As(err, &consErr),
		errors.Is(err, ids.ErrNoSeed),
		errors.Is(err, fs.ErrExist):
		return exitStorage
	}
	return exitFailure
}
