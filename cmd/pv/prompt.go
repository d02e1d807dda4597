package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amonks/pv/board"
	"github.com/amonks/pv/internal/editor"
	"golang.org/x/term"
)

// ErrConfirmationRequired is returned when a destructive command runs
// without a terminal and without --yes.
var ErrConfirmationRequired = errors.New("confirmation required; rerun with --yes")

// cliPrompter confirms from the terminal, or from --yes.
type cliPrompter struct {
	yes         bool
	interactive bool
	stdio       board.StdioPrompter
}

func newCLIPrompter(yes bool) cliPrompter {
	return cliPrompter{yes: yes, interactive: editor.IsInteractive()}
}

func (p cliPrompter) Confirm(message string) (bool, error) {
	if p.yes {
		return true, nil
	}
	if !p.interactive {
		return false, ErrConfirmationRequired
	}
	return p.stdio.Confirm(message)
}

func (p cliPrompter) Input(message, initial string) (string, bool, error) {
	if !p.interactive {
		return "", false, nil
	}
	return p.stdio.Input(message, initial)
}

func promptLine(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	return readLine(in)
}

func promptPassword(out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(os.Stdin)
	}
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func readLine(in io.Reader) (string, error) {
	line, err := board.ReadLine(in)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
