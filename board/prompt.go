package board

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the user for confirmation and text.
type Prompter interface {
	// Confirm asks a yes/no question and returns true if they say yes.
	Confirm(message string) (bool, error)

	// Input asks for a line of text, showing initial as the current value.
	// It returns false when the user dismisses the prompt.
	Input(message, initial string) (string, bool, error)
}

// StdioPrompter implements Prompter on stdin and stdout.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p StdioPrompter) streams() (io.Reader, io.Writer) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return in, out
}

// Confirm asks a yes/no question.
func (p StdioPrompter) Confirm(message string) (bool, error) {
	in, out := p.streams()
	fmt.Fprintf(out, "%s [y/n]: ", message)
	line, err := ReadLine(in)
	if err != nil && line == "" {
		return false, err
	}
	return IsYes(line), nil
}

// Input asks for a line of text. An empty answer or end of input dismisses
// the prompt.
func (p StdioPrompter) Input(message, initial string) (string, bool, error) {
	in, out := p.streams()
	fmt.Fprintf(out, "%s [%s]: ", message, initial)
	line, err := ReadLine(in)
	if err == io.EOF && line == "" {
		return "", false, nil
	}
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if strings.TrimSpace(line) == "" {
		return "", false, nil
	}
	return line, true, nil
}

// IsYes reports whether answer is an affirmative response.
func IsYes(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y", "yes", "Yes", "YES":
		return true
	default:
		return false
	}
}

// ReadLine reads up to the next newline without buffering past it.
// The newline and any trailing carriage return are dropped.
func ReadLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return strings.TrimSuffix(sb.String(), "\r"), err
		}
	}
}
