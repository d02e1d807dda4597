package board

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amonks/pv/task"
)

// Renderer writes the merged view.
type Renderer func(w io.Writer, items []Item)

// LoopOptions configures Loop.
type LoopOptions struct {
	// In supplies commands, one per line.
	In io.Reader

	// Out receives the view and messages.
	Out io.Writer

	// Render draws the view. Required.
	Render Renderer

	// ReportError prints a failed command. Defaults to "error: <message>".
	ReportError func(w io.Writer, err error)

	// OnLogout ends the session when the user types logout.
	OnLogout func() error

	// Offline skips the feed fetch.
	Offline bool
}

// LoopHelp lists the commands accepted by Loop.
const LoopHelp = `commands:
  add <text>         create a task
  edit <id> [text]   change a task's text (prompts when text is omitted)
  done <id>          toggle a task
  rm <id>            delete a task
  clear              delete all local tasks
  list               show the tasks again
  logout             end the session
  help               show this help
  quit               leave
`

type fetchResult struct {
	tasks task.List
	err   error
}

// Loop runs the interactive task view. It renders from cached data, starts
// the feed fetch, and then handles commands and the fetch result on the
// calling goroutine. It returns on quit, logout, end of input or ctx done.
func Loop(ctx context.Context, b *Board, opts LoopOptions) error {
	if opts.Render == nil {
		return errors.New("board: loop needs a renderer")
	}
	if opts.ReportError == nil {
		opts.ReportError = func(w io.Writer, err error) {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	previous := b.prompter
	b.SetPrompter(linePrompter{lines: lines, out: opts.Out})
	defer b.SetPrompter(previous)

	opts.Render(opts.Out, b.View())

	var fetched chan fetchResult
	if !opts.Offline && b.fetcher != nil {
		fetched = make(chan fetchResult, 1)
		fetcher := b.fetcher
		go func() {
			tasks, err := fetcher.Fetch(ctx)
			fetched <- fetchResult{tasks: tasks, err: err}
		}()
	}

	for {
		fmt.Fprint(opts.Out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()

		case result := <-fetched:
			fetched = nil
			b.ApplyFetch(result.tasks, result.err)
			if result.err == nil {
				fmt.Fprintln(opts.Out)
				opts.Render(opts.Out, b.View())
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			stop, err := runCommand(b, opts, line)
			if err != nil {
				opts.ReportError(opts.Out, err)
			}
			if stop {
				return nil
			}
		}
	}
}

func runCommand(b *Board, opts LoopOptions, line string) (bool, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "":
		return false, nil

	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Fprint(opts.Out, LoopHelp)
		return false, nil

	case "list":
		opts.Render(opts.Out, b.View())
		return false, nil

	case "logout":
		if opts.OnLogout != nil {
			if err := opts.OnLogout(); err != nil {
				return false, err
			}
		}
		fmt.Fprintln(opts.Out, "logged out")
		return true, nil

	case "add":
		if _, err := b.Create(rest); err != nil {
			return false, err
		}

	case "edit":
		idArg, text, _ := strings.Cut(rest, " ")
		id, err := ParseID(idArg)
		if err != nil {
			return false, err
		}
		if strings.TrimSpace(text) == "" {
			_, changed, err := b.EditInteractive(id)
			if err != nil || !changed {
				return false, err
			}
		} else if _, err := b.Edit(id, text); err != nil {
			return false, err
		}

	case "done":
		id, err := ParseID(rest)
		if err != nil {
			return false, err
		}
		if _, err := b.Toggle(id); err != nil {
			return false, err
		}

	case "rm":
		id, err := ParseID(rest)
		if err != nil {
			return false, err
		}
		deleted, err := b.Delete(id)
		if err != nil || !deleted {
			return false, err
		}

	case "clear":
		cleared, err := b.ClearAll()
		if err != nil || !cleared {
			return false, err
		}

	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}

	opts.Render(opts.Out, b.View())
	return false, nil
}

// ParseID parses a task id argument.
func ParseID(arg string) (int64, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, errors.New("missing task id")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

// linePrompter answers prompts from the loop's command stream.
type linePrompter struct {
	lines <-chan string
	out   io.Writer
}

func (p linePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/n]: ", message)
	line, ok := <-p.lines
	if !ok {
		return false, nil
	}
	return IsYes(line), nil
}

func (p linePrompter) Input(message, initial string) (string, bool, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", message, initial)
	line, ok := <-p.lines
	if !ok || strings.TrimSpace(line) == "" {
		return "", false, nil
	}
	return line, true, nil
}
