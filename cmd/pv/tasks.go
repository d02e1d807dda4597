package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amonks/pv/board"
	"github.com/amonks/pv/internal/editor"
	"github.com/amonks/pv/internal/markdown"
	"github.com/amonks/pv/internal/ui"
	"github.com/amonks/pv/task"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"t"},
	Short:   "Manage your tasks",
}

// tasks list
var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tasks and the external feed",
	Long: `List local tasks merged with the external feed, newest first.

The feed is fetched once per listing; failures are ignored and the
last fetched copy is shown. Use --offline to skip the fetch.`,
	Args: cobra.NoArgs,
	RunE: runTasksList,
}

var (
	tasksListJSON    bool
	tasksListOffline bool
)

// tasks show
var tasksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksShow,
}

var tasksShowJSON bool

// tasks add
var tasksAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Create a task",
	Long: `Create a task.

Text must be at least 10 characters, must not be only digits, and must
not repeat another task ignoring case. Without text, opens $EDITOR
when running interactively (or with --edit).`,
	RunE: runTasksAdd,
}

var tasksAddEdit bool

// tasks edit
var tasksEditCmd = &cobra.Command{
	Use:   "edit <id> [text]",
	Short: "Change a task's text",
	Long: `Change a task's text.

Without text, opens $EDITOR with the current text (and done flag) when
running interactively or with --edit. An empty or unchanged result
leaves the task alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTasksEdit,
}

var tasksEditEdit bool

// tasks done
var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's done flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDone,
}

// tasks rm
var tasksRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTasksRm,
}

var tasksRmYes bool

// tasks clear
var tasksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all of your tasks",
	Long:  `Delete all local tasks. Tasks from the external feed are not affected.`,
	Args:  cobra.NoArgs,
	RunE:  runTasksClear,
}

var tasksClearYes bool

// tasks shell
var tasksShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Work with tasks interactively",
	Long: `Open the interactive task view.

The view shows cached data immediately and redraws once the feed
fetch completes. Type "help" for the list of commands.`,
	Args: cobra.NoArgs,
	RunE: runTasksShell,
}

var tasksShellOffline bool

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd, tasksAddCmd, tasksEditCmd, tasksDoneCmd,
		tasksRmCmd, tasksClearCmd, tasksShellCmd)

	tasksListCmd.Flags().BoolVar(&tasksListJSON, "json", false, "Output as JSON")
	tasksListCmd.Flags().BoolVar(&tasksListOffline, "offline", false, "Do not fetch the external feed")

	tasksShowCmd.Flags().BoolVar(&tasksShowJSON, "json", false, "Output as JSON")

	tasksAddCmd.Flags().BoolVarP(&tasksAddEdit, "edit", "e", false, "Open $EDITOR")
	tasksEditCmd.Flags().BoolVarP(&tasksEditEdit, "edit", "e", false, "Open $EDITOR")

	tasksRmCmd.Flags().BoolVarP(&tasksRmYes, "yes", "y", false, "Do not ask for confirmation")
	tasksClearCmd.Flags().BoolVarP(&tasksClearYes, "yes", "y", false, "Do not ask for confirmation")
	addFlagAliases(confirmFlagAliases, tasksRmCmd, tasksClearCmd)

	tasksShellCmd.Flags().BoolVar(&tasksShellOffline, "offline", false, "Do not fetch the external feed")
}

// withBoard opens the app and the logged-in user's board, runs fn, and
// closes storage.
func withBoard(prompter board.Prompter, fn func(a *app, b *board.Board) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.openBoard(prompter)
	if err != nil {
		return err
	}
	return fn(a, b)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		if !tasksListOffline {
			b.Refresh(cmd.Context())
		}
		items := b.View()

		if tasksListJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(itemsJSON(items))
		}

		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), formatTaskTable(items, time.Now()))
		return nil
	})
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	id, err := board.ParseID(args[0])
	if err != nil {
		return err
	}
	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		for _, item := range b.View() {
			if item.Task.ID != id {
				continue
			}
			if tasksShowJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(itemJSON(item))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTaskDetail(item, markdown.Render))
			return nil
		}
		return fmt.Errorf("%w: %d", task.ErrNotFound, id)
	})
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		if strings.TrimSpace(text) == "" && (tasksAddEdit || editor.IsInteractive()) {
			parsed, err := editor.EditTask(nil)
			if err != nil {
				return err
			}
			if parsed.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			text = parsed.Text
		}

		created, err := b.Create(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d: %s\n", created.ID, created.Text)
		return nil
	})
}

func runTasksEdit(cmd *cobra.Command, args []string) error {
	id, err := board.ParseID(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")

	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		out := cmd.OutOrStdout()
		if strings.TrimSpace(text) != "" {
			edited, err := b.Edit(id, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %d: %s\n", edited.ID, edited.Text)
			return nil
		}

		if !tasksEditEdit && !editor.IsInteractive() {
			return fmt.Errorf("missing text for task %d (pass text or --edit)", id)
		}
		return editTaskInEditor(cmd, b, id)
	})
}

func editTaskInEditor(cmd *cobra.Command, b *board.Board, id int64) error {
	out := cmd.OutOrStdout()
	current, err := b.LocalTask(id)
	if err != nil {
		return err
	}

	parsed, err := editor.EditTask(&current)
	if err != nil {
		return err
	}
	if parsed.Empty() {
		fmt.Fprintln(out, "Cancelled")
		return nil
	}

	changed := false
	if parsed.Text != current.Text {
		edited, err := b.Edit(id, parsed.Text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated %d: %s\n", edited.ID, edited.Text)
		changed = true
	}
	if parsed.Done != nil && *parsed.Done != current.Done {
		toggled, err := b.Toggle(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doneMessage(toggled))
		changed = true
	}
	if !changed {
		fmt.Fprintln(out, "No changes")
	}
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	id, err := board.ParseID(args[0])
	if err != nil {
		return err
	}
	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		toggled, err := b.Toggle(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doneMessage(toggled))
		return nil
	})
}

func runTasksRm(cmd *cobra.Command, args []string) error {
	id, err := board.ParseID(args[0])
	if err != nil {
		return err
	}
	return withBoard(newCLIPrompter(tasksRmYes), func(a *app, b *board.Board) error {
		deleted, err := b.Delete(id)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
		return nil
	})
}

func runTasksClear(cmd *cobra.Command, args []string) error {
	return withBoard(newCLIPrompter(tasksClearYes), func(a *app, b *board.Board) error {
		count := len(b.Local())
		cleared, err := b.ClearAll()
		if err != nil {
			return err
		}
		if !cleared {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s\n", count, pluralize(count, "task", "tasks"))
		return nil
	})
}

func runTasksShell(cmd *cobra.Command, args []string) error {
	return withBoard(newCLIPrompter(false), func(a *app, b *board.Board) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Type \"help\" for commands.\n", b.Username())
		return board.Loop(cmd.Context(), b, board.LoopOptions{
			In:  os.Stdin,
			Out: cmd.OutOrStdout(),
			Render: func(w io.Writer, items []board.Item) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No tasks.")
					return
				}
				fmt.Fprint(w, formatTaskTable(items, time.Now()))
			},
			ReportError: func(w io.Writer, err error) {
				fmt.Fprintln(w, ui.Error("error: "+err.Error()))
			},
			OnLogout: a.sessions.Logout,
			Offline:  tasksShellOffline,
		})
	})
}

func doneMessage(t task.Task) string {
	if t.Done {
		return fmt.Sprintf("Marked %d done", t.ID)
	}
	return fmt.Sprintf("Reopened %d", t.ID)
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
