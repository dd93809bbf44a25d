package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/platform/memory"
	"github.com/mkarpov/todoevo/internal/service"
	"github.com/mkarpov/todoevo/internal/store"
)

const helpText = `Available commands:
  add "title" "optional description"    - Add a new task
  view                                  - View all tasks
  update <id> "title" "description"     - Update an existing task
  delete <id>                           - Delete a task
  complete <id>                         - Toggle completion status
  help                                  - Show this help message
  exit                                  - Exit the application`

// REPL is an interactive task management session over an in-memory store.
// All tasks belong to a single session-local owner.
type REPL struct {
	taskService *service.TaskService
	owner       uuid.UUID
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session with a fresh in-memory store. Service logging is
// discarded so it does not interleave with the prompt.
func NewREPL(in io.Reader, out io.Writer) *REPL {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &REPL{
		taskService: service.NewTaskService(memory.NewMemoryTaskStore(), logger),
		owner:       uuid.New(),
		in:          in,
		out:         out,
	}
}

// Run reads commands until exit or end of input.
func (r *REPL) Run(ctx context.Context) {
	fmt.Fprintln(r.out, "Welcome to the Task Manager CLI!")
	fmt.Fprintln(r.out, "Enter commands (type 'help' for available commands, 'exit' to quit)")

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		if !r.Dispatch(ctx, scanner.Text()) {
			return
		}
	}
}

// Dispatch executes a single input line. It returns false when the session
// should end.
func (r *REPL) Dispatch(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	args, err := tokenize(line)
	if err != nil {
		fmt.Fprintln(r.out, "[ERROR] Malformed input: Unclosed quote.")
		fmt.Fprintln(r.out, "Use 'help' for available commands")
		return true
	}

	switch args[0] {
	case "add":
		r.handleAdd(ctx, args[1:])
	case "view":
		r.handleView(ctx)
	case "update":
		r.handleUpdate(ctx, args[1:])
	case "delete":
		r.handleDelete(ctx, args[1:])
	case "complete":
		r.handleComplete(ctx, args[1:])
	case "help":
		fmt.Fprintln(r.out, helpText)
	case "exit":
		fmt.Fprintln(r.out, "Goodbye!")
		return false
	default:
		fmt.Fprintln(r.out, "[ERROR] Invalid command. Use 'help' for available commands.")
	}

	return true
}

func (r *REPL) handleAdd(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		r.usageError("add \"title\" \"optional description\"")
		return
	}

	description := ""
	if len(args) == 2 {
		description = args[1]
	}

	task, err := r.taskService.Create(ctx, r.owner, args[0], description, false)
	if err != nil {
		r.serviceError(err)
		return
	}
	fmt.Fprintf(r.out, "[SUCCESS] Task %d %q created.\n", task.ID, task.Title)
}

func (r *REPL) handleView(ctx context.Context) {
	tasks, err := r.allTasks(ctx)
	if err != nil {
		r.serviceError(err)
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "No tasks in your list")
		return
	}

	fmt.Fprintln(r.out, "ID | Status | Title")
	for _, task := range tasks {
		status := "[ ]"
		if task.Completed {
			status = "[x]"
		}
		title := task.Title
		if task.Description != "" {
			title = task.Title + " - " + task.Description
		}
		fmt.Fprintf(r.out, "%d  | %s    | %s\n", task.ID, status, title)
	}
}

func (r *REPL) handleUpdate(ctx context.Context, args []string) {
	if len(args) < 2 || len(args) > 3 {
		r.usageError("update <id> \"title\" \"optional description\"")
		return
	}

	id, ok := r.parseID(args[0])
	if !ok {
		return
	}

	patch := domain.TaskPatch{Title: &args[1]}
	if len(args) == 3 {
		patch.Description = &args[2]
	}

	task, err := r.taskService.Update(ctx, id, r.owner, patch)
	if err != nil {
		r.serviceError(err)
		return
	}
	fmt.Fprintf(r.out, "[SUCCESS] Task %d updated.\n", task.ID)
}

func (r *REPL) handleDelete(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.usageError("delete <id>")
		return
	}

	id, ok := r.parseID(args[0])
	if !ok {
		return
	}

	if err := r.taskService.Delete(ctx, id, r.owner); err != nil {
		r.serviceError(err)
		return
	}
	fmt.Fprintf(r.out, "[SUCCESS] Task %d deleted.\n", id)
}

func (r *REPL) handleComplete(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.usageError("complete <id>")
		return
	}

	id, ok := r.parseID(args[0])
	if !ok {
		return
	}

	task, err := r.taskService.ToggleCompletion(ctx, id, r.owner)
	if err != nil {
		r.serviceError(err)
		return
	}

	status := "pending"
	if task.Completed {
		status = "complete"
	}
	fmt.Fprintf(r.out, "[SUCCESS] Task %d marked as %s.\n", task.ID, status)
}

// allTasks pages through the store until the owner's full list is collected.
func (r *REPL) allTasks(ctx context.Context) ([]*domain.Task, error) {
	var all []*domain.Task
	for {
		page, total, err := r.taskService.List(ctx, r.owner, len(all), store.MaxPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			return all, nil
		}
	}
}

func (r *REPL) parseID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(r.out, "[ERROR] Invalid task ID: %s\n", arg)
		fmt.Fprintln(r.out, "Use 'help' for available commands")
		return 0, false
	}
	return id, true
}

func (r *REPL) usageError(usage string) {
	fmt.Fprintf(r.out, "[ERROR] Usage: %s\n", usage)
	fmt.Fprintln(r.out, "Use 'help' for available commands")
}

func (r *REPL) serviceError(err error) {
	if store.IsNotFoundError(err) {
		fmt.Fprintln(r.out, "[ERROR] Task not found")
		return
	}
	fmt.Fprintf(r.out, "[ERROR] %v\n", err)
}
