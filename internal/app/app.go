// Package app wires config, logging, storage and the hosts into the
// everyframe command line.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/everyframe/internal/config"
	"github.com/sandeepkv93/everyframe/internal/httpapi"
	"github.com/sandeepkv93/everyframe/internal/update"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUserError    = 1
	ExitConfigError  = 2
	ExitStorageError = 3
)

const usage = `usage: everyframe [command] [flags] [args]

commands:
  tui                      interactive tracker (default)
  list                     print tasks after a refresh pass
  add <daily|weekly> name  add a task
  done <id>                toggle a task
  rm <id>                  remove a task
  serve                    run the HTTP API
  help                     show this message

flags:
`

type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time

	// RunTUI and Serve are swapped out in tests.
	RunTUI func(ctx context.Context, m update.Model) error
	Serve  func(ctx context.Context, srv *httpapi.Server, addr string) error
}

func New(stdout, stderr io.Writer) *App {
	return &App{
		Stdout: stdout,
		Stderr: stderr,
		Now:    time.Now,
		RunTUI: runProgram,
		Serve: func(ctx context.Context, srv *httpapi.Server, addr string) error {
			return srv.ListenAndServe(ctx, addr)
		},
	}
}

func runProgram(ctx context.Context, m update.Model) error {
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Run dispatches args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	name := "tui"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	run, ok := a.commands()[name]
	if !ok {
		fmt.Fprintf(a.Stderr, "error: unknown command: %s\n", name)
		return ExitUserError
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) || name == "help" {
			a.printUsage(fs)
			return ExitSuccess
		}
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		return ExitConfigError
	}
	if name == "help" {
		a.printUsage(fs)
		return ExitSuccess
	}

	sess, err := openSession(ctx, cfg, name == "tui", a.Stderr)
	if err != nil {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		return ExitStorageError
	}
	defer sess.close()

	if err := run(ctx, sess, fs.Args()); err != nil {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		if saveErr := sess.save(ctx); saveErr != nil {
			sess.logger.Error("save failed", "err", saveErr)
		}
		return exitCodeFor(err)
	}
	if err := sess.save(ctx); err != nil {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		return ExitStorageError
	}
	return ExitSuccess
}

func (a *App) printUsage(fs *flag.FlagSet) {
	fmt.Fprint(a.Stdout, usage)
	fs.SetOutput(a.Stdout)
	fs.PrintDefaults()
}

type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

func exitCodeFor(err error) int {
	var ue *userError
	if errors.As(err, &ue) {
		return ExitUserError
	}
	return ExitStorageError
}
