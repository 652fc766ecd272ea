package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/everyframe/internal/commands"
	"github.com/sandeepkv93/everyframe/internal/httpapi"
	"github.com/sandeepkv93/everyframe/internal/update"
	"github.com/sandeepkv93/everyframe/internal/views"
)

type runFunc func(ctx context.Context, sess *session, args []string) error

func (a *App) commands() map[string]runFunc {
	return map[string]runFunc{
		"tui":   a.runTUI,
		"list":  a.runList,
		"add":   a.runTracker("add"),
		"done":  a.runTracker("done"),
		"rm":    a.runTracker("rm"),
		"serve": a.runServe,
		"help":  nil,
	}
}

func (a *App) runTUI(ctx context.Context, sess *session, args []string) error {
	if len(args) > 0 {
		return userErrorf("tui takes no arguments")
	}
	m := update.NewModelWithConfig(sess.store, update.RuntimeConfig{
		TickInterval: sess.cfg.TickInterval,
		Now:          a.Now,
		Logger:       sess.logger,
	})
	return a.RunTUI(ctx, m)
}

func (a *App) runList(ctx context.Context, sess *session, args []string) error {
	if len(args) > 0 {
		return userErrorf("list takes no arguments")
	}
	if rolled := sess.store.Refresh(a.Now()); rolled > 0 {
		sess.logger.Debug("tasks rolled over", "count", rolled)
	}
	if sess.store.Len() == 0 {
		fmt.Fprintln(a.Stdout, "no tasks")
		return nil
	}
	for id, task := range sess.store.All() {
		fmt.Fprintln(a.Stdout, views.RenderTaskLine(views.TaskRowData{
			ID:    id,
			Label: task.Label(),
			Done:  task.Done,
		}))
	}
	return nil
}

// runTracker routes add, done and rm through the same parser the command
// palette uses.
func (a *App) runTracker(verb string) runFunc {
	return func(ctx context.Context, sess *session, args []string) error {
		cmd, err := commands.Parse(verb + " " + strings.Join(args, " "))
		if err != nil {
			return userErrorf("%v", err)
		}

		sess.store.Refresh(a.Now())
		res, err := commands.Execute(cmd, commands.Handlers{
			Add: func(args commands.AddArgs) (commands.Result, error) {
				id := sess.store.Insert(args.Name, args.Cadence, a.Now())
				sess.logger.Info("task added", "id", id, "cadence", args.Cadence)
				return commands.Result{Message: fmt.Sprintf("added #%d", id)}, nil
			},
			Done: func(args commands.IDArgs) (commands.Result, error) {
				if _, ok := sess.store.Get(args.ID); !ok {
					return commands.Result{}, userErrorf("no task #%d", args.ID)
				}
				sess.store.ToggleDone(args.ID)
				task, _ := sess.store.Get(args.ID)
				state := "open"
				if task.Done {
					state = "done"
				}
				return commands.Result{Message: fmt.Sprintf("#%d %s", args.ID, state)}, nil
			},
			Remove: func(args commands.IDArgs) (commands.Result, error) {
				if _, ok := sess.store.Get(args.ID); !ok {
					return commands.Result{}, userErrorf("no task #%d", args.ID)
				}
				sess.store.Remove(args.ID)
				sess.logger.Info("task removed", "id", args.ID)
				return commands.Result{Message: fmt.Sprintf("removed #%d", args.ID)}, nil
			},
		})
		if err != nil {
			var ce *commands.CommandError
			if errors.As(err, &ce) {
				return userErrorf("%v", err)
			}
			return err
		}
		fmt.Fprintln(a.Stdout, res.Message)
		return nil
	}
}

func (a *App) runServe(ctx context.Context, sess *session, args []string) error {
	if len(args) > 0 {
		return userErrorf("serve takes no arguments")
	}
	srv := httpapi.New(sess.store, sess.repo, sess.logger, httpapi.WithClock(a.Now))
	return a.Serve(ctx, srv, sess.cfg.ListenAddr)
}
