package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"taskchat/internal/config"
	"taskchat/internal/taskstore"
)

type Deps struct {
	LoadConfig   func() config.Config
	RunServe     func(context.Context, config.Config) error
	RunMigrateUp func(context.Context, config.Config) error
	RunChat      func(context.Context, config.Config) error

	RunTaskList   func(context.Context, config.Config) error
	RunTaskAdd    func(context.Context, config.Config, taskstore.Draft) error
	RunTaskDone   func(context.Context, config.Config, string) error
	RunTaskRemove func(context.Context, config.Config, string) error
	RunTaskEdit   func(context.Context, config.Config, string, taskstore.Draft) error
	RunTaskCount  func(context.Context, config.Config) error
}

func BuildApp(deps Deps) *cli.App {
	return &cli.App{
		Name:  "taskchat",
		Usage: "chat-driven task manager",
		Action: func(ctx *cli.Context) error {
			return runChat(ctx.Context, deps)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the task store and AI proxy server",
				Action: func(ctx *cli.Context) error {
					if deps.RunServe == nil {
						return errors.New("serve runner is not configured")
					}
					return deps.RunServe(ctx.Context, loadConfig(deps))
				},
			},
			{
				Name:  "migrate",
				Usage: "run database migration",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply schema sync",
						Action: func(ctx *cli.Context) error {
							if deps.RunMigrateUp == nil {
								return errors.New("migrate runner is not configured")
							}
							return deps.RunMigrateUp(ctx.Context, loadConfig(deps))
						},
					},
				},
			},
			{
				Name:  "chat",
				Usage: "talk to the assistant to create and manage tasks",
				Action: func(ctx *cli.Context) error {
					return runChat(ctx.Context, deps)
				},
			},
			{
				Name:  "tasks",
				Usage: "work with tasks directly",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list all tasks",
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskList == nil {
								return errors.New("task list runner is not configured")
							}
							return deps.RunTaskList(ctx.Context, loadConfig(deps))
						},
					},
					{
						Name:  "add",
						Usage: "create a task",
						Flags: draftFlags(),
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskAdd == nil {
								return errors.New("task add runner is not configured")
							}
							draft, err := draftFromFlags(ctx)
							if err != nil {
								return err
							}
							return deps.RunTaskAdd(ctx.Context, loadConfig(deps), draft)
						},
					},
					{
						Name:      "done",
						Usage:     "toggle a task's completion",
						ArgsUsage: "<task-id>",
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskDone == nil {
								return errors.New("task done runner is not configured")
							}
							id := strings.TrimSpace(ctx.Args().First())
							if id == "" {
								return errors.New("task id is required")
							}
							return deps.RunTaskDone(ctx.Context, loadConfig(deps), id)
						},
					},
					{
						Name:      "rm",
						Usage:     "delete a task",
						ArgsUsage: "<task-id>",
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskRemove == nil {
								return errors.New("task remove runner is not configured")
							}
							id := strings.TrimSpace(ctx.Args().First())
							if id == "" {
								return errors.New("task id is required")
							}
							return deps.RunTaskRemove(ctx.Context, loadConfig(deps), id)
						},
					},
					{
						Name:      "edit",
						Usage:     "replace a task's fields",
						ArgsUsage: "<task-id>",
						Flags:     draftFlags(),
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskEdit == nil {
								return errors.New("task edit runner is not configured")
							}
							id := strings.TrimSpace(ctx.Args().First())
							if id == "" {
								return errors.New("task id is required")
							}
							draft, err := draftFromFlags(ctx)
							if err != nil {
								return err
							}
							return deps.RunTaskEdit(ctx.Context, loadConfig(deps), id, draft)
						},
					},
					{
						Name:  "count",
						Usage: "show the number of pending tasks",
						Action: func(ctx *cli.Context) error {
							if deps.RunTaskCount == nil {
								return errors.New("task count runner is not configured")
							}
							return deps.RunTaskCount(ctx.Context, loadConfig(deps))
						},
					},
				},
			},
		},
	}
}

func loadConfig(deps Deps) config.Config {
	if deps.LoadConfig != nil {
		return deps.LoadConfig()
	}
	return config.LoadConfig()
}

func runChat(ctx context.Context, deps Deps) error {
	if deps.RunChat == nil {
		return errors.New("chat runner is not configured")
	}
	return deps.RunChat(ctx, loadConfig(deps))
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "task title (max 50 characters)"},
		&cli.StringFlag{Name: "description", Aliases: []string{"desc"}, Usage: "task description (max 200 characters)"},
		&cli.StringFlag{Name: "priority", Value: taskstore.PriorityMedium, Usage: "low, medium or high"},
		&cli.BoolFlag{Name: "recurring", Usage: "mark the task recurring"},
		&cli.StringFlag{Name: "interval", Usage: "recurring interval, e.g. 'every 2 hours' (max 20 characters)"},
		&cli.StringFlag{Name: "due", Usage: "due date, YYYY-MM-DD or RFC3339"},
	}
}

// Field limits are enforced client-side; the server accepts its own limits.
const (
	maxTitleLen       = 50
	maxDescriptionLen = 200
	maxIntervalLen    = 20
)

func draftFromFlags(ctx *cli.Context) (taskstore.Draft, error) {
	title := strings.TrimSpace(ctx.String("title"))
	if title == "" {
		return taskstore.Draft{}, errors.New("--title is required")
	}
	if len(title) > maxTitleLen {
		return taskstore.Draft{}, errors.New("title is longer than 50 characters")
	}
	description := ctx.String("description")
	if len(description) > maxDescriptionLen {
		return taskstore.Draft{}, errors.New("description is longer than 200 characters")
	}
	interval := strings.TrimSpace(ctx.String("interval"))
	if len(interval) > maxIntervalLen {
		return taskstore.Draft{}, errors.New("interval is longer than 20 characters")
	}
	draft := taskstore.Draft{
		Title:             title,
		Description:       description,
		Priority:          ctx.String("priority"),
		Recurring:         ctx.Bool("recurring"),
		RecurringInterval: interval,
	}
	if due := strings.TrimSpace(ctx.String("due")); due != "" {
		parsed, err := parseDue(due)
		if err != nil {
			return taskstore.Draft{}, err
		}
		draft.DueDate = &parsed
	}
	return draft, nil
}

func parseDue(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("due date must be YYYY-MM-DD or RFC3339")
}
