package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"taskchat/internal/chat"
	"taskchat/internal/config"
	"taskchat/internal/notify"
	"taskchat/internal/taskclient"
	"taskchat/internal/tasks"
)

const replHelp = `commands:
  /tasks        list tasks
  /done <n>     toggle task n from the last listing
  /rm <n>       delete task n from the last listing
  /undo         undo the last delete or update
  /count        show pending task count
  /help         show this help
  /quit         exit

anything else is sent to the assistant.`

func runChat(ctx context.Context, cfg config.Config) error {
	client := taskclient.New(cfg.ServerURL, nil, cfg.RequestTimeout)
	presenter := notify.NewPresenter(notify.WithOnChange(func(n *tasks.Notice) {
		if n == nil {
			return
		}
		prefix := "+"
		if n.Kind == tasks.NoticeError {
			prefix = "!"
		}
		fmt.Printf("%s %s\n", prefix, n.Message)
	}))
	coord := tasks.NewCoordinator(client, presenter)
	session := chat.NewSession(client, coord, presenter)

	for _, msg := range session.Messages() {
		fmt.Printf("assistant> %s\n", msg.Content)
	}
	fmt.Println(`type /help for commands`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := runReplCommand(ctx, coord, presenter, client, line)
			if err != nil {
				fmt.Printf("! %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		msg, err := session.Process(ctx, line)
		if err != nil && msg.Content == "" {
			fmt.Printf("! %v\n", err)
			continue
		}
		fmt.Printf("assistant> %s\n", msg.Content)
	}
}

func runReplCommand(ctx context.Context, coord *tasks.Coordinator, presenter *notify.Presenter, client *taskclient.Client, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Println(replHelp)
		return false, nil
	case "/tasks":
		if err := coord.Refresh(ctx); err != nil {
			return false, err
		}
		printTaskList(os.Stdout, coord.List(), time.Now())
		return false, nil
	case "/done":
		if arg == "" {
			return false, errors.New("usage: /done <n>")
		}
		id, err := resolveTaskRef(ctx, coord, arg)
		if err != nil {
			return false, err
		}
		return false, coord.Toggle(ctx, id)
	case "/rm":
		if arg == "" {
			return false, errors.New("usage: /rm <n>")
		}
		id, err := resolveTaskRef(ctx, coord, arg)
		if err != nil {
			return false, err
		}
		return false, coord.Delete(ctx, id)
	case "/undo":
		reversal := presenter.TakeReversal()
		if reversal == nil {
			return false, errors.New("nothing to undo")
		}
		return false, coord.ApplyReversal(ctx, *reversal)
	case "/count":
		count, err := client.PendingCount(ctx)
		if err != nil {
			return false, err
		}
		fmt.Printf("%d pending task(s)\n", count)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}
}
