package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// commands is the surface the REPL dispatches to. App satisfies it; tests
// provide a recording stub.
type commands interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Directory(ctx context.Context) error
	Items(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Mark(ctx context.Context, args []string) error
	Keep(ctx context.Context, args []string) error
	Forget(ctx context.Context, args []string) error
	Saved(ctx context.Context) error
	Clear(ctx context.Context) error
	Sync(ctx context.Context, args []string) error
	Background(ctx context.Context, args []string) error
	Interval(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
}

type usageError string

func (e usageError) Error() string {
	return "usage: " + string(e)
}

const helpText = `Available commands:
  dir                          list owners
  items <owner> [search...]    list items of an owner
  read <owner> <item>          read an item
  mark <owner> <item> [unread] mark an item read or unread
  keep <owner> <item>          download an item for offline reading
  forget <owner> <item>        remove a downloaded item
  saved                        list downloaded items
  clear                        remove every downloaded item
  sync [full]                  start a sync on the service
  bg start [hours] | bg stop   background sync on the service
  interval [hours]             show or set the sync interval
  history <owner> [limit]      sync history of an owner
  status                       connectivity, sync and storage
  login | logout               manage the access token
  exit | quit                  leave the program`

// runREPL reads one command per line from in and dispatches it to a. A
// command's error is printed and the loop continues. The loop ends on EOF,
// on "exit" or "quit", or when ctx is cancelled.
func runREPL(ctx context.Context, a commands, statusFn func() string, in *bufio.Reader, out io.Writer) {
	report := func(err error) {
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}

	for ctx.Err() == nil {
		fmt.Fprintf(out, "rk %s> ", statusFn())
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)
		case "login":
			report(a.Login(ctx))
		case "logout":
			report(a.Logout(ctx))
		case "status":
			report(a.Status(ctx))
		case "dir":
			report(a.Directory(ctx))
		case "items", "ls":
			report(a.Items(ctx, args))
		case "read":
			report(a.Read(ctx, args))
		case "mark":
			report(a.Mark(ctx, args))
		case "keep":
			report(a.Keep(ctx, args))
		case "forget":
			report(a.Forget(ctx, args))
		case "saved":
			report(a.Saved(ctx))
		case "clear":
			report(a.Clear(ctx))
		case "sync":
			report(a.Sync(ctx, args))
		case "bg":
			report(a.Background(ctx, args))
		case "interval":
			report(a.Interval(ctx, args))
		case "history":
			report(a.History(ctx, args))
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
