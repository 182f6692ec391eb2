package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Cd(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Offline(ctx context.Context, args []string) error
	Gallery(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	Pause(ctx context.Context, args []string) error
	Resume(ctx context.Context, args []string) error
	Stop(ctx context.Context, args []string) error
	Transfers(ctx context.Context, args []string) error
	Color(ctx context.Context, args []string) error
	Offlines(ctx context.Context, args []string) error
	Forget(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  ls [folder]            list the current or given folder
  cd <folder>|..|/       change folder
  get <file>             download into the downloads directory
  offline <file>         keep a file in offline storage
  gallery <file>         export a file, reusing its offline copy
  preview <file> [n]     reconstruct the first n chunks and print the path
  pause|resume|stop <id> control a transfer
  transfers              list active transfers
  color <id> [color]     set or clear a color tag
  offlines               list offline files
  forget <id>            remove an offline copy
  status                 show connectivity
  login                  unlock with a password
  exit                   leave the program`

// runREPL starts a simple read–eval–print loop for the drive client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a' with the remaining tokens.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Until a is logged in only help, login and exit are accepted.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("drive %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpText)
			} else {
				printlnFn("Available commands: login, exit")
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "login":
			_ = a.Login(ctx)
			continue
		}

		if !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "l", "ls", "list":
			_ = a.List(ctx, args)
		case "cd":
			_ = a.Cd(ctx, args)
		case "get", "download":
			_ = a.Get(ctx, args)
		case "offline":
			_ = a.Offline(ctx, args)
		case "gallery":
			_ = a.Gallery(ctx, args)
		case "preview":
			_ = a.Preview(ctx, args)
		case "pause":
			_ = a.Pause(ctx, args)
		case "resume":
			_ = a.Resume(ctx, args)
		case "stop":
			_ = a.Stop(ctx, args)
		case "t", "transfers":
			_ = a.Transfers(ctx, args)
		case "color":
			_ = a.Color(ctx, args)
		case "offlines":
			_ = a.Offlines(ctx, args)
		case "forget":
			_ = a.Forget(ctx, args)
		case "status":
			_ = a.Status(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
