package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) List(ctx context.Context, args []string) error   { return f.record("list", args) }
func (f *fakeExec) Cd(ctx context.Context, args []string) error     { return f.record("cd", args) }
func (f *fakeExec) Get(ctx context.Context, args []string) error    { return f.record("get", args) }
func (f *fakeExec) Offline(ctx context.Context, args []string) error {
	return f.record("offline", args)
}
func (f *fakeExec) Gallery(ctx context.Context, args []string) error {
	return f.record("gallery", args)
}
func (f *fakeExec) Preview(ctx context.Context, args []string) error {
	return f.record("preview", args)
}
func (f *fakeExec) Pause(ctx context.Context, args []string) error  { return f.record("pause", args) }
func (f *fakeExec) Resume(ctx context.Context, args []string) error { return f.record("resume", args) }
func (f *fakeExec) Stop(ctx context.Context, args []string) error   { return f.record("stop", args) }
func (f *fakeExec) Transfers(ctx context.Context, args []string) error {
	return f.record("transfers", args)
}
func (f *fakeExec) Color(ctx context.Context, args []string) error { return f.record("color", args) }
func (f *fakeExec) Offlines(ctx context.Context, args []string) error {
	return f.record("offlines", args)
}
func (f *fakeExec) Forget(ctx context.Context, args []string) error { return f.record("forget", args) }
func (f *fakeExec) Status(ctx context.Context, args []string) error { return f.record("status", args) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		s := fmt.Sprintln(a...)
		lines = append(lines, s)
		return len(s), nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"ls",
		"login",
		"help",
		"ls",
		"cd Photos 2024",
		"get abc",
		"offline abc",
		"gallery abc",
		"preview abc 2",
		"pause abc",
		"resume abc",
		"stop abc",
		"t",
		"color abc red",
		"offlines",
		"forget abc",
		"status",
		"foobar",
		"exit",
		"ls",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{
		"login", "list", "cd", "get", "offline", "gallery", "preview",
		"pause", "resume", "stop", "transfers", "color", "offlines", "forget", "status",
	}
	assert.Equal(t, want, exec.calls)
	assert.Equal(t, []string{"Photos", "2024"}, exec.args["cd"])
	assert.Equal(t, []string{"abc", "2"}, exec.args["preview"])
	assert.Equal(t, []string{"abc", "red"}, exec.args["color"])

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Please login first")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
	assert.Contains(t, joined, "drive status > ")
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("\n   \nls")))

	assert.Equal(t, []string{"list"}, exec.calls)
}
