package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeRunner is a CommandRunner that returns canned results and records
// every call. Results are keyed by the command name plus arguments; a
// handler, when set, takes precedence and can simulate side effects.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string]Result
	calls   []Command

	// Handler, when non-nil, is consulted for every call.
	Handler func(cmd Command) (Result, error)
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: make(map[string]Result)}
}

// AddResult registers the result for name invoked with exactly args.
func (f *FakeRunner) AddResult(name string, args []string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[fakeKey(name, args)] = res
}

// Run implements CommandRunner.
func (f *FakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	handler := f.Handler
	res, ok := f.results[fakeKey(cmd.Name, cmd.Args)]
	f.mu.Unlock()

	if handler != nil {
		return handler(cmd)
	}
	if !ok {
		return Result{}, fmt.Errorf("no fake result registered for %q", cmd.String())
	}
	return res, nil
}

// Calls returns the recorded invocations in order.
func (f *FakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

func fakeKey(name string, args []string) string {
	return name + "\x00" + strings.Join(args, "\x00")
}

var _ CommandRunner = (*FakeRunner)(nil)
