package console

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	"github.com/arcframework/arc/framework/container"
)

// Command is a console command — mirrors Illuminate\Console\Command, without
// the option parser: args arrive as the raw tail of os.Args.
type Command interface {
	Name() string
	Description() string
	Handle(ctx context.Context, args []string) error
}

var commandType = reflect.TypeOf((*Command)(nil)).Elem()

// Kernel dispatches console commands — Laravel's Console\Kernel. Commands are
// registered by constructor and built through the container per run, so their
// dependencies (including scoped ones) resolve fresh for every invocation.
type Kernel struct {
	app *container.Container
	out io.Writer

	mu       sync.RWMutex
	commands map[string]func(ctx context.Context) (Command, error)
	names    []string
}

// NewKernel creates a kernel bound to the application container.
func NewKernel(app *container.Container, out io.Writer) *Kernel {
	return &Kernel{
		app:      app,
		out:      out,
		commands: make(map[string]func(ctx context.Context) (Command, error)),
	}
}

// Register adds a command constructor. Its dependencies are
// container-resolved on every run; its return type must implement Command.
//
//	kernel.Register("cache:clear", func(repo *cache.Repository) *ClearCacheCommand {
//	    return &ClearCacheCommand{repo: repo}
//	})
func (k *Kernel) Register(name string, constructor any) error {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func || t.NumOut() < 1 {
		return fmt.Errorf("console: register %q: constructor must be a function returning a Command", name)
	}
	concrete := t.Out(0)
	if !concrete.Implements(commandType) {
		return fmt.Errorf("console: register %q: %s does not implement Command", name, concrete)
	}
	if err := k.app.Bind(container.Transient, constructor); err != nil {
		return fmt.Errorf("console: register %q: %w", name, err)
	}

	return k.add(name, func(ctx context.Context) (Command, error) {
		v, err := k.app.Resolve(ctx, concrete)
		if err != nil {
			return nil, err
		}
		return v.(Command), nil
	})
}

// Add registers an already-built command instance under its own name.
func (k *Kernel) Add(cmd Command) error {
	return k.add(cmd.Name(), func(context.Context) (Command, error) { return cmd, nil })
}

func (k *Kernel) add(name string, build func(ctx context.Context) (Command, error)) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.commands[name]; ok {
		return fmt.Errorf("console: command %q already registered", name)
	}
	k.commands[name] = build
	k.names = append(k.names, name)
	return nil
}

// Run dispatches args[0] as the command name with the rest as its arguments.
// Each run gets its own container scope, disposed when the command returns.
// With no args (or "list") it prints the available commands.
func (k *Kernel) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return k.list(ctx)
	}

	name := args[0]
	k.mu.RLock()
	build, ok := k.commands[name]
	k.mu.RUnlock()
	if !ok {
		return fmt.Errorf("console: unknown command %q", name)
	}

	ctx, scope := container.WithScope(ctx)
	defer func() { _ = scope.Close(ctx) }()

	cmd, err := build(ctx)
	if err != nil {
		return fmt.Errorf("console: building %q: %w", name, err)
	}
	return cmd.Handle(ctx, args[1:])
}

func (k *Kernel) list(ctx context.Context) error {
	k.mu.RLock()
	names := make([]string, len(k.names))
	copy(names, k.names)
	k.mu.RUnlock()
	sort.Strings(names)

	fmt.Fprintln(k.out, "Available commands:")
	for _, name := range names {
		k.mu.RLock()
		build := k.commands[name]
		k.mu.RUnlock()

		desc := ""
		if cmd, err := build(ctx); err == nil {
			desc = cmd.Description()
		}
		fmt.Fprintf(k.out, "  %-24s %s\n", name, desc)
	}
	return nil
}
