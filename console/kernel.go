package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/logger"
)

// Command builds one cobra command bound to a kernel.
type Command func(k *Kernel) *cobra.Command

// Kernel runs console commands against an application.
//
// Every Call builds a new command tree, so flag values never carry over
// from one invocation to the next.
type Kernel struct {
	app      *bootstrap.App
	log      *logger.Logger
	commands []Command
	mu       sync.RWMutex
}

// NewKernel creates a kernel with the built-in commands plus commands.
func NewKernel(app *bootstrap.App, commands ...Command) *Kernel {
	k := &Kernel{
		app: app,
		log: app.Logger.WithComponent("console"),
	}
	k.Add(AboutCommand, PublishCommand, MigrateCommand, MigrateStatusCommand, MigrateResetCommand)
	k.Add(commands...)
	return k
}

// FromApp resolves the kernel bound by ServiceProvider.
func FromApp(app *bootstrap.App) (*Kernel, error) {
	return di.Resolve[*Kernel](app.Container, di.Keys.Console)
}

// App returns the application commands run against.
func (k *Kernel) App() *bootstrap.App { return k.app }

// Add registers additional commands.
func (k *Kernel) Add(commands ...Command) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.commands = append(k.commands, commands...)
}

// Root builds a fresh command tree.
func (k *Kernel) Root() *cobra.Command {
	k.mu.RLock()
	commands := append([]Command(nil), k.commands...)
	k.mu.RUnlock()

	root := &cobra.Command{
		Use:           k.app.Name,
		Short:         fmt.Sprintf("%s console", k.app.Name),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	for _, build := range commands {
		root.AddCommand(build(k))
	}
	return root
}

// Names returns the registered command names, sorted.
func (k *Kernel) Names() []string {
	var names []string
	for _, cmd := range k.Root().Commands() {
		if cmd.Name() == "help" {
			continue
		}
		names = append(names, cmd.Name())
	}
	sort.Strings(names)
	return names
}

// Call runs the command name with args and returns what it printed.
func (k *Kernel) Call(ctx context.Context, name string, args ...string) (string, error) {
	var out bytes.Buffer
	err := k.run(ctx, append([]string{name}, args...), &out)
	return out.String(), err
}

// Execute runs the command line args, printing to w.
func (k *Kernel) Execute(ctx context.Context, args []string, w io.Writer) error {
	return k.run(ctx, args, w)
}

func (k *Kernel) run(ctx context.Context, args []string, w io.Writer) error {
	root := k.Root()
	root.SetOut(w)
	root.SetErr(w)
	root.SetArgs(args)

	start := time.Now()
	cmd, err := root.ExecuteContextC(ctx)
	fields := logger.DurationFields("call", time.Since(start))
	if cmd != nil {
		fields["command"] = cmd.Name()
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		k.log.Debug("Command failed", fields)
		return err
	}
	k.log.Debug("Command finished", fields)
	return nil
}

// path resolves p against the application root. Empty means fallback.
func (k *Kernel) path(p, fallback string) string {
	switch {
	case p == "":
		return fallback
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return k.app.Path(p)
	}
}

// display shortens p to a path relative to the application root when possible.
func (k *Kernel) display(p string) string {
	rel, err := filepath.Rel(k.app.BasePath(), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}
