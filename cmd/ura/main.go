// Command ura loads programs compiled to WebAssembly from asm/<name>.wasm
// and runs them with the ura host functions.
package main

import (
	"context"
	stdErrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nthnn/ura/application/schema"
	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
	"github.com/nthnn/ura/host"
	"github.com/nthnn/ura/infrastructure/config"
	"github.com/nthnn/ura/log"
	"github.com/nthnn/ura/server"
)

const usage = `Usage:
  ura run    [-config file] [-source dir|url] [-entry name] [-log-level level] name...
  ura serve  [-config file]
  ura pick   [-config file] [-source dir|url] [name...]
  ura schema
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "run":
		err = runCommand(ctx, args[1:], stdin, stdout, stderr)
	case "serve":
		err = serveCommand(ctx, args[1:], stderr)
	case "pick":
		err = pickCommand(ctx, args[1:], stderr)
	case "schema":
		err = schemaCommand(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case stdErrors.Is(err, flag.ErrHelp):
		return 2
	case stdErrors.Is(err, errLoggedFailure):
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if stdErrors.Is(err, errUsage) {
		return 2
	}
	return 1
}

var (
	errUsage         = stdErrors.New("usage")
	errLoggedFailure = stdErrors.New("one or more programs failed")
)

type commonFlags struct {
	configPath string
	source     string
	entry      string
	logLevel   string
}

func newFlagSet(name string, stderr io.Writer, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cf.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&cf.source, "source", "", "directory or http(s) URL holding asm/<name>.wasm")
	fs.StringVar(&cf.entry, "entry", "", "exported function to call (default _start)")
	fs.StringVar(&cf.logLevel, "log-level", "", "debug, info, warn or error")
	return fs
}

func (cf *commonFlags) load() (*entities.Config, error) {
	overrides := []entities.ConfigOption{
		entities.WithSource(cf.source),
		entities.WithEntryPoint(cf.entry),
	}
	if cf.logLevel != "" {
		overrides = append(overrides, entities.WithLogLevel(cf.logLevel))
	}
	return config.Load(cf.configPath, overrides...)
}

func runCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cf commonFlags
	fs := newFlagSet("run", stderr, &cf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: run needs at least one program name", errUsage)
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	logger := log.New(cfg.Log.Level, cfg.Log.Format, stderr)

	a, err := newApp(ctx, cfg, logger, appIO{stdin: stdin, stdout: stdout, stderr: stderr})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	tasks := make([]*host.Task, 0, fs.NArg())
	for _, name := range fs.Args() {
		tasks = append(tasks, a.loader.Launch(ctx, a.bridge, name))
	}

	failed := 0
	for _, task := range tasks {
		<-task.Done()
		if task.Err() != nil {
			failed++
			detail := errors.ToErrorDetail(task.Err())
			logger.DebugContext(ctx, "failure detail", "program", task.Name(), "type", detail.Type, "code", detail.Code)
		}
	}
	if failed > 0 {
		return errLoggedFailure
	}
	return nil
}

func serveCommand(ctx context.Context, args []string, stderr io.Writer) error {
	var cf commonFlags
	fs := newFlagSet("serve", stderr, &cf)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	logger := log.New(cfg.Log.Level, cfg.Log.Format, stderr)

	srv, err := server.New(cfg.Server, server.WithLogger(logger))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func schemaCommand(stdout io.Writer) error {
	doc, err := schema.ConfigSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(doc))
	return err
}
