package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/driver"
	"github.com/Lattyware/montyweightjava/pkg/interpreter"
)

const cliToolVersion = "mj 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

// options holds flag values; zero values defer to mj.yml.
type options struct {
	config   string
	trace    string
	main     string
	maxSteps int64
	maxDepth int
	steps    int
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		c.printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return c.runCommand("run", args[1:])
	case "check":
		return c.checkCommand(args[1:])
	case "parse":
		return c.parseCommand(args[1:])
	case "step":
		return c.stepCommand(args[1:])
	default:
		return c.runCommand("run", args)
	}
}

func (c *cli) printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage:
  mj run [--config file] [--trace level] [--main Class] [--max-steps N] [--max-depth N] <file.mj>
  mj check <file.mj>
  mj parse <file.mj>
  mj step [--steps N] [--main Class] <file.mj>
  mj <file.mj>                 same as mj run

exit codes: 0 ok, 1 usage/io/config, 2 lexical, 3 syntax, 4 semantic, 5 runtime`)
}

func (c *cli) flags(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&opts.config, "config", "", "configuration file (default: mj.yml next to the source)")
	fs.StringVar(&opts.trace, "trace", "", "trace level: error, info or debug")
	return fs
}

// parse reads flags and expects exactly one source file.
func (c *cli) parse(fs *flag.FlagSet, args []string) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		if fs.NArg() == 0 {
			fmt.Fprintf(c.stderr, "%s requires a source file\n", fs.Name())
		} else {
			fmt.Fprintf(c.stderr, "unexpected arguments: %s\n", strings.Join(fs.Args()[1:], " "))
		}
		return "", false
	}
	return fs.Arg(0), true
}

// configure loads mj.yml, applies flag overrides and installs tracing.
func (c *cli) configure(path string, opts *options) (*driver.Config, error) {
	var cfg *driver.Config
	var err error
	if opts.config != "" {
		cfg, err = driver.LoadConfig(opts.config)
	} else {
		cfg, err = driver.FindConfig(path)
	}
	if err != nil {
		return nil, err
	}
	if opts.trace != "" {
		cfg.Trace = opts.trace
	}
	if opts.main != "" {
		cfg.Main = opts.main
	}
	if opts.maxSteps > 0 {
		cfg.Limits.MaxSteps = opts.maxSteps
	}
	if opts.maxDepth > 0 {
		cfg.Limits.MaxCallDepth = opts.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := driver.ConfigureTracing(cfg.Trace, c.stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) fail(path string, err error) int {
	fmt.Fprintln(c.stderr, driver.FormatError(path, err))
	return driver.ExitCode(err)
}

func (c *cli) runCommand(name string, args []string) int {
	var opts options
	fs := c.flags(name, &opts)
	fs.StringVar(&opts.main, "main", "", "class whose static void main() runs")
	fs.Int64Var(&opts.maxSteps, "max-steps", 0, "stop after N statements (0 = unlimited)")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "maximum call depth before StackOverflow")
	path, ok := c.parse(fs, args)
	if !ok {
		return 1
	}
	cfg, err := c.configure(path, &opts)
	if err != nil {
		return c.fail(path, err)
	}
	prog, err := driver.CompileFile(path)
	if err != nil {
		return c.fail(path, err)
	}
	interp := interpreter.New(prog, append(cfg.Options(), interpreter.WithStdout(c.stdout))...)
	if err := interp.Run(); err != nil {
		return c.fail(path, err)
	}
	return 0
}

func (c *cli) checkCommand(args []string) int {
	var opts options
	fs := c.flags("check", &opts)
	path, ok := c.parse(fs, args)
	if !ok {
		return 1
	}
	if _, err := c.configure(path, &opts); err != nil {
		return c.fail(path, err)
	}
	if _, err := driver.CompileFile(path); err != nil {
		return c.fail(path, err)
	}
	fmt.Fprintln(c.stdout, "ok")
	return 0
}

func (c *cli) parseCommand(args []string) int {
	var opts options
	fs := c.flags("parse", &opts)
	path, ok := c.parse(fs, args)
	if !ok {
		return 1
	}
	if _, err := c.configure(path, &opts); err != nil {
		return c.fail(path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return c.fail(path, err)
	}
	unit, err := driver.Parse(string(src))
	if err != nil {
		return c.fail(path, err)
	}
	fmt.Fprint(c.stdout, ast.Dump(unit))
	return 0
}

// stepCommand runs under the debugger, printing the location and a YAML
// snapshot before every statement.
func (c *cli) stepCommand(args []string) int {
	var opts options
	fs := c.flags("step", &opts)
	fs.StringVar(&opts.main, "main", "", "class whose static void main() runs")
	fs.IntVar(&opts.steps, "steps", 0, "stop after N steps (0 = run to the end)")
	path, ok := c.parse(fs, args)
	if !ok {
		return 1
	}
	cfg, err := c.configure(path, &opts)
	if err != nil {
		return c.fail(path, err)
	}
	prog, err := driver.CompileFile(path)
	if err != nil {
		return c.fail(path, err)
	}
	interp := interpreter.New(prog, append(cfg.Options(), interpreter.WithStdout(c.stdout))...)
	debugger := interpreter.NewDebugger(interp)
	for count := 1; ; count++ {
		more, err := debugger.Step()
		if err != nil {
			return c.fail(path, err)
		}
		if !more {
			return 0
		}
		text, err := debugger.Snapshot().YAML()
		if err != nil {
			return c.fail(path, err)
		}
		fmt.Fprintf(c.stdout, "--- step %d: %s\n%s", count, debugger.Location(), text)
		if opts.steps > 0 && count >= opts.steps {
			err := debugger.Abort()
			if err == nil || errors.Is(err, interpreter.ErrAborted) {
				return 0
			}
			return c.fail(path, err)
		}
	}
}
