package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/ebpl/ebplc/config"
	"github.com/ebpl/ebplc/driver"
	"github.com/ebpl/ebplc/eval"
	"github.com/ebpl/ebplc/interp"
)

type options struct {
	showTokens bool
	showAST    bool
	run        bool
	eval       bool
	verify     bool
	jsonOut    bool
	verbose    bool
}

func main() {
	const (
		inputUsage = "input file path"
	)
	var inputPath, configPath string
	var opts options
	flag.StringVar(&inputPath, "input", "", inputUsage)
	flag.StringVar(&inputPath, "i", "", inputUsage+" (shorthand)")
	flag.StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	flag.BoolVar(&opts.showTokens, "tokens", false, "print the token listing")
	flag.BoolVar(&opts.showAST, "ast", false, "print the statement summary")
	flag.BoolVar(&opts.run, "run", false, "run the generated code with a python interpreter")
	flag.BoolVar(&opts.eval, "eval", false, "evaluate the program in-process")
	flag.BoolVar(&opts.verify, "verify", false, "check that the generated code parses as python")
	flag.BoolVar(&opts.jsonOut, "json", false, "print the compile result as JSON")
	flag.BoolVar(&opts.verbose, "v", false, "log progress to stderr")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := newApp(cfg, opts, os.Stdout)

	if inputPath == "" {
		err = app.RunPrompt()
	} else {
		err = app.RunFile(inputPath)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    config.Config
	opts   options
	out    io.Writer
	logger *log.Logger
	runner *interp.Runner
	ev     *eval.Evaluator
}

func newApp(cfg config.Config, opts options, out io.Writer) *app {
	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(os.Stderr, "ebpl: ", log.Ltime)
	}

	runner := interp.NewRunner(cfg.Interpreters...)
	runner.Timeout = cfg.Timeout
	runner.TempDir = cfg.TempDir
	runner.Logger = logger

	ev := eval.NewEvaluator(out)
	ev.MaxSteps = cfg.MaxSteps

	return &app{cfg: cfg, opts: opts, out: out, logger: logger, runner: runner, ev: ev}
}

var errCompile = errors.New("compilation failed")

// RunFile compiles the file at path and prints the requested outputs.
func (a *app) RunFile(path string) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return a.RunSource(context.Background(), string(bytes))
}

// RunSource compiles source and prints the generated code, or runs it.
func (a *app) RunSource(ctx context.Context, source string) error {
	var copts []driver.Option
	if a.opts.verify || a.cfg.Verify {
		copts = append(copts, driver.WithVerify())
	}
	compiler := driver.NewCompiler(copts...)

	start := time.Now()
	result := compiler.Compile(source)
	a.logger.Printf("compiled in %v (success=%v)", time.Since(start), result.Success)

	if a.opts.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if !result.Success {
			return errCompile
		}
		return nil
	}

	if !result.Success {
		return fmt.Errorf("%w: %s", errCompile, result.Error)
	}

	if a.opts.showTokens {
		printLines(a.out, "Tokens", result.Tokens)
	}
	if a.opts.showAST {
		printLines(a.out, "AST", result.AST)
	}

	switch {
	case a.opts.eval:
		return a.ev.Run(ctx, compiler.Program())
	case a.opts.run:
		out, err := a.runner.Run(ctx, result.GeneratedCode)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, out.Stdout)
		if out.Stderr != "" {
			fmt.Fprint(os.Stderr, out.Stderr)
		}
		if out.ExitCode != 0 {
			return fmt.Errorf("%s exited with status %d", out.Interpreter, out.ExitCode)
		}
		return nil
	default:
		fmt.Fprint(a.out, result.GeneratedCode)
		return nil
	}
}

func printLines(w io.Writer, title string, lines []string) {
	fmt.Fprintf(w, "# %s\n", title)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// RunPrompt reads programs interactively. Lines are collected until an
// empty line, then the buffer is compiled as one program.
func (a *app) RunPrompt() error {
	history := a.cfg.HistoryFile
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer func() {
		if err := os.MkdirAll(filepath.Dir(history), os.ModePerm); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if f, err := os.Create(history); err == nil {
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		line.Close()
	}()

	if f, err := os.Open(history); err == nil {
		defer f.Close()
		if _, err := line.ReadHistory(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	var buf []string
	for {
		prompt := "> "
		if len(buf) > 0 {
			prompt = ". "
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
			buf = append(buf, input)
			continue
		}
		if len(buf) == 0 {
			continue
		}

		source := strings.Join(buf, "\n")
		buf = buf[:0]
		if err := a.RunSource(context.Background(), source); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}
