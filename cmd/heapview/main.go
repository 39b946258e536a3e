package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-heap/coerce"
	"github.com/wippyai/wasm-heap/heap"
	"github.com/wippyai/wasm-heap/module"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Guest module exporting memory and an allocator (default: in-process bump heap)")
		memory      = flag.String("memory", "", "Memory export name (default: first exported memory)")
		execCmds    = flag.String("exec", "", "Commands to run, separated by ';'")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	heap.SetLogger(log)
	coerce.SetLogger(log)
	module.SetLogger(log)

	if err := run(*wasmFile, *memory, *execCmds, *interactive, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr. Without -v only warnings and errors show, which
// still includes coercion warnings.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func run(wasmFile, memory, execCmds string, interactive bool, log *zap.Logger) (err error) {
	ctx := context.Background()

	sess, err := openSession(ctx, wasmFile, memory, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	switch {
	case interactive:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal on stdin")
		}
		return runInteractive(sess, wasmFile)
	case execCmds != "":
		return runScript(os.Stdout, sess, execCmds)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return runScript(os.Stdout, sess, string(data))
	}

	fmt.Fprintln(os.Stderr, "Usage: heapview [-wasm <file.wasm>] -exec 'alloc f64 4; fill 0 1.5; show 0'")
	fmt.Fprintln(os.Stderr, "       heapview [-wasm <file.wasm>] -i  (interactive mode)")
	fmt.Fprintln(os.Stderr, "       heapview [-wasm <file.wasm>] < script")
	return nil
}

func openSession(ctx context.Context, wasmFile, memory string, log *zap.Logger) (*session, error) {
	if wasmFile == "" {
		return newSession(module.NewBump(module.DefaultBumpOptions()), log, nil), nil
	}

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	w, err := module.Instantiate(ctx, data, module.WazeroOptions{Memory: memory})
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}
	log.Debug("guest instantiated",
		zap.String("file", wasmFile),
		zap.Uint32("memory", w.Memory().Size()))
	return newSession(w, log, func() error { return w.Close(ctx) }), nil
}

func runScript(w io.Writer, sess *session, src string) error {
	out, err := sess.script(src)
	if out != "" {
		fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	}
	return err
}
