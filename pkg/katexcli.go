package pkg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// CLIEngine renders through the katex command line tool, one process per
// math segment.
type CLIEngine struct {
	Binary  string
	Timeout time.Duration
}

func NewCLIEngine(binary string, timeout time.Duration) (*CLIEngine, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if !hasBinary(binary) {
		return nil, fmt.Errorf("%s not found in PATH", binary)
	}
	return &CLIEngine{Binary: binary, Timeout: timeout}, nil
}

func (e *CLIEngine) RenderToString(text string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	stdout, stderr, err := runCmd(ctx, strings.NewReader(text), e.Binary, cliArgs(opts)...)
	if err != nil {
		if msg := strings.TrimSpace(tail(stderr, 2000)); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &RenderError{Source: text, Err: err}
	}
	return strings.TrimRight(stdout, "\n"), nil
}

func cliArgs(opts Options) []string {
	var args []string
	if opts.DisplayMode {
		args = append(args, "--display-mode")
	}
	if opts.Output != "" {
		args = append(args, "--format", opts.Output)
	}
	names := make([]string, 0, len(opts.Macros))
	for name := range opts.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "--macro", name+":"+opts.Macros[name])
	}
	return args
}

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runCmd(ctx context.Context, stdin io.Reader, bin string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func tail(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[len(rs)-n:])
}
