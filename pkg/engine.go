package pkg

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dop251/goja"
)

type EngineKind string

const (
	EngineJS  EngineKind = "js"
	EngineCLI EngineKind = "cli"
)

const (
	DefaultScriptPath = "./_js/katex.min.js"
	DefaultBinary     = "katex"
	DefaultTimeout    = 10 * time.Second
)

// Engine is a compiled math renderer. One instance is built at startup and
// shared by every render call.
type Engine interface {
	RenderToString(text string, opts Options) (string, error)
}

// RenderError is a failure reported by the engine for one math source.
type RenderError struct {
	Source string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %q: %v", e.Source, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

var ErrNoRenderToString = errors.New("script does not define katex.renderToString")

type EngineConfig struct {
	Kind    EngineKind    `yaml:"kind"`
	Script  string        `yaml:"script"`
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

func NewEngine(cfg EngineConfig) (Engine, error) {
	switch cfg.Kind {
	case EngineJS, "":
		path := cfg.Script
		if path == "" {
			path = DefaultScriptPath
		}
		return LoadJSEngine(path)
	case EngineCLI:
		return NewCLIEngine(cfg.Binary, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
	}
}

// JSEngine runs the bundled KaTeX script inside goja. A goja runtime may only
// be used by one goroutine at a time, so calls are serialised.
type JSEngine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	katex  *goja.Object
	render goja.Callable
}

func LoadJSEngine(path string) (*JSEngine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading katex script: %w", err)
	}
	return CompileJSEngine(path, string(src))
}

func CompileJSEngine(name, src string) (*JSEngine, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compiling katex script: %w", err)
	}

	vm := goja.New()
	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("evaluating katex script: %w", err)
	}

	kv := vm.Get("katex")
	if kv == nil || goja.IsUndefined(kv) || goja.IsNull(kv) {
		return nil, ErrNoRenderToString
	}
	katex := kv.ToObject(vm)
	render, ok := goja.AssertFunction(katex.Get("renderToString"))
	if !ok {
		return nil, ErrNoRenderToString
	}

	return &JSEngine{vm: vm, katex: katex, render: render}, nil
}

func (e *JSEngine) RenderToString(text string, opts Options) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.vm.NewObject()
	if err := o.Set("displayMode", opts.DisplayMode); err != nil {
		return "", err
	}
	if opts.Output != "" {
		if err := o.Set("output", opts.Output); err != nil {
			return "", err
		}
	}
	if len(opts.Macros) > 0 {
		macros := e.vm.NewObject()
		for name, def := range opts.Macros {
			if err := macros.Set(name, def); err != nil {
				return "", err
			}
		}
		if err := o.Set("macros", macros); err != nil {
			return "", err
		}
	}

	res, err := e.render(e.katex, e.vm.ToValue(text), o)
	if err != nil {
		var ex *goja.Exception
		if errors.As(err, &ex) {
			return "", &RenderError{Source: text, Err: errors.New(ex.Value().String())}
		}
		return "", &RenderError{Source: text, Err: err}
	}
	out, ok := res.Export().(string)
	if !ok {
		return "", &RenderError{Source: text, Err: fmt.Errorf("renderToString returned %s, not a string", res)}
	}
	return out, nil
}
