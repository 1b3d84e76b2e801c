package pkg

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"text/template"
)

var ErrNoEngine = errors.New("no math engine configured")

// DefaultDelims keep template actions apart from TeX braces such as x^{{2}}.
var DefaultDelims = []string{"<<", ">>"}

type TemplOptions struct {
	LeftDelim  string
	RightDelim string
	Strict     bool
	Engine     Engine
	Katex      Options
}

func ParseTempl(r io.Reader, data map[string]interface{}, opts TemplOptions) ([]byte, error) {
	srcBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := string(srcBytes)

	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"katex": func(text string) (string, error) {
			return renderOne(opts, text, false)
		},
		"katexDisplay": func(text string) (string, error) {
			return renderOne(opts, text, true)
		},
	}

	left, right := opts.LeftDelim, opts.RightDelim
	if left == "" || right == "" {
		left, right = DefaultDelims[0], DefaultDelims[1]
	}

	tmpl := template.New("page").
		Delims(left, right).
		Funcs(funcMap)

	if opts.Strict {
		tmpl = tmpl.Option("missingkey=error")
	} else {
		tmpl = tmpl.Option("missingkey=zero")
	}

	tmpl, err = tmpl.Parse(src)
	if err != nil {
		return nil, err
	}

	var processed bytes.Buffer
	if err := tmpl.Execute(&processed, data); err != nil {
		return nil, err
	}

	return processed.Bytes(), nil
}

func renderOne(opts TemplOptions, text string, display bool) (string, error) {
	if opts.Engine == nil {
		return "", ErrNoEngine
	}
	o := opts.Katex
	o.DisplayMode = display
	return opts.Engine.RenderToString(text, o)
}
