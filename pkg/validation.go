package pkg

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

type ValidationError struct {
	Path string
	Err  error
}

func (ve ValidationError) Error() string {
	if ve.Path == "" {
		return ve.Err.Error()
	}
	return fmt.Sprintf("%s: %v", ve.Path, ve.Err)
}

func (ve ValidationError) Unwrap() error { return ve.Err }

type MultiError []ValidationError

func (m MultiError) Error() string {
	if len(m) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range m {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (m *MultiError) add(path string, err error) {
	if err == nil {
		return
	}
	*m = append(*m, ValidationError{Path: path, Err: err})
}

func (m MultiError) ToError() error {
	if len(m) == 0 {
		return nil
	}
	return m
}

var reMacroName = regexp.MustCompile(`^\\[a-zA-Z]+$|^\\.$`)

// Validate reports every problem in the config. Call Defaults first.
func (c *Config) Validate() error {
	var me MultiError
	me.add("engine.kind", validateEngineKind(c.Engine.Kind))
	if c.Engine.Kind == EngineJS {
		me.add("engine.script", validateScript(c.Engine.Script))
	}
	if c.Engine.Timeout < 0 {
		me.add("engine.timeout", fmt.Errorf("must be ≥ 0, got %s", c.Engine.Timeout))
	}
	me.add("katex.output", validateOutput(c.Katex.Output))
	for name := range c.Katex.Macros {
		if !reMacroName.MatchString(name) {
			me.add(fmt.Sprintf("katex.macros[%q]", name), fmt.Errorf("invalid macro name %q (expected \\name)", name))
		}
	}
	me.add("template.delims", validateDelims(c.Template.Delims))
	me.add("markdown", validateMarkdown(c.Markdown))
	return me.ToError()
}

func validateEngineKind(k EngineKind) error {
	switch k {
	case EngineJS, EngineCLI:
		return nil
	}
	return fmt.Errorf("unknown engine kind %q (expected %s or %s)", k, EngineJS, EngineCLI)
}

func validateScript(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("script path is empty")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory", path)
	}
	return nil
}

func validateOutput(s string) error {
	switch s {
	case "", "html", "mathml", "htmlAndMathml":
		return nil
	}
	return fmt.Errorf("invalid output %q (expected html, mathml or htmlAndMathml)", s)
}

func validateDelims(d []string) error {
	if len(d) != 2 {
		return fmt.Errorf("need exactly two delimiters, got %d", len(d))
	}
	if d[0] == "" || d[1] == "" {
		return fmt.Errorf("delimiters must not be empty")
	}
	if strings.Contains(d[0], Delimiter) || strings.Contains(d[1], Delimiter) {
		return fmt.Errorf("delimiters must not contain %q", Delimiter)
	}
	return nil
}

func validateMarkdown(m Markdown) error {
	switch m {
	case "", MarkdownNone, MarkdownGoldmark, MarkdownBlackfriday:
		return nil
	}
	return fmt.Errorf("unknown markdown converter %q", m)
}
