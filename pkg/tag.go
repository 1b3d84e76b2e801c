package pkg

import (
	"fmt"
	"regexp"
	"strings"
)

const displayMarker = "display"

// Optional dashes are Liquid whitespace control: {%- trims before the tag,
// -%} after it.
var reTag = regexp.MustCompile(`\{%(-?)\s*(katex|endkatex)\b([^%]*?)\s*(-?)%\}`)

const liquidSpace = " \t\r\n"

type TagError struct {
	Line int
	Msg  string
	Err  error
}

func (e *TagError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *TagError) Unwrap() error { return e.Err }

// DisplayMode reports whether a block's markup asks for display rendering.
func DisplayMode(markup string) bool {
	return strings.Contains(markup, displayMarker)
}

// ExpandTags replaces every {% katex MARKUP %}BODY{% endkatex %} block of src
// with the rendered body. Text outside blocks is copied unchanged.
func ExpandTags(src string, fn RenderFunc, opts Options) (string, error) {
	var out strings.Builder
	out.Grow(len(src))

	locs := reTag.FindAllStringSubmatchIndex(src, -1)
	pos := 0
	open := -1
	var markup string

	for _, loc := range locs {
		text := src[pos:loc[0]]
		if loc[3] > loc[2] {
			text = strings.TrimRight(text, liquidSpace)
		}
		switch src[loc[4]:loc[5]] {
		case "katex":
			if open >= 0 {
				return "", &TagError{Line: lineAt(src, loc[0]), Msg: "nested katex block"}
			}
			out.WriteString(text)
			markup = strings.TrimSpace(src[loc[6]:loc[7]])
			open = loc[0]
		case "endkatex":
			if open < 0 {
				return "", &TagError{Line: lineAt(src, loc[0]), Msg: "endkatex without katex"}
			}
			o := opts
			o.DisplayMode = DisplayMode(markup)
			rendered, err := RenderWith(text, o, fn)
			if err != nil {
				return "", &TagError{Line: lineAt(src, open), Msg: "katex block", Err: err}
			}
			out.WriteString(rendered)
			open = -1
		}
		pos = loc[1]
		if loc[9] > loc[8] {
			pos += len(src[pos:]) - len(strings.TrimLeft(src[pos:], liquidSpace))
		}
	}
	if open >= 0 {
		return "", &TagError{Line: lineAt(src, open), Msg: "unterminated katex block"}
	}
	out.WriteString(src[pos:])
	return out.String(), nil
}

func lineAt(src string, off int) int {
	return strings.Count(src[:off], "\n") + 1
}
