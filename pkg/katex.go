package pkg

import (
	"strings"
)

// Delimiter toggles between plain text and math.
const Delimiter = "$$"

type Options struct {
	DisplayMode bool
	Output      string
	Macros      map[string]string
}

// RenderFunc turns one math source into rendered markup.
type RenderFunc func(text string, opts Options) (string, error)

type Segment struct {
	Text string
	Math bool
}

// Render replaces every math segment of raw with fn's output. Segments
// alternate plain, math, plain, ... starting at the beginning of raw. A
// trailing segment without a closing delimiter runs to end-of-text and keeps
// its role, so "a$$b" still renders "b".
func Render(raw string, displayMode bool, fn RenderFunc) (string, error) {
	return RenderWith(raw, Options{DisplayMode: displayMode}, fn)
}

func RenderWith(raw string, opts Options, fn RenderFunc) (string, error) {
	var out strings.Builder
	out.Grow(len(raw))

	math := false
	rest := raw
	for {
		buf, tail, found := strings.Cut(rest, Delimiter)
		if math {
			rendered, err := fn(buf, opts)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		} else {
			out.WriteString(buf)
		}
		math = !math
		if !found {
			break
		}
		rest = tail
	}
	return out.String(), nil
}

// Split performs the same scan as Render without rendering anything.
func Split(raw string) []Segment {
	var segs []Segment
	math := false
	rest := raw
	for {
		buf, tail, found := strings.Cut(rest, Delimiter)
		segs = append(segs, Segment{Text: buf, Math: math})
		math = !math
		if !found {
			return segs
		}
		rest = tail
	}
}
