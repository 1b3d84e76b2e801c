package pkg

import (
	"bytes"
	"fmt"

	"github.com/russross/blackfriday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Markdown string

const (
	MarkdownNone        Markdown = "none"
	MarkdownGoldmark    Markdown = "goldmark"
	MarkdownBlackfriday Markdown = "blackfriday"
)

// KaTeX output is raw HTML, so the goldmark renderer must not drop it.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

func ConvertMarkdown(kind Markdown, src []byte) ([]byte, error) {
	switch kind {
	case "", MarkdownNone:
		return src, nil
	case MarkdownGoldmark:
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case MarkdownBlackfriday:
		return blackfriday.Run(src, blackfriday.WithExtensions(blackfriday.CommonExtensions)), nil
	default:
		return nil, fmt.Errorf("unknown markdown converter %q", kind)
	}
}
