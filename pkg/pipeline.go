package pkg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Pipeline runs a page through the template, katex and markdown stages. It
// holds the one engine instance built at startup.
type Pipeline struct {
	Engine Engine
	Config Config
}

func NewPipeline(cfg Config) (*Pipeline, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	engine, err := NewEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("engine init error: %w", err)
	}
	return &Pipeline{Engine: engine, Config: cfg}, nil
}

func (p *Pipeline) Process(r io.Reader, data map[string]interface{}) ([]byte, error) {
	katex := p.Config.KatexOptions()

	engine := p.Engine
	var held *heldEngine
	if p.Config.Markdown != "" && p.Config.Markdown != MarkdownNone {
		h, err := newHeldEngine(p.Engine)
		if err != nil {
			return nil, err
		}
		held, engine = h, h
	}

	page, err := ParseTempl(r, MergeData(p.Config.Data, data), TemplOptions{
		LeftDelim:  p.Config.Template.Delims[0],
		RightDelim: p.Config.Template.Delims[1],
		Strict:     p.Config.Template.Strict == nil || *p.Config.Template.Strict,
		Engine:     engine,
		Katex:      katex,
	})
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	expanded, err := ExpandTags(string(page), engine.RenderToString, katex)
	if err != nil {
		return nil, fmt.Errorf("katex error: %w", err)
	}

	out, err := ConvertMarkdown(p.Config.Markdown, []byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("markdown error: %w", err)
	}
	if held != nil {
		out = held.restore(out)
	}
	return out, nil
}

// heldEngine hands out opaque tokens in place of rendered markup so the
// markdown converter cannot touch it. restore swaps the markup back in.
type heldEngine struct {
	Engine
	prefix   string
	rendered []string
}

func newHeldEngine(e Engine) (*heldEngine, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("placeholder nonce: %w", err)
	}
	return &heldEngine{Engine: e, prefix: "katex" + hex.EncodeToString(nonce) + "x"}, nil
}

func (h *heldEngine) RenderToString(text string, opts Options) (string, error) {
	out, err := h.Engine.RenderToString(text, opts)
	if err != nil {
		return "", err
	}
	h.rendered = append(h.rendered, out)
	return h.token(len(h.rendered) - 1), nil
}

func (h *heldEngine) token(i int) string {
	return h.prefix + strconv.Itoa(i) + "x"
}

func (h *heldEngine) restore(b []byte) []byte {
	if len(h.rendered) == 0 {
		return b
	}
	pairs := make([]string, 0, 2*len(h.rendered))
	for i, r := range h.rendered {
		pairs = append(pairs, h.token(i), r)
	}
	return []byte(strings.NewReplacer(pairs...).Replace(string(b)))
}

// RenderMath renders a single expression with the pipeline's engine.
func (p *Pipeline) RenderMath(text string, display bool) (string, error) {
	o := p.Config.KatexOptions()
	o.DisplayMode = display
	return p.Engine.RenderToString(text, o)
}
