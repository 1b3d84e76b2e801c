package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
engine:
  kind: cli
  binary: /usr/local/bin/katex
  timeout: 3s
katex:
  output: mathml
  macros:
    "\\RR": "\\mathbb{R}"
template:
  delims: ["<<", ">>"]
  strict: false
markdown: goldmark
data:
  title: Notes
`

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, EngineCLI, cfg.Engine.Kind)
	assert.Equal(t, "/usr/local/bin/katex", cfg.Engine.Binary)
	assert.Equal(t, 3*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "mathml", cfg.Katex.Output)
	assert.Equal(t, map[string]string{`\RR`: `\mathbb{R}`}, cfg.Katex.Macros)
	assert.Equal(t, []string{"<<", ">>"}, cfg.Template.Delims)
	require.NotNil(t, cfg.Template.Strict)
	assert.False(t, *cfg.Template.Strict)
	assert.Equal(t, MarkdownGoldmark, cfg.Markdown)
	assert.Equal(t, "Notes", cfg.Data["title"])

	assert.Equal(t, Options{Output: "mathml", Macros: cfg.Katex.Macros}, cfg.KatexOptions())
}

func TestDecodeConfigUnknownField(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader("engine:\n  kind: js\n  scritp: x.js\n"))
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	assert.Equal(t, EngineJS, cfg.Engine.Kind)
	assert.Equal(t, DefaultScriptPath, cfg.Engine.Script)
	assert.Equal(t, DefaultBinary, cfg.Engine.Binary)
	assert.Equal(t, DefaultTimeout, cfg.Engine.Timeout)
	assert.Equal(t, DefaultDelims, cfg.Template.Delims)
	require.NotNil(t, cfg.Template.Strict)
	assert.True(t, *cfg.Template.Strict)
	assert.Equal(t, MarkdownNone, cfg.Markdown)
}

func TestConfigValidate(t *testing.T) {
	script := filepath.Join(t.TempDir(), "katex.min.js")
	require.NoError(t, os.WriteFile(script, []byte("var katex;"), 0o644))

	cfg := Config{Engine: EngineConfig{Script: script}}
	cfg.Defaults()
	assert.NoError(t, cfg.Validate())

	bad := Config{
		Engine:   EngineConfig{Kind: "mathjax", Timeout: -time.Second},
		Katex:    KatexConfig{Output: "svg", Macros: map[string]string{"RR": "x"}},
		Template: TemplateConfig{Delims: []string{"$$", "}}"}},
		Markdown: "pandoc",
	}
	bad.Defaults()
	err := bad.Validate()
	var me MultiError
	require.ErrorAs(t, err, &me)

	var paths []string
	for _, ve := range me {
		paths = append(paths, ve.Path)
	}
	assert.ElementsMatch(t, []string{
		"engine.kind",
		"engine.timeout",
		"katex.output",
		`katex.macros["RR"]`,
		"template.delims",
		"markdown",
	}, paths)
	assert.Contains(t, err.Error(), `engine.kind: unknown engine kind "mathjax"`)
}

func TestConfigValidateMissingScript(t *testing.T) {
	cfg := Config{Engine: EngineConfig{Script: filepath.Join(t.TempDir(), "nope.js")}}
	cfg.Defaults()
	err := cfg.Validate()
	var me MultiError
	require.ErrorAs(t, err, &me)
	require.Len(t, me, 1)
	assert.Equal(t, "engine.script", me[0].Path)
	assert.ErrorIs(t, me[0], os.ErrNotExist)
}

func TestDecodeData(t *testing.T) {
	y, err := DecodeYaml(strings.NewReader("title: Hi\nn: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "Hi", "n": 3}, y)

	j, err := DecodeJson(strings.NewReader(`{"title":"Hi"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "Hi"}, j)

	_, err = DecodeJson(strings.NewReader(`{"title":`))
	assert.Error(t, err)
}

func TestMergeData(t *testing.T) {
	base := map[string]interface{}{"a": 1, "b": 2}
	got := MergeData(base, map[string]interface{}{"b": 3, "c": 4})
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, 2, base["b"], "base is not modified")
	assert.Empty(t, MergeData(nil, nil))
}
