package pkg

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Engine   EngineConfig           `yaml:"engine"`
	Katex    KatexConfig            `yaml:"katex"`
	Template TemplateConfig         `yaml:"template"`
	Markdown Markdown               `yaml:"markdown"`
	Data     map[string]interface{} `yaml:"data"`
}

type KatexConfig struct {
	Output string            `yaml:"output"`
	Macros map[string]string `yaml:"macros"`
}

type TemplateConfig struct {
	Delims []string `yaml:"delims"`
	Strict *bool    `yaml:"strict"`
}

func (c *Config) Defaults() {
	if c.Engine.Kind == "" {
		c.Engine.Kind = EngineJS
	}
	if c.Engine.Script == "" {
		c.Engine.Script = DefaultScriptPath
	}
	if c.Engine.Binary == "" {
		c.Engine.Binary = DefaultBinary
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = DefaultTimeout
	}
	if len(c.Template.Delims) == 0 {
		c.Template.Delims = append([]string(nil), DefaultDelims...)
	}
	if c.Template.Strict == nil {
		strict := true
		c.Template.Strict = &strict
	}
	if c.Markdown == "" {
		c.Markdown = MarkdownNone
	}
}

func (c *Config) KatexOptions() Options {
	return Options{Output: c.Katex.Output, Macros: c.Katex.Macros}
}

func DecodeConfig(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func DecodeYaml(r io.Reader) (map[string]interface{}, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func DecodeJson(r io.Reader) (map[string]interface{}, error) {
	var data map[string]interface{}
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// MergeData overlays page data on the config's data block.
func MergeData(base, page map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(page))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range page {
		out[k] = v
	}
	return out
}
