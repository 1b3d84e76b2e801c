package internal

import (
	"fmt"
	"go-katextag/pkg"
	"os"
	"time"
)

const APP_NAME = "go-katextag"

type CLI struct {
	Serve   bool          `help:"Start HTTP server mode. Mutually exclusive with file-based mode."`
	Addr    string        `name:"addr"    help:"(Optional) Listen address for server mode." default:":8080"`
	In      string        `name:"in"      help:"Path to input page."`
	Out     string        `name:"out"     help:"(Optional) Path to output file. Defaults to stdout."`
	Config  string        `name:"config"  help:"(Optional) Path to YAML config file."`
	Data    string        `name:"data"    help:"(Optional) Path to YAML data file for the template stage."`
	Watch   bool          `help:"(Optional) Re-render whenever the input, config or data file changes (file mode only)."`
	Timeout time.Duration `name:"timeout" help:"(Optional) Per-expression timeout for the cli engine." default:"10s"`
}

// LoadPipeline reads the config file, if any, and builds the pipeline with
// its engine. It is called once per process.
func LoadPipeline(c CLI) (*pkg.Pipeline, error) {
	var cfg pkg.Config
	if c.Config != "" {
		f, err := os.Open(c.Config)
		if err != nil {
			return nil, fmt.Errorf("open config error: %w", err)
		}
		defer f.Close()

		decoded, err := pkg.DecodeConfig(f)
		if err != nil {
			return nil, fmt.Errorf("config decode error: %w", err)
		}
		cfg = *decoded
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = c.Timeout
	}
	return pkg.NewPipeline(cfg)
}
