package internal

import (
	"fmt"
	"go-katextag/pkg"
	"os"

	"github.com/google/renameio"
)

func RunFileMode(c CLI, p *pkg.Pipeline) error {
	var data map[string]interface{}
	if c.Data != "" {
		in, err := os.Open(c.Data)
		if err != nil {
			return fmt.Errorf("open data error: %w", err)
		}
		defer in.Close()

		data, err = pkg.DecodeYaml(in)
		if err != nil {
			return fmt.Errorf("data decode error: %w", err)
		}
	}

	page, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("page open error: %w", err)
	}
	defer page.Close()

	out, err := p.Process(page, data)
	if err != nil {
		return err
	}

	if c.Out == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("output writing error: %w", err)
		}
		return nil
	}
	if err := renameio.WriteFile(c.Out, out, 0o644); err != nil {
		return fmt.Errorf("output writing error: %w", err)
	}
	return nil
}
