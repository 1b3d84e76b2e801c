package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubKatex stands in for katex.min.js: it tags output with the mode.
const stubKatex = `var katex = {
  renderToString: function (tex, opts) {
    if (tex === "\\bad") { throw new Error("KaTeX parse error: bad"); }
    return (opts.displayMode ? "<D>" : "<I>") + tex + "</>";
  }
};`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testCLI(t *testing.T) (CLI, string) {
	t.Helper()
	dir := t.TempDir()
	script := writeFile(t, dir, "katex.min.js", stubKatex)
	cfg := writeFile(t, dir, "config.yaml", "engine:\n  script: "+script+"\ndata:\n  site: Notes\n")
	return CLI{Config: cfg, Timeout: time.Second}, dir
}
