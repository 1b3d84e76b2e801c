package main

import (
	"context"
	"go-katextag/internal"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
)

func main() {
	var cli internal.CLI
	ctx := kong.Parse(&cli,
		kong.Name(internal.APP_NAME),
		kong.Description("Render $$-delimited math in katex blocks with KaTeX, from a file or over HTTP."),
	)

	fileMode := cli.In != ""
	if cli.Serve && (fileMode || cli.Watch) {
		ctx.Errorf("'-serve' cannot be used together with -in/-watch flags")
		os.Exit(2)
	}
	if !cli.Serve && !fileMode {
		ctx.Errorf("Either use '-serve' OR provide -in")
		ctx.PrintUsage(false)
		os.Exit(2)
	}
	if cli.Serve && (cli.Out != "" || cli.Data != "") {
		ctx.Errorf("-out and -data are only valid in file mode (omit them with -serve)")
		os.Exit(2)
	}

	p, err := internal.LoadPipeline(cli)
	if err != nil {
		slog.Error(
			"error loading renderer",
			"error", err,
		)
		os.Exit(1)
	}

	if cli.Serve {
		if err := internal.Serve(cli.Addr, p, 5*time.Second); err != nil {
			slog.Error(
				"server error",
				"error", err,
			)
			os.Exit(1)
		}
		return
	}

	if cli.Watch {
		wctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := internal.Watch(wctx, cli, p); err != nil {
			slog.Error(
				"watch error",
				"error", err,
			)
			os.Exit(1)
		}
		return
	}

	if err := internal.RunFileMode(cli, p); err != nil {
		slog.Error(
			"error running file mode",
			"error", err,
		)
		os.Exit(1)
	}
}
