package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dgnsrekt/tv_watchlist/internal/config"
)

// CLI is the top-level command structure for watchlistctl.
type CLI struct {
	URL   string `help:"Base URL of watchlistd. Defaults to WATCHLIST_URL or http://127.0.0.1:8190." placeholder:"URL"`
	Debug bool   `help:"Enable debug logging."`

	Show      ShowCmd      `cmd:"" help:"Print the group tree."`
	Add       AddCmd       `cmd:"" help:"Add a symbol to a group."`
	Remove    RemoveCmd    `cmd:"" help:"Remove a symbol from a group."`
	Move      MoveCmd      `cmd:"" help:"Move symbols from one group to another."`
	Group     GroupCmd     `cmd:"" help:"Create, delete, rename, move or describe groups."`
	Ungrouped UngroupedCmd `cmd:"" help:"List Default symbols that no other group holds."`
	Locate    LocateCmd    `cmd:"" help:"List the groups holding a symbol."`
	Export    ExportCmd    `cmd:"" help:"Write the document as JSON or YAML."`
	Import    ImportCmd    `cmd:"" help:"Replace the document from a JSON or YAML file."`
	Backup    BackupCmd    `cmd:"" help:"Manage backups."`
}

func main() {
	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("watchlistctl"),
		kong.Description("Command-line client for the watchlist daemon."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "watchlistctl: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogger(cli.Debug)

	cfg, err := config.LoadClient()
	ctx.FatalIfErrorf(err)
	base := cfg.BaseURL
	if cli.URL != "" {
		base = strings.TrimRight(cli.URL, "/")
	}
	slog.Debug("using watchlistd", "url", base)

	ctx.Bind(&client{base: base, http: &http.Client{Timeout: cfg.Timeout}})
	ctx.BindTo(context.Background(), (*context.Context)(nil))
	ctx.Bind(commandOutput{w: os.Stdout})

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
