package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/dgnsrekt/tv_watchlist/internal/api"
	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
	"github.com/dgnsrekt/tv_watchlist/internal/store"
)

func newTestClient(t *testing.T) *client {
	t.Helper()
	backups, err := backup.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("backup.NewStore() error = %v", err)
	}
	svc := controller.NewService(store.New(store.NewMemoryBlob(nil)), backups, nil)
	srv := httptest.NewServer(api.NewServer(svc))
	t.Cleanup(srv.Close)
	return &client{base: srv.URL, http: srv.Client()}
}

type runner interface {
	Run(ctx context.Context, c *client, out commandOutput) error
}

func run(t *testing.T, c *client, cmd runner) string {
	t.Helper()
	var buf bytes.Buffer
	if err := cmd.Run(context.Background(), c, commandOutput{w: &buf}); err != nil {
		t.Fatalf("%T.Run() error = %v", cmd, err)
	}
	return buf.String()
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"show"}, "show"},
		{[]string{"add", "AAPL", "-g", "Tech"}, "add"},
		{[]string{"move", "AAPL", "MSFT", "--to", "Tech"}, "move"},
		{[]string{"group", "move", "Tech/Semis"}, "group move"},
		{[]string{"group", "rename", "Tech", "Technology"}, "group rename"},
		{[]string{"backup", "list"}, "backup list"},
	}
	for _, tt := range tests {
		cli := CLI{}
		parser, err := kong.New(&cli, kong.Name("watchlistctl"), kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", tt.args) }))
		if err != nil {
			t.Fatalf("kong.New() error = %v", err)
		}
		ctx, err := parser.Parse(tt.args)
		if err != nil {
			t.Fatalf("Parse(%v) error = %v", tt.args, err)
		}
		if got := ctx.Command(); !strings.HasPrefix(got, tt.want) {
			t.Fatalf("Parse(%v) command = %q; want prefix %q", tt.args, got, tt.want)
		}
	}
}

func TestCommandsAgainstServer(t *testing.T) {
	c := newTestClient(t)

	run(t, c, &AddCmd{Symbol: "tsla", Group: "Auto"})
	run(t, c, &GroupCreateCmd{Name: "Electric", Parent: "Auto"})
	run(t, c, &MoveCmd{Symbols: []string{"TSLA"}, From: "Auto", To: "Auto/Electric"})
	run(t, c, &AddCmd{Symbol: "spy"})

	out := run(t, c, &ShowCmd{})
	for _, want := range []string{"Auto (0)", "  Electric (1)", "    TSLA", "Default (1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}

	if got := run(t, c, &LocateCmd{Symbol: "TSLA"}); got != "Auto/Electric\n" {
		t.Fatalf("locate = %q; want Auto/Electric", got)
	}
	if got := run(t, c, &UngroupedCmd{}); got != "SPY\n" {
		t.Fatalf("ungrouped = %q; want SPY", got)
	}

	out = run(t, c, &GroupDeleteCmd{Path: "Auto"})
	if !strings.Contains(out, "moved to Default: TSLA") {
		t.Fatalf("group delete output = %q", out)
	}
}

func TestCommandErrorsCarryServerDetail(t *testing.T) {
	c := newTestClient(t)
	err := (&GroupDeleteCmd{Path: "Default"}).Run(context.Background(), c, commandOutput{w: &bytes.Buffer{}})
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %v; want *apiError", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Fatalf("status = %d; want %d", apiErr.Status, http.StatusForbidden)
	}
}

func TestExportImportFiles(t *testing.T) {
	c := newTestClient(t)
	run(t, c, &AddCmd{Symbol: "NVDA", Group: "Tech/Semis"})

	file := filepath.Join(t.TempDir(), "watchlist.yaml")
	run(t, c, &ExportCmd{Format: "yaml", Output: file})
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "NVDA") {
		t.Fatalf("export file = %s; want NVDA", data)
	}

	run(t, c, &GroupDeleteCmd{Path: "Tech"})
	out := run(t, c, &ImportCmd{File: file})
	if out != "imported 3 groups, 1 symbols\n" {
		t.Fatalf("import output = %q", out)
	}

	out = run(t, c, &BackupListCmd{})
	if !strings.Contains(out, "pre-import") {
		t.Fatalf("backup list = %q; want a pre-import backup", out)
	}
}

func TestImportFormat(t *testing.T) {
	if got := importFormat("a.YML", ""); got != "yaml" {
		t.Fatalf("importFormat(a.YML) = %q; want yaml", got)
	}
	if got := importFormat("a.txt", ""); got != "json" {
		t.Fatalf("importFormat(a.txt) = %q; want json", got)
	}
	if got := importFormat("a.json", "yaml"); got != "yaml" {
		t.Fatalf("importFormat flag override = %q; want yaml", got)
	}
}
