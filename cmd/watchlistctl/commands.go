package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/watchlist"
)

type commandOutput struct {
	w io.Writer
}

func (o commandOutput) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// printTree renders groups as an indented outline, one line of symbols per
// group.
func (o commandOutput) printTree(tree *watchlist.Tree) {
	tree.Walk(func(path watchlist.Path, node *watchlist.GroupNode) bool {
		indent := strings.Repeat("  ", path.Len()-1)
		line := indent + path.Leaf()
		if node.Description != "" {
			line += " - " + node.Description
		}
		o.printf("%s (%d)\n", line, len(node.Symbols))
		if len(node.Symbols) > 0 {
			o.printf("%s  %s\n", indent, strings.Join(node.Symbols, " "))
		}
		return true
	})
}

type ShowCmd struct {
	JSON bool `help:"Print the raw JSON document."`
}

func (cmd *ShowCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	if cmd.JSON {
		data, err := c.raw(ctx, http.MethodGet, "/api/v1/watchlist/export", url.Values{"format": {"json"}}, nil)
		if err != nil {
			return err
		}
		out.printf("%s\n", data)
		return nil
	}
	var tree watchlist.Tree
	if err := c.do(ctx, http.MethodGet, "/api/v1/watchlist", nil, nil, &tree); err != nil {
		return err
	}
	out.printTree(&tree)
	return nil
}

type AddCmd struct {
	Symbol string `arg:"" help:"Ticker to add."`
	Group  string `short:"g" help:"Group path, e.g. Tech/Semis. Defaults to Default."`
}

func (cmd *AddCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"symbol": cmd.Symbol, "group": cmd.Group}
	if err := c.do(ctx, http.MethodPost, "/api/v1/watchlist/add", nil, body, nil); err != nil {
		return err
	}
	group := cmd.Group
	if group == "" {
		group = watchlist.DefaultGroup
	}
	out.printf("added %s to %s\n", strings.ToUpper(strings.TrimSpace(cmd.Symbol)), group)
	return nil
}

type RemoveCmd struct {
	Symbol string `arg:"" help:"Ticker to remove."`
	Group  string `short:"g" required:"" help:"Group path holding the symbol."`
}

func (cmd *RemoveCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"symbol": cmd.Symbol, "group": cmd.Group}
	if err := c.do(ctx, http.MethodPost, "/api/v1/watchlist/remove", nil, body, nil); err != nil {
		return err
	}
	out.printf("removed %s from %s\n", strings.ToUpper(strings.TrimSpace(cmd.Symbol)), cmd.Group)
	return nil
}

type MoveCmd struct {
	Symbols []string `arg:"" help:"Tickers to move."`
	From    string   `help:"Source group path. Defaults to Default."`
	To      string   `required:"" help:"Target group path; it must exist."`
}

func (cmd *MoveCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]any{"symbols": cmd.Symbols, "from_group": cmd.From, "to_group": cmd.To}
	if err := c.do(ctx, http.MethodPost, "/api/v1/watchlist/move", nil, body, nil); err != nil {
		return err
	}
	out.printf("moved %s to %s\n", strings.Join(cmd.Symbols, ", "), cmd.To)
	return nil
}

type UngroupedCmd struct{}

func (cmd *UngroupedCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	var resp struct {
		Symbols []string `json:"symbols"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/watchlist/ungrouped", nil, nil, &resp); err != nil {
		return err
	}
	for _, sym := range resp.Symbols {
		out.printf("%s\n", sym)
	}
	return nil
}

type LocateCmd struct {
	Symbol string `arg:"" help:"Ticker to look up."`
}

func (cmd *LocateCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	var resp struct {
		Groups []string `json:"groups"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/watchlist/locate", url.Values{"symbol": {cmd.Symbol}}, nil, &resp); err != nil {
		return err
	}
	if len(resp.Groups) == 0 {
		return fmt.Errorf("%s is not in any group", cmd.Symbol)
	}
	for _, g := range resp.Groups {
		out.printf("%s\n", g)
	}
	return nil
}

// --- Groups ---

type GroupCmd struct {
	Create   GroupCreateCmd   `cmd:"" help:"Create a group."`
	Delete   GroupDeleteCmd   `cmd:"" help:"Delete a group; its symbols move to Default."`
	Rename   GroupRenameCmd   `cmd:"" help:"Rename a group in place."`
	Move     GroupMoveCmd     `cmd:"" help:"Move a group under another parent."`
	Describe GroupDescribeCmd `cmd:"" help:"Set a group description."`
}

type pathResponse struct {
	Path string `json:"path"`
}

type GroupCreateCmd struct {
	Name        string `arg:"" help:"Name of the new group."`
	Parent      string `short:"p" help:"Parent group path. Defaults to top level."`
	Description string `short:"d" help:"Informational description."`
}

func (cmd *GroupCreateCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"name": cmd.Name, "parent": cmd.Parent, "description": cmd.Description}
	var resp pathResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/groups", nil, body, &resp); err != nil {
		return err
	}
	out.printf("created %s\n", resp.Path)
	return nil
}

type GroupDeleteCmd struct {
	Path string `arg:"" help:"Group path to delete."`
}

func (cmd *GroupDeleteCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	var resp struct {
		Rescued []string `json:"rescued"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/groups", url.Values{"path": {cmd.Path}}, nil, &resp); err != nil {
		return err
	}
	out.printf("deleted %s\n", cmd.Path)
	if len(resp.Rescued) > 0 {
		out.printf("moved to %s: %s\n", watchlist.DefaultGroup, strings.Join(resp.Rescued, " "))
	}
	return nil
}

type GroupRenameCmd struct {
	Path    string `arg:"" help:"Group path to rename."`
	NewName string `arg:"" help:"New leaf name."`
}

func (cmd *GroupRenameCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"old_path": cmd.Path, "new_name": cmd.NewName}
	var resp pathResponse
	if err := c.do(ctx, http.MethodPut, "/api/v1/groups/rename", nil, body, &resp); err != nil {
		return err
	}
	out.printf("renamed %s to %s\n", cmd.Path, resp.Path)
	return nil
}

type GroupMoveCmd struct {
	Source string `arg:"" help:"Group path to move."`
	Target string `arg:"" optional:"" help:"New parent path. Omit to move to top level."`
}

func (cmd *GroupMoveCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"source_path": cmd.Source, "target_path": cmd.Target}
	var resp pathResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/groups/move", nil, body, &resp); err != nil {
		return err
	}
	out.printf("moved %s to %s\n", cmd.Source, resp.Path)
	return nil
}

type GroupDescribeCmd struct {
	Path        string `arg:"" help:"Group path."`
	Description string `arg:"" help:"New description; pass an empty string to clear."`
}

func (cmd *GroupDescribeCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	body := map[string]string{"path": cmd.Path, "description": cmd.Description}
	if err := c.do(ctx, http.MethodPut, "/api/v1/groups/description", nil, body, nil); err != nil {
		return err
	}
	out.printf("updated %s\n", cmd.Path)
	return nil
}

// --- Export / import ---

type ExportCmd struct {
	Format string `enum:"json,yaml" default:"json" help:"Output encoding (json or yaml)."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (cmd *ExportCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	data, err := c.raw(ctx, http.MethodGet, "/api/v1/watchlist/export", url.Values{"format": {cmd.Format}}, nil)
	if err != nil {
		return err
	}
	if cmd.Output == "" {
		out.printf("%s", data)
		return nil
	}
	if err := os.WriteFile(cmd.Output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Output, err)
	}
	out.printf("exported to %s\n", cmd.Output)
	return nil
}

type ImportCmd struct {
	File   string `arg:"" type:"existingfile" help:"Document to import."`
	Format string `help:"Input encoding, json or yaml. Guessed from the file extension when omitted."`
}

func importFormat(file, flag string) string {
	if flag != "" {
		return flag
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func (cmd *ImportCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.File, err)
	}
	body := map[string]string{"format": importFormat(cmd.File, cmd.Format), "document": string(data)}
	var resp struct {
		Groups  int `json:"groups"`
		Symbols int `json:"symbols"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/watchlist/import", nil, body, &resp); err != nil {
		return err
	}
	out.printf("imported %d groups, %d symbols\n", resp.Groups, resp.Symbols)
	return nil
}

// --- Backups ---

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Back up the current document."`
	List    BackupListCmd    `cmd:"" help:"List backups, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the document with a backup."`
	Delete  BackupDeleteCmd  `cmd:"" help:"Delete a backup."`
}

type BackupCreateCmd struct {
	Reason string `help:"Label stored with the backup."`
}

func (cmd *BackupCreateCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	var meta backup.Meta
	if err := c.do(ctx, http.MethodPost, "/api/v1/backups", nil, map[string]string{"reason": cmd.Reason}, &meta); err != nil {
		return err
	}
	out.printf("%s\n", meta.ID)
	return nil
}

type BackupListCmd struct{}

func (cmd *BackupListCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	var resp struct {
		Backups []backup.Meta `json:"backups"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/backups", nil, nil, &resp); err != nil {
		return err
	}
	for _, m := range resp.Backups {
		out.printf("%s  %s  %-11s groups=%d symbols=%d\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Reason, m.Groups, m.Symbols)
	}
	return nil
}

type BackupRestoreCmd struct {
	ID string `arg:"" help:"Backup ID."`
}

func (cmd *BackupRestoreCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/backups/"+url.PathEscape(cmd.ID)+"/restore", nil, nil, nil); err != nil {
		return err
	}
	out.printf("restored %s\n", cmd.ID)
	return nil
}

type BackupDeleteCmd struct {
	ID string `arg:"" help:"Backup ID."`
}

func (cmd *BackupDeleteCmd) Run(ctx context.Context, c *client, out commandOutput) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/backups/"+url.PathEscape(cmd.ID), nil, nil, nil); err != nil {
		return err
	}
	out.printf("deleted %s\n", cmd.ID)
	return nil
}
