package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/journal"
	"github.com/dgnsrekt/tv_watchlist/internal/store"
	"github.com/dgnsrekt/tv_watchlist/internal/watchlist"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Service runs watchlist operations against the store, journals every
// committed mutation and manages backups of the document.
type Service struct {
	store   *store.Store
	backups *backup.Store
	journal journal.Recorder
}

func NewService(st *store.Store, backups *backup.Store, rec journal.Recorder) *Service {
	if rec == nil {
		rec = journal.Nop{}
	}
	return &Service{store: st, backups: backups, journal: rec}
}

// Summary is the read model returned after a mutation.
type Summary struct {
	Groups  int `json:"groups"`
	Symbols int `json:"symbols"`
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return watchlist.NewError(watchlist.CodeValidation, fieldName+" is required", nil)
	}
	return nil
}

func (s *Service) record(ctx context.Context, op string, args map[string]string, result string) {
	err := s.journal.Record(journal.Entry{
		Op:        op,
		Args:      args,
		Result:    result,
		RequestID: middleware.GetReqID(ctx),
	})
	if err != nil {
		slog.Debug("journal record failed", "op", op, "error", err)
	}
}

func parsePath(raw, field string) (watchlist.Path, error) {
	p, err := watchlist.ParsePath(raw)
	if err != nil {
		return watchlist.Path{}, fmt.Errorf("%s: %w", field, err)
	}
	return p, nil
}

// groupOrDefault parses an optional group path; blank means Default.
func groupOrDefault(raw, field string) (watchlist.Path, error) {
	if strings.TrimSpace(raw) == "" {
		return watchlist.DefaultPath, nil
	}
	return parsePath(raw, field)
}

func (s *Service) GetWatchlist(ctx context.Context) (*watchlist.Tree, error) {
	return s.store.Snapshot(ctx)
}

func (s *Service) Stats(ctx context.Context) (Summary, error) {
	tree, err := s.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	groups, symbols := watchlist.Stats(tree)
	return Summary{Groups: groups, Symbols: symbols}, nil
}

func (s *Service) AddSymbol(ctx context.Context, symbol, group string) (*watchlist.Tree, error) {
	if err := s.requireNonEmpty(symbol, "symbol"); err != nil {
		return nil, err
	}
	symbol, err := watchlist.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	path, err := groupOrDefault(group, "group")
	if err != nil {
		return nil, err
	}
	tree, err := s.store.Update(ctx, func(t *watchlist.Tree) error {
		return watchlist.AddSymbol(t, symbol, path)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "add-symbol", map[string]string{"symbol": symbol, "group": path.String()}, "")
	return tree, nil
}

func (s *Service) RemoveSymbol(ctx context.Context, group, symbol string) (*watchlist.Tree, error) {
	if err := s.requireNonEmpty(group, "group"); err != nil {
		return nil, err
	}
	symbol, err := watchlist.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	path, err := parsePath(group, "group")
	if err != nil {
		return nil, err
	}
	tree, err := s.store.Update(ctx, func(t *watchlist.Tree) error {
		return watchlist.RemoveSymbol(t, path, symbol)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "remove-symbol", map[string]string{"symbol": symbol, "group": path.String()}, "")
	return tree, nil
}

// MoveSymbols moves symbols between two groups. A blank source means Default.
func (s *Service) MoveSymbols(ctx context.Context, symbols []string, from, to string) (*watchlist.Tree, error) {
	if len(symbols) == 0 {
		return nil, watchlist.NewError(watchlist.CodeValidation, "symbol is required", nil)
	}
	normalized := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		sym, err := watchlist.NormalizeSymbol(raw)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, sym)
	}
	symbols = normalized
	if err := s.requireNonEmpty(to, "to_group"); err != nil {
		return nil, err
	}
	fromPath, err := groupOrDefault(from, "from_group")
	if err != nil {
		return nil, err
	}
	toPath, err := parsePath(to, "to_group")
	if err != nil {
		return nil, err
	}
	tree, err := s.store.Update(ctx, func(t *watchlist.Tree) error {
		return watchlist.MoveSymbols(t, symbols, fromPath, toPath)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "move-symbols", map[string]string{
		"symbols": strings.Join(symbols, ","),
		"from":    fromPath.String(),
		"to":      toPath.String(),
	}, "")
	return tree, nil
}

func (s *Service) MoveSymbol(ctx context.Context, symbol, from, to string) (*watchlist.Tree, error) {
	if err := s.requireNonEmpty(symbol, "symbol"); err != nil {
		return nil, err
	}
	return s.MoveSymbols(ctx, []string{symbol}, from, to)
}

func (s *Service) Ungrouped(ctx context.Context) ([]string, error) {
	tree, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return watchlist.Ungrouped(tree), nil
}

func (s *Service) Locate(ctx context.Context, symbol string) ([]string, error) {
	if err := s.requireNonEmpty(symbol, "symbol"); err != nil {
		return nil, err
	}
	tree, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return watchlist.Locate(tree, symbol)
}

// --- Group methods ---

func (s *Service) CreateGroup(ctx context.Context, name, description, parent string) (string, error) {
	parentPath, err := parsePath(parent, "parent")
	if err != nil {
		return "", err
	}
	var created watchlist.Path
	_, err = s.store.Update(ctx, func(t *watchlist.Tree) error {
		var err error
		created, err = watchlist.CreateGroup(t, name, strings.TrimSpace(description), parentPath)
		return err
	})
	if err != nil {
		return "", err
	}
	s.record(ctx, "create-group", map[string]string{"name": name, "parent": parentPath.String()}, created.String())
	return created.String(), nil
}

// DeleteGroup removes a group and returns the symbols rescued into Default.
func (s *Service) DeleteGroup(ctx context.Context, path string) ([]string, error) {
	if err := s.requireNonEmpty(path, "path"); err != nil {
		return nil, err
	}
	p, err := parsePath(path, "path")
	if err != nil {
		return nil, err
	}
	var rescued []string
	_, err = s.store.Update(ctx, func(t *watchlist.Tree) error {
		var err error
		rescued, err = watchlist.DeleteGroup(t, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "delete-group", map[string]string{"path": p.String()}, strings.Join(rescued, ","))
	return rescued, nil
}

func (s *Service) RenameGroup(ctx context.Context, path, newName string) (string, error) {
	if err := s.requireNonEmpty(path, "old_path"); err != nil {
		return "", err
	}
	p, err := parsePath(path, "old_path")
	if err != nil {
		return "", err
	}
	var renamed watchlist.Path
	_, err = s.store.Update(ctx, func(t *watchlist.Tree) error {
		var err error
		renamed, err = watchlist.RenameGroup(t, p, newName)
		return err
	})
	if err != nil {
		return "", err
	}
	s.record(ctx, "rename-group", map[string]string{"path": p.String(), "new_name": newName}, renamed.String())
	return renamed.String(), nil
}

// MoveGroup reparents source under target. A blank target means top level.
func (s *Service) MoveGroup(ctx context.Context, source, target string) (string, error) {
	if err := s.requireNonEmpty(source, "source_path"); err != nil {
		return "", err
	}
	src, err := parsePath(source, "source_path")
	if err != nil {
		return "", err
	}
	dst, err := parsePath(target, "target_path")
	if err != nil {
		return "", err
	}
	var moved watchlist.Path
	_, err = s.store.Update(ctx, func(t *watchlist.Tree) error {
		var err error
		moved, err = watchlist.MoveGroup(t, src, dst)
		return err
	})
	if err != nil {
		return "", err
	}
	s.record(ctx, "move-group", map[string]string{"source": src.String(), "target": dst.String()}, moved.String())
	return moved.String(), nil
}

func (s *Service) SetGroupDescription(ctx context.Context, path, description string) error {
	if err := s.requireNonEmpty(path, "path"); err != nil {
		return err
	}
	p, err := parsePath(path, "path")
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	_, err = s.store.Update(ctx, func(t *watchlist.Tree) error {
		return watchlist.SetDescription(t, p, description)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "set-description", map[string]string{"path": p.String()}, "")
	return nil
}

// --- Export / import ---

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", watchlist.NewError(watchlist.CodeValidation, "format must be \"json\" or \"yaml\"", nil)
}

// Export renders the current document and returns it with its content type.
func (s *Service) Export(ctx context.Context, format string) ([]byte, string, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, "", err
	}
	tree, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	if format == FormatYAML {
		data, err := watchlist.EncodeYAML(tree)
		return data, "application/yaml", err
	}
	data, err := watchlist.Encode(tree)
	return data, "application/json", err
}

// Import replaces the whole document. The previous document is backed up
// first so an import can be undone with a restore.
func (s *Service) Import(ctx context.Context, data []byte, format string) (Summary, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return Summary{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Summary{}, watchlist.NewError(watchlist.CodeValidation, "document is required", nil)
	}

	var tree *watchlist.Tree
	if format == FormatYAML {
		tree, err = watchlist.DecodeYAML(data)
	} else {
		tree, err = watchlist.Decode(data)
	}
	if err != nil {
		if watchlist.CodeOf(err) == "" {
			return Summary{}, watchlist.NewError(watchlist.CodeValidation, "document is not valid "+format, err)
		}
		return Summary{}, err
	}

	if err := s.replace(ctx, tree, "pre-import"); err != nil {
		return Summary{}, err
	}
	groups, symbols := watchlist.Stats(tree)
	s.record(ctx, "import", map[string]string{"format": format}, "")
	return Summary{Groups: groups, Symbols: symbols}, nil
}

// replace swaps in tree. The backup of the outgoing document is taken under
// the same store lock, so no mutation can land between the two.
func (s *Service) replace(ctx context.Context, tree *watchlist.Tree, reason string) error {
	var before func(*watchlist.Tree) error
	if s.backups != nil {
		before = func(current *watchlist.Tree) error {
			_, err := s.saveBackup(current, reason)
			return err
		}
	}
	return s.store.Replace(ctx, tree, before)
}

// --- Backup methods ---

func (s *Service) requireBackups() error {
	if s.backups == nil {
		return watchlist.NewError(watchlist.CodeStoreUnavailable, "backups are not configured", nil)
	}
	return nil
}

func backupErr(op string, err error) error {
	if errors.Is(err, backup.ErrNotFound) {
		return watchlist.NewError(watchlist.CodeNotFound, err.Error(), err)
	}
	if errors.Is(err, backup.ErrInvalidID) {
		return watchlist.NewError(watchlist.CodeValidation, err.Error(), err)
	}
	return watchlist.NewError(watchlist.CodeStoreUnavailable, op+" failed", err)
}

func (s *Service) CreateBackup(ctx context.Context, reason string) (backup.Meta, error) {
	if err := s.requireBackups(); err != nil {
		return backup.Meta{}, err
	}
	tree, err := s.store.Snapshot(ctx)
	if err != nil {
		return backup.Meta{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	return s.saveBackup(tree, reason)
}

func (s *Service) saveBackup(tree *watchlist.Tree, reason string) (backup.Meta, error) {
	data, err := watchlist.Encode(tree)
	if err != nil {
		return backup.Meta{}, backupErr("encode backup", err)
	}
	groups, symbols := watchlist.Stats(tree)
	meta, err := s.backups.Save(backup.NewMeta(reason, groups, symbols), data)
	if err != nil {
		return backup.Meta{}, backupErr("save backup", err)
	}
	slog.Info("backup created", "id", meta.ID, "reason", reason, "groups", groups, "symbols", symbols)
	return meta, nil
}

func (s *Service) ListBackups(ctx context.Context) ([]backup.Meta, error) {
	if err := s.requireBackups(); err != nil {
		return nil, err
	}
	metas, err := s.backups.List()
	if err != nil {
		return nil, backupErr("list backups", err)
	}
	return metas, nil
}

func (s *Service) GetBackup(ctx context.Context, id string) (backup.Meta, error) {
	if err := s.requireNonEmpty(id, "backup_id"); err != nil {
		return backup.Meta{}, err
	}
	if err := s.requireBackups(); err != nil {
		return backup.Meta{}, err
	}
	meta, err := s.backups.Get(strings.TrimSpace(id))
	if err != nil {
		return backup.Meta{}, backupErr("get backup", err)
	}
	return meta, nil
}

func (s *Service) DeleteBackup(ctx context.Context, id string) error {
	if err := s.requireNonEmpty(id, "backup_id"); err != nil {
		return err
	}
	if err := s.requireBackups(); err != nil {
		return err
	}
	if err := s.backups.Delete(strings.TrimSpace(id)); err != nil {
		return backupErr("delete backup", err)
	}
	return nil
}

// RestoreBackup replaces the document with a stored backup, backing up the
// current document first.
func (s *Service) RestoreBackup(ctx context.Context, id string) (Summary, error) {
	if err := s.requireNonEmpty(id, "backup_id"); err != nil {
		return Summary{}, err
	}
	if err := s.requireBackups(); err != nil {
		return Summary{}, err
	}
	id = strings.TrimSpace(id)
	data, err := s.backups.Read(id)
	if err != nil {
		return Summary{}, backupErr("read backup", err)
	}
	tree, err := watchlist.Decode(data)
	if err != nil {
		return Summary{}, watchlist.NewError(watchlist.CodeStoreUnavailable, "backup "+id+" is corrupt", err)
	}
	if err := s.replace(ctx, tree, "pre-restore"); err != nil {
		return Summary{}, err
	}
	groups, symbols := watchlist.Stats(tree)
	s.record(ctx, "restore-backup", map[string]string{"backup_id": id}, "")
	return Summary{Groups: groups, Symbols: symbols}, nil
}

// ScheduledBackup takes a backup and trims old ones down to keep.
func (s *Service) ScheduledBackup(ctx context.Context, keep int) error {
	meta, err := s.CreateBackup(ctx, "scheduled")
	if err != nil {
		return err
	}
	removed, err := s.backups.Prune(keep)
	if err != nil {
		return backupErr("prune backups", err)
	}
	if removed > 0 {
		slog.Info("old backups pruned", "removed", removed, "keep", keep, "latest", meta.ID)
	}
	return nil
}
