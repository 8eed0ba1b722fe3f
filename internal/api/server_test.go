package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
	"github.com/dgnsrekt/tv_watchlist/internal/store"
	"github.com/dgnsrekt/tv_watchlist/internal/watchlist"
)

func newTestService(t *testing.T) *controller.Service {
	t.Helper()
	backups, err := backup.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("backup.NewStore() error = %v", err)
	}
	return controller.NewService(store.New(store.NewMemoryBlob(nil)), backups, nil)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeTree(t *testing.T, w *httptest.ResponseRecorder) *watchlist.Tree {
	t.Helper()
	var tree watchlist.Tree
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode tree %q: %v", w.Body.String(), err)
	}
	return &tree
}

func TestHealth(t *testing.T) {
	h := NewServer(newTestService(t))
	w := do(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestAddMoveAndLocate(t *testing.T) {
	h := NewServer(newTestService(t))

	w := do(t, h, http.MethodPost, "/api/v1/watchlist/add", map[string]string{"symbol": "tsla", "group": "Auto"})
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d body = %s", w.Code, w.Body.String())
	}
	tree := decodeTree(t, w)
	if got := tree.Groups["Auto"].Symbols; !slices.Equal(got, []string{"TSLA"}) {
		t.Fatalf("Auto symbols = %v; want [TSLA]", got)
	}

	w = do(t, h, http.MethodPost, "/api/v1/groups", map[string]string{"name": "Electric", "parent": "Auto"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Auto/Electric"`) {
		t.Fatalf("create group = %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/v1/watchlist/move", map[string]string{"symbol": "TSLA", "from_group": "Auto", "to_group": "Auto/Electric"})
	if w.Code != http.StatusOK {
		t.Fatalf("move status = %d body = %s", w.Code, w.Body.String())
	}
	tree = decodeTree(t, w)
	if got := tree.Groups["Auto"].Children["Electric"].Symbols; !slices.Equal(got, []string{"TSLA"}) {
		t.Fatalf("Auto/Electric symbols = %v; want [TSLA]", got)
	}

	w = do(t, h, http.MethodGet, "/api/v1/watchlist/locate?symbol=tsla", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Auto/Electric"`) {
		t.Fatalf("locate = %d %s", w.Code, w.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h := NewServer(newTestService(t))
	if w := do(t, h, http.MethodPost, "/api/v1/watchlist/add", map[string]string{"symbol": "AAPL", "group": "Tech"}); w.Code != http.StatusOK {
		t.Fatalf("seed add = %d %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{"bad symbol", http.MethodPost, "/api/v1/watchlist/add", map[string]string{"symbol": "BRK B"}, http.StatusBadRequest},
		{"bad name", http.MethodPost, "/api/v1/groups", map[string]string{"name": "a/b"}, http.StatusBadRequest},
		{"delete default", http.MethodDelete, "/api/v1/groups?path=Default", nil, http.StatusForbidden},
		{"rename default", http.MethodPut, "/api/v1/groups/rename", map[string]string{"old_path": "Default", "new_name": "Inbox"}, http.StatusForbidden},
		{"missing group", http.MethodDelete, "/api/v1/watchlist/symbols?group=Nope&symbol=AAPL", nil, http.StatusNotFound},
		{"move to missing", http.MethodPost, "/api/v1/watchlist/move", map[string]string{"symbol": "AAPL", "from_group": "Tech", "to_group": "Nope"}, http.StatusNotFound},
		{"duplicate group", http.MethodPost, "/api/v1/groups", map[string]string{"name": "Tech"}, http.StatusConflict},
		{"cycle", http.MethodPost, "/api/v1/groups/move", map[string]string{"source_path": "Tech", "target_path": "Tech"}, http.StatusConflict},
		{"bad backup id", http.MethodGet, "/api/v1/backups/nope", nil, http.StatusBadRequest},
		{"missing backup", http.MethodGet, "/api/v1/backups/123e4567-e89b-12d3-a456-426614174000", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, tt.body)
			if w.Code != tt.want {
				t.Fatalf("%s %s = %d; want %d (body %s)", tt.method, tt.target, w.Code, tt.want, w.Body.String())
			}
		})
	}

	w := do(t, h, http.MethodGet, "/api/v1/watchlist", nil)
	tree := decodeTree(t, w)
	if got := tree.Groups["Tech"].Symbols; !slices.Equal(got, []string{"AAPL"}) {
		t.Fatalf("failed requests changed Tech: %v", got)
	}
}

func TestCancelledRequestIsUnavailable(t *testing.T) {
	h := NewServer(newTestService(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /api/v1/watchlist with cancelled context = %d; want %d (body %s)", w.Code, http.StatusServiceUnavailable, w.Body.String())
	}
}

func TestMapErrContextErrors(t *testing.T) {
	for _, err := range []error{
		context.Canceled,
		fmt.Errorf("load: %w", context.DeadlineExceeded),
	} {
		var se huma.StatusError
		if !errors.As(mapErr(err), &se) {
			t.Fatalf("mapErr(%v) is not a huma.StatusError", err)
		}
		if se.GetStatus() != http.StatusServiceUnavailable {
			t.Fatalf("mapErr(%v) status = %d; want %d", err, se.GetStatus(), http.StatusServiceUnavailable)
		}
	}
}

func TestDeleteGroupRescues(t *testing.T) {
	h := NewServer(newTestService(t))
	do(t, h, http.MethodPost, "/api/v1/watchlist/add", map[string]string{"symbol": "NVDA", "group": "Tech/Semis"})

	w := do(t, h, http.MethodDelete, "/api/v1/groups?path="+url.QueryEscape("Tech"), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"NVDA"`) {
		t.Fatalf("delete group = %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/v1/watchlist/ungrouped", nil)
	if !strings.Contains(w.Body.String(), `"NVDA"`) {
		t.Fatalf("ungrouped = %s; want NVDA", w.Body.String())
	}
}

func TestExportImportAndBackups(t *testing.T) {
	h := NewServer(newTestService(t))
	do(t, h, http.MethodPost, "/api/v1/watchlist/add", map[string]string{"symbol": "MSFT", "group": "Tech"})

	w := do(t, h, http.MethodGet, "/api/v1/watchlist/export?format=yaml", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Fatalf("export content-type = %q; want application/yaml", ct)
	}
	exported := w.Body.String()

	w = do(t, h, http.MethodPost, "/api/v1/backups", map[string]string{"reason": "before-wipe"})
	if w.Code != http.StatusOK {
		t.Fatalf("create backup = %d %s", w.Code, w.Body.String())
	}
	var meta backup.Meta
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode backup meta: %v", err)
	}

	w = do(t, h, http.MethodPost, "/api/v1/watchlist/import", map[string]string{"format": "json", "document": `{"Default":{"description":"","stocks":[]}}`})
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/v1/backups/"+meta.ID+"/restore", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore = %d %s", w.Code, w.Body.String())
	}
	tree := decodeTree(t, do(t, h, http.MethodGet, "/api/v1/watchlist", nil))
	if _, ok := tree.Groups["Tech"]; !ok {
		t.Fatalf("restore did not bring back Tech")
	}

	w = do(t, h, http.MethodPost, "/api/v1/watchlist/import", map[string]string{"format": "yaml", "document": exported})
	if w.Code != http.StatusOK {
		t.Fatalf("yaml import = %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/v1/backups", nil)
	var list struct {
		Backups []backup.Meta `json:"backups"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode backups: %v", err)
	}
	// manual, pre-import, pre-restore, pre-import
	if len(list.Backups) != 4 {
		t.Fatalf("backups = %d; want 4", len(list.Backups))
	}
}
