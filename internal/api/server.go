package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
	"github.com/dgnsrekt/tv_watchlist/internal/watchlist"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	apiTitle   = "Watchlist API"
	apiVersion = "1.0.0"
)

// Service is the watchlist surface the HTTP handlers call.
type Service interface {
	GetWatchlist(ctx context.Context) (*watchlist.Tree, error)
	Stats(ctx context.Context) (controller.Summary, error)
	AddSymbol(ctx context.Context, symbol, group string) (*watchlist.Tree, error)
	RemoveSymbol(ctx context.Context, group, symbol string) (*watchlist.Tree, error)
	MoveSymbols(ctx context.Context, symbols []string, from, to string) (*watchlist.Tree, error)
	Ungrouped(ctx context.Context) ([]string, error)
	Locate(ctx context.Context, symbol string) ([]string, error)
	CreateGroup(ctx context.Context, name, description, parent string) (string, error)
	DeleteGroup(ctx context.Context, path string) ([]string, error)
	RenameGroup(ctx context.Context, path, newName string) (string, error)
	MoveGroup(ctx context.Context, source, target string) (string, error)
	SetGroupDescription(ctx context.Context, path, description string) error
	Export(ctx context.Context, format string) ([]byte, string, error)
	Import(ctx context.Context, data []byte, format string) (controller.Summary, error)
	CreateBackup(ctx context.Context, reason string) (backup.Meta, error)
	ListBackups(ctx context.Context) ([]backup.Meta, error)
	GetBackup(ctx context.Context, id string) (backup.Meta, error)
	DeleteBackup(ctx context.Context, id string) error
	RestoreBackup(ctx context.Context, id string) (controller.Summary, error)
}

type treeOutput struct {
	Body *watchlist.Tree
}

type statusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func treeOut(tree *watchlist.Tree, err error) (*treeOutput, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &treeOutput{Body: tree}, nil
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig(apiTitle, apiVersion)
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	page := []byte(docsPage(apiTitle, "/openapi.json"))
	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(page); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerHealthHandlers(api, svc)
	registerWatchlistHandlers(api, svc)
	registerGroupHandlers(api, svc)
	registerBackupHandlers(api, svc)

	return router
}

func registerHealthHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			out := &statusOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type statsOutput struct {
		Body controller.Summary
	}
	huma.Register(api, huma.Operation{OperationID: "watchlist-stats", Method: http.MethodGet, Path: "/api/v1/watchlist/stats", Summary: "Count groups and distinct symbols", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*statsOutput, error) {
			summary, err := svc.Stats(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &statsOutput{Body: summary}, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Debug("request abandoned", "error", err)
		return huma.Error503ServiceUnavailable("request cancelled before it completed")
	}
	var coded *watchlist.CodedError
	if errors.As(err, &coded) {
		msg := err.Error()
		switch coded.Code {
		case watchlist.CodeValidation, watchlist.CodeInvalidName:
			return huma.Error400BadRequest(msg)
		case watchlist.CodeForbidden:
			return huma.Error403Forbidden(msg)
		case watchlist.CodeNotFound:
			return huma.Error404NotFound(msg)
		case watchlist.CodeAlreadyExists, watchlist.CodeCycle:
			return huma.Error409Conflict(msg)
		case watchlist.CodeStoreUnavailable:
			slog.Error("store unavailable", "error", err)
			return huma.Error503ServiceUnavailable(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
