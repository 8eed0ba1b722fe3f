package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_watchlist/internal/backup"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
)

func registerBackupHandlers(api huma.API, svc Service) {
	type backupOutput struct {
		Body backup.Meta
	}
	huma.Register(api, huma.Operation{OperationID: "create-backup", Method: http.MethodPost, Path: "/api/v1/backups", Summary: "Back up the current document", Tags: []string{"Backups"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Reason string `json:"reason,omitempty" doc:"Free-form label; defaults to manual"`
			}
		}) (*backupOutput, error) {
			meta, err := svc.CreateBackup(ctx, input.Body.Reason)
			if err != nil {
				return nil, mapErr(err)
			}
			return &backupOutput{Body: meta}, nil
		})

	type listBackupsOutput struct {
		Body struct {
			Backups []backup.Meta `json:"backups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-backups", Method: http.MethodGet, Path: "/api/v1/backups", Summary: "List backups, newest first", Tags: []string{"Backups"}},
		func(ctx context.Context, input *struct{}) (*listBackupsOutput, error) {
			metas, err := svc.ListBackups(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listBackupsOutput{}
			out.Body.Backups = metas
			if out.Body.Backups == nil {
				out.Body.Backups = []backup.Meta{}
			}
			return out, nil
		})

	type backupIDInput struct {
		BackupID string `path:"backup_id"`
	}
	huma.Register(api, huma.Operation{OperationID: "get-backup", Method: http.MethodGet, Path: "/api/v1/backups/{backup_id}", Summary: "Get backup metadata", Tags: []string{"Backups"}},
		func(ctx context.Context, input *backupIDInput) (*backupOutput, error) {
			meta, err := svc.GetBackup(ctx, input.BackupID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &backupOutput{Body: meta}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-backup", Method: http.MethodDelete, Path: "/api/v1/backups/{backup_id}", Summary: "Delete backup", Tags: []string{"Backups"}},
		func(ctx context.Context, input *backupIDInput) (*statusOutput, error) {
			if err := svc.DeleteBackup(ctx, input.BackupID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	type restoreOutput struct {
		Body controller.Summary
	}
	huma.Register(api, huma.Operation{OperationID: "restore-backup", Method: http.MethodPost, Path: "/api/v1/backups/{backup_id}/restore", Summary: "Restore a backup", Description: "The current document is backed up before it is replaced.", Tags: []string{"Backups"}},
		func(ctx context.Context, input *backupIDInput) (*restoreOutput, error) {
			summary, err := svc.RestoreBackup(ctx, input.BackupID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &restoreOutput{Body: summary}, nil
		})
}
