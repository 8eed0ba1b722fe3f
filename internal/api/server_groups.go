package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func registerGroupHandlers(api huma.API, svc Service) {
	type pathOutput struct {
		Body struct {
			Path string `json:"path"`
		}
	}
	pathOut := func(path string, err error) (*pathOutput, error) {
		if err != nil {
			return nil, mapErr(err)
		}
		out := &pathOutput{}
		out.Body.Path = path
		return out, nil
	}

	huma.Register(api, huma.Operation{OperationID: "create-group", Method: http.MethodPost, Path: "/api/v1/groups", Summary: "Create a group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Name        string `json:"name" required:"true"`
				Description string `json:"description,omitempty"`
				Parent      string `json:"parent,omitempty" doc:"Parent group path; omit for top level"`
			}
		}) (*pathOutput, error) {
			return pathOut(svc.CreateGroup(ctx, input.Body.Name, input.Body.Description, input.Body.Parent))
		})

	type deleteGroupOutput struct {
		Body struct {
			Status  string   `json:"status"`
			Rescued []string `json:"rescued" doc:"Symbols moved into Default"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-group", Method: http.MethodDelete, Path: "/api/v1/groups", Summary: "Delete a group", Description: "Symbols of the group and its subgroups move to Default.", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct {
			Path string `query:"path" required:"true"`
		}) (*deleteGroupOutput, error) {
			rescued, err := svc.DeleteGroup(ctx, input.Path)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &deleteGroupOutput{}
			out.Body.Status = "deleted"
			out.Body.Rescued = rescued
			if out.Body.Rescued == nil {
				out.Body.Rescued = []string{}
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "rename-group", Method: http.MethodPut, Path: "/api/v1/groups/rename", Summary: "Rename a group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct {
			Body struct {
				OldPath string `json:"old_path" required:"true"`
				NewName string `json:"new_name" required:"true"`
			}
		}) (*pathOutput, error) {
			return pathOut(svc.RenameGroup(ctx, input.Body.OldPath, input.Body.NewName))
		})

	huma.Register(api, huma.Operation{OperationID: "move-group", Method: http.MethodPost, Path: "/api/v1/groups/move", Summary: "Move a group under another group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct {
			Body struct {
				SourcePath string `json:"source_path" required:"true"`
				TargetPath string `json:"target_path,omitempty" doc:"New parent path; omit for top level"`
			}
		}) (*pathOutput, error) {
			return pathOut(svc.MoveGroup(ctx, input.Body.SourcePath, input.Body.TargetPath))
		})

	huma.Register(api, huma.Operation{OperationID: "set-group-description", Method: http.MethodPut, Path: "/api/v1/groups/description", Summary: "Set a group description", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Path        string `json:"path" required:"true"`
				Description string `json:"description"`
			}
		}) (*pathOutput, error) {
			if err := svc.SetGroupDescription(ctx, input.Body.Path, input.Body.Description); err != nil {
				return nil, mapErr(err)
			}
			return pathOut(input.Body.Path, nil)
		})
}
