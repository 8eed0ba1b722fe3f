package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_watchlist/internal/controller"
)

func registerWatchlistHandlers(api huma.API, svc Service) {
	// --- Watchlist endpoints ---

	huma.Register(api, huma.Operation{OperationID: "get-watchlist", Method: http.MethodGet, Path: "/api/v1/watchlist", Summary: "Get the full group tree", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct{}) (*treeOutput, error) {
			return treeOut(svc.GetWatchlist(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "add-symbol", Method: http.MethodPost, Path: "/api/v1/watchlist/add", Summary: "Add a symbol to a group", Description: "Missing groups along the path are created. Omit group to file the symbol under Default.", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Symbol string `json:"symbol" required:"true" example:"AAPL"`
				Group  string `json:"group,omitempty" doc:"Slash-separated group path" example:"Tech/Semis"`
			}
		}) (*treeOutput, error) {
			return treeOut(svc.AddSymbol(ctx, input.Body.Symbol, input.Body.Group))
		})

	type removeSymbolBody struct {
		Group  string `json:"group" required:"true"`
		Symbol string `json:"symbol" required:"true"`
	}
	huma.Register(api, huma.Operation{OperationID: "remove-symbol", Method: http.MethodPost, Path: "/api/v1/watchlist/remove", Summary: "Remove a symbol from a group", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Body removeSymbolBody
		}) (*treeOutput, error) {
			return treeOut(svc.RemoveSymbol(ctx, input.Body.Group, input.Body.Symbol))
		})

	huma.Register(api, huma.Operation{OperationID: "delete-symbol", Method: http.MethodDelete, Path: "/api/v1/watchlist/symbols", Summary: "Remove a symbol from a group", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Group  string `query:"group" required:"true" doc:"Slash-separated group path"`
			Symbol string `query:"symbol" required:"true"`
		}) (*treeOutput, error) {
			return treeOut(svc.RemoveSymbol(ctx, input.Group, input.Symbol))
		})

	huma.Register(api, huma.Operation{OperationID: "move-symbol", Method: http.MethodPost, Path: "/api/v1/watchlist/move", Summary: "Move symbols between groups", Description: "Send symbol for a single move or symbols for a batch. The target group must exist.", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Symbol    string   `json:"symbol,omitempty"`
				Symbols   []string `json:"symbols,omitempty"`
				FromGroup string   `json:"from_group,omitempty" doc:"Source group path; defaults to Default"`
				ToGroup   string   `json:"to_group" required:"true"`
			}
		}) (*treeOutput, error) {
			symbols := input.Body.Symbols
			if input.Body.Symbol != "" {
				symbols = append([]string{input.Body.Symbol}, symbols...)
			}
			return treeOut(svc.MoveSymbols(ctx, symbols, input.Body.FromGroup, input.Body.ToGroup))
		})

	type symbolsOutput struct {
		Body struct {
			Symbols []string `json:"symbols"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-ungrouped", Method: http.MethodGet, Path: "/api/v1/watchlist/ungrouped", Summary: "List Default symbols held by no other group", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct{}) (*symbolsOutput, error) {
			syms, err := svc.Ungrouped(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &symbolsOutput{}
			out.Body.Symbols = syms
			if out.Body.Symbols == nil {
				out.Body.Symbols = []string{}
			}
			return out, nil
		})

	type locateOutput struct {
		Body struct {
			Symbol string   `json:"symbol"`
			Groups []string `json:"groups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "locate-symbol", Method: http.MethodGet, Path: "/api/v1/watchlist/locate", Summary: "List the groups holding a symbol", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Symbol string `query:"symbol" required:"true"`
		}) (*locateOutput, error) {
			groups, err := svc.Locate(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &locateOutput{}
			out.Body.Symbol = input.Symbol
			out.Body.Groups = groups
			if out.Body.Groups == nil {
				out.Body.Groups = []string{}
			}
			return out, nil
		})

	// --- Export / import ---

	type exportOutput struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "export-watchlist",
		Method:      http.MethodGet,
		Path:        "/api/v1/watchlist/export",
		Summary:     "Export the document as JSON or YAML",
		Tags:        []string{"Watchlist"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Watchlist document",
				Content: map[string]*huma.MediaType{
					"application/json": {Schema: &huma.Schema{Type: "string", Format: "binary"}},
					"application/yaml": {Schema: &huma.Schema{Type: "string", Format: "binary"}},
				},
			},
		},
	}, func(ctx context.Context, input *struct {
		Format string `query:"format" default:"json" enum:"json,yaml"`
	}) (*exportOutput, error) {
		data, ct, err := svc.Export(ctx, input.Format)
		if err != nil {
			return nil, mapErr(err)
		}
		ext := "json"
		if input.Format == controller.FormatYAML {
			ext = "yaml"
		}
		return &exportOutput{
			ContentType:        ct,
			ContentDisposition: `attachment; filename="watchlist.` + ext + `"`,
			Body:               data,
		}, nil
	})

	type summaryOutput struct {
		Body controller.Summary
	}
	huma.Register(api, huma.Operation{OperationID: "import-watchlist", Method: http.MethodPost, Path: "/api/v1/watchlist/import", Summary: "Replace the document", Description: "The current document is backed up before it is replaced.", Tags: []string{"Watchlist"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Format   string `json:"format,omitempty" enum:"json,yaml" doc:"Encoding of document; defaults to json"`
				Document string `json:"document" required:"true" doc:"The exported document text"`
			}
		}) (*summaryOutput, error) {
			summary, err := svc.Import(ctx, []byte(input.Body.Document), input.Body.Format)
			if err != nil {
				return nil, mapErr(err)
			}
			return &summaryOutput{Body: summary}, nil
		})
}
