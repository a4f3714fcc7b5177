package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/vecindex/errs"
	vschema "github.com/viant/vecindex/schema"
)

//go:embed tools/search.md
var descSearch string

//go:embed tools/indexes.md
var descIndexes string

//go:embed tools/add.md
var descAdd string

func registerTools(registry *protoserver.Registry, h *Handler) error {
	if err := protoserver.RegisterTool[*SearchInput, *SearchOutput](registry, "search", descSearch, func(ctx context.Context, in *SearchInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.search(ctx, in)
		if err != nil {
			return buildErrorResult(err)
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*IndexesInput, *IndexesOutput](registry, "indexes", descIndexes, func(ctx context.Context, in *IndexesInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.indexes(ctx, in)
		if err != nil {
			return buildErrorResult(err)
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*AddInput, *AddOutput](registry, "add", descAdd, func(ctx context.Context, in *AddInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.add(ctx, in)
		if err != nil {
			return buildErrorResult(err)
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}
	return nil
}

// buildErrorResult reports bad arguments as invalid params and any other
// failure as a tool result flagged as an error.
func buildErrorResult(err error) (*schema.CallToolResult, *jsonrpc.Error) {
	if errors.Is(err, errs.ErrValidation) {
		return nil, jsonrpc.NewError(jsonrpc.InvalidParams, err.Error(), nil)
	}
	isError := true
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: err.Error()},
		},
		IsError: &isError,
	}, nil
}

func buildSuccessResult(payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	b, _ := json.Marshal(payload)
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(b)},
		},
		StructuredContent: map[string]any{"result": payload},
	}, nil
}

func (h *Handler) search(ctx context.Context, in *SearchInput) (*SearchOutput, error) {
	start := time.Now()
	if in == nil || in.Index == "" {
		return nil, errs.Validation("missing index")
	}
	if in.Query == "" {
		return nil, errs.Validation("missing query")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	idx, err := h.manager.Load(ctx, in.Index)
	if err != nil {
		return nil, err
	}
	results, err := idx.Search(ctx, in.Query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []vschema.SearchResult{}
	}
	h.logger.Debug("mcp search", "index", in.Index, "matches", len(results), "duration", time.Since(start))
	return &SearchOutput{Results: results}, nil
}

func (h *Handler) indexes(ctx context.Context, in *IndexesInput) (*IndexesOutput, error) {
	defs, err := h.manager.ListIndexes(ctx)
	if err != nil {
		return nil, err
	}
	out := &IndexesOutput{Indexes: []IndexInfo{}}
	for _, def := range defs {
		if in != nil && in.Name != "" && def.Name != in.Name {
			continue
		}
		info := IndexInfo{
			Name:           def.Name,
			Backend:        def.Backend,
			EmbeddingModel: def.EmbeddingModel,
			TextSplitter:   def.TextSplitter,
			DedupFields:    def.DedupFields,
			CreatedAt:      def.CreatedAt,
			Records:        -1,
		}
		if idx, err := h.manager.Load(ctx, def.Name); err == nil {
			if count, err := idx.Count(ctx); err == nil {
				info.Records = count
			}
		}
		out.Indexes = append(out.Indexes, info)
	}
	return out, nil
}

func (h *Handler) add(ctx context.Context, in *AddInput) (*AddOutput, error) {
	if in == nil || in.Index == "" {
		return nil, errs.Validation("missing index")
	}
	idx, err := h.manager.Load(ctx, in.Index)
	if err != nil {
		return nil, err
	}
	if err := idx.AddTexts(ctx, []vschema.Text{{Texts: in.Texts, Metadata: in.Metadata}}); err != nil {
		return nil, err
	}
	count, err := idx.Count(ctx)
	if err != nil {
		return nil, err
	}
	h.logger.Info("mcp add", "index", in.Index, "texts", len(in.Texts), "records", count)
	return &AddOutput{Records: count}, nil
}
