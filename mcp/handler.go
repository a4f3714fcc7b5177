// Package mcp exposes indexes as MCP tools over streamable HTTP.
package mcp

import (
	"context"
	"log/slog"

	"github.com/viant/jsonrpc/transport"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/logger"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/vecindex/index"
)

const defaultLimit = 10

type Handler struct {
	*protoserver.DefaultHandler
	manager *index.Manager
	logger  *slog.Logger
}

func NewHandler(manager *index.Manager, log *slog.Logger) protoserver.NewHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(_ context.Context, notifier transport.Notifier, logger logger.Logger, clientOperation protoclient.Operations) (protoserver.Handler, error) {
		base := protoserver.NewDefaultHandler(notifier, logger, clientOperation)
		h := &Handler{DefaultHandler: base, manager: manager, logger: log}
		if err := registerTools(base.Registry, h); err != nil {
			return nil, err
		}
		return h, nil
	}
}
