package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"

	"github.com/viant/vecindex/mcp"
)

func newServeCmd(options *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve indexes as MCP tools over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, options, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()
			if addr == "" {
				addr = a.config.MCPServer.Address()
			}

			server, err := mcpsrv.New(
				mcpsrv.WithImplementation(schema.Implementation{Name: "vecindex-mcp", Version: "0.1.0"}),
				mcpsrv.WithNewHandler(mcp.NewHandler(a.manager, a.logger)),
				mcpsrv.WithEndpointAddress(addr),
				mcpsrv.WithRootRedirect(true),
				mcpsrv.WithStreamableURI("/mcp"),
			)
			if err != nil {
				return err
			}
			server.UseStreamableHTTP(true)
			httpServer := server.HTTP(ctx, addr)
			httpServer.ReadHeaderTimeout = 10 * time.Second
			httpServer.ReadTimeout = 60 * time.Second
			httpServer.WriteTimeout = 60 * time.Second
			httpServer.IdleTimeout = 120 * time.Second

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()
			a.logger.Info("vecindex-mcp listening", "addr", httpServer.Addr)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			a.logger.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("http shutdown error", "error", err)
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("vecindex-mcp stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or 127.0.0.1:6061)")
	return cmd
}
