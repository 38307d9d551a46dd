package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/aretw0/waypoint/pkg/rearrange"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Waypoint as an MCP Server so AI agents can plan and run missions as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		transport := a.cfg.MCP.Transport
		if cmd.Flags().Changed("transport") {
			transport, _ = cmd.Flags().GetString("transport")
		}
		port := a.cfg.MCP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rb, err := a.robot()
		if err != nil {
			return err
		}
		sessions, closeStore, err := a.sessions(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		solver, err := rearrange.New(a.cfg.Rearrange.Constraint, rearrange.WithLogger(a.logger))
		if err != nil {
			return err
		}

		srv, err := mcp.NewServer(a.engine,
			mcp.WithSensor(rb),
			mcp.WithExecutor(rb),
			mcp.WithSessions(sessions),
			mcp.WithSolver(solver),
			mcp.WithMissionObserver(a.metrics.ObserveMission),
			mcp.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}

		switch transport {
		case "stdio":
			// Logs go to stderr so they never corrupt JSON-RPC on stdout.
			a.logger.Info("Starting Waypoint MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			a.logger.Info("Starting Waypoint MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
