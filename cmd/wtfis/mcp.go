package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kluth/wtfis/internal/config"
	"github.com/kluth/wtfis/internal/progress"
	"github.com/kluth/wtfis/internal/view"
)

func newMcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol (MCP) server",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP).
AI assistants can then use wtfis lookups as a tool. API keys are read the same
way as for command line lookups.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMcpServer(a)
		},
	}
}

func newMcpServer(a *app) *server.MCPServer {
	s := server.NewMCPServer(
		"wtfis",
		version,
		server.WithLogging(),
	)

	lookupTool := mcp.NewTool("lookup",
		mcp.WithDescription("Look up a domain, FQDN or IP address across VirusTotal and enrichment providers"),
		mcp.WithString("entity",
			mcp.Description("The domain, hostname or IP address to look up (e.g., 'example.com', '93.184.216.34')"),
			mcp.Required(),
		),
		mcp.WithNumber("max_resolutions",
			mcp.Description("Maximum number of domain resolutions to enrich (0-10, default 3)"),
		),
		mcp.WithBoolean("use_shodan", mcp.Description("Enrich IPs with Shodan")),
		mcp.WithBoolean("use_greynoise", mcp.Description("Enrich IPs with GreyNoise")),
		mcp.WithBoolean("use_abuseipdb", mcp.Description("Enrich IPs with AbuseIPDB")),
		mcp.WithBoolean("use_urlhaus", mcp.Description("Enrich the entity with URLhaus")),
	)
	s.AddTool(lookupTool, a.handleLookup)
	return s
}

func runMcpServer(a *app) error {
	if err := server.ServeStdio(newMcpServer(a)); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// lookupFlags maps tool arguments to command line flags.
var lookupFlags = map[string]string{
	"max_resolutions": "max-resolutions",
	"use_shodan":      "use-shodan",
	"use_greynoise":   "use-greynoise",
	"use_abuseipdb":   "use-abuseipdb",
	"use_urlhaus":     "use-urlhaus",
}

func (a *app) handleLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("arguments must be a map"), nil
	}
	target, ok := args["entity"].(string)
	if !ok {
		return mcp.NewToolResultError("entity must be a string"), nil
	}

	cfg := &config.Config{}
	fs := pflag.NewFlagSet("lookup", pflag.ContinueOnError)
	config.BindFlags(fs, cfg)
	for arg, flag := range lookupFlags {
		v, ok := args[arg]
		if !ok {
			continue
		}
		var s string
		switch v := v.(type) {
		case bool:
			s = strconv.FormatBool(v)
		case float64:
			s = strconv.Itoa(int(v))
		default:
			return mcp.NewToolResultError(fmt.Sprintf("%s has an unsupported type", arg)), nil
		}
		if err := fs.Set(flag, s); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", arg, err)), nil
		}
	}
	if err := fs.Set("format", view.FormatJSON); err != nil {
		return nil, err
	}
	cfg.Entity = target

	if err := config.Load(fs, cfg, a.source); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid request: %v", err)), nil
	}

	_, report, err := a.fetchReport(ctx, cfg, progress.Nop{}, newLogger(a.stderr, false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Lookup failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := view.Render(&buf, report, cfg.ViewOptions()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
