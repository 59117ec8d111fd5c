package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hearthhq/hearth/internal/schedule"
	"github.com/hearthhq/hearth/internal/storage"
	"github.com/hearthhq/hearth/internal/suggest"
)

// MCPDeps holds the dependencies for the MCP server.
type MCPDeps struct {
	Store       *storage.Store
	Suggestions *suggest.Service
}

// NewMCPServer creates an MCP server exposing hearth's suggestion engine and
// scheduler as tools, plus the asset list as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"hearth",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("hearth — household management: appliance consumables, inventory, and service reminders."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("suggest_consumables",
			mcp.WithDescription("List the replaceable consumable parts for an appliance, served from cache or freshly generated."),
			mcp.WithString("name", mcp.Description("What the appliance is called"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Appliance category, e.g. Water Heater"), mcp.Required()),
			mcp.WithString("make", mcp.Description("Manufacturer")),
			mcp.WithString("model", mcp.Description("Model number")),
		),
		mcpSuggestConsumables(deps),
	)

	s.AddTool(
		mcp.NewTool("next_service_date",
			mcp.WithDescription("Compute the next service/reminder date from a base date and a frequency in months."),
			mcp.WithString("from", mcp.Description("Base date, YYYY-MM-DD"), mcp.Required()),
			mcp.WithNumber("frequencyMonths", mcp.Description("Months between occurrences; may be below 1 for sub-monthly"), mcp.Required()),
		),
		mcpNextServiceDate(),
	)

	s.AddResource(
		mcp.NewResource(
			"hearth://assets",
			"Household Assets",
			mcp.WithResourceDescription("All registered appliances and fixtures as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceAssets(deps),
	)

	return s
}

func mcpSuggestConsumables(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		category, err := req.RequireString("category")
		if err != nil {
			return mcpError("category is required"), nil
		}

		result, err := deps.Suggestions.Get(ctx, suggest.Request{
			Make:     req.GetString("make", ""),
			Model:    req.GetString("model", ""),
			Category: category,
			Name:     name,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("suggestion lookup failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpNextServiceDate() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := req.RequireString("from")
		if err != nil {
			return mcpError("from is required"), nil
		}
		freq, err := req.RequireFloat("frequencyMonths")
		if err != nil {
			return mcpError("frequencyMonths is required"), nil
		}
		if freq <= 0 {
			return mcpError("frequencyMonths must be positive"), nil
		}

		next, err := schedule.NextDateISO(from, freq)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid date: %v", err)), nil
		}
		return mcpText(next), nil
	}
}

func mcpResourceAssets(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		assets, err := deps.Store.ListAssets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list assets: %w", err)
		}
		if assets == nil {
			assets = []storage.Asset{}
		}

		b, err := json.Marshal(assets)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal assets: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
