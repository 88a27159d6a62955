package tools

import (
	"context"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

func (p *Provider) handleGetServerCapability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logging.Info("tools", "[%s] getting server CapabilityStatement", newCallID())

	result, _, err := p.fhir.Get(ctx, "metadata", nil)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	return mcp.NewToolResultText(format.CapabilityStatement(result)), nil
}
