package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

func (p *Provider) handleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType, errResult := requiredArg(request, "resource_type")
	if errResult != nil {
		return errResult, nil
	}
	resourceID, errResult := requiredArg(request, "resource_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] getting %s/%s", newCallID(), resourceType, resourceID)

	result, raw, err := p.fhir.Get(ctx, resourceType+"/"+resourceID, nil)
	if err != nil {
		if fhir.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("❌ Error: %s/%s not found. Please verify the resource type and ID.", resourceType, resourceID)), nil
		}
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if responseFormatOr(request, "json") != "markdown" {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	return mcp.NewToolResultText(format.ResourceSummary(result) + "\n\n## Full Resource (JSON)\n\n" + format.RawJSONBlock(raw)), nil
}

func (p *Provider) handleSearchResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType, errResult := requiredArg(request, "resource_type")
	if errResult != nil {
		return errResult, nil
	}

	callID := newCallID()
	searchParams := optionalArg(request, "search_params")
	logging.Info("tools", "[%s] searching %s with params %q", callID, resourceType, searchParams)

	query := url.Values{}
	query.Set("_count", countArg(request, "50"))
	if searchParams != "" {
		parseSearchParams(query, searchParams)
	}

	result, raw, err := p.fhir.Get(ctx, resourceType, query)
	if err != nil {
		logging.Error("tools", err, "[%s] %s search failed", callID, resourceType)
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	// JSON mode passes the bundle through even when it is empty; callers
	// consuming it downstream need the bundle shape, not a prose message.
	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("📋 No %s resources found matching the criteria.", resourceType)), nil
	}
	return mcp.NewToolResultText(format.BundleResourceSummaries(result)), nil
}

func (p *Provider) handleCreateResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceJSON, errResult := requiredArg(request, "resource_json")
	if errResult != nil {
		return errResult, nil
	}

	var resource map[string]any
	if err := json.Unmarshal([]byte(resourceJSON), &resource); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ Error: Invalid JSON - %v", err)), nil
	}
	resourceType, _ := resource["resourceType"].(string)
	if resourceType == "" {
		return mcp.NewToolResultError("❌ Error: The resource JSON must include a 'resourceType' field."), nil
	}

	return p.createResource(ctx, resourceType, resource)
}

// createResource posts a resource map to the FHIR server, attaching the
// ImplementationGuide context as a profile when one is set. Shared by the
// raw-JSON create tool and the structured builders.
func (p *Provider) createResource(ctx context.Context, resourceType string, resource map[string]any) (*mcp.CallToolResult, error) {
	callID := newCallID()
	logging.Info("tools", "[%s] creating %s", callID, resourceType)

	// Snapshot the guide context once at call start; the selected guide
	// scopes the create via a profile parameter.
	var query url.Values
	if guide := p.guides.Get(); guide.URL != "" {
		query = url.Values{}
		query.Set("profile", guide.URL)
		logging.Debug("tools", "[%s] attaching profile %s from ImplementationGuide context", callID, guide.URL)
	}

	result, raw, err := p.fhir.Post(ctx, resourceType, query, resource)
	if err != nil {
		logging.Error("tools", err, "[%s] create %s failed", callID, resourceType)
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	createdID, _ := result["id"].(string)
	if createdID == "" {
		createdID = "N/A"
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Successfully created %s/%s\n\n%s", resourceType, createdID, format.RawJSONBlock(raw))), nil
}

func (p *Provider) handleUpdateResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType, errResult := requiredArg(request, "resource_type")
	if errResult != nil {
		return errResult, nil
	}
	resourceID, errResult := requiredArg(request, "resource_id")
	if errResult != nil {
		return errResult, nil
	}
	resourceJSON, errResult := requiredArg(request, "resource_json")
	if errResult != nil {
		return errResult, nil
	}

	var resource map[string]any
	if err := json.Unmarshal([]byte(resourceJSON), &resource); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ Error: Invalid JSON - %v", err)), nil
	}

	// The path parameters are authoritative: whatever the body claims,
	// id and resourceType are forced to match them.
	resource["id"] = resourceID
	resource["resourceType"] = resourceType

	logging.Info("tools", "[%s] updating %s/%s", newCallID(), resourceType, resourceID)

	_, raw, err := p.fhir.Put(ctx, resourceType+"/"+resourceID, resource)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✅ Successfully updated %s/%s\n\n%s", resourceType, resourceID, format.RawJSONBlock(raw))), nil
}

func (p *Provider) handleDeleteResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType, errResult := requiredArg(request, "resource_type")
	if errResult != nil {
		return errResult, nil
	}
	resourceID, errResult := requiredArg(request, "resource_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] deleting %s/%s", newCallID(), resourceType, resourceID)

	if _, _, err := p.fhir.Delete(ctx, resourceType+"/"+resourceID); err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Successfully deleted %s/%s", resourceType, resourceID)), nil
}
