package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// listTerminologyResources serves both the CodeSystem and ValueSet list
// tools, which differ only in resource type.
func (p *Provider) listTerminologyResources(ctx context.Context, request mcp.CallToolRequest, resourceType string) (*mcp.CallToolResult, error) {
	name := optionalArg(request, "name")
	rawURL := optionalArg(request, "url")
	logging.Info("tools", "[%s] listing %s name=%q url=%q", newCallID(), resourceType, name, rawURL)

	query := url.Values{}
	query.Set("_count", countArg(request, "50"))
	setIfPresent(query, "name:contains", name)
	setIfPresent(query, "url:contains", rawURL)

	result, rawBody, err := p.fhir.Get(ctx, resourceType, query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(rawBody)), nil
	}
	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("📋 No %ss found matching the criteria.", resourceType)), nil
	}

	total, _ := format.BundleTotal(result)
	lines := []string{fmt.Sprintf("# %ss (%d of %d)", resourceType, len(entries), total), ""}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		resource, _ := entry["resource"].(map[string]any)
		lines = append(lines, format.TerminologyEntry(resource), "")
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (p *Provider) handleListValueSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return p.listTerminologyResources(ctx, request, "ValueSet")
}

func (p *Provider) handleListCodeSystems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return p.listTerminologyResources(ctx, request, "CodeSystem")
}

func (p *Provider) handleExpandValueSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	valuesetID := optionalArg(request, "valueset_id")
	valuesetURL := optionalArg(request, "valueset_url")

	var endpoint string
	query := url.Values{}
	switch {
	case valuesetID != "":
		endpoint = "ValueSet/" + valuesetID + "/$expand"
	case valuesetURL != "":
		endpoint = "ValueSet/$expand"
		query.Set("url", valuesetURL)
	default:
		return mcp.NewToolResultError("❌ Error: You must provide either a ValueSet ID or URL."), nil
	}

	query.Set("count", countArg(request, "100"))
	setIfPresent(query, "filter", optionalArg(request, "filter"))
	logging.Info("tools", "[%s] expanding ValueSet id=%q url=%q", newCallID(), valuesetID, valuesetURL)

	result, rawBody, err := p.fhir.Get(ctx, endpoint, query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(rawBody)), nil
	}
	return mcp.NewToolResultText(format.ValueSetExpansion(result)), nil
}

func (p *Provider) handleLookupCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	system, errResult := requiredArg(request, "system")
	if errResult != nil {
		return errResult, nil
	}
	code, errResult := requiredArg(request, "code")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] looking up code %s in %s", newCallID(), code, system)

	query := url.Values{}
	query.Set("system", system)
	query.Set("code", code)
	setIfPresent(query, "version", optionalArg(request, "version"))

	result, _, err := p.fhir.Get(ctx, "CodeSystem/$lookup", query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	return mcp.NewToolResultText(format.LookupResult(system, code, result)), nil
}
