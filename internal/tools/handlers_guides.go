package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/internal/igcontext"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// fetchImplementationGuide resolves a guide by id (direct read) or by
// canonical URL (search, first match). The raw bytes are non-nil only for
// the direct read, where the response is the guide itself.
func (p *Provider) fetchImplementationGuide(ctx context.Context, guideID, guideURL string) (map[string]any, []byte, *mcp.CallToolResult) {
	if guideID != "" {
		result, raw, err := p.fhir.Get(ctx, "ImplementationGuide/"+guideID, nil)
		if err != nil {
			if fhir.IsNotFound(err) {
				return nil, nil, mcp.NewToolResultError(fmt.Sprintf("❌ Error: ImplementationGuide/%s not found.", guideID))
			}
			return nil, nil, mcp.NewToolResultError(fhir.Normalize(err))
		}
		return result, raw, nil
	}

	query := url.Values{}
	query.Set("url", guideURL)
	bundle, _, err := p.fhir.Get(ctx, "ImplementationGuide", query)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fhir.Normalize(err))
	}
	entries, _ := bundle["entry"].([]any)
	if len(entries) == 0 {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("❌ Error: No ImplementationGuide found with URL: %s", guideURL))
	}
	entry, _ := entries[0].(map[string]any)
	resource, _ := entry["resource"].(map[string]any)
	return resource, nil, nil
}

func (p *Provider) handleListImplementationGuides(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := optionalArg(request, "name")
	logging.Info("tools", "[%s] listing ImplementationGuides name=%q", newCallID(), name)

	query := url.Values{}
	query.Set("_count", countArg(request, "50"))
	setIfPresent(query, "name:contains", name)

	result, rawBody, err := p.fhir.Get(ctx, "ImplementationGuide", query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(rawBody)), nil
	}
	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText("📋 No ImplementationGuides found."), nil
	}

	total, _ := format.BundleTotal(result)
	lines := []string{fmt.Sprintf("# ImplementationGuides (%d of %d)", len(entries), total), ""}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ig, _ := entry["resource"].(map[string]any)
		lines = append(lines, format.ImplementationGuideEntry(ig), "")
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (p *Provider) handleGetImplementationGuide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guideID := optionalArg(request, "implementation_guide_id")
	guideURL := optionalArg(request, "implementation_guide_url")
	if guideID == "" && guideURL == "" {
		return mcp.NewToolResultError("❌ Error: You must provide either an ImplementationGuide ID or URL."), nil
	}
	logging.Info("tools", "[%s] getting ImplementationGuide id=%q url=%q", newCallID(), guideID, guideURL)

	result, raw, errResult := p.fetchImplementationGuide(ctx, guideID, guideURL)
	if errResult != nil {
		return errResult, nil
	}

	if p.wantsJSON(request) {
		if raw != nil {
			return mcp.NewToolResultText(format.RawJSON(raw)), nil
		}
		return mcp.NewToolResultText(format.PrettyJSON(result)), nil
	}
	return mcp.NewToolResultText(format.ImplementationGuideDetail(result)), nil
}

func (p *Provider) handleSetGuideContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guideID := optionalArg(request, "implementation_guide_id")
	guideURL := optionalArg(request, "implementation_guide_url")
	callID := newCallID()

	// Neither identifier given: the setter doubles as the clear operation.
	if guideID == "" && guideURL == "" {
		p.guides.Clear()
		logging.Info("tools", "[%s] ImplementationGuide context cleared", callID)
		return mcp.NewToolResultText("✅ ImplementationGuide context cleared."), nil
	}

	logging.Info("tools", "[%s] setting ImplementationGuide context id=%q url=%q", callID, guideID, guideURL)
	result, _, errResult := p.fetchImplementationGuide(ctx, guideID, guideURL)
	if errResult != nil {
		return errResult, nil
	}

	guide := igcontext.Guide{
		ID:      stringField(result, "id"),
		URL:     stringField(result, "url"),
		Name:    guideName(result),
		Version: stringField(result, "version"),
	}
	p.guides.Set(guide)

	return mcp.NewToolResultText(fmt.Sprintf(
		"✅ ImplementationGuide context set to:\n- **Name**: %s\n- **ID**: %s\n- **URL**: %s",
		orNA(guide.Name), orNA(guide.ID), orNA(guide.URL))), nil
}

func (p *Provider) handleGetGuideContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guide := p.guides.Get()
	if !guide.IsSet() {
		return mcp.NewToolResultText("📋 No ImplementationGuide context is currently set. Use fhir_set_implementation_guide_context to set one."), nil
	}

	lines := []string{
		"# Current ImplementationGuide Context",
		"",
		"**Name**: " + orNA(guide.Name),
		"**ID**: " + orNA(guide.ID),
		"**URL**: " + orNA(guide.URL),
		"**Version**: " + orNA(guide.Version),
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func guideName(ig map[string]any) string {
	if name := stringField(ig, "name"); name != "" {
		return name
	}
	return stringField(ig, "title")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
