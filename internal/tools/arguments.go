package tools

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// requiredArg extracts a required string argument, trimmed of surrounding
// whitespace. A missing or blank value yields an immediate error result;
// by contract no network call happens after that.
func requiredArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	value := strings.TrimSpace(request.GetString(name, ""))
	if value == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("❌ Error: %s is required", name))
	}
	return value, nil
}

// optionalArg extracts an optional string argument. Blank values collapse
// to "" so they are treated as absent filters, never sent as empty-string
// query parameters.
func optionalArg(request mcp.CallToolRequest, name string) string {
	return strings.TrimSpace(request.GetString(name, ""))
}

// countArg returns the page-size argument or its tool-specific default.
func countArg(request mcp.CallToolRequest, fallback string) string {
	if v := optionalArg(request, "count"); v != "" {
		return v
	}
	return fallback
}

// responseFormat resolves the per-call output mode: "json" for
// pass-through pretty JSON, anything else (normally "markdown") selects
// the condensed summary.
func (p *Provider) responseFormat(request mcp.CallToolRequest) string {
	if v := optionalArg(request, "response_format"); v != "" {
		return v
	}
	return p.defaultFormat
}

func (p *Provider) wantsJSON(request mcp.CallToolRequest) bool {
	return p.responseFormat(request) == "json"
}

// responseFormatOr resolves the output mode with a per-tool default,
// bypassing the provider-wide setting. Read tools default to raw JSON: a
// fetched resource is usually input for a follow-up call, not display.
func responseFormatOr(request mcp.CallToolRequest, fallback string) string {
	if v := optionalArg(request, "response_format"); v != "" {
		return v
	}
	return fallback
}

// setIfPresent adds a query parameter only when the value is non-blank.
func setIfPresent(query url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		query.Set(key, strings.TrimSpace(value))
	}
}

// parseSearchParams merges a free-form "key=value&key=value" string into
// the query. Segments without an equals sign are ignored.
func parseSearchParams(query url.Values, raw string) {
	for _, param := range strings.Split(raw, "&") {
		key, value, found := strings.Cut(param, "=")
		if !found || key == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		query.Set(key, value)
	}
}
