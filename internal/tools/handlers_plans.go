package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// newCallID returns a short correlation id tying a tool invocation's log
// lines together.
func newCallID() string {
	return uuid.NewString()[:8]
}

func (p *Provider) handleListPlanDefinitions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callID := newCallID()
	status := optionalArg(request, "status")
	title := optionalArg(request, "title")
	logging.Info("tools", "[%s] listing PlanDefinitions status=%q title=%q", callID, status, title)

	query := url.Values{}
	query.Set("_count", countArg(request, "100"))
	setIfPresent(query, "status", status)
	setIfPresent(query, "title:contains", title)

	result, raw, err := p.fhir.Get(ctx, "PlanDefinition", query)
	if err != nil {
		logging.Error("tools", err, "[%s] PlanDefinition search failed", callID)
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText("📋 No PlanDefinitions found matching the specified criteria."), nil
	}

	total, _ := format.BundleTotal(result)
	lines := []string{fmt.Sprintf("# PlanDefinitions (%d of %d)", len(entries), total), ""}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		pd, _ := entry["resource"].(map[string]any)
		lines = append(lines, format.PlanDefinition(pd, false))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (p *Provider) handleGetPlanDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, errResult := requiredArg(request, "plan_definition_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] getting PlanDefinition/%s", newCallID(), planID)

	result, raw, err := p.fhir.Get(ctx, "PlanDefinition/"+planID, nil)
	if err != nil {
		if fhir.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("❌ Error: PlanDefinition/%s not found. Please verify the ID.", planID)), nil
		}
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	return mcp.NewToolResultText(format.PlanDefinition(result, true)), nil
}

func (p *Provider) handleApplyPlanDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, errResult := requiredArg(request, "plan_definition_id")
	if errResult != nil {
		return errResult, nil
	}
	subject, errResult := requiredArg(request, "subject")
	if errResult != nil {
		return errResult, nil
	}
	// A bare id is assumed to reference a Patient.
	if !strings.Contains(subject, "/") {
		subject = "Patient/" + subject
	}

	callID := newCallID()
	logging.Info("tools", "[%s] applying PlanDefinition/%s to %s", callID, planID, subject)

	query := url.Values{}
	query.Set("subject", subject)
	setIfPresent(query, "encounter", optionalArg(request, "encounter"))
	setIfPresent(query, "practitioner", optionalArg(request, "practitioner"))
	setIfPresent(query, "organization", optionalArg(request, "organization"))

	result, raw, err := p.fhir.Get(ctx, "PlanDefinition/"+planID+"/$apply", query)
	if err != nil {
		logging.Error("tools", err, "[%s] $apply failed for PlanDefinition/%s", callID, planID)
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	// Servers differ in what $apply returns.
	switch resourceType, _ := result["resourceType"].(string); resourceType {
	case "CarePlan":
		return mcp.NewToolResultText(format.CarePlanResult(result)), nil
	case "Bundle":
		return mcp.NewToolResultText(format.ApplyBundleResult(result)), nil
	case "RequestGroup":
		return mcp.NewToolResultText(format.RequestGroupResult(result)), nil
	default:
		return mcp.NewToolResultText("✅ Apply operation returned:\n\n" + format.RawJSONBlock(raw)), nil
	}
}

func (p *Provider) handleDataRequirements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, errResult := requiredArg(request, "plan_definition_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] getting data requirements for PlanDefinition/%s", newCallID(), planID)

	result, _, err := p.fhir.Get(ctx, "PlanDefinition/"+planID+"/$data-requirements", nil)
	if err != nil {
		// A 404 on this operation endpoint means the server does not
		// implement it, not that the plan is missing.
		if fhir.IsNotFound(err) {
			return mcp.NewToolResultError("❌ The $data-requirements operation may not be supported by this FHIR server."), nil
		}
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	return mcp.NewToolResultText(format.DataRequirements(result)), nil
}
