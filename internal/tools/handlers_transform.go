package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// targetStructureMapExtension is the SDC extension carrying the canonical
// URL of the StructureMap that maps a Questionnaire's responses.
const targetStructureMapExtension = "http://hl7.org/fhir/uv/sdc/StructureDefinition/sdc-questionnaire-targetStructureMap"

func (p *Provider) handleListQuestionnaires(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := optionalArg(request, "title")
	status := optionalArg(request, "status")
	logging.Info("tools", "[%s] listing Questionnaires title=%q status=%q", newCallID(), title, status)

	query := url.Values{}
	query.Set("_count", countArg(request, "50"))
	setIfPresent(query, "title:contains", title)
	setIfPresent(query, "status", status)

	result, rawBody, err := p.fhir.Get(ctx, "Questionnaire", query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(rawBody)), nil
	}

	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText("📋 No Questionnaires found."), nil
	}
	return mcp.NewToolResultText(format.BundleResourceSummaries(result)), nil
}

// fetchQuestionnaire resolves a Questionnaire by id (direct read) or by
// canonical URL (search, first match). The raw bytes are non-nil only for
// the direct read, where the response is the questionnaire itself.
func (p *Provider) fetchQuestionnaire(ctx context.Context, questionnaireID, questionnaireURL string) (map[string]any, []byte, *mcp.CallToolResult) {
	if questionnaireID != "" {
		result, raw, err := p.fhir.Get(ctx, "Questionnaire/"+questionnaireID, nil)
		if err != nil {
			if fhir.IsNotFound(err) {
				return nil, nil, mcp.NewToolResultError(fmt.Sprintf("❌ Error: Questionnaire/%s not found.", questionnaireID))
			}
			return nil, nil, mcp.NewToolResultError(fhir.Normalize(err))
		}
		return result, raw, nil
	}

	query := url.Values{}
	query.Set("url", questionnaireURL)
	bundle, _, err := p.fhir.Get(ctx, "Questionnaire", query)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fhir.Normalize(err))
	}
	entries, _ := bundle["entry"].([]any)
	if len(entries) == 0 {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("❌ Error: No Questionnaire found with URL: %s", questionnaireURL))
	}
	entry, _ := entries[0].(map[string]any)
	resource, _ := entry["resource"].(map[string]any)
	return resource, nil, nil
}

func (p *Provider) handleGetQuestionnaire(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	questionnaireID := optionalArg(request, "questionnaire_id")
	questionnaireURL := optionalArg(request, "questionnaire_url")
	if questionnaireID == "" && questionnaireURL == "" {
		return mcp.NewToolResultError("❌ Error: You must provide either a Questionnaire ID or URL."), nil
	}
	logging.Info("tools", "[%s] getting Questionnaire id=%q url=%q", newCallID(), questionnaireID, questionnaireURL)

	result, raw, errResult := p.fetchQuestionnaire(ctx, questionnaireID, questionnaireURL)
	if errResult != nil {
		return errResult, nil
	}

	if responseFormatOr(request, "json") == "markdown" {
		return mcp.NewToolResultText(format.ResourceSummary(result)), nil
	}
	if raw != nil {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	return mcp.NewToolResultText(format.PrettyJSON(result)), nil
}

func (p *Provider) handleTransformQuestionnaireResponse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawResponse, errResult := requiredArg(request, "questionnaire_response_json")
	if errResult != nil {
		return errResult, nil
	}
	callID := newCallID()

	var questionnaireResponse map[string]any
	if err := json.Unmarshal([]byte(rawResponse), &questionnaireResponse); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ Error: Invalid JSON - %v", err)), nil
	}
	if rt, _ := questionnaireResponse["resourceType"].(string); rt != "QuestionnaireResponse" {
		return mcp.NewToolResultError("❌ Error: The resource must be a QuestionnaireResponse."), nil
	}

	mapURL := optionalArg(request, "structure_map_url")
	if mapURL == "" {
		resolved, errResult := p.resolveStructureMapURL(ctx, questionnaireResponse)
		if errResult != nil {
			return errResult, nil
		}
		mapURL = resolved
	}
	logging.Info("tools", "[%s] transforming QuestionnaireResponse via %s", callID, mapURL)

	query := url.Values{}
	query.Set("source", mapURL)
	_, raw, err := p.matchbox.Request(ctx, "POST", "StructureMap/$transform", query, questionnaireResponse)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}

	lines := []string{
		"✅ **Transformation successful**",
		"",
		"**StructureMap**: " + mapURL,
		"",
		format.RawJSONBlock(raw),
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// resolveStructureMapURL follows the QuestionnaireResponse's questionnaire
// canonical to the Questionnaire and reads its targetStructureMap extension.
func (p *Provider) resolveStructureMapURL(ctx context.Context, questionnaireResponse map[string]any) (string, *mcp.CallToolResult) {
	canonical, _ := questionnaireResponse["questionnaire"].(string)
	if canonical == "" {
		return "", mcp.NewToolResultError("❌ Error: The QuestionnaireResponse has no 'questionnaire' reference and no structure_map_url was provided.")
	}

	questionnaire, _, errResult := p.fetchQuestionnaire(ctx, "", canonical)
	if errResult != nil {
		return "", errResult
	}

	extensions, _ := questionnaire["extension"].([]any)
	for _, raw := range extensions {
		ext, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if ext["url"] == targetStructureMapExtension {
			if target, _ := ext["valueCanonical"].(string); target != "" {
				return target, nil
			}
		}
	}
	return "", mcp.NewToolResultError(fmt.Sprintf(
		"❌ Error: Questionnaire %s has no targetStructureMap extension; provide structure_map_url explicitly.", canonical))
}
