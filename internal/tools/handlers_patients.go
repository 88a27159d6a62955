package tools

import (
	"context"
	"fmt"
	"net/url"

	"fhirmcp/internal/fhir"
	"fhirmcp/internal/format"
	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

func (p *Provider) handleSearchPatients(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := optionalArg(request, "name")
	identifier := optionalArg(request, "identifier")
	birthdate := optionalArg(request, "birthdate")
	logging.Info("tools", "[%s] searching Patients name=%q identifier=%q", newCallID(), name, identifier)

	query := url.Values{}
	query.Set("_count", countArg(request, "50"))
	setIfPresent(query, "name", name)
	setIfPresent(query, "identifier", identifier)
	setIfPresent(query, "birthdate", birthdate)

	result, raw, err := p.fhir.Get(ctx, "Patient", query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	return mcp.NewToolResultText(format.BundleSummary(result)), nil
}

func (p *Provider) handleGetPatient(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, errResult := requiredArg(request, "patient_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] getting Patient/%s", newCallID(), patientID)

	result, raw, err := p.fhir.Get(ctx, "Patient/"+patientID, nil)
	if err != nil {
		if fhir.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("❌ Error: Patient/%s not found. Please verify the resource type and ID.", patientID)), nil
		}
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}
	return mcp.NewToolResultText(format.PatientDetail(result)), nil
}

func (p *Provider) handleGetPatientImmunizations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, errResult := requiredArg(request, "patient_id")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] getting immunizations for Patient/%s", newCallID(), patientID)

	query := url.Values{}
	query.Set("patient", "Patient/"+patientID)
	query.Set("_count", countArg(request, "100"))

	result, raw, err := p.fhir.Get(ctx, "Immunization", query)
	if err != nil {
		return mcp.NewToolResultError(fhir.Normalize(err)), nil
	}
	if p.wantsJSON(request) {
		return mcp.NewToolResultText(format.RawJSON(raw)), nil
	}

	entries, _ := result["entry"].([]any)
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("📋 No immunizations found for Patient/%s.", patientID)), nil
	}

	header := fmt.Sprintf("# Immunizations for Patient/%s", patientID)
	return mcp.NewToolResultText(header + "\n\n" + format.BundleResourceSummaries(result)), nil
}
