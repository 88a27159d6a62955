package tools

import (
	"context"
	"strconv"
	"strings"
	"time"

	"fhirmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Structured create tools. These build the resource map from individual
// fields and delegate to the shared create path, so agents that cannot
// reliably author raw FHIR JSON still get validated writes.

const (
	defaultVaccineSystem    = "http://hl7.org/fhir/sid/cvx"
	defaultObservationCode  = "http://loinc.org"
	defaultIdentifierSystem = "http://example.org/fhir/identifier"
)

func (p *Provider) handleCreatePatient(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	familyName, errResult := requiredArg(request, "family_name")
	if errResult != nil {
		return errResult, nil
	}
	givenName := optionalArg(request, "given_name")
	logging.Info("tools", "[%s] creating Patient %s %s", newCallID(), givenName, familyName)

	given := []any{}
	if givenName != "" {
		given = append(given, givenName)
	}
	patient := map[string]any{
		"resourceType": "Patient",
		"name": []any{map[string]any{
			"use":    "official",
			"family": familyName,
			"given":  given,
		}},
	}
	if birthDate := optionalArg(request, "birth_date"); birthDate != "" {
		patient["birthDate"] = birthDate
	}
	if gender := optionalArg(request, "gender"); gender != "" {
		patient["gender"] = strings.ToLower(gender)
	}
	if identifier := optionalArg(request, "identifier_value"); identifier != "" {
		system := optionalArg(request, "identifier_system")
		if system == "" {
			system = defaultIdentifierSystem
		}
		patient["identifier"] = []any{map[string]any{
			"system": system,
			"value":  identifier,
		}}
	}

	return p.createResource(ctx, "Patient", patient)
}

func (p *Provider) handleCreateImmunization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, errResult := requiredArg(request, "patient_id")
	if errResult != nil {
		return errResult, nil
	}
	vaccineCode, errResult := requiredArg(request, "vaccine_code")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] creating Immunization for Patient/%s", newCallID(), patientID)

	system := optionalArg(request, "vaccine_system")
	if system == "" {
		system = defaultVaccineSystem
	}
	display := optionalArg(request, "vaccine_display")
	if display == "" {
		display = vaccineCode
	}
	status := optionalArg(request, "status")
	if status == "" {
		status = "completed"
	}
	occurrence := optionalArg(request, "occurrence_date")
	if occurrence == "" {
		occurrence = time.Now().UTC().Format(time.RFC3339)
	}

	immunization := map[string]any{
		"resourceType": "Immunization",
		"status":       status,
		"vaccineCode": map[string]any{
			"coding": []any{map[string]any{
				"system":  system,
				"code":    vaccineCode,
				"display": display,
			}},
			"text": display,
		},
		"patient": map[string]any{
			"reference": "Patient/" + patientID,
		},
		"occurrenceDateTime": occurrence,
		"primarySource":      true,
	}
	if lot := optionalArg(request, "lot_number"); lot != "" {
		immunization["lotNumber"] = lot
	}
	// A numeric dose goes out as doseNumberPositiveInt; anything else
	// (e.g. "booster") as doseNumberString.
	if dose := optionalArg(request, "dose_number"); dose != "" {
		if n, err := strconv.Atoi(dose); err == nil {
			immunization["protocolApplied"] = []any{map[string]any{"doseNumberPositiveInt": n}}
		} else {
			immunization["protocolApplied"] = []any{map[string]any{"doseNumberString": dose}}
		}
	}

	return p.createResource(ctx, "Immunization", immunization)
}

func (p *Provider) handleCreateObservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, errResult := requiredArg(request, "patient_id")
	if errResult != nil {
		return errResult, nil
	}
	code, errResult := requiredArg(request, "code")
	if errResult != nil {
		return errResult, nil
	}
	logging.Info("tools", "[%s] creating Observation for Patient/%s", newCallID(), patientID)

	system := optionalArg(request, "code_system")
	if system == "" {
		system = defaultObservationCode
	}
	display := optionalArg(request, "code_display")
	if display == "" {
		display = code
	}
	status := optionalArg(request, "status")
	if status == "" {
		status = "final"
	}
	effective := optionalArg(request, "effective_date")
	if effective == "" {
		effective = time.Now().UTC().Format(time.RFC3339)
	}

	observation := map[string]any{
		"resourceType": "Observation",
		"status":       status,
		"code": map[string]any{
			"coding": []any{map[string]any{
				"system":  system,
				"code":    code,
				"display": display,
			}},
			"text": display,
		},
		"subject": map[string]any{
			"reference": "Patient/" + patientID,
		},
		"effectiveDateTime": effective,
	}

	// valueString wins over valueQuantity when both are given.
	if valueString := optionalArg(request, "value_string"); valueString != "" {
		observation["valueString"] = valueString
	} else if valueQuantity := optionalArg(request, "value_quantity"); valueQuantity != "" {
		quantity, err := strconv.ParseFloat(valueQuantity, 64)
		if err != nil {
			return mcp.NewToolResultError("❌ Error: value_quantity must be numeric"), nil
		}
		observation["valueQuantity"] = map[string]any{
			"value":  quantity,
			"unit":   optionalArg(request, "value_unit"),
			"system": "http://unitsofmeasure.org",
		}
	}

	return p.createResource(ctx, "Observation", observation)
}
