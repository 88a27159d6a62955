package format

import (
	"fmt"
	"strings"
)

// searchParamCap limits how many search parameters are listed per resource
// in the capability summary.
const searchParamCap = 10

// CapabilityStatement projects the server's /metadata response down to the
// subset an agent needs: FHIR version, software, and the supported
// resource types with their interactions and operations.
func CapabilityStatement(capability map[string]any) string {
	software := getMap(capability, "software")

	lines := []string{
		"# FHIR Server Capability Statement",
		"",
		fieldLine("FHIR Version", getStringOr(capability, "fhirVersion", "N/A")),
		fieldLine("Software", strings.TrimSpace(fmt.Sprintf("%s %s",
			getStringOr(software, "name", "N/A"), getString(software, "version")))),
		fieldLine("Status", getStringOr(capability, "status", "N/A")),
	}

	rest := firstMap(getList(capability, "rest"))
	if rest == nil {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, fieldLine("Mode", getStringOr(rest, "mode", "N/A")))

	resources := getList(rest, "resource")
	lines = append(lines, "", fmt.Sprintf("## Supported Resources (%d)", len(resources)))

	for _, raw := range resources {
		res, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, "", "### "+getStringOr(res, "type", "Unknown"))

		var interactions []string
		for _, rawInteraction := range getList(res, "interaction") {
			if m, ok := rawInteraction.(map[string]any); ok {
				interactions = append(interactions, getString(m, "code"))
			}
		}
		lines = append(lines, fieldLine("Interactions", strings.Join(interactions, ", ")))

		var searchParams []string
		for _, rawParam := range getList(res, "searchParam") {
			if m, ok := rawParam.(map[string]any); ok {
				searchParams = append(searchParams, getString(m, "name"))
			}
		}
		if len(searchParams) > 0 {
			shown := searchParams
			if len(shown) > searchParamCap {
				shown = shown[:searchParamCap]
			}
			lines = append(lines, fieldLine("Search Parameters", strings.Join(shown, ", ")))
			if len(searchParams) > searchParamCap {
				lines = append(lines, fmt.Sprintf("  ... and %d more", len(searchParams)-searchParamCap))
			}
		}
	}

	if operations := getList(rest, "operation"); len(operations) > 0 {
		lines = append(lines, "", fmt.Sprintf("## Operations (%d)", len(operations)))
		for _, raw := range operations {
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: %s",
				getStringOr(op, "name", "N/A"), getStringOr(op, "definition", "N/A")))
		}
	}

	return strings.Join(lines, "\n")
}
