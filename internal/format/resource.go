package format

import (
	"fmt"
	"strings"

	pkgstrings "fhirmcp/pkg/strings"
)

// ResourceSummary renders a condensed one-resource view: a header naming
// the type and id, followed by the display-priority fields that are
// present (name, title, status, description).
func ResourceSummary(resource map[string]any) string {
	resourceType := getStringOr(resource, "resourceType", "Unknown")
	resourceID := getStringOr(resource, "id", "N/A")

	lines := []string{fmt.Sprintf("**%s** (ID: %s)", resourceType, resourceID)}

	if name := displayName(resource); name != "" {
		lines = append(lines, "- Name: "+name)
	}
	if title := getString(resource, "title"); title != "" {
		lines = append(lines, "- Title: "+title)
	}
	if status := getString(resource, "status"); status != "" {
		lines = append(lines, "- Status: "+status)
	}
	if desc := getString(resource, "description"); desc != "" {
		lines = append(lines, "- Description: "+pkgstrings.Truncate(desc, pkgstrings.DefaultDescriptionMaxLen))
	}

	// Type-specific display fields.
	switch resourceType {
	case "Patient":
		if bd := getString(resource, "birthDate"); bd != "" {
			lines = append(lines, "- Birth Date: "+bd)
		}
		if gender := getString(resource, "gender"); gender != "" {
			lines = append(lines, "- Gender: "+gender)
		}
	case "Immunization":
		if vc := getMap(resource, "vaccineCode"); vc != nil {
			lines = append(lines, "- Vaccine: "+codingDisplay(vc))
		}
		if od := getString(resource, "occurrenceDateTime"); od != "" {
			lines = append(lines, "- Occurrence: "+od)
		}
	case "CarePlan", "RequestGroup", "MedicationRequest", "ServiceRequest":
		if intent := getString(resource, "intent"); intent != "" {
			lines = append(lines, "- Intent: "+intent)
		}
	}

	return strings.Join(lines, "\n")
}

// displayName resolves only the name field (string, HumanName, or list),
// without the title fallback DisplayTitle applies.
func displayName(resource map[string]any) string {
	switch name := resource["name"].(type) {
	case string:
		return name
	case map[string]any:
		return HumanName(name)
	case []any:
		if m := firstMap(name); m != nil {
			return HumanName(m)
		}
		for _, n := range name {
			if s, ok := n.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// PatientDetail renders the fuller patient view used by the patient read
// tool: demographics, identifiers, and primary address.
func PatientDetail(patient map[string]any) string {
	var b strings.Builder
	b.WriteString("👤 **Patient Details**\n\n")
	b.WriteString(fmt.Sprintf("**ID:** %s\n", getStringOr(patient, "id", "N/A")))

	if name := firstMap(getList(patient, "name")); name != nil {
		b.WriteString(fmt.Sprintf("**Name:** %s\n", HumanName(name)))
	}
	b.WriteString(fmt.Sprintf("**Birth Date:** %s\n", getStringOr(patient, "birthDate", "Unknown")))
	b.WriteString(fmt.Sprintf("**Gender:** %s\n", getStringOr(patient, "gender", "Unknown")))

	if identifiers := getList(patient, "identifier"); len(identifiers) > 0 {
		b.WriteString("**Identifiers:**\n")
		for _, raw := range identifiers {
			ident, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  • %s: %s\n",
				getStringOr(ident, "system", "Unknown"),
				getStringOr(ident, "value", "N/A")))
		}
	}

	if addr := firstMap(getList(patient, "address")); addr != nil {
		var addrLines []string
		for _, l := range getList(addr, "line") {
			if s, ok := l.(string); ok {
				addrLines = append(addrLines, s)
			}
		}
		b.WriteString(fmt.Sprintf("**Address:** %s, %s, %s %s\n",
			strings.Join(addrLines, ", "),
			getString(addr, "city"),
			getString(addr, "state"),
			getString(addr, "postalCode")))
	}

	return b.String()
}
