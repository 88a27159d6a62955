package format

import (
	"fmt"
	"strings"

	pkgstrings "fhirmcp/pkg/strings"
)

// guideResourceCap limits how many definition resources an
// ImplementationGuide detail view lists.
const guideResourceCap = 20

// ImplementationGuideDetail renders the full view of an
// ImplementationGuide: identity, dependencies, global profiles, and the
// first guideResourceCap definition resources.
func ImplementationGuideDetail(ig map[string]any) string {
	lines := []string{
		"# ImplementationGuide: " + getStringOr(ig, "name", getStringOr(ig, "title", "Untitled")),
		"",
		fieldLine("ID", getStringOr(ig, "id", "N/A")),
		fieldLine("URL", getStringOr(ig, "url", "N/A")),
		fieldLine("Version", getStringOr(ig, "version", "N/A")),
		fieldLine("Status", getStringOr(ig, "status", "N/A")),
		fieldLine("FHIR Version", fhirVersions(ig)),
		fieldLine("Package ID", getStringOr(ig, "packageId", "N/A")),
	}

	if desc := getString(ig, "description"); desc != "" {
		lines = append(lines, "", fieldLine("Description", desc))
	}

	if deps := getList(ig, "dependsOn"); len(deps) > 0 {
		lines = append(lines, "", "## Dependencies")
		for _, raw := range deps {
			dep, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s (version: %s)",
				getStringOr(dep, "uri", "N/A"), getStringOr(dep, "version", "N/A")))
		}
	}

	if globals := getList(ig, "global"); len(globals) > 0 {
		lines = append(lines, "", "## Global Profiles")
		for _, raw := range globals {
			g, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("- Type: %s, Profile: %s",
				getStringOr(g, "type", "N/A"), getStringOr(g, "profile", "N/A")))
		}
	}

	resources := getList(getMap(ig, "definition"), "resource")
	if len(resources) > 0 {
		lines = append(lines, "", fmt.Sprintf("## Resources (%d total)", len(resources)))
		for i, raw := range resources {
			if i >= guideResourceCap {
				lines = append(lines, fmt.Sprintf("... and %d more", len(resources)-guideResourceCap))
				break
			}
			res, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			ref := getMap(res, "reference")
			lines = append(lines, fmt.Sprintf("- %s: %s",
				getStringOr(ref, "reference", "N/A"), getStringOr(res, "name", "N/A")))
		}
	}

	return strings.Join(lines, "\n")
}

// ImplementationGuideEntry renders one guide in a list view.
func ImplementationGuideEntry(ig map[string]any) string {
	lines := []string{
		"## " + getStringOr(ig, "name", getStringOr(ig, "title", "Untitled")),
		fieldLine("ID", getStringOr(ig, "id", "N/A")),
		fieldLine("URL", getStringOr(ig, "url", "N/A")),
		fieldLine("Version", getStringOr(ig, "version", "N/A")),
		fieldLine("Status", getStringOr(ig, "status", "N/A")),
		fieldLine("FHIR Version", fhirVersions(ig)),
	}
	if desc := getString(ig, "description"); desc != "" {
		lines = append(lines, fieldLine("Description", pkgstrings.Truncate(desc, pkgstrings.DefaultDescriptionMaxLen)))
	}
	return strings.Join(lines, "\n")
}

// TerminologyEntry renders one CodeSystem or ValueSet in a list view.
func TerminologyEntry(resource map[string]any) string {
	lines := []string{
		"## " + getStringOr(resource, "name", getStringOr(resource, "title", "Untitled")),
		fieldLine("ID", getStringOr(resource, "id", "N/A")),
		fieldLine("URL", getStringOr(resource, "url", "N/A")),
		fieldLine("Version", getStringOr(resource, "version", "N/A")),
		fieldLine("Status", getStringOr(resource, "status", "N/A")),
	}
	if desc := getString(resource, "description"); desc != "" {
		lines = append(lines, fieldLine("Description", pkgstrings.Truncate(desc, pkgstrings.DefaultDescriptionMaxLen)))
	}
	if concepts := getList(resource, "concept"); len(concepts) > 0 {
		lines = append(lines, fieldLine("Concept Count", len(concepts)))
	}
	return strings.Join(lines, "\n")
}

func fhirVersions(resource map[string]any) string {
	versions := getList(resource, "fhirVersion")
	if len(versions) == 0 {
		return "N/A"
	}
	var out []string
	for _, v := range versions {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}
