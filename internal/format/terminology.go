package format

import (
	"encoding/json"
	"fmt"
	"strings"
)

// expansionCodeCap limits how many codes a ValueSet expansion summary shows.
const expansionCodeCap = 50

// ValueSetExpansion renders the result of ValueSet/$expand: the set's
// identity plus its codes, capped at expansionCodeCap for readability.
func ValueSetExpansion(valueset map[string]any) string {
	expansion := getMap(valueset, "expansion")
	contains := getList(expansion, "contains")

	total := len(contains)
	if t, ok := expansion["total"].(float64); ok {
		total = int(t)
	}

	lines := []string{
		"# ValueSet Expansion",
		"",
		fieldLine("Name", getStringOr(valueset, "name", getStringOr(valueset, "title", "N/A"))),
		fieldLine("URL", getStringOr(valueset, "url", "N/A")),
		fieldLine("Total Codes", total),
		"",
		"## Codes",
		"",
	}

	for i, raw := range contains {
		if i >= expansionCodeCap {
			lines = append(lines, fmt.Sprintf("\n... and %d more codes", len(contains)-expansionCodeCap))
			break
		}
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s", getString(item, "code"), getString(item, "display")))
		lines = append(lines, "  System: "+getString(item, "system"))
	}

	return strings.Join(lines, "\n")
}

// LookupResult renders the Parameters resource returned by
// CodeSystem/$lookup: one line per parameter entry, with the polymorphic
// value[x] fields resolved in a fixed order.
func LookupResult(system, code string, parameters map[string]any) string {
	lines := []string{
		"# Code Lookup: " + code,
		"",
		fieldLine("System", system),
	}

	for _, raw := range getList(parameters, "parameter") {
		param, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := getString(param, "name")
		value := parameterValue(param)
		if name == "" || value == nil {
			continue
		}
		lines = append(lines, fieldLine(name, value))
	}

	return strings.Join(lines, "\n")
}

// parameterValue resolves the value[x] of a Parameters entry. Candidate
// order matches the fields terminology servers actually return for
// $lookup: display/definition come back as valueString, properties as
// valueCode or valueCoding.
func parameterValue(param map[string]any) any {
	for _, key := range []string{"valueString", "valueCode", "valueBoolean"} {
		if v, ok := param[key]; ok {
			return v
		}
	}
	if coding, ok := param["valueCoding"].(map[string]any); ok {
		encoded, _ := json.Marshal(coding)
		return string(encoded)
	}
	// Nested parts (designation, property) render as "name value" pairs.
	if parts := getList(param, "part"); len(parts) > 0 {
		var rendered []string
		for _, rawPart := range parts {
			part, ok := rawPart.(map[string]any)
			if !ok {
				continue
			}
			if v := parameterValue(part); v != nil {
				rendered = append(rendered, fmt.Sprintf("%s=%v", getString(part, "name"), v))
			}
		}
		if len(rendered) > 0 {
			return strings.Join(rendered, ", ")
		}
	}
	return nil
}
