package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyJSONRoundTrip(t *testing.T) {
	original := map[string]any{
		"resourceType": "Patient",
		"id":           "42",
		"name": []any{
			map[string]any{"given": []any{"Ada", "Mary"}, "family": "Lovelace"},
		},
		"multipleBirthInteger": float64(2),
		"active":               true,
	}

	out := PrettyJSON(original)

	var reparsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reparsed))
	assert.Equal(t, original, reparsed, "raw_json mode must be lossless")
}

func TestRawJSONPreservesKeyOrder(t *testing.T) {
	raw := []byte(`{"resourceType":"Patient","id":"1","active":true}`)

	out := RawJSON(raw)

	// Keys stay in received order, not alphabetical.
	typeIdx := strings.Index(out, `"resourceType"`)
	idIdx := strings.Index(out, `"id"`)
	activeIdx := strings.Index(out, `"active"`)
	require.NotEqual(t, -1, typeIdx)
	assert.Less(t, typeIdx, idIdx)
	assert.Less(t, idIdx, activeIdx)

	var reparsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reparsed))
	assert.Equal(t, "Patient", reparsed["resourceType"])
}

func TestRawJSONInvalidBytesPassThrough(t *testing.T) {
	raw := []byte("not json")
	assert.Equal(t, "not json", RawJSON(raw))
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		resource map[string]any
		expected string
	}{
		{
			name:     "title wins over name",
			resource: map[string]any{"title": "The Title", "name": "TheName"},
			expected: "The Title",
		},
		{
			name:     "plain string name",
			resource: map[string]any{"name": "WHOImmunizationGuide"},
			expected: "WHOImmunizationGuide",
		},
		{
			name: "human name list",
			resource: map[string]any{"name": []any{
				map[string]any{"given": []any{"Ada", "Mary"}, "family": "Lovelace"},
			}},
			expected: "Ada Mary Lovelace",
		},
		{
			name:     "nothing available",
			resource: map[string]any{"id": "1"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayTitle(tt.resource))
		})
	}
}

func TestResourceSummary(t *testing.T) {
	resource := map[string]any{
		"resourceType": "PlanDefinition",
		"id":           "immunization-plan",
		"title":        "Immunization Schedule",
		"status":       "active",
		"description":  strings.Repeat("d", 250),
	}

	out := ResourceSummary(resource)
	assert.Contains(t, out, "**PlanDefinition** (ID: immunization-plan)")
	assert.Contains(t, out, "Title: Immunization Schedule")
	assert.Contains(t, out, "Status: active")
	assert.Contains(t, out, strings.Repeat("d", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("d", 201))
}

func TestResourceSummaryPatientName(t *testing.T) {
	patient := map[string]any{
		"resourceType": "Patient",
		"id":           "p1",
		"name": []any{
			map[string]any{"given": []any{"Grace"}, "family": "Hopper"},
		},
		"birthDate": "1906-12-09",
		"gender":    "female",
	}

	out := ResourceSummary(patient)
	assert.Contains(t, out, "Name: Grace Hopper")
	assert.Contains(t, out, "Birth Date: 1906-12-09")
	assert.Contains(t, out, "Gender: female")
}

func TestBundleSummaryTotals(t *testing.T) {
	t.Run("server-reported total", func(t *testing.T) {
		bundle := map[string]any{
			"resourceType": "Bundle",
			"total":        float64(137),
			"entry": []any{
				map[string]any{"resource": map[string]any{"resourceType": "Patient", "id": "1"}},
			},
		}
		out := BundleSummary(bundle)
		assert.Contains(t, out, "Total: 137")
		assert.NotContains(t, out, "approximate")
	})

	t.Run("total absent falls back to entry count, marked approximate", func(t *testing.T) {
		bundle := map[string]any{
			"resourceType": "Bundle",
			"entry": []any{
				map[string]any{"resource": map[string]any{"resourceType": "Patient", "id": "1"}},
				map[string]any{"resource": map[string]any{"resourceType": "Patient", "id": "2"}},
			},
		}
		out := BundleSummary(bundle)
		assert.Contains(t, out, "Total: 2, approximate")
	})
}

func TestBundleSummaryEntryCap(t *testing.T) {
	entries := make([]any, 25)
	for i := range entries {
		entries[i] = map[string]any{
			"resource": map[string]any{"resourceType": "Observation", "id": fmt.Sprintf("obs-%d", i)},
		}
	}
	bundle := map[string]any{"resourceType": "Bundle", "entry": entries}

	out := BundleSummary(bundle)
	assert.Contains(t, out, "obs-19")
	assert.NotContains(t, out, "obs-20")
	assert.Contains(t, out, "... and 5 more results")
}

func TestBundleSummaryEntryTitles(t *testing.T) {
	bundle := map[string]any{
		"resourceType": "Bundle",
		"total":        float64(1),
		"entry": []any{
			map[string]any{"resource": map[string]any{
				"resourceType": "ValueSet",
				"id":           "vaccines",
				"title":        "Vaccine Codes",
			}},
		},
	}
	out := BundleSummary(bundle)
	assert.Contains(t, out, "1. **ValueSet/vaccines** - Vaccine Codes")
}

func TestPlanDefinitionFormatting(t *testing.T) {
	pd := map[string]any{
		"resourceType": "PlanDefinition",
		"id":           "measles-plan",
		"title":        "Measles Immunization",
		"status":       "active",
		"url":          "http://example.org/PlanDefinition/measles",
		"goal": []any{
			map[string]any{"description": map[string]any{"text": "Full measles protection"}},
		},
		"action": []any{
			map[string]any{
				"title":               "First dose",
				"definitionCanonical": "http://example.org/ActivityDefinition/dose1",
				"action": []any{
					map[string]any{"description": "Check age"},
				},
			},
		},
	}

	out := PlanDefinition(pd, true)
	assert.Contains(t, out, "## Measles Immunization")
	assert.Contains(t, out, "**Status**: active")
	assert.Contains(t, out, "- Full measles protection")
	assert.Contains(t, out, "- **First dose**")
	assert.Contains(t, out, "Definition: http://example.org/ActivityDefinition/dose1")
	// Nested action is indented under its parent.
	assert.Contains(t, out, "  - **Check age**")

	withoutActions := PlanDefinition(pd, false)
	assert.NotContains(t, withoutActions, "### Actions")
}

func TestCarePlanResult(t *testing.T) {
	careplan := map[string]any{
		"resourceType": "CarePlan",
		"id":           "cp-1",
		"status":       "draft",
		"intent":       "proposal",
		"subject":      map[string]any{"reference": "Patient/123"},
		"activity": []any{
			map[string]any{
				"detail": map[string]any{
					"kind":   "ServiceRequest",
					"status": "scheduled",
					"code":   map[string]any{"text": "MMR vaccination"},
				},
			},
		},
	}

	out := CarePlanResult(careplan)
	assert.Contains(t, out, "CarePlan Generated Successfully")
	assert.Contains(t, out, "**Subject:** Patient/123")
	assert.Contains(t, out, "MMR vaccination")
	assert.Contains(t, out, "```json")
}

func TestValueSetExpansionCodeCap(t *testing.T) {
	contains := make([]any, 60)
	for i := range contains {
		contains[i] = map[string]any{
			"system":  "http://loinc.org",
			"code":    fmt.Sprintf("code-%d", i),
			"display": fmt.Sprintf("Display %d", i),
		}
	}
	valueset := map[string]any{
		"resourceType": "ValueSet",
		"name":         "TestSet",
		"url":          "http://example.org/vs",
		"expansion":    map[string]any{"contains": contains, "total": float64(60)},
	}

	out := ValueSetExpansion(valueset)
	assert.Contains(t, out, "**Total Codes**: 60")
	assert.Contains(t, out, "code-49")
	assert.NotContains(t, out, "code-50")
	assert.Contains(t, out, "... and 10 more codes")
}

func TestLookupResult(t *testing.T) {
	parameters := map[string]any{
		"resourceType": "Parameters",
		"parameter": []any{
			map[string]any{"name": "display", "valueString": "Body weight"},
			map[string]any{"name": "abstract", "valueBoolean": false},
			map[string]any{"name": "property", "part": []any{
				map[string]any{"name": "code", "valueCode": "status"},
				map[string]any{"name": "value", "valueString": "active"},
			}},
		},
	}

	out := LookupResult("http://loinc.org", "29463-7", parameters)
	assert.Contains(t, out, "# Code Lookup: 29463-7")
	assert.Contains(t, out, "**System**: http://loinc.org")
	assert.Contains(t, out, "**display**: Body weight")
	assert.Contains(t, out, "**abstract**: false")
	assert.Contains(t, out, "code=status")
}

func TestCapabilityStatement(t *testing.T) {
	capability := map[string]any{
		"resourceType": "CapabilityStatement",
		"fhirVersion":  "4.0.1",
		"status":       "active",
		"software":     map[string]any{"name": "HAPI FHIR", "version": "6.2.0"},
		"rest": []any{
			map[string]any{
				"mode": "server",
				"resource": []any{
					map[string]any{
						"type": "Patient",
						"interaction": []any{
							map[string]any{"code": "read"},
							map[string]any{"code": "search-type"},
						},
						"searchParam": []any{
							map[string]any{"name": "name"},
							map[string]any{"name": "birthdate"},
						},
					},
				},
				"operation": []any{
					map[string]any{"name": "apply", "definition": "http://hl7.org/fhir/OperationDefinition/PlanDefinition-apply"},
				},
			},
		},
	}

	out := CapabilityStatement(capability)
	assert.Contains(t, out, "**FHIR Version**: 4.0.1")
	assert.Contains(t, out, "**Software**: HAPI FHIR 6.2.0")
	assert.Contains(t, out, "### Patient")
	assert.Contains(t, out, "read, search-type")
	assert.Contains(t, out, "- apply: http://hl7.org/fhir/OperationDefinition/PlanDefinition-apply")
}

func TestImplementationGuideDetail(t *testing.T) {
	ig := map[string]any{
		"resourceType": "ImplementationGuide",
		"id":           "who.smart.immunizations",
		"name":         "SMARTImmunizations",
		"url":          "http://smart.who.int/immunizations/ImplementationGuide/smart.who.int.immunizations",
		"fhirVersion":  []any{"4.0.1"},
		"dependsOn": []any{
			map[string]any{"uri": "http://hl7.org/fhir/uv/cpg", "version": "1.0.0"},
		},
		"definition": map[string]any{
			"resource": []any{
				map[string]any{
					"reference": map[string]any{"reference": "PlanDefinition/measles"},
					"name":      "Measles plan",
				},
			},
		},
	}

	out := ImplementationGuideDetail(ig)
	assert.Contains(t, out, "# ImplementationGuide: SMARTImmunizations")
	assert.Contains(t, out, "**FHIR Version**: 4.0.1")
	assert.Contains(t, out, "- http://hl7.org/fhir/uv/cpg (version: 1.0.0)")
	assert.Contains(t, out, "- PlanDefinition/measles: Measles plan")
}

func TestDataRequirements(t *testing.T) {
	library := map[string]any{
		"resourceType": "Library",
		"dataRequirement": []any{
			map[string]any{
				"type":    "Immunization",
				"profile": []any{"http://hl7.org/fhir/StructureDefinition/Immunization"},
				"codeFilter": []any{
					map[string]any{"path": "vaccineCode", "valueSet": "http://example.org/vs/vaccines"},
				},
			},
		},
	}

	out := DataRequirements(library)
	assert.Contains(t, out, "• **Immunization**")
	assert.Contains(t, out, "Code Filter: vaccineCode from http://example.org/vs/vaccines")

	empty := DataRequirements(map[string]any{"resourceType": "Library"})
	assert.Contains(t, empty, "No specific data requirements defined.")
}
