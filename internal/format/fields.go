package format

import (
	"fmt"
	"strings"
)

// Accessors for untyped FHIR JSON. FHIR fields are frequently absent or
// shaped differently between servers, so every lookup degrades to a zero
// value instead of failing.

func getString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func getStringOr(m map[string]any, key, fallback string) string {
	if v := getString(m, key); v != "" {
		return v
	}
	return fallback
}

func getMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func getList(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func firstMap(list []any) map[string]any {
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// HumanName renders a FHIR HumanName ({given: [...], family: ...}) as
// "given family".
func HumanName(name map[string]any) string {
	var given []string
	for _, g := range getList(name, "given") {
		if s, ok := g.(string); ok {
			given = append(given, s)
		}
	}
	parts := append(given, getString(name, "family"))
	return strings.TrimSpace(strings.Join(parts, " "))
}

// DisplayTitle resolves a one-line display title for a resource using a
// fixed candidate order: title, then name. A name may be a plain string, a
// HumanName object, or a list of either; the first usable value wins.
func DisplayTitle(resource map[string]any) string {
	if title := getString(resource, "title"); title != "" {
		return title
	}

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

// codingDisplay resolves display text from a CodeableConcept, preferring
// text, then the first coding's display, then its bare code.
func codingDisplay(concept map[string]any) string {
	if text := getString(concept, "text"); text != "" {
		return text
	}
	coding := firstMap(getList(concept, "coding"))
	if coding == nil {
		return "N/A"
	}
	return getStringOr(coding, "display", getStringOr(coding, "code", "N/A"))
}

// reference extracts the reference string from a Reference object.
func reference(ref map[string]any) string {
	return getStringOr(ref, "reference", "N/A")
}

func fieldLine(label string, value any) string {
	return fmt.Sprintf("**%s**: %v", label, value)
}
