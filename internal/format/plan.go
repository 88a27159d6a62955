package format

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlanDefinition renders a PlanDefinition with its metadata, goals, and
// (optionally) its recursive action tree.
func PlanDefinition(pd map[string]any, includeActions bool) string {
	lines := []string{
		"## " + getStringOr(pd, "title", getStringOr(pd, "name", "Untitled")),
		fieldLine("ID", getStringOr(pd, "id", "N/A")),
		fieldLine("Status", getStringOr(pd, "status", "N/A")),
	}

	if url := getString(pd, "url"); url != "" {
		lines = append(lines, fieldLine("URL", url))
	}
	if version := getString(pd, "version"); version != "" {
		lines = append(lines, fieldLine("Version", version))
	}
	if desc := getString(pd, "description"); desc != "" {
		lines = append(lines, fieldLine("Description", desc))
	}
	if publisher := getString(pd, "publisher"); publisher != "" {
		lines = append(lines, fieldLine("Publisher", publisher))
	}

	if goals := getList(pd, "goal"); len(goals) > 0 {
		lines = append(lines, "", "### Goals")
		for _, raw := range goals {
			goal, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			desc := getMap(goal, "description")
			lines = append(lines, "- "+getStringOr(desc, "text", "No description"))
		}
	}

	if includeActions {
		if actions := getList(pd, "action"); len(actions) > 0 {
			lines = append(lines, "", "### Actions")
			lines = appendActions(lines, actions, 0)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// appendActions recursively formats a PlanDefinition action tree.
func appendActions(lines []string, actions []any, indent int) []string {
	prefix := strings.Repeat("  ", indent)
	for i, raw := range actions {
		action, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		title := getStringOr(action, "title", getStringOr(action, "description", fmt.Sprintf("Action %d", i+1)))
		lines = append(lines, fmt.Sprintf("%s- **%s**", prefix, title))

		if desc := getString(action, "description"); desc != "" && getString(action, "title") != "" {
			lines = append(lines, fmt.Sprintf("%s  Description: %s", prefix, desc))
		}
		if def := getString(action, "definitionCanonical"); def != "" {
			lines = append(lines, fmt.Sprintf("%s  Definition: %s", prefix, def))
		}
		if timing := firstPresent(action, "timingTiming", "timingDateTime", "timingPeriod"); timing != nil {
			encoded, _ := json.Marshal(timing)
			lines = append(lines, fmt.Sprintf("%s  Timing: %s", prefix, encoded))
		}
		if required := getString(action, "requiredBehavior"); required != "" {
			lines = append(lines, fmt.Sprintf("%s  Required: %s", prefix, required))
		}

		for _, rawCond := range getList(action, "condition") {
			cond, ok := rawCond.(map[string]any)
			if !ok {
				continue
			}
			expr := getMap(cond, "expression")
			lines = append(lines, fmt.Sprintf("%s  Condition (%s): %s",
				prefix, getStringOr(cond, "kind", "unknown"), getStringOr(expr, "expression", "N/A")))
		}

		if inputs := typeNames(getList(action, "input")); inputs != "" {
			lines = append(lines, fmt.Sprintf("%s  Inputs: %s", prefix, inputs))
		}
		if outputs := typeNames(getList(action, "output")); outputs != "" {
			lines = append(lines, fmt.Sprintf("%s  Outputs: %s", prefix, outputs))
		}

		if sub := getList(action, "action"); len(sub) > 0 {
			lines = appendActions(lines, sub, indent+1)
		}
	}
	return lines
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}

func typeNames(list []any) string {
	var names []string
	for _, raw := range list {
		if m, ok := raw.(map[string]any); ok {
			names = append(names, getStringOr(m, "type", "unknown"))
		}
	}
	return strings.Join(names, ", ")
}

// CarePlanResult renders the CarePlan produced by a $apply call, followed
// by the full JSON so nothing of the server's answer is lost.
func CarePlanResult(careplan map[string]any) string {
	var b strings.Builder
	b.WriteString("✅ **CarePlan Generated Successfully**\n\n")
	b.WriteString(fmt.Sprintf("**ID:** %s\n", getStringOr(careplan, "id", "N/A")))
	b.WriteString(fmt.Sprintf("**Status:** %s\n", getStringOr(careplan, "status", "unknown")))
	b.WriteString(fmt.Sprintf("**Intent:** %s\n", getStringOr(careplan, "intent", "unknown")))
	b.WriteString(fmt.Sprintf("**Subject:** %s\n", reference(getMap(careplan, "subject"))))

	if period := getMap(careplan, "period"); period != nil {
		b.WriteString(fmt.Sprintf("**Period:** %s to %s\n",
			getStringOr(period, "start", "N/A"), getStringOr(period, "end", "N/A")))
	}

	if activities := getList(careplan, "activity"); len(activities) > 0 {
		b.WriteString(fmt.Sprintf("\n**📋 Activities (%d):**\n", len(activities)))
		for i, raw := range activities {
			activity, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if detail := getMap(activity, "detail"); detail != nil {
				b.WriteString(fmt.Sprintf("\n  **%d. %s**\n", i+1, codingDisplay(getMap(detail, "code"))))
				b.WriteString(fmt.Sprintf("     Kind: %s\n", getStringOr(detail, "kind", "Unknown")))
				b.WriteString(fmt.Sprintf("     Status: %s\n", getStringOr(detail, "status", "unknown")))
				if scheduled := firstPresent(detail, "scheduledTiming", "scheduledPeriod", "scheduledString"); scheduled != nil {
					encoded, _ := json.Marshal(scheduled)
					b.WriteString(fmt.Sprintf("     Scheduled: %s\n", encoded))
				}
				if product := getMap(detail, "productCodeableConcept"); product != nil {
					b.WriteString(fmt.Sprintf("     Product: %s\n", codingDisplay(product)))
				}
			}
			if ref := getMap(activity, "reference"); ref != nil {
				b.WriteString(fmt.Sprintf("     Reference: %s\n", reference(ref)))
			}
		}
	}

	if contained := getList(careplan, "contained"); len(contained) > 0 {
		b.WriteString(fmt.Sprintf("\n**📦 Contained Resources (%d):**\n", len(contained)))
		for _, raw := range contained {
			res, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  • %s (ID: %s)\n",
				getStringOr(res, "resourceType", "Unknown"), getStringOr(res, "id", "N/A")))
		}
	}

	b.WriteString("\n**📄 Full CarePlan JSON:**\n")
	b.WriteString(JSONBlock(careplan))
	return b.String()
}

// ApplyBundleResult renders the Bundle shape some servers return from
// $apply (R5 style), one line group per entry.
func ApplyBundleResult(bundle map[string]any) string {
	var b strings.Builder
	b.WriteString("✅ **Apply Operation Result (Bundle)**\n\n")
	b.WriteString(fmt.Sprintf("**Type:** %s\n", getStringOr(bundle, "type", "unknown")))

	entries := getList(bundle, "entry")
	b.WriteString(fmt.Sprintf("**Entries:** %d\n\n", len(entries)))

	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		resource := getMap(entry, "resource")
		resourceType := getStringOr(resource, "resourceType", "Unknown")
		b.WriteString(fmt.Sprintf("**%d. %s** (ID: %s)\n", i+1, resourceType, getStringOr(resource, "id", "N/A")))

		switch resourceType {
		case "RequestGroup":
			b.WriteString(requestGroupActions(resource))
		case "CarePlan":
			b.WriteString(fmt.Sprintf("   Status: %s\n", getStringOr(resource, "status", "unknown")))
		case "MedicationRequest", "ImmunizationRecommendation", "ServiceRequest":
			code := getMap(resource, "medicationCodeableConcept")
			if code == nil {
				code = getMap(resource, "code")
			}
			b.WriteString(fmt.Sprintf("   Code: %s\n", codingDisplay(code)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RequestGroupResult renders a RequestGroup produced by $apply.
func RequestGroupResult(rg map[string]any) string {
	var b strings.Builder
	b.WriteString("✅ **RequestGroup Generated**\n\n")
	b.WriteString(fmt.Sprintf("**ID:** %s\n", getStringOr(rg, "id", "N/A")))
	b.WriteString(fmt.Sprintf("**Status:** %s\n", getStringOr(rg, "status", "unknown")))
	b.WriteString(fmt.Sprintf("**Intent:** %s\n", getStringOr(rg, "intent", "unknown")))
	b.WriteString(requestGroupActions(rg))
	return b.String()
}

func requestGroupActions(rg map[string]any) string {
	actions := getList(rg, "action")
	if len(actions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("   **Actions (%d):**\n", len(actions)))
	for _, raw := range actions {
		action, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("      • %s\n", getStringOr(action, "title", getStringOr(action, "description", "Untitled"))))
		if resource := getMap(action, "resource"); resource != nil {
			b.WriteString(fmt.Sprintf("        Resource: %s\n", reference(resource)))
		}
	}
	return b.String()
}

// DataRequirements renders the Library returned by $data-requirements:
// each required data element with its profiles and code/date filters.
func DataRequirements(library map[string]any) string {
	var b strings.Builder
	b.WriteString("📊 **Data Requirements for PlanDefinition**\n\n")

	reqs := getList(library, "dataRequirement")
	if len(reqs) == 0 {
		b.WriteString("No specific data requirements defined.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("**Required Data Elements (%d):**\n\n", len(reqs)))
	for _, raw := range reqs {
		req, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("• **%s**\n", getStringOr(req, "type", "Unknown")))

		if profiles := getList(req, "profile"); len(profiles) > 0 {
			var urls []string
			for _, p := range profiles {
				if s, ok := p.(string); ok {
					urls = append(urls, s)
				}
			}
			b.WriteString(fmt.Sprintf("  Profiles: %s\n", strings.Join(urls, ", ")))
		}

		for _, rawFilter := range getList(req, "codeFilter") {
			cf, ok := rawFilter.(map[string]any)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  Code Filter: %s from %s\n",
				getStringOr(cf, "path", "N/A"), getStringOr(cf, "valueSet", "N/A")))
		}
		for _, rawFilter := range getList(req, "dateFilter") {
			df, ok := rawFilter.(map[string]any)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  Date Filter: %s\n", getStringOr(df, "path", "N/A")))
		}
		b.WriteString("\n")
	}

	return b.String()
}
