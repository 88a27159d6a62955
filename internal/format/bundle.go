package format

import (
	"fmt"
	"strings"

	pkgstrings "fhirmcp/pkg/strings"
)

// bundleEntryCap limits how many entries a bundle summary lists before the
// "... and N more" trailer.
const bundleEntryCap = 20

// BundleTotal returns the bundle's total and whether the server reported it.
// When Bundle.total is absent the entry count substitutes for it, which
// under-reports paged results; callers label that case as approximate.
func BundleTotal(bundle map[string]any) (int, bool) {
	if total, ok := bundle["total"].(float64); ok {
		return int(total), true
	}
	return len(getList(bundle, "entry")), false
}

// BundleSummary renders a search-result Bundle as a numbered list of
// entries, each with a resolved display title, capped at bundleEntryCap.
func BundleSummary(bundle map[string]any) string {
	entries := getList(bundle, "entry")
	total, exact := BundleTotal(bundle)

	header := fmt.Sprintf("📊 **Search Results** (Total: %d)", total)
	if !exact {
		header = fmt.Sprintf("📊 **Search Results** (Total: %d, approximate)", total)
	}
	lines := []string{header, ""}

	for i, raw := range entries {
		if i >= bundleEntryCap {
			break
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		resource := getMap(entry, "resource")
		resourceType := getStringOr(resource, "resourceType", "Unknown")
		resourceID := getStringOr(resource, "id", "N/A")

		if title := pkgstrings.SingleLine(DisplayTitle(resource)); title != "" {
			lines = append(lines, fmt.Sprintf("%d. **%s/%s** - %s", i+1, resourceType, resourceID, title))
		} else {
			lines = append(lines, fmt.Sprintf("%d. **%s/%s**", i+1, resourceType, resourceID))
		}
	}

	if len(entries) > bundleEntryCap {
		lines = append(lines, fmt.Sprintf("\n... and %d more results", len(entries)-bundleEntryCap))
	}

	return strings.Join(lines, "\n")
}

// BundleResourceSummaries renders each bundle entry through the full
// resource summary, used by list tools that want field detail per match.
func BundleResourceSummaries(bundle map[string]any) string {
	entries := getList(bundle, "entry")
	total, _ := BundleTotal(bundle)

	lines := []string{fmt.Sprintf("📊 Found %d result(s):", total), ""}
	for i, raw := range entries {
		if i >= bundleEntryCap {
			lines = append(lines, fmt.Sprintf("... and %d more results", len(entries)-bundleEntryCap))
			break
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, ResourceSummary(getMap(entry, "resource")), "")
	}
	return strings.Join(lines, "\n")
}
