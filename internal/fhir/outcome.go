package fhir

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkgstrings "fhirmcp/pkg/strings"
)

// Issue is one entry of an OperationOutcome, reduced to the fields the
// display layer needs.
type Issue struct {
	Severity string
	Message  string
	Location string
}

// ParseOperationOutcome extracts the issue list from a response body if it
// is a FHIR OperationOutcome. The second return value is false when the
// body is not an OperationOutcome (or not JSON at all).
func ParseOperationOutcome(body []byte) ([]Issue, bool) {
	var outcome map[string]any
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, false
	}
	if rt, _ := outcome["resourceType"].(string); rt != "OperationOutcome" {
		return nil, false
	}

	rawIssues, _ := outcome["issue"].([]any)
	issues := make([]Issue, 0, len(rawIssues))
	for _, raw := range rawIssues {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		severity, _ := entry["severity"].(string)
		if severity == "" {
			severity = "error"
		}

		message, _ := entry["diagnostics"].(string)
		if message == "" {
			if details, ok := entry["details"].(map[string]any); ok {
				message, _ = details["text"].(string)
			}
		}
		if message == "" {
			message = "Unknown error"
		}

		var locations []string
		if rawLocs, ok := entry["location"].([]any); ok {
			for _, l := range rawLocs {
				if s, ok := l.(string); ok {
					locations = append(locations, s)
				}
			}
		}

		issues = append(issues, Issue{
			Severity: severity,
			Message:  message,
			Location: strings.Join(locations, ", "),
		})
	}
	return issues, true
}

// Normalize converts any error produced by a Client call into display text.
// It never fails: whatever the input, the result is a string suitable for
// returning directly across the tool boundary.
func Normalize(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return normalizeResponse(respErr)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.IsTimeout() {
			return "❌ Error: Request timed out. The FHIR server may be slow or unavailable."
		}
		return fmt.Sprintf("❌ Error: Could not connect to FHIR server at %s. Please verify the server is running.", transportErr.BaseURL)
	}

	return fmt.Sprintf("❌ Error: Unexpected error - %T: %v", err, err)
}

func normalizeResponse(respErr *ResponseError) string {
	if issues, ok := ParseOperationOutcome(respErr.Body); ok && len(issues) > 0 {
		lines := make([]string, 0, len(issues))
		for _, issue := range issues {
			line := fmt.Sprintf("[%s] %s", issue.Severity, issue.Message)
			if issue.Location != "" {
				line += " at " + issue.Location
			}
			lines = append(lines, line)
		}
		return fmt.Sprintf("❌ FHIR Error (%d):\n%s", respErr.StatusCode, strings.Join(lines, "\n"))
	}

	excerpt := pkgstrings.Truncate(string(respErr.Body), pkgstrings.ExcerptMaxLen)
	switch respErr.StatusCode {
	case 404:
		return "❌ Error: Resource not found. Please verify the resource type and ID."
	case 400:
		return fmt.Sprintf("❌ Error: Bad request. Check your input parameters.\nDetails: %s", excerpt)
	case 422:
		return fmt.Sprintf("❌ Error: Unprocessable entity. The resource failed validation.\nDetails: %s", excerpt)
	case 409:
		return "❌ Error: Conflict. The resource may already exist or there's a version conflict."
	default:
		return fmt.Sprintf("❌ Error: FHIR server returned status %d\nDetails: %s", respErr.StatusCode, excerpt)
	}
}

// IsNotFound reports whether err is an HTTP 404 response, letting callers
// substitute an operation-specific message for the generic one.
func IsNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}
