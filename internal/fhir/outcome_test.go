package fhir

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperationOutcome(t *testing.T) {
	body := []byte(`{
		"resourceType": "OperationOutcome",
		"issue": [
			{"severity": "error", "diagnostics": "bad code", "location": ["Observation.code", "Observation.value"]},
			{"severity": "warning", "diagnostics": "deprecated field"},
			{"details": {"text": "fallback text"}},
			{}
		]
	}`)

	issues, ok := ParseOperationOutcome(body)
	require.True(t, ok)
	require.Len(t, issues, 4)

	assert.Equal(t, Issue{Severity: "error", Message: "bad code", Location: "Observation.code, Observation.value"}, issues[0])
	assert.Equal(t, Issue{Severity: "warning", Message: "deprecated field"}, issues[1])
	// diagnostics absent: details.text is the fallback, severity defaults to error.
	assert.Equal(t, Issue{Severity: "error", Message: "fallback text"}, issues[2])
	assert.Equal(t, Issue{Severity: "error", Message: "Unknown error"}, issues[3])
}

func TestParseOperationOutcomeRejectsOtherBodies(t *testing.T) {
	_, ok := ParseOperationOutcome([]byte(`{"resourceType":"Patient"}`))
	assert.False(t, ok)

	_, ok = ParseOperationOutcome([]byte(`not json at all`))
	assert.False(t, ok)
}

func TestNormalizeOperationOutcome(t *testing.T) {
	err := &ResponseError{
		StatusCode: 422,
		Body: []byte(`{
			"resourceType": "OperationOutcome",
			"issue": [
				{"severity": "error", "diagnostics": "bad code"},
				{"severity": "warning", "diagnostics": "deprecated field"}
			]
		}`),
	}

	msg := Normalize(err)
	assert.Contains(t, msg, "422")
	assert.Contains(t, msg, "[error] bad code")
	assert.Contains(t, msg, "[warning] deprecated field")
}

func TestNormalizeStatusCategories(t *testing.T) {
	tests := []struct {
		status   int
		contains string
	}{
		{404, "Resource not found"},
		{400, "Bad request"},
		{422, "failed validation"},
		{409, "Conflict"},
		{503, "returned status 503"},
	}

	for _, tt := range tests {
		err := &ResponseError{StatusCode: tt.status, Body: []byte("plain text detail")}
		msg := Normalize(err)
		assert.Contains(t, msg, tt.contains, "status %d", tt.status)
	}
}

func TestNormalizeTruncatesBodyExcerpt(t *testing.T) {
	err := &ResponseError{StatusCode: 500, Body: []byte(strings.Repeat("x", 2000))}
	msg := Normalize(err)
	assert.Less(t, len(msg), 700, "body excerpt must be capped")
	assert.Contains(t, msg, "...")
}

func TestNormalizeTransportErrors(t *testing.T) {
	connErr := &TransportError{BaseURL: "http://localhost:8080/fhir", Err: errors.New("dial tcp: connection refused")}
	msg := Normalize(connErr)
	assert.Contains(t, msg, "Could not connect")
	assert.Contains(t, msg, "http://localhost:8080/fhir")
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNormalizeTimeout(t *testing.T) {
	err := &TransportError{BaseURL: "http://localhost:8080/fhir", Err: timeoutErr{}}
	msg := Normalize(err)
	assert.Contains(t, msg, "timed out")
}

func TestNormalizeUnexpectedError(t *testing.T) {
	msg := Normalize(errors.New("something odd"))
	assert.Contains(t, msg, "Unexpected error")
	assert.Contains(t, msg, "something odd")
}
