package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureServer records the last request body posted to it and answers
// with a created resource.
func newCaptureServer(t *testing.T, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if len(body) > 0 {
			require.NoError(t, json.Unmarshal(body, captured))
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"resourceType": (*captured)["resourceType"],
			"id":           "new-1",
		})
	}))
}

func TestCreatePatientBuildsResource(t *testing.T) {
	var posted map[string]any
	ts := newCaptureServer(t, &posted)
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	result, err := p.handleCreatePatient(context.Background(), newRequest(map[string]any{
		"family_name":      "Muster",
		"given_name":       "Max",
		"birth_date":       "1990-04-12",
		"gender":           "Male",
		"identifier_value": "12345",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "✅ Successfully created Patient/new-1")

	assert.Equal(t, "Patient", posted["resourceType"])
	names, _ := posted["name"].([]any)
	require.Len(t, names, 1)
	name, _ := names[0].(map[string]any)
	assert.Equal(t, "official", name["use"])
	assert.Equal(t, "Muster", name["family"])
	assert.Equal(t, []any{"Max"}, name["given"])
	assert.Equal(t, "1990-04-12", posted["birthDate"])
	assert.Equal(t, "male", posted["gender"], "gender is normalized to lowercase")

	identifiers, _ := posted["identifier"].([]any)
	require.Len(t, identifiers, 1)
	identifier, _ := identifiers[0].(map[string]any)
	assert.Equal(t, defaultIdentifierSystem, identifier["system"])
	assert.Equal(t, "12345", identifier["value"])
}

func TestCreatePatientRequiresFamilyName(t *testing.T) {
	p := newTestProvider("http://localhost:0", "http://localhost:0")
	result, err := p.handleCreatePatient(context.Background(), newRequest(map[string]any{
		"given_name": "Max",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "family_name is required")
}

func TestCreateImmunizationBuildsResource(t *testing.T) {
	var posted map[string]any
	ts := newCaptureServer(t, &posted)
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	result, err := p.handleCreateImmunization(context.Background(), newRequest(map[string]any{
		"patient_id":   "p1",
		"vaccine_code": "207",
		"lot_number":   "LOT-9",
		"dose_number":  "2",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "Immunization", posted["resourceType"])
	assert.Equal(t, "completed", posted["status"])
	assert.Equal(t, true, posted["primarySource"])
	assert.NotEmpty(t, posted["occurrenceDateTime"])
	assert.Equal(t, "LOT-9", posted["lotNumber"])

	patient, _ := posted["patient"].(map[string]any)
	assert.Equal(t, "Patient/p1", patient["reference"])

	vaccineCode, _ := posted["vaccineCode"].(map[string]any)
	codings, _ := vaccineCode["coding"].([]any)
	require.Len(t, codings, 1)
	coding, _ := codings[0].(map[string]any)
	assert.Equal(t, defaultVaccineSystem, coding["system"])
	assert.Equal(t, "207", coding["code"])
	assert.Equal(t, "207", coding["display"], "display falls back to the code")

	protocols, _ := posted["protocolApplied"].([]any)
	require.Len(t, protocols, 1)
	protocol, _ := protocols[0].(map[string]any)
	assert.Equal(t, float64(2), protocol["doseNumberPositiveInt"])
}

func TestCreateImmunizationDoseNumberString(t *testing.T) {
	var posted map[string]any
	ts := newCaptureServer(t, &posted)
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	_, err := p.handleCreateImmunization(context.Background(), newRequest(map[string]any{
		"patient_id":   "p1",
		"vaccine_code": "207",
		"dose_number":  "booster",
	}))
	require.NoError(t, err)

	protocols, _ := posted["protocolApplied"].([]any)
	require.Len(t, protocols, 1)
	protocol, _ := protocols[0].(map[string]any)
	assert.Equal(t, "booster", protocol["doseNumberString"])
	assert.NotContains(t, protocol, "doseNumberPositiveInt")
}

func TestCreateImmunizationRequiredArguments(t *testing.T) {
	p := newTestProvider("http://localhost:0", "http://localhost:0")
	ctx := context.Background()

	result, err := p.handleCreateImmunization(ctx, newRequest(map[string]any{"vaccine_code": "207"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "patient_id is required")

	result, err = p.handleCreateImmunization(ctx, newRequest(map[string]any{"patient_id": "p1"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "vaccine_code is required")
}

func TestCreateObservationQuantity(t *testing.T) {
	var posted map[string]any
	ts := newCaptureServer(t, &posted)
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	result, err := p.handleCreateObservation(context.Background(), newRequest(map[string]any{
		"patient_id":     "p1",
		"code":           "29463-7",
		"value_quantity": "72.4",
		"value_unit":     "kg",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "Observation", posted["resourceType"])
	assert.Equal(t, "final", posted["status"])
	assert.NotEmpty(t, posted["effectiveDateTime"])

	subject, _ := posted["subject"].(map[string]any)
	assert.Equal(t, "Patient/p1", subject["reference"])

	code, _ := posted["code"].(map[string]any)
	codings, _ := code["coding"].([]any)
	require.Len(t, codings, 1)
	coding, _ := codings[0].(map[string]any)
	assert.Equal(t, defaultObservationCode, coding["system"])
	assert.Equal(t, "29463-7", coding["code"])

	quantity, _ := posted["valueQuantity"].(map[string]any)
	assert.Equal(t, 72.4, quantity["value"])
	assert.Equal(t, "kg", quantity["unit"])
	assert.Equal(t, "http://unitsofmeasure.org", quantity["system"])
}

func TestCreateObservationValueStringWins(t *testing.T) {
	var posted map[string]any
	ts := newCaptureServer(t, &posted)
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	_, err := p.handleCreateObservation(context.Background(), newRequest(map[string]any{
		"patient_id":     "p1",
		"code":           "8302-2",
		"value_string":   "tall",
		"value_quantity": "180",
	}))
	require.NoError(t, err)

	assert.Equal(t, "tall", posted["valueString"])
	assert.NotContains(t, posted, "valueQuantity")
}

func TestCreateObservationRejectsNonNumericQuantity(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL, ts.URL)
	result, err := p.handleCreateObservation(context.Background(), newRequest(map[string]any{
		"patient_id":     "p1",
		"code":           "29463-7",
		"value_quantity": "heavy",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "value_quantity must be numeric")
	assert.Zero(t, requests)
}
