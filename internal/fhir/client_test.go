package fhir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsFHIRHeaders(t *testing.T) {
	var gotAccept, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"resourceType":"Patient","id":"1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	_, _, err := client.Get(context.Background(), "Patient/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "application/fhir+json", gotAccept)
	assert.Empty(t, gotContentType, "GET without body must not send Content-Type")

	_, _, err = client.Post(context.Background(), "Patient", nil, map[string]any{"resourceType": "Patient"})
	require.NoError(t, err)
	assert.Equal(t, "application/fhir+json", gotContentType)
}

func TestClientQueryEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"resourceType":"Bundle"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	query := map[string][]string{
		"_count":         {"50"},
		"title:contains": {"immunization"},
	}
	_, _, err := client.Get(context.Background(), "PlanDefinition", query)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "_count=50")
	assert.Contains(t, gotQuery, "title%3Acontains=immunization")
}

func TestClientBodyRoundTrip(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"resourceType":"Patient","id":"new-id"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	resource := map[string]any{"resourceType": "Patient", "birthDate": "1990-01-01"}
	result, _, err := client.Post(context.Background(), "Patient", nil, resource)
	require.NoError(t, err)

	assert.Equal(t, "Patient", gotBody["resourceType"])
	assert.Equal(t, "1990-01-01", gotBody["birthDate"])
	assert.Equal(t, "new-id", result["id"])
}

func TestClientReturnsRawBodyAsReceived(t *testing.T) {
	// Raw bytes come back untouched so pass-through output can preserve
	// the server's key order, which the decoded map cannot.
	body := `{"resourceType":"Patient","id":"1","active":true}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, raw, err := client.Get(context.Background(), "Patient/1", nil)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
	assert.Equal(t, "Patient", result["resourceType"])
}

func TestClientNoContentSuccessMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, raw, err := client.Delete(context.Background(), "Patient/42")
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])
	assert.JSONEq(t, `{"status":"success","message":"Resource deleted"}`, string(raw))
}

func TestClientResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"resourceType":"OperationOutcome"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, _, err := client.Get(context.Background(), "Patient/999", nil)
	require.Error(t, err)

	respErr, ok := err.(*ResponseError)
	require.True(t, ok, "expected *ResponseError, got %T", err)
	assert.Equal(t, 404, respErr.StatusCode)
	assert.Contains(t, string(respErr.Body), "OperationOutcome")
	assert.True(t, IsNotFound(err))
}

func TestClientConnectionError(t *testing.T) {
	// Server shut down before the call: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(baseURL, 2*time.Second)
	_, _, err := client.Get(context.Background(), "metadata", nil)
	require.Error(t, err)

	transportErr, ok := err.(*TransportError)
	require.True(t, ok, "expected *TransportError, got %T", err)
	assert.Equal(t, baseURL, transportErr.BaseURL)
	assert.False(t, transportErr.IsTimeout())
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, _, err := client.Get(context.Background(), "metadata", nil)
	require.Error(t, err)

	transportErr, ok := err.(*TransportError)
	require.True(t, ok, "expected *TransportError, got %T", err)
	assert.True(t, transportErr.IsTimeout())
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", 5*time.Second)
	_, _, err := client.Get(context.Background(), "/Patient/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "/Patient/1", gotPath)
}
