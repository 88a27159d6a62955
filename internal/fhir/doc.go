// Package fhir contains the transport client and error normalization for
// talking to FHIR R4 REST servers.
//
// The client treats every resource as an untyped JSON object; no FHIR
// validation or schema knowledge lives here. Responses are decoded into
// map[string]any and handed to the formatting layer as-is.
//
// Failures split into two error types: *ResponseError for non-2xx HTTP
// statuses (carrying the raw body so an OperationOutcome can be extracted)
// and *TransportError for connection and timeout failures. Normalize turns
// either into display text and never fails itself.
package fhir
