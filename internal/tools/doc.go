// Package tools declares the FHIR tool catalog and its handlers.
//
// Every tool resolves its arguments up front, performs at most the FHIR
// requests it needs, and returns its outcome as a text result. Domain
// failures (missing arguments, FHIR errors, unreachable servers) are
// reported as error-flagged text results, never as Go errors, so the
// calling agent always receives a readable message.
package tools
