// Package format converts untyped FHIR JSON values into display text.
//
// Two modes exist: PrettyJSON is the lossless pass-through used when a
// caller needs structured data, and the summary renderers project known
// fields into condensed markdown. Summaries are strictly for human
// readability; nothing downstream may parse them.
//
// Field lookup follows a fixed candidate order per resource kind (title,
// then name, then type-specific fields), implemented once in DisplayTitle
// and ResourceSummary rather than inlined per call site.
package format
