package format

import (
	"bytes"
	"encoding/json"
)

// PrettyJSON renders any JSON value with 2-space indentation. Marshaling a
// map alphabetizes keys, so this is for locally built values; responses
// passed through verbatim go via RawJSON instead.
func PrettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Values here come from json.Unmarshal, so this is unreachable in
		// practice; surface it rather than drop output silently.
		return "{\"error\": \"failed to serialize response\"}"
	}
	return string(data)
}

// RawJSON re-indents JSON bytes as received. Because the bytes never pass
// through a Go map, the server's key order survives: re-parsing the output
// reproduces the response exactly, order included.
func RawJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// JSONBlock wraps pretty-printed JSON in a fenced markdown code block.
func JSONBlock(v any) string {
	return "```json\n" + PrettyJSON(v) + "\n```"
}

// RawJSONBlock wraps re-indented response bytes in a fenced markdown code
// block, preserving key order.
func RawJSONBlock(raw []byte) string {
	return "```json\n" + RawJSON(raw) + "\n```"
}
