// Package detect sniffs an uploaded file to determine which report layout it uses.
package detect

import (
	"github.com/tidwall/gjson"
)

// Format represents a recognized report layout.
type Format int

const (
	Invalid      Format = iota // not JSON at all
	Unrecognized               // valid JSON without a result array
	Results                    // {"testerName": ..., "results": [...]}
	Responses                  // {"info": {...}, "responses": [...]}
	Array                      // bare [...] of result records
)

func (f Format) String() string {
	switch f {
	case Invalid:
		return "invalid"
	case Unrecognized:
		return "unrecognized"
	case Results:
		return "results"
	case Responses:
		return "responses"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Sniff examines data and returns its report layout.
// When both "results" and "responses" are present, "results" wins.
func Sniff(data []byte) Format {
	if !gjson.ValidBytes(data) {
		return Invalid
	}
	doc := gjson.ParseBytes(data)
	if doc.IsArray() {
		return Array
	}
	if !doc.IsObject() {
		return Unrecognized
	}
	if doc.Get("results").IsArray() {
		return Results
	}
	if doc.Get("responses").IsArray() {
		return Responses
	}
	return Unrecognized
}
