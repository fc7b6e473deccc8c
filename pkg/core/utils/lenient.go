// Package utils holds lenient-parsing helpers shared by the market-data
// decoder, the config loader, and the commentary parser. Upstream payloads
// (scraped quote APIs, LLM output) are not always strict JSON.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON defects: single quotes, unquoted
// keys, trailing commas, unclosed brackets, markdown code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// MustRepairJSON is like RepairJSON but returns an empty object on failure.
func MustRepairJSON(malformed string) string {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "{}"
	}
	return repaired
}

// ParseHJSONToStruct parses Human-friendly JSON (comments, unquoted keys,
// optional commas) directly into a Go struct. Used for the app config file.
func ParseHJSONToStruct(data []byte, schema interface{}) error {
	if err := hjson.Unmarshal(data, schema); err != nil {
		return fmt.Errorf("hjson unmarshal failed: %w", err)
	}
	return nil
}

// SmartParse tries strict JSON, then repaired JSON, then Hjson, unmarshaling
// into schema with the first strategy that succeeds. Returns the normalized
// JSON actually parsed.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(normalized, schema); err == nil {
				return string(normalized), nil
			}
		}
	}

	return "", fmt.Errorf("all parsing strategies failed")
}
