package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchemaJSON is the strict contract a generation reply must
// satisfy before it is allowed anywhere near game state.
const payloadSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "text", "choices", "characters", "mission"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "text": {"type": "string", "minLength": 1},
    "currentTime": {"type": "string"},
    "currentLocation": {"type": "string"},
    "choices": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "consequence": {"type": "string"},
          "type": {"type": "string"},
          "cost": {
            "type": "object",
            "properties": {
              "currency": {"type": "string"},
              "amount": {"type": ["integer", "string"]}
            }
          },
          "timeChange": {"type": "string"},
          "locationChange": {"type": "string"}
        }
      }
    },
    "characters": {
      "type": "array",
      "items": {
        "anyOf": [
          {"type": "string"},
          {
            "type": "object",
            "required": ["name"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "role": {"type": "string"}
            }
          }
        ]
      }
    },
    "mission": {
      "type": "object",
      "required": ["title", "objective"],
      "properties": {
        "title": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "giver": {"type": "string"},
        "target": {"type": "string"},
        "target_location": {"type": "string"},
        "return_location": {"type": "string"},
        "objective": {"type": "string", "minLength": 1},
        "reward": {
          "type": "object",
          "properties": {
            "currency": {"type": "string"},
            "amount": {"type": ["integer", "string"]}
          }
        },
        "deadline": {"type": "string"}
      }
    }
  }
}`

var payloadSchema = jsonschema.MustCompileString("payload.schema.json", payloadSchemaJSON)

// validateAgainstSchema checks a raw generation reply against the
// payload schema.
func validateAgainstSchema(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if err := payloadSchema.Validate(v); err != nil {
		return fmt.Errorf("reply violates payload schema: %w", err)
	}
	return nil
}

// extractJSON pulls the JSON object out of a reply that may be wrapped
// in markdown code fences or surrounded by prose.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in reply")
	}
	return s[start : end+1], nil
}
