package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// artifact schema: enforces the export contract, in particular that a
// chapter never carries both body forms and that the workflow-only fields
// stay out of the artifact.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["slug", "code", "primaryLang", "titles", "schema", "revision", "updated", "chapters", "refId", "paragraphCount", "chapterCount"],
  "properties": {
    "slug": {"type": "string", "minLength": 1},
    "code": {"type": "string", "minLength": 1},
    "primaryLang": {"type": "string", "minLength": 2},
    "titles": {"type": "object", "additionalProperties": {"type": "string"}},
    "schema": {"type": "string"},
    "revision": {"type": "integer", "minimum": 1},
    "updated": {"type": "string"},
    "refId": {"type": "string", "minLength": 1},
    "paragraphCount": {"type": "integer", "minimum": 0},
    "chapterCount": {"type": "integer", "minimum": 0},
    "publicationYear": {"type": "integer"},
    "chapters": {"type": "array", "items": {"$ref": "#/$defs/chapter"}}
  },
  "additionalProperties": false,
  "$defs": {
    "chapter": {
      "type": "object",
      "required": ["n", "title", "i18n", "refId"],
      "properties": {
        "n": {"type": "integer", "minimum": 1},
        "title": {"type": "string"},
        "i18n": {"type": "object", "additionalProperties": {"type": "string"}},
        "refId": {"type": "string", "minLength": 1},
        "paragraphs": {"type": "array", "items": {"$ref": "#/$defs/paragraph"}},
        "sections": {"type": "array", "minItems": 2, "items": {"$ref": "#/$defs/section"}}
      },
      "not": {"required": ["paragraphs", "sections"]},
      "additionalProperties": false
    },
    "section": {
      "type": "object",
      "required": ["n", "title", "i18n", "paragraphs"],
      "properties": {
        "n": {"type": "integer", "minimum": 1},
        "title": {"type": "string"},
        "i18n": {"type": "object", "additionalProperties": {"type": "string"}},
        "paragraphs": {"type": "array", "items": {"$ref": "#/$defs/paragraph"}}
      },
      "additionalProperties": false
    },
    "paragraph": {
      "type": "object",
      "required": ["n", "speaker", "text", "i18n", "refId"],
      "properties": {
        "n": {"type": "integer", "minimum": 1},
        "speaker": {"type": ["string", "null"]},
        "text": {"type": "string"},
        "i18n": {"type": "object", "additionalProperties": {"type": "string"}},
        "refId": {"type": "string", "minLength": 1}
      },
      "additionalProperties": false
    }
  }
}`

var schema = jsonschema.MustCompileString("book.schema.json", schemaJSON)

// Issue is one schema violation, as a document path plus message.
type Issue struct {
	Path    string
	Message string
}

// ValidationError aggregates every schema violation of one export attempt.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("artifact failed schema validation (%d issue(s))", len(e.Issues)))
	for _, is := range e.Issues {
		sb.WriteString(fmt.Sprintf("\n  %s: %s", is.Path, is.Message))
	}
	return sb.String()
}

// Validate checks serialized artifact JSON against the export schema and
// returns a *ValidationError listing every violating path.
func Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("artifact is not valid JSON: %w", err)
	}
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	return &ValidationError{Issues: collectIssues(ve)}
}

// collectIssues flattens a validation error tree into its leaf causes.
func collectIssues(ve *jsonschema.ValidationError) []Issue {
	if len(ve.Causes) == 0 {
		path := ve.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []Issue{{Path: path, Message: ve.Message}}
	}
	var out []Issue
	for _, c := range ve.Causes {
		out = append(out, collectIssues(c)...)
	}
	return out
}
