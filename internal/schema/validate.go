package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema renders s as a JSON Schema document describing its records.
func JSONSchema(s Schema) map[string]any {
	props := map[string]any{"template": map[string]any{"type": "string"}}
	required := []string{"template"}
	for _, f := range s.Fields {
		props[f.Name] = fieldSchema(f.Kind)
		required = append(required, f.Name)
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func fieldSchema(k Kind) map[string]any {
	nullable := func(t string) []string { return []string{t, "null"} }
	switch k {
	case KindDate:
		return map[string]any{"type": nullable("string"), "pattern": `^\d{4}-\d{2}-\d{2}$`}
	case KindMoney:
		return map[string]any{"type": nullable("number"), "minimum": 0}
	case KindInteger:
		return map[string]any{"type": nullable("integer")}
	case KindPhone:
		return map[string]any{"type": nullable("string"), "pattern": `^\d{3}-\d{3}-\d{4}$`}
	case KindLineItems:
		return map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"code", "description", "amount"},
				"properties": map[string]any{
					"code":        map[string]any{"type": nullable("string")},
					"description": map[string]any{"type": "string", "minLength": 1},
					"amount":      map[string]any{"type": "number", "minimum": 0},
				},
				"additionalProperties": false,
			},
		}
	default:
		return map[string]any{"type": nullable("string")}
	}
}

// Validator checks records against the JSON Schema of their schema. Records
// produced by Normalize always have the right shape; the check flags values
// such as dates left in an unrecognized format.
type Validator struct {
	compiled map[string]*jsonschema.Schema
}

// NewValidator compiles the JSON Schemas of schemas (all when none given).
func NewValidator(schemas ...Schema) (*Validator, error) {
	if len(schemas) == 0 {
		schemas = All()
	}
	v := &Validator{compiled: make(map[string]*jsonschema.Schema, len(schemas))}
	for _, s := range schemas {
		b, err := json.Marshal(JSONSchema(s))
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
		}
		compiler := jsonschema.NewCompiler()
		url := s.Name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", s.Name, err)
		}
		c, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
		}
		v.compiled[s.Name] = c
	}
	return v, nil
}

// Validate reports whether r conforms to the JSON Schema named by r.Schema.
func (v *Validator) Validate(r Record) error {
	c, ok := v.compiled[r.Schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", r.Schema)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := c.Validate(doc); err != nil {
		return fmt.Errorf("record does not match schema %s: %w", r.Schema, err)
	}
	return nil
}
