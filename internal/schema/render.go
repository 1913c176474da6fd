package schema

import "google.golang.org/genai"

// Gemini converts the object to a Gemini response schema. Every property is
// nullable and listed as required so the model always emits every key.
func (o *Object) Gemini() *genai.Schema {
	out := &genai.Schema{
		Type:             genai.TypeObject,
		Title:            o.name,
		Properties:       make(map[string]*genai.Schema, len(o.fields)),
		Required:         make([]string, 0, len(o.fields)),
		PropertyOrdering: make([]string, 0, len(o.fields)),
	}
	for _, f := range o.fields {
		out.Properties[f.Key] = geminiField(f)
		out.Required = append(out.Required, f.Key)
		out.PropertyOrdering = append(out.PropertyOrdering, f.Key)
	}
	return out
}

func geminiField(f Field) *genai.Schema {
	s := &genai.Schema{
		Nullable:    genai.Ptr(true),
		Description: f.Description,
	}
	switch f.Kind {
	case KindNumber:
		s.Type = genai.TypeNumber
		if f.Min != nil {
			s.Minimum = genai.Ptr(*f.Min)
		}
		if f.Max != nil {
			s.Maximum = genai.Ptr(*f.Max)
		}
	case KindEnum:
		s.Type = genai.TypeString
		s.Format = "enum"
		s.Enum = append([]string(nil), f.Enum...)
	default:
		s.Type = genai.TypeString
		s.Pattern = f.Pattern
	}
	return s
}

// JSONSchema renders the object as a standard JSON Schema document. Parse
// validates against this rendering.
func (o *Object) JSONSchema() map[string]any {
	props := make(map[string]any, len(o.fields))
	required := make([]any, 0, len(o.fields))
	for _, f := range o.fields {
		props[f.Key] = jsonSchemaField(f)
		required = append(required, f.Key)
	}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"title":      o.name,
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func jsonSchemaField(f Field) map[string]any {
	m := map[string]any{}
	if f.Description != "" {
		m["description"] = f.Description
	}
	switch f.Kind {
	case KindNumber:
		m["type"] = []any{"number", "null"}
		if f.Min != nil {
			m["minimum"] = *f.Min
		}
		if f.Max != nil {
			m["maximum"] = *f.Max
		}
	case KindEnum:
		m["type"] = []any{"string", "null"}
		enum := make([]any, 0, len(f.Enum)+1)
		for _, v := range f.Enum {
			enum = append(enum, v)
		}
		m["enum"] = append(enum, nil)
	default:
		m["type"] = []any{"string", "null"}
		if f.Pattern != "" {
			m["pattern"] = f.Pattern
		}
	}
	return m
}
