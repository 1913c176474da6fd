package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Values holds parsed field values keyed by field key. A value is a float64,
// a string or nil.
type Values map[string]any

// Issue is a single validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every issue found while parsing an object.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Path+": "+is.Message)
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

// ParseResult is the outcome of SafeParse.
type ParseResult struct {
	Success bool    `json:"success"`
	Data    Values  `json:"data,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Object is an ordered set of nullable fields.
type Object struct {
	name   string
	fields []Field
	index  map[string]int

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewObject declares an object schema. It panics on an empty or duplicate
// key since schemas are declared at package init.
func NewObject(name string, fields ...Field) *Object {
	o := &Object{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Key == "" {
			panic(fmt.Sprintf("schema %s: empty field key", name))
		}
		if _, dup := o.index[f.Key]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field key %q", name, f.Key))
		}
		o.index[f.Key] = len(o.fields)
		o.fields = append(o.fields, f)
	}
	return o
}

// Name returns the schema name.
func (o *Object) Name() string { return o.name }

// Fields returns the fields in declaration order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// Keys returns the field keys in declaration order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Field looks up a field by key.
func (o *Object) Field(key string) (Field, bool) {
	i, ok := o.index[key]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

// Parse coerces and validates data, returning only the declared keys.
// Validation failures are returned as *ValidationError.
func (o *Object) Parse(data any) (Values, error) {
	doc, err := jsonValue(data)
	if err != nil {
		return nil, o.invalid(Issue{Message: "value is not JSON encodable"})
	}
	in, ok := doc.(map[string]any)
	if !ok {
		return nil, o.invalid(Issue{Message: fmt.Sprintf("expected object, got %s", typeName(doc))})
	}

	coerced := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		raw, present := in[f.Key]
		if !present && !f.Currency {
			continue
		}
		if f.Currency {
			coerced[f.Key] = CoerceCurrency(raw)
			continue
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, o.invalid(Issue{Path: f.Key, Message: "value is not JSON encodable"})
		}
		coerced[f.Key] = v
	}

	sch, err := o.compile()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(coerced); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, o.invalid(leafIssues(ve)...)
		}
		return nil, fmt.Errorf("schema %s: validate: %w", o.name, err)
	}
	return Values(coerced), nil
}

// SafeParse is Parse without an error return.
func (o *Object) SafeParse(data any) ParseResult {
	vals, err := o.Parse(data)
	if err == nil {
		return ParseResult{Success: true, Data: vals}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ParseResult{Issues: ve.Issues}
	}
	return ParseResult{Issues: []Issue{{Message: err.Error()}}}
}

// ParseJSON decodes raw and parses the result.
func (o *Object) ParseJSON(raw []byte) (Values, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, o.invalid(Issue{Message: "invalid JSON"})
	}
	if dec.More() {
		return nil, o.invalid(Issue{Message: "trailing data after JSON value"})
	}
	return o.Parse(doc)
}

// SafeParseJSON is ParseJSON without an error return.
func (o *Object) SafeParseJSON(raw []byte) ParseResult {
	vals, err := o.ParseJSON(raw)
	if err == nil {
		return ParseResult{Success: true, Data: vals}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ParseResult{Issues: ve.Issues}
	}
	return ParseResult{Issues: []Issue{{Message: err.Error()}}}
}

func (o *Object) invalid(issues ...Issue) error {
	return &ValidationError{Schema: o.name, Issues: issues}
}

func (o *Object) compile() (*jsonschema.Schema, error) {
	o.once.Do(func() {
		b, err := json.Marshal(o.JSONSchema())
		if err != nil {
			o.err = fmt.Errorf("schema %s: marshal: %w", o.name, err)
			return
		}
		url := o.name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
			o.err = fmt.Errorf("schema %s: load: %w", o.name, err)
			return
		}
		o.compiled, o.err = c.Compile(url)
		if o.err != nil {
			o.err = fmt.Errorf("schema %s: compile: %w", o.name, o.err)
		}
	})
	return o.compiled, o.err
}

func leafIssues(ve *jsonschema.ValidationError) []Issue {
	var out []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			if keys, ok := missingKeys(e); ok {
				for _, k := range keys {
					out = append(out, Issue{Path: k, Message: "required"})
				}
				return
			}
			out = append(out, Issue{
				Path:    strings.TrimPrefix(e.InstanceLocation, "/"),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// missingKeys splits a "required" failure into the property names it lists.
func missingKeys(e *jsonschema.ValidationError) ([]string, bool) {
	list, ok := strings.CutPrefix(e.Message, "missing properties: ")
	if !ok {
		return nil, false
	}
	var keys []string
	for _, k := range strings.Split(list, ", ") {
		k = strings.Trim(k, "'")
		if k == "" {
			continue
		}
		if base := strings.TrimPrefix(e.InstanceLocation, "/"); base != "" {
			k = base + "/" + k
		}
		keys = append(keys, k)
	}
	return keys, len(keys) > 0
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Decode copies parsed values into out, a pointer to a struct with json tags
// matching the field keys.
func Decode(vals Values, out any) error {
	b, err := json.Marshal(vals)
	if err != nil {
		return fmt.Errorf("decode values: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode values: %w", err)
	}
	return nil
}
