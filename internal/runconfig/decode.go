package runconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// decodeStrict turns a raw hierarchical document into a typed record.
//
// The document is first decoded generically so that `x-` prefixed top-level
// keys can be split off as extensions and ${NAME} references expanded, then
// re-encoded and decoded strictly into out. Unknown keys fail with
// UnknownFieldError unless permissive; wrong scalar kinds fail with
// TypeMismatchError.
func decodeStrict(raw []byte, format string, out any, opts Options, required ...string) (map[string]any, error) {
	switch format {
	case formatJSON:
		return decodeJSONStrict(raw, out, opts, required...)
	default:
		return decodeYAMLStrict(raw, out, opts, required...)
	}
}

// requirePresent reports the first required top-level key absent from the
// decoded document. Presence is checked before typed decoding so an omitted
// section is a MissingFieldError, not a pile of zero-value violations.
func requirePresent(top map[string]any, required []string) error {
	for _, key := range required {
		if _, ok := top[key]; !ok {
			return &MissingFieldError{Field: key}
		}
	}
	return nil
}

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func decodeYAMLStrict(raw []byte, out any, opts Options, required ...string) (map[string]any, error) {
	var top map[string]any
	if err := yaml.Unmarshal(raw, &top); err != nil {
		return nil, classifyYAMLError(err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("invalid config: empty document")
	}
	clean, ext := splitExtensions(top)
	if err := requirePresent(clean, required); err != nil {
		return nil, err
	}
	expanded, err := expandEnv(clean, opts.LookupEnv)
	if err != nil {
		return nil, err
	}
	b, err := yaml.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(!opts.Permissive)
	if err := dec.Decode(out); err != nil {
		return nil, classifyYAMLError(err)
	}
	return ext, nil
}

func decodeJSONStrict(raw []byte, out any, opts Options, required ...string) (map[string]any, error) {
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, classifyJSONError(err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("invalid config: empty object")
	}
	clean, ext := splitExtensions(top)
	if err := requirePresent(clean, required); err != nil {
		return nil, err
	}
	expanded, err := expandEnv(clean, opts.LookupEnv)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if !opts.Permissive {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return nil, classifyJSONError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("invalid config: trailing content")
	}
	return ext, nil
}

func splitExtensions(top map[string]any) (map[string]any, map[string]any) {
	clean := make(map[string]any, len(top))
	var ext map[string]any
	for k, v := range top {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(k)), "x-") {
			if ext == nil {
				ext = map[string]any{}
			}
			ext[k] = v
			continue
		}
		clean[k] = v
	}
	return clean, ext
}

// classifyYAMLError maps yaml decode failures onto the error taxonomy.
// yaml.v3 reports both unknown fields and kind mismatches through TypeError;
// the message shape tells them apart.
func classifyYAMLError(err error) error {
	te, ok := err.(*yaml.TypeError)
	if !ok {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, msg := range te.Errors {
		if field, ok := unknownFieldFromYAML(msg); ok {
			return &UnknownFieldError{Field: field}
		}
	}
	if len(te.Errors) > 0 {
		return &TypeMismatchError{Message: te.Errors[0]}
	}
	return &TypeMismatchError{Message: err.Error()}
}

func unknownFieldFromYAML(msg string) (string, bool) {
	// "line N: field batchsize not found in type schema.TrainingConfig"
	const marker = " not found in type "
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	head := msg[:i]
	j := strings.LastIndex(head, "field ")
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(head[j+len("field "):]), true
}

func classifyJSONError(err error) error {
	if ute, ok := err.(*json.UnmarshalTypeError); ok {
		return &TypeMismatchError{
			Field:   ute.Field,
			Message: fmt.Sprintf("cannot decode %s into %s", ute.Value, ute.Type),
		}
	}
	msg := err.Error()
	// encoding/json has no typed error for unknown fields.
	const marker = `json: unknown field `
	if strings.HasPrefix(msg, marker) {
		field := strings.Trim(strings.TrimPrefix(msg, marker), `"`)
		return &UnknownFieldError{Field: field}
	}
	return fmt.Errorf("invalid config: %w", err)
}
