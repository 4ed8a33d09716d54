package runconfig

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	envRefPattern  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	envFullPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)
)

// expandEnv walks the decoded document and replaces ${NAME} references inside
// scalar string values with the environment variable NAME. Substitution runs
// before schema decoding, so a reference may expand to any scalar the schema
// later accepts. A value that is exactly one reference re-parses as a YAML
// scalar, so "2" can feed an integer field; YAML string fields still receive
// the literal text of such a scalar. JSON documents type the coerced value
// strictly, so a purely numeric or boolean env value destined for a JSON
// string field must be embedded in a longer reference ("${DIR}/vocab") to
// stay a string. An unresolved reference is a MissingFieldError.
func expandEnv(v any, lookup func(string) (string, bool)) (any, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	switch t := v.(type) {
	case string:
		return expandString(t, lookup)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			expanded, err := expandEnv(val, lookup)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			expanded, err := expandEnv(val, lookup)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

func expandString(s string, lookup func(string) (string, bool)) (any, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	// A value that is exactly one reference re-parses as a YAML scalar, so
	// ${WORLD_SIZE}=2 lands in an integer field as 2, not "2".
	if m := envFullPattern.FindStringSubmatch(s); m != nil {
		val, ok := lookup(m[1])
		if !ok {
			return nil, &MissingFieldError{
				Field:   s,
				Message: "unresolved environment variable " + m[1],
			}
		}
		var scalar any
		if err := yaml.Unmarshal([]byte(val), &scalar); err != nil {
			return val, nil
		}
		return scalar, nil
	}
	var missing string
	out := envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-1]
		val, ok := lookup(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return ref
		}
		return val
	})
	if missing != "" {
		return "", &MissingFieldError{
			Field:   "${" + missing + "}",
			Message: "unresolved environment variable " + missing,
		}
	}
	return out, nil
}
