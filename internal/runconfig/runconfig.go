// Package runconfig loads and validates the declarative configuration of one
// training, finetuning, or prediction invocation. Loading is a single
// synchronous validate-and-return operation: the record is parsed, defaulted,
// checked, and then treated as immutable by everything downstream.
package runconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nlxtools/trainconf/internal/schema"
	"gopkg.in/yaml.v3"
)

// Options tune the loader. The zero value is the strict production behavior.
type Options struct {
	// Permissive accepts unknown fields instead of failing with
	// UnknownFieldError. Invariants are still enforced.
	Permissive bool
	// LookupEnv resolves ${NAME} references. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// ParseFile loads a run configuration from a YAML (default) or JSON document.
func ParseFile(path string, opts Options) (*schema.RunConfig, error) {
	raw, format, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	return parse(raw, format, opts)
}

// Parse loads a run configuration from raw YAML.
func Parse(raw []byte, opts Options) (*schema.RunConfig, error) {
	return parse(raw, formatYAML, opts)
}

func parse(raw []byte, format string, opts Options) (*schema.RunConfig, error) {
	var cfg schema.RunConfig
	ext, err := decodeStrict(raw, format, &cfg, opts, "data", "model", "training")
	if err != nil {
		return nil, err
	}
	cfg.Extensions = ext
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParsePredictFile loads a prediction configuration from a YAML or JSON
// document.
func ParsePredictFile(path string, opts Options) (*schema.PredictConfig, error) {
	raw, format, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	return parsePredict(raw, format, opts)
}

// ParsePredict loads a prediction configuration from raw YAML.
func ParsePredict(raw []byte, opts Options) (*schema.PredictConfig, error) {
	return parsePredict(raw, formatYAML, opts)
}

func parsePredict(raw []byte, format string, opts Options) (*schema.PredictConfig, error) {
	var cfg schema.PredictConfig
	ext, err := decodeStrict(raw, format, &cfg, opts, "model_path")
	if err != nil {
		return nil, err
	}
	cfg.Extensions = ext
	applyPredictDefaults(&cfg)
	if err := ValidatePredict(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfig(path string) ([]byte, string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", err
	}
	format := formatYAML
	if strings.ToLower(filepath.Ext(abs)) == ".json" {
		format = formatJSON
	}
	return raw, format, nil
}

// Encode serializes a validated record back to its canonical YAML form.
// Round trip holds: Parse(Encode(cfg)) yields an equal record.
func Encode(cfg *schema.RunConfig) ([]byte, error) {
	return encodeWithExtensions(cfg, cfg.Extensions)
}

// EncodePredict serializes a prediction record back to canonical YAML.
func EncodePredict(cfg *schema.PredictConfig) ([]byte, error) {
	return encodeWithExtensions(cfg, cfg.Extensions)
}

func encodeWithExtensions(v any, ext map[string]any) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(ext) == 0 {
		return b, nil
	}
	var top map[string]any
	if err := yaml.Unmarshal(b, &top); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ext))
	for k := range ext {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := top[k]; ok {
			return nil, fmt.Errorf("extension key %q collides with a schema field", k)
		}
		top[k] = ext[k]
	}
	return yaml.Marshal(top)
}
