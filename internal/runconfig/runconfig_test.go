package runconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/nlxtools/trainconf/internal/schema"
)

const minimalConfig = `
data:
  corpus_1:
    path_src: a.txt
    weight: 1
model:
  architecture: transformer_lm
  hidden_size: 64
training:
  batch_size: 256
  train_steps: 100
`

func TestParse_MinimalConfigAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Overwrite {
		t.Fatalf("expected overwrite default false")
	}
	if len(cfg.Training.Dropout) != 0 || cfg.Training.Dropout == nil {
		t.Fatalf("expected empty non-nil dropout schedule, got %#v", cfg.Training.Dropout)
	}
	if cfg.Training.BatchType != schema.BatchTypeSents {
		t.Fatalf("expected default batch_type sents, got %q", cfg.Training.BatchType)
	}
	if cfg.Training.Optim != schema.OptimAdam {
		t.Fatalf("expected default optim adam, got %q", cfg.Training.Optim)
	}
	if cfg.Training.KeepCheckpoint != -1 {
		t.Fatalf("expected default keep_checkpoint -1, got %d", cfg.Training.KeepCheckpoint)
	}
	if cfg.Training.WorldSize != 1 {
		t.Fatalf("expected default world_size 1, got %d", cfg.Training.WorldSize)
	}
	if cfg.Model.Heads != DefaultHeads {
		t.Fatalf("expected default heads, got %d", cfg.Model.Heads)
	}
	if cfg.Model.Embeddings.WordVecSize != 64 {
		t.Fatalf("expected word_vec_size to follow hidden_size, got %d", cfg.Model.Embeddings.WordVecSize)
	}
	if cfg.ReportEvery != DefaultReportEvery {
		t.Fatalf("expected default report_every, got %d", cfg.ReportEvery)
	}
}

func TestParse_MissingDataSection(t *testing.T) {
	_, err := Parse([]byte(`
model:
  architecture: transformer
training:
  batch_size: 64
`), Options{})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "data" {
		t.Fatalf("expected error to name data, got %q", missing.Field)
	}
}

func TestParse_MissingTrainingAndModelSections(t *testing.T) {
	for _, omit := range []string{"training", "model"} {
		doc := "data:\n  c1:\n    path_src: a.txt\n"
		if omit != "model" {
			doc += "model:\n  architecture: transformer\n"
		}
		if omit != "training" {
			doc += "training:\n  batch_size: 64\n"
		}
		_, err := Parse([]byte(doc), Options{})
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("omit %s: expected MissingFieldError, got %v", omit, err)
		}
		if missing.Field != omit {
			t.Fatalf("omit %s: error names %q", omit, missing.Field)
		}
	}
}

func TestParse_DropoutScheduleLengthMismatch(t *testing.T) {
	_, err := Parse([]byte(minimalConfig+`
  dropout: [0.3, 0.1]
  dropout_steps: [0]
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "training.dropout_steps" {
		t.Fatalf("unexpected field %q", iv.Field)
	}
}

func TestParse_DropoutStepsMustStrictlyIncrease(t *testing.T) {
	_, err := Parse([]byte(minimalConfig+`
  dropout: [0.3, 0.1]
  dropout_steps: [500, 500]
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if !strings.Contains(iv.Message, "strictly increasing") {
		t.Fatalf("unexpected message %q", iv.Message)
	}
}

func TestParse_NegativeCorpusWeight(t *testing.T) {
	_, err := Parse([]byte(`
data:
  corpus_1:
    path_src: a.txt
    weight: -2
model:
  architecture: transformer
training:
  batch_size: 64
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "data.corpus_1.weight" {
		t.Fatalf("unexpected field %q", iv.Field)
	}
}

func TestParse_ValidCorpusExcludedFromWeighting(t *testing.T) {
	_, err := Parse([]byte(`
data:
  corpus_1:
    path_src: a.txt
    weight: 3
  valid:
    path_src: dev.txt
    weight: 1
model:
  architecture: transformer
training:
  batch_size: 64
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError for weighted valid corpus, got %v", err)
	}
	if iv.Field != "data.valid.weight" {
		t.Fatalf("unexpected field %q", iv.Field)
	}

	// Without a weight the valid entry is fine, but it cannot be the only one.
	_, err = Parse([]byte(`
data:
  valid:
    path_src: dev.txt
model:
  architecture: transformer
training:
  batch_size: 64
`), Options{})
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError for valid-only data, got %v", err)
	}
}

func TestParse_RotarySentinelForbidsPositionEncoding(t *testing.T) {
	_, err := Parse([]byte(`
data:
  corpus_1:
    path_src: a.txt
    weight: 1
model:
  architecture: transformer
  embeddings:
    position_encoding: true
    max_relative_positions: -1
training:
  batch_size: 64
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "model.embeddings.position_encoding" {
		t.Fatalf("unexpected field %q", iv.Field)
	}
}

func TestParse_PositionEncodingSentinelAgreement(t *testing.T) {
	cases := []struct {
		name string
		typ  string
		mrp  int
		ok   bool
	}{
		{"rotary", "Rotary", -1, true},
		{"rotary wrong sentinel", "Rotary", 0, false},
		{"alibi", "Alibi", -2, true},
		{"alibi wrong sentinel", "Alibi", -1, false},
		{"shaw window", "Relative", 20, true},
		{"relative without window", "Relative", 0, false},
		{"sentinel below alibi", "", -3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `
data:
  corpus_1:
    path_src: a.txt
    weight: 1
model:
  architecture: transformer
  embeddings:
`
			if tc.typ != "" {
				doc += "    position_encoding_type: " + tc.typ + "\n"
			}
			doc += "    max_relative_positions: " + strconv.Itoa(tc.mrp) + "\n"
			doc += `training:
  batch_size: 64
`
			_, err := Parse([]byte(doc), Options{})
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				var iv *InvariantViolationError
				if !errors.As(err, &iv) {
					t.Fatalf("expected InvariantViolationError, got %v", err)
				}
			}
		})
	}
}

func TestParse_UnknownFieldStrictAndPermissive(t *testing.T) {
	doc := []byte(minimalConfig + `
  warmup_stepss: 4000
`)
	_, err := Parse(doc, Options{})
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if unknown.Field != "warmup_stepss" {
		t.Fatalf("unexpected field %q", unknown.Field)
	}

	if _, err := Parse(doc, Options{Permissive: true}); err != nil {
		t.Fatalf("permissive mode should accept unknown fields, got %v", err)
	}
}

func TestParse_ExtensionKeysPassThrough(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig+`
x-owner: mt-team
`), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Extensions["x-owner"] != "mt-team" {
		t.Fatalf("expected x-owner extension preserved, got %#v", cfg.Extensions)
	}
}

func TestParse_TypeMismatch(t *testing.T) {
	_, err := Parse([]byte(minimalConfig+`
  world_size: two
`), Options{})
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
}

func TestParse_UnknownTransformRejected(t *testing.T) {
	_, err := Parse([]byte(`
data:
  corpus_1:
    path_src: a.txt
    weight: 1
    transforms: [sentencepiece, frobnicate]
model:
  architecture: transformer
training:
  batch_size: 64
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if !strings.Contains(iv.Message, "frobnicate") {
		t.Fatalf("unexpected message %q", iv.Message)
	}
}

func TestParse_TrainingInvariants(t *testing.T) {
	cases := []struct {
		name  string
		extra string
		field string
	}{
		{"accum_count below one", "  accum_count: [0]\n  accum_steps: [0]\n", "training.accum_count"},
		{"keep_checkpoint below keep-all", "  keep_checkpoint: -2\n", "training.keep_checkpoint"},
		{"unsupported model_dtype", "  model_dtype: fp8\n", "training.model_dtype"},
		{"unsupported quant_type", "  quant:\n    quant_layers: [w_1, w_2]\n    quant_type: bnb_INT2\n", "training.quant.quant_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(minimalConfig+tc.extra), Options{})
			var iv *InvariantViolationError
			if !errors.As(err, &iv) {
				t.Fatalf("expected InvariantViolationError, got %v", err)
			}
			if iv.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, iv.Field)
			}
		})
	}
}

func TestParse_HiddenSizeDivisibleByHeads(t *testing.T) {
	_, err := Parse([]byte(`
data:
  corpus_1:
    path_src: a.txt
    weight: 1
model:
  architecture: transformer
  heads: 7
  hidden_size: 512
training:
  batch_size: 64
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "model.hidden_size" {
		t.Fatalf("unexpected field %q", iv.Field)
	}
	if !strings.Contains(iv.Message, "divisible") {
		t.Fatalf("unexpected message %q", iv.Message)
	}
}

func TestParse_LearnedEncodingRequiresNPositions(t *testing.T) {
	doc := `
data:
  corpus_1:
    path_src: a.txt
    weight: 1
model:
  architecture: transformer
  embeddings:
    position_encoding_type: Learned
training:
  batch_size: 64
`
	_, err := Parse([]byte(doc), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "model.embeddings.n_positions" {
		t.Fatalf("unexpected field %q", iv.Field)
	}

	withPositions := strings.Replace(doc,
		"    position_encoding_type: Learned\n",
		"    position_encoding_type: Learned\n    n_positions: 1024\n", 1)
	if _, err := Parse([]byte(withPositions), Options{}); err != nil {
		t.Fatalf("expected valid Learned config, got %v", err)
	}
}

func TestParse_GPURanksWithinWorldSize(t *testing.T) {
	_, err := Parse([]byte(minimalConfig+`
  world_size: 2
  gpu_ranks: [0, 2]
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "training.gpu_ranks" {
		t.Fatalf("unexpected field %q", iv.Field)
	}
}

func TestParse_LoraRequiresTrainFrom(t *testing.T) {
	_, err := Parse([]byte(minimalConfig+`
  lora:
    lora_layers: [linear_values, linear_query]
    lora_rank: 2
    lora_dropout: 0.05
    lora_alpha: 8
`), Options{})
	var iv *InvariantViolationError
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
	if iv.Field != "training.lora" {
		t.Fatalf("unexpected field %q", iv.Field)
	}

	cfg, err := Parse([]byte(minimalConfig+`
  train_from: ${MODEL_DIR}/base
  lora:
    lora_layers: [linear_values, linear_query]
    lora_rank: 2
    lora_dropout: 0.05
    lora_alpha: 8
  quant:
    quant_layers: [w_1, w_2]
    quant_type: bnb_NF4
`), Options{LookupEnv: fakeEnv(map[string]string{"MODEL_DIR": "/models"})})
	if err != nil {
		t.Fatalf("Parse finetune config: %v", err)
	}
	if cfg.Training.TrainFrom != "/models/base" {
		t.Fatalf("expected env-substituted train_from, got %q", cfg.Training.TrainFrom)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(`
seed: 1234
share_vocab: true
src_vocab: vocab.src
report_every: 100
x-owner: mt-team
data:
  europarl:
    path_src: ep.src
    path_tgt: ep.tgt
    weight: 20
    transforms: [sentencepiece, filtertoolong]
  valid:
    path_src: dev.src
    path_tgt: dev.tgt
model:
  architecture: transformer
  layers: 6
  heads: 8
  hidden_size: 512
  transformer_ff: 2048
  embeddings:
    position_encoding: true
training:
  batch_size: 4096
  batch_type: tokens
  bucket_size: 32768
  optim: adamw
  learning_rate: 2
  warmup_steps: 4000
  decay_method: noam
  dropout: [0.3, 0.1]
  dropout_steps: [0, 10000]
  accum_count: [4]
  accum_steps: [0]
  train_steps: 50000
  valid_steps: 5000
  save_checkpoint_steps: 5000
  keep_checkpoint: 10
  world_size: 2
  gpu_ranks: [0, 1]
`), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := Encode(cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Parse(out, Options{})
	if err != nil {
		t.Fatalf("re-Parse: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(cfg, again) {
		t.Fatalf("round trip mismatch:\nfirst:  %#v\nsecond: %#v", cfg, again)
	}
}

func TestParseFile_JSONDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	doc := `{
  "data": {"corpus_1": {"path_src": "a.txt", "weight": 1}},
  "model": {"architecture": "transformer_lm", "hidden_size": 64},
  "training": {"batch_size": 256, "train_steps": 100},
  "x-note": "finetune smoke"
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if cfg.Model.Architecture != schema.ArchTransformerLM {
		t.Fatalf("unexpected architecture %q", cfg.Model.Architecture)
	}
	if cfg.Extensions["x-note"] != "finetune smoke" {
		t.Fatalf("expected x-note extension, got %#v", cfg.Extensions)
	}
}

func TestParseFile_JSONUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	doc := `{
  "data": {"corpus_1": {"path_src": "a.txt"}},
  "model": {"architecture": "transformer"},
  "training": {"batch_size": 256, "bogus_knob": 1}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := ParseFile(path, Options{})
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
}

func fakeEnv(m map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}
