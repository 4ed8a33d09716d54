package cli

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `
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

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestValidate_ValidConfigExitsZero(t *testing.T) {
	path := writeConfig(t, "run.yaml", validConfig)
	if code := Execute("test", []string{"validate", path}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestValidate_InvalidConfigExitsOne(t *testing.T) {
	path := writeConfig(t, "run.yaml", validConfig+`
  dropout: [0.3]
  dropout_steps: []
`)
	if code := Execute("test", []string{"validate", path}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestValidate_UnknownFieldPermissive(t *testing.T) {
	path := writeConfig(t, "run.yaml", validConfig+`
  custom_knob: 7
`)
	if code := Execute("test", []string{"validate", path}); code != 1 {
		t.Fatalf("expected strict mode to reject unknown field, got %d", code)
	}
	if code := Execute("test", []string{"validate", "--permissive", path}); code != 0 {
		t.Fatalf("expected permissive mode to accept, got %d", code)
	}
}

func TestValidate_MissingFileExitsTwo(t *testing.T) {
	if code := Execute("test", []string{"validate", filepath.Join(t.TempDir(), "absent.yaml")}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestPredictCheck_Valid(t *testing.T) {
	path := writeConfig(t, "predict.yaml", `
model_path: step_10000
src: input.txt
`)
	if code := Execute("test", []string{"predict-check", path}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestVersion_ExitsZero(t *testing.T) {
	if code := Execute("1.2.3", []string{"version"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestShow_PrintsNormalizedConfig(t *testing.T) {
	path := writeConfig(t, "run.yaml", validConfig)
	if code := Execute("test", []string{"show", path}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}
