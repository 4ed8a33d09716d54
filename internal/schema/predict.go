package schema

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// StringList decodes from either a single scalar or a sequence, so
// `model_path: step_10000` and `model_path: [a, b]` both work.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

const (
	LengthPenaltyAvg  = "avg"
	LengthPenaltyWu   = "wu"
	LengthPenaltyNone = "none"
)

func IsValidLengthPenalty(s string) bool {
	switch strings.TrimSpace(s) {
	case "", LengthPenaltyAvg, LengthPenaltyWu, LengthPenaltyNone:
		return true
	default:
		return false
	}
}

const (
	CoveragePenaltyNone    = "none"
	CoveragePenaltyWu      = "wu"
	CoveragePenaltySummary = "summary"
)

func IsValidCoveragePenalty(s string) bool {
	switch strings.TrimSpace(s) {
	case "", CoveragePenaltyNone, CoveragePenaltyWu, CoveragePenaltySummary:
		return true
	default:
		return false
	}
}

// DecodingConfig is the search/sampling part of a prediction run.
type DecodingConfig struct {
	BeamSize    int     `yaml:"beam_size,omitempty" json:"beam_size,omitempty"`
	NBest       int     `yaml:"n_best,omitempty" json:"n_best,omitempty"`
	Ratio       float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	TopK        int     `yaml:"top_k,omitempty" json:"top_k,omitempty"`
	TopP        float64 `yaml:"top_p,omitempty" json:"top_p,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`

	LengthPenalty   string  `yaml:"length_penalty,omitempty" json:"length_penalty,omitempty"`
	Alpha           float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`
	CoveragePenalty string  `yaml:"coverage_penalty,omitempty" json:"coverage_penalty,omitempty"`
	Beta            float64 `yaml:"beta,omitempty" json:"beta,omitempty"`
	StepwisePenalty bool    `yaml:"stepwise_penalty,omitempty" json:"stepwise_penalty,omitempty"`

	MinLength      int     `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength      int     `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	MaxLengthRatio float64 `yaml:"max_length_ratio,omitempty" json:"max_length_ratio,omitempty"`

	BlockNgramRepeat   int      `yaml:"block_ngram_repeat,omitempty" json:"block_ngram_repeat,omitempty"`
	IgnoreWhenBlocking []string `yaml:"ignore_when_blocking,omitempty" json:"ignore_when_blocking,omitempty"`

	BanUnkToken bool   `yaml:"ban_unk_token,omitempty" json:"ban_unk_token,omitempty"`
	ReplaceUnk  bool   `yaml:"replace_unk,omitempty" json:"replace_unk,omitempty"`
	PhraseTable string `yaml:"phrase_table,omitempty" json:"phrase_table,omitempty"`
}

// PredictConfig is the top-level record of one prediction invocation.
type PredictConfig struct {
	ModelPath StringList `yaml:"model_path" json:"model_path"`
	Src       string     `yaml:"src,omitempty" json:"src,omitempty"`
	Tgt       string     `yaml:"tgt,omitempty" json:"tgt,omitempty"`
	Output    string     `yaml:"output,omitempty" json:"output,omitempty"`

	BatchSize int    `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	BatchType string `yaml:"batch_type,omitempty" json:"batch_type,omitempty"`

	Decoding DecodingConfig `yaml:"decoding,omitempty" json:"decoding,omitempty"`

	GoldAlign   bool     `yaml:"gold_align,omitempty" json:"gold_align,omitempty"`
	ReportAlign bool     `yaml:"report_align,omitempty" json:"report_align,omitempty"`
	ReportTime  bool     `yaml:"report_time,omitempty" json:"report_time,omitempty"`
	Verbose     bool     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	WithScore   bool     `yaml:"with_score,omitempty" json:"with_score,omitempty"`
	OptionalEOS []string `yaml:"optional_eos,omitempty" json:"optional_eos,omitempty"`
	Seed        int      `yaml:"seed,omitempty" json:"seed,omitempty"`

	Extensions map[string]any `yaml:"-" json:"-"`
}
