package runconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nlxtools/trainconf/internal/schema"
	"github.com/nlxtools/trainconf/internal/transforms"
)

// Validate checks every cross-field invariant of a run configuration.
// Defaults must already be applied. Validation is all-or-nothing: the first
// violation aborts.
func Validate(cfg *schema.RunConfig) error {
	if cfg.ReportEvery <= 0 {
		return invariant("report_every", "must be > 0")
	}
	if cfg.SrcVocabSize < 0 || cfg.TgtVocabSize < 0 {
		return invariant("src_vocab_size", "vocab sizes must be >= 0")
	}

	if err := validateData(cfg.Data); err != nil {
		return err
	}
	if err := validateTraining(&cfg.Training); err != nil {
		return err
	}
	if err := validateModel(&cfg.Model); err != nil {
		return err
	}
	return nil
}

func validateData(data map[string]schema.CorpusEntry) error {
	if len(data) == 0 {
		return &MissingFieldError{Field: "data"}
	}
	named := 0
	// Sorted iteration keeps the first reported violation deterministic.
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := data[name]
		field := "data." + name
		if strings.TrimSpace(name) == "" {
			return invariant("data", "corpus name must not be empty")
		}
		if strings.TrimSpace(entry.PathSrc) == "" {
			return &MissingFieldError{Field: field + ".path_src"}
		}
		if entry.Weight < 0 {
			return invariant(field+".weight", "weight must be >= 0")
		}
		if name == schema.ValidCorpusName {
			// The held-out set never participates in sampling, so a weight
			// on it is a configuration mistake, not a no-op.
			if entry.Weight != 0 {
				return invariant(field+".weight", "the valid corpus is excluded from sampling and must not set a weight")
			}
		} else {
			named++
		}
		for _, tr := range entry.Transforms {
			if !transforms.Known(tr) {
				return invariant(field+".transforms", fmt.Sprintf("transform %q not supported", tr))
			}
		}
	}
	if named == 0 {
		return invariant("data", "at least one training corpus is required besides valid")
	}
	return nil
}

func validateTraining(t *schema.TrainingConfig) error {
	if t.BatchSize <= 0 {
		return invariant("training.batch_size", "must be > 0")
	}
	if !schema.IsValidBatchType(t.BatchType) {
		return invariant("training.batch_type", fmt.Sprintf("expected %s|%s", schema.BatchTypeTokens, schema.BatchTypeSents))
	}
	if t.BatchSizeMultiple <= 0 {
		return invariant("training.batch_size_multiple", "must be > 0")
	}
	if t.ValidBatchSize <= 0 {
		return invariant("training.valid_batch_size", "must be > 0")
	}
	if t.BucketSize <= 0 {
		return invariant("training.bucket_size", "must be > 0")
	}
	if t.BucketSizeIncrement < 0 {
		return invariant("training.bucket_size_increment", "must be >= 0")
	}
	if t.PrefetchFactor < 0 {
		return invariant("training.prefetch_factor", "must be >= 0")
	}

	if !schema.IsValidOptim(t.Optim) {
		return invariant("training.optim", fmt.Sprintf("unsupported optimizer %q", t.Optim))
	}
	if t.LearningRate < 0 {
		return invariant("training.learning_rate", "must be >= 0")
	}
	if t.WarmupSteps < 0 {
		return invariant("training.warmup_steps", "must be >= 0")
	}
	if !schema.IsValidDecayMethod(t.DecayMethod) {
		return invariant("training.decay_method", fmt.Sprintf("unsupported decay method %q", t.DecayMethod))
	}
	if t.AdamBeta1 <= 0 || t.AdamBeta1 >= 1 {
		return invariant("training.adam_beta1", "must be in (0,1)")
	}
	if t.AdamBeta2 <= 0 || t.AdamBeta2 >= 1 {
		return invariant("training.adam_beta2", "must be in (0,1)")
	}
	if t.MaxGradNorm < 0 {
		return invariant("training.max_grad_norm", "must be >= 0")
	}
	if t.LabelSmoothing < 0 || t.LabelSmoothing > 1 {
		return invariant("training.label_smoothing", "must be in [0,1]")
	}

	if err := validateStepSchedule("training.dropout", len(t.Dropout), "training.dropout_steps", t.DropoutSteps); err != nil {
		return err
	}
	for _, d := range t.Dropout {
		if d < 0 || d > 1 {
			return invariant("training.dropout", "values must be in [0,1]")
		}
	}
	for _, d := range t.AttentionDropout {
		if d < 0 || d > 1 {
			return invariant("training.attention_dropout", "values must be in [0,1]")
		}
	}
	if err := validateStepSchedule("training.accum_count", len(t.AccumCount), "training.accum_steps", t.AccumSteps); err != nil {
		return err
	}
	for _, c := range t.AccumCount {
		if c < 1 {
			return invariant("training.accum_count", "counts must be >= 1")
		}
	}

	if t.TrainSteps <= 0 {
		return invariant("training.train_steps", "must be > 0")
	}
	if t.ValidSteps <= 0 {
		return invariant("training.valid_steps", "must be > 0")
	}
	if t.SaveCheckpointSteps <= 0 {
		return invariant("training.save_checkpoint_steps", "must be > 0")
	}
	if t.KeepCheckpoint < -1 {
		return invariant("training.keep_checkpoint", "must be -1 (keep all) or >= 0")
	}

	if t.WorldSize < 1 {
		return invariant("training.world_size", "must be >= 1")
	}
	for _, rank := range t.GPURanks {
		if rank < 0 || rank >= t.WorldSize {
			return invariant("training.gpu_ranks", fmt.Sprintf("rank %d outside [0,%d)", rank, t.WorldSize))
		}
	}
	if !schema.IsValidModelDtype(t.ModelDtype) {
		return invariant("training.model_dtype", fmt.Sprintf("expected %s|%s|%s", schema.DtypeFP32, schema.DtypeFP16, schema.DtypeBF16))
	}

	if q := t.Quant; q != nil {
		if len(q.QuantLayers) == 0 {
			return &MissingFieldError{Field: "training.quant.quant_layers"}
		}
		if !schema.IsValidQuantType(q.QuantType) {
			return invariant("training.quant.quant_type", fmt.Sprintf("expected %s|%s|%s", schema.QuantBnb8Bit, schema.QuantBnbFP4, schema.QuantBnbNF4))
		}
	}
	if l := t.LoRA; l != nil {
		if strings.TrimSpace(t.TrainFrom) == "" {
			return invariant("training.lora", "lora finetuning requires training.train_from")
		}
		if len(l.LoraLayers) == 0 {
			return &MissingFieldError{Field: "training.lora.lora_layers"}
		}
		if l.LoraRank <= 0 {
			return invariant("training.lora.lora_rank", "must be > 0")
		}
		if l.LoraAlpha <= 0 {
			return invariant("training.lora.lora_alpha", "must be > 0")
		}
		if l.LoraDropout < 0 || l.LoraDropout > 1 {
			return invariant("training.lora.lora_dropout", "must be in [0,1]")
		}
	}
	return nil
}

// validateStepSchedule enforces the parallel-sequence rule shared by
// dropout/dropout_steps and accum_count/accum_steps: equal lengths and
// strictly increasing non-negative steps.
func validateStepSchedule(valuesField string, valuesLen int, stepsField string, steps []int) error {
	if valuesLen != len(steps) {
		return invariant(stepsField, fmt.Sprintf("length %d does not match %s length %d", len(steps), valuesField, valuesLen))
	}
	prev := -1
	for _, s := range steps {
		if s < 0 {
			return invariant(stepsField, "steps must be >= 0")
		}
		if s <= prev {
			return invariant(stepsField, "steps must be strictly increasing")
		}
		prev = s
	}
	return nil
}

func validateModel(m *schema.ModelConfig) error {
	if !schema.IsValidArchitecture(m.Architecture) {
		return invariant("model.architecture", fmt.Sprintf("expected %s|%s", schema.ArchTransformer, schema.ArchTransformerLM))
	}
	if m.Layers <= 0 {
		return invariant("model.layers", "must be > 0")
	}
	if m.Heads <= 0 {
		return invariant("model.heads", "must be > 0")
	}
	if m.HiddenSize <= 0 {
		return invariant("model.hidden_size", "must be > 0")
	}
	if m.HiddenSize%m.Heads != 0 {
		return invariant("model.hidden_size", fmt.Sprintf("%d is not divisible by heads=%d", m.HiddenSize, m.Heads))
	}
	if m.TransformerFF <= 0 {
		return invariant("model.transformer_ff", "must be > 0")
	}
	return validateEmbeddings(&m.Embeddings)
}

func validateEmbeddings(e *schema.EmbeddingsConfig) error {
	if e.WordVecSize <= 0 {
		return invariant("model.embeddings.word_vec_size", "must be > 0")
	}
	if !schema.IsValidPositionEncodingType(e.PositionEncodingType) {
		return invariant("model.embeddings.position_encoding_type", fmt.Sprintf("unsupported encoding type %q", e.PositionEncodingType))
	}
	mrp := e.MaxRelativePositions
	if mrp < schema.RelativePositionsAlibi {
		return invariant("model.embeddings.max_relative_positions", "expected -2 (alibi), -1 (rotary), 0, or a window >= 1")
	}

	// Absolute and relative position information are mutually exclusive: a
	// relative/rotary/alibi mode forbids position_encoding=true.
	if e.PositionEncoding && mrp != schema.RelativePositionsNone {
		return invariant("model.embeddings.position_encoding", "must be false when max_relative_positions selects a relative/rotary/alibi mode")
	}

	switch e.PositionEncodingType {
	case schema.PosEncRotary:
		if mrp != schema.RelativePositionsRotary {
			return invariant("model.embeddings.max_relative_positions", "Rotary requires max_relative_positions: -1")
		}
	case schema.PosEncAlibi:
		if mrp != schema.RelativePositionsAlibi {
			return invariant("model.embeddings.max_relative_positions", "Alibi requires max_relative_positions: -2")
		}
	case schema.PosEncRelative:
		if mrp < 1 {
			return invariant("model.embeddings.max_relative_positions", "Relative requires a window >= 1")
		}
	case schema.PosEncLearned:
		if e.NPositions <= 0 {
			return invariant("model.embeddings.n_positions", "Learned position encoding requires n_positions > 0")
		}
		if mrp != schema.RelativePositionsNone {
			return invariant("model.embeddings.max_relative_positions", "Learned position encoding forbids relative positions")
		}
	default:
		if mrp != schema.RelativePositionsNone {
			return invariant("model.embeddings.position_encoding_type", fmt.Sprintf("max_relative_positions=%d conflicts with encoding type %q", mrp, e.PositionEncodingType))
		}
	}
	if e.PositionEncoding && e.PositionEncodingType == "" {
		return invariant("model.embeddings.position_encoding_type", "required when position_encoding is true")
	}
	return nil
}

// ValidatePredict checks the invariants of a prediction configuration.
func ValidatePredict(cfg *schema.PredictConfig) error {
	if len(cfg.ModelPath) == 0 {
		return &MissingFieldError{Field: "model_path"}
	}
	for i, p := range cfg.ModelPath {
		if strings.TrimSpace(p) == "" {
			return invariant(fmt.Sprintf("model_path[%d]", i), "must not be empty")
		}
	}
	if cfg.BatchSize <= 0 {
		return invariant("batch_size", "must be > 0")
	}
	if !schema.IsValidBatchType(cfg.BatchType) {
		return invariant("batch_type", fmt.Sprintf("expected %s|%s", schema.BatchTypeTokens, schema.BatchTypeSents))
	}

	d := &cfg.Decoding
	if d.BeamSize < 1 {
		return invariant("decoding.beam_size", "must be >= 1")
	}
	if d.NBest < 1 || d.NBest > d.BeamSize {
		return invariant("decoding.n_best", "must be in [1, beam_size]")
	}
	if d.TopK < -1 {
		return invariant("decoding.top_k", "expected -1 (full distribution), 0, or k >= 1")
	}
	if d.TopP < 0 || d.TopP > 1 {
		return invariant("decoding.top_p", "must be in [0,1]")
	}
	if d.Temperature <= 0 {
		return invariant("decoding.temperature", "must be > 0")
	}
	if !schema.IsValidLengthPenalty(d.LengthPenalty) {
		return invariant("decoding.length_penalty", fmt.Sprintf("expected %s|%s|%s", schema.LengthPenaltyAvg, schema.LengthPenaltyWu, schema.LengthPenaltyNone))
	}
	if !schema.IsValidCoveragePenalty(d.CoveragePenalty) {
		return invariant("decoding.coverage_penalty", fmt.Sprintf("expected %s|%s|%s", schema.CoveragePenaltyNone, schema.CoveragePenaltyWu, schema.CoveragePenaltySummary))
	}
	if d.StepwisePenalty && d.CoveragePenalty == schema.CoveragePenaltyNone {
		return invariant("decoding.stepwise_penalty", "requires a coverage penalty")
	}
	if d.MinLength < 0 {
		return invariant("decoding.min_length", "must be >= 0")
	}
	if d.MaxLength < d.MinLength {
		return invariant("decoding.max_length", "must be >= min_length")
	}
	if d.MaxLengthRatio < 1 {
		return invariant("decoding.max_length_ratio", "must be >= 1")
	}
	if d.BlockNgramRepeat < 0 {
		return invariant("decoding.block_ngram_repeat", "must be >= 0")
	}

	if cfg.GoldAlign {
		if !cfg.ReportAlign {
			return invariant("gold_align", "requires report_align")
		}
		if strings.TrimSpace(cfg.Tgt) == "" {
			return invariant("gold_align", "requires tgt")
		}
		if cfg.Decoding.ReplaceUnk {
			return invariant("gold_align", "cannot be combined with replace_unk")
		}
	}
	return nil
}

func invariant(field, msg string) error {
	return &InvariantViolationError{Field: field, Message: msg}
}
