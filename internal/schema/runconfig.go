package schema

// RunConfig is the top-level record of one training or finetuning invocation.
// It is built once by the loader, validated, then treated as immutable; the
// training engine that consumes it never writes it back.
type RunConfig struct {
	Seed       int  `yaml:"seed,omitempty" json:"seed,omitempty"`
	ShareVocab bool `yaml:"share_vocab,omitempty" json:"share_vocab,omitempty"`
	Overwrite  bool `yaml:"overwrite,omitempty" json:"overwrite,omitempty"`

	SrcVocab     string `yaml:"src_vocab,omitempty" json:"src_vocab,omitempty"`
	TgtVocab     string `yaml:"tgt_vocab,omitempty" json:"tgt_vocab,omitempty"`
	SrcVocabSize int    `yaml:"src_vocab_size,omitempty" json:"src_vocab_size,omitempty"`
	TgtVocabSize int    `yaml:"tgt_vocab_size,omitempty" json:"tgt_vocab_size,omitempty"`

	SaveData string `yaml:"save_data,omitempty" json:"save_data,omitempty"`
	// ReportEvery is the step interval between progress reports.
	ReportEvery int `yaml:"report_every,omitempty" json:"report_every,omitempty"`

	Data     map[string]CorpusEntry `yaml:"data" json:"data"`
	Training TrainingConfig         `yaml:"training" json:"training"`
	Model    ModelConfig            `yaml:"model" json:"model"`

	// Extensions holds x- prefixed top-level keys. They pass through the
	// loader un-validated and are not part of the contract.
	Extensions map[string]any `yaml:"-" json:"-"`
}

// CorpusEntry is one named data shard. The reserved entry name "valid" is the
// held-out evaluation set: it is excluded from sampling weighting and must not
// set a weight of its own.
type CorpusEntry struct {
	PathSrc string `yaml:"path_src" json:"path_src"`
	PathTgt string `yaml:"path_tgt,omitempty" json:"path_tgt,omitempty"`
	// Weight is the relative sampling weight of this shard during mixing.
	Weight     int      `yaml:"weight,omitempty" json:"weight,omitempty"`
	Transforms []string `yaml:"transforms,omitempty" json:"transforms,omitempty"`
}

// TrainingConfig governs batching, optimization, regularization,
// checkpointing and the distributed layout of one run.
type TrainingConfig struct {
	BatchSize         int    `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	BatchType         string `yaml:"batch_type,omitempty" json:"batch_type,omitempty"`
	BatchSizeMultiple int    `yaml:"batch_size_multiple,omitempty" json:"batch_size_multiple,omitempty"`
	ValidBatchSize    int    `yaml:"valid_batch_size,omitempty" json:"valid_batch_size,omitempty"`

	// BucketSize is the number of examples pre-sorted before batching.
	BucketSize          int `yaml:"bucket_size,omitempty" json:"bucket_size,omitempty"`
	BucketSizeInit      int `yaml:"bucket_size_init,omitempty" json:"bucket_size_init,omitempty"`
	BucketSizeIncrement int `yaml:"bucket_size_increment,omitempty" json:"bucket_size_increment,omitempty"`
	PrefetchFactor      int `yaml:"prefetch_factor,omitempty" json:"prefetch_factor,omitempty"`

	Optim             string  `yaml:"optim,omitempty" json:"optim,omitempty"`
	LearningRate      float64 `yaml:"learning_rate,omitempty" json:"learning_rate,omitempty"`
	WarmupSteps       int     `yaml:"warmup_steps,omitempty" json:"warmup_steps,omitempty"`
	DecayMethod       string  `yaml:"decay_method,omitempty" json:"decay_method,omitempty"`
	LearningRateDecay float64 `yaml:"learning_rate_decay,omitempty" json:"learning_rate_decay,omitempty"`
	StartDecaySteps   int     `yaml:"start_decay_steps,omitempty" json:"start_decay_steps,omitempty"`
	DecaySteps        int     `yaml:"decay_steps,omitempty" json:"decay_steps,omitempty"`
	AdamBeta1         float64 `yaml:"adam_beta1,omitempty" json:"adam_beta1,omitempty"`
	AdamBeta2         float64 `yaml:"adam_beta2,omitempty" json:"adam_beta2,omitempty"`
	MaxGradNorm       float64 `yaml:"max_grad_norm,omitempty" json:"max_grad_norm,omitempty"`
	LabelSmoothing    float64 `yaml:"label_smoothing,omitempty" json:"label_smoothing,omitempty"`

	// Dropout and DropoutSteps are parallel ordered sequences defining a
	// step-indexed piecewise schedule: Dropout[i] applies from
	// DropoutSteps[i] onward. Lengths must match, steps strictly increasing.
	Dropout          []float64 `yaml:"dropout,omitempty" json:"dropout,omitempty"`
	DropoutSteps     []int     `yaml:"dropout_steps,omitempty" json:"dropout_steps,omitempty"`
	AttentionDropout []float64 `yaml:"attention_dropout,omitempty" json:"attention_dropout,omitempty"`

	// AccumCount and AccumSteps follow the same parallel-sequence rule for
	// gradient accumulation.
	AccumCount []int `yaml:"accum_count,omitempty" json:"accum_count,omitempty"`
	AccumSteps []int `yaml:"accum_steps,omitempty" json:"accum_steps,omitempty"`

	TrainSteps          int    `yaml:"train_steps,omitempty" json:"train_steps,omitempty"`
	ValidSteps          int    `yaml:"valid_steps,omitempty" json:"valid_steps,omitempty"`
	SaveCheckpointSteps int    `yaml:"save_checkpoint_steps,omitempty" json:"save_checkpoint_steps,omitempty"`
	KeepCheckpoint      int    `yaml:"keep_checkpoint,omitempty" json:"keep_checkpoint,omitempty"`
	TrainFrom           string `yaml:"train_from,omitempty" json:"train_from,omitempty"`
	ModelPath           string `yaml:"model_path,omitempty" json:"model_path,omitempty"`

	WorldSize int   `yaml:"world_size,omitempty" json:"world_size,omitempty"`
	GPURanks  []int `yaml:"gpu_ranks,omitempty" json:"gpu_ranks,omitempty"`

	ModelDtype string `yaml:"model_dtype,omitempty" json:"model_dtype,omitempty"`

	Quant *QuantizeConfig `yaml:"quant,omitempty" json:"quant,omitempty"`
	LoRA  *LoRAConfig     `yaml:"lora,omitempty" json:"lora,omitempty"`
}

// ModelConfig describes the architecture hyperparameters.
type ModelConfig struct {
	Architecture           string           `yaml:"architecture,omitempty" json:"architecture,omitempty"`
	Layers                 int              `yaml:"layers,omitempty" json:"layers,omitempty"`
	Heads                  int              `yaml:"heads,omitempty" json:"heads,omitempty"`
	HiddenSize             int              `yaml:"hidden_size,omitempty" json:"hidden_size,omitempty"`
	TransformerFF          int              `yaml:"transformer_ff,omitempty" json:"transformer_ff,omitempty"`
	ShareDecoderEmbeddings bool             `yaml:"share_decoder_embeddings,omitempty" json:"share_decoder_embeddings,omitempty"`
	Embeddings             EmbeddingsConfig `yaml:"embeddings,omitempty" json:"embeddings,omitempty"`
}

// EmbeddingsConfig selects the word embedding size and the position encoding
// strategy. MaxRelativePositions is a sentinel: 0 selects absolute encoding
// only, RelativePositionsRotary (-1) rotary, RelativePositionsAlibi (-2)
// alibi, and any value >= 1 a Shaw-style relative window of that width.
type EmbeddingsConfig struct {
	WordVecSize          int    `yaml:"word_vec_size,omitempty" json:"word_vec_size,omitempty"`
	PositionEncoding     bool   `yaml:"position_encoding,omitempty" json:"position_encoding,omitempty"`
	PositionEncodingType string `yaml:"position_encoding_type,omitempty" json:"position_encoding_type,omitempty"`
	MaxRelativePositions int    `yaml:"max_relative_positions,omitempty" json:"max_relative_positions,omitempty"`
	// NPositions is required when PositionEncodingType is Learned.
	NPositions int `yaml:"n_positions,omitempty" json:"n_positions,omitempty"`
}

// QuantizeConfig lists the layers to quantize and the quantization kind.
// Present only for finetuning runs.
type QuantizeConfig struct {
	QuantLayers []string `yaml:"quant_layers" json:"quant_layers"`
	QuantType   string   `yaml:"quant_type,omitempty" json:"quant_type,omitempty"`
}

// LoRAConfig configures low-rank adapter finetuning. Present only for
// finetuning runs; requires training.train_from.
type LoRAConfig struct {
	LoraLayers    []string `yaml:"lora_layers" json:"lora_layers"`
	LoraRank      int      `yaml:"lora_rank,omitempty" json:"lora_rank,omitempty"`
	LoraAlpha     float64  `yaml:"lora_alpha,omitempty" json:"lora_alpha,omitempty"`
	LoraDropout   float64  `yaml:"lora_dropout,omitempty" json:"lora_dropout,omitempty"`
	LoraEmbedding bool     `yaml:"lora_embedding,omitempty" json:"lora_embedding,omitempty"`
}
