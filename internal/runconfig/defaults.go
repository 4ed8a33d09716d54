package runconfig

import "github.com/nlxtools/trainconf/internal/schema"

// Default values applied before validation. They mirror what the training
// engine assumes when a field is absent.
const (
	DefaultReportEvery         = 50
	DefaultBatchType           = schema.BatchTypeSents
	DefaultBucketSize          = 2048
	DefaultBucketSizeInit      = -1
	DefaultOptim               = schema.OptimAdam
	DefaultDecayMethod         = schema.DecayNone
	DefaultAdamBeta1           = 0.9
	DefaultAdamBeta2           = 0.998
	DefaultKeepCheckpoint      = -1
	DefaultTrainSteps          = 100000
	DefaultValidSteps          = 10000
	DefaultSaveCheckpointSteps = 5000
	DefaultWorldSize           = 1
	DefaultModelDtype          = schema.DtypeFP32

	DefaultLayers        = 2
	DefaultHeads         = 8
	DefaultHiddenSize    = 512
	DefaultTransformerFF = 2048
	DefaultWordVecSize   = 512
)

func applyDefaults(cfg *schema.RunConfig) {
	if cfg.ReportEvery == 0 {
		cfg.ReportEvery = DefaultReportEvery
	}

	t := &cfg.Training
	if t.BatchType == "" {
		t.BatchType = DefaultBatchType
	}
	if t.BatchSizeMultiple == 0 {
		t.BatchSizeMultiple = 1
	}
	if t.ValidBatchSize == 0 {
		t.ValidBatchSize = t.BatchSize
	}
	if t.BucketSize == 0 {
		t.BucketSize = DefaultBucketSize
	}
	if t.BucketSizeInit == 0 {
		t.BucketSizeInit = DefaultBucketSizeInit
	}
	if t.Optim == "" {
		t.Optim = DefaultOptim
	}
	if t.DecayMethod == "" {
		t.DecayMethod = DefaultDecayMethod
	}
	if t.AdamBeta1 == 0 {
		t.AdamBeta1 = DefaultAdamBeta1
	}
	if t.AdamBeta2 == 0 {
		t.AdamBeta2 = DefaultAdamBeta2
	}
	if t.KeepCheckpoint == 0 {
		t.KeepCheckpoint = DefaultKeepCheckpoint
	}
	if t.TrainSteps == 0 {
		t.TrainSteps = DefaultTrainSteps
	}
	if t.ValidSteps == 0 {
		t.ValidSteps = DefaultValidSteps
	}
	if t.SaveCheckpointSteps == 0 {
		t.SaveCheckpointSteps = DefaultSaveCheckpointSteps
	}
	if t.WorldSize == 0 {
		t.WorldSize = DefaultWorldSize
	}
	if t.ModelDtype == "" {
		t.ModelDtype = DefaultModelDtype
	}
	// The dropout schedule defaults to empty, not nil, so the record
	// round-trips to an equal value.
	if t.Dropout == nil {
		t.Dropout = []float64{}
	}
	if t.DropoutSteps == nil {
		t.DropoutSteps = []int{}
	}

	m := &cfg.Model
	if m.Architecture == "" {
		m.Architecture = schema.ArchTransformer
	}
	if m.Layers == 0 {
		m.Layers = DefaultLayers
	}
	if m.Heads == 0 {
		m.Heads = DefaultHeads
	}
	if m.HiddenSize == 0 {
		m.HiddenSize = DefaultHiddenSize
	}
	if m.TransformerFF == 0 {
		m.TransformerFF = DefaultTransformerFF
	}

	e := &m.Embeddings
	if e.WordVecSize == 0 {
		e.WordVecSize = m.HiddenSize
	}
	// Derive the encoding type from the sentinel when only one is given.
	if e.PositionEncodingType == "" {
		switch {
		case e.MaxRelativePositions == schema.RelativePositionsRotary:
			e.PositionEncodingType = schema.PosEncRotary
		case e.MaxRelativePositions == schema.RelativePositionsAlibi:
			e.PositionEncodingType = schema.PosEncAlibi
		case e.MaxRelativePositions >= 1:
			e.PositionEncodingType = schema.PosEncRelative
		case e.PositionEncoding:
			e.PositionEncodingType = schema.PosEncSinusoidalInterleaved
		}
	}

	if l := t.LoRA; l != nil {
		if l.LoraRank == 0 {
			l.LoraRank = 2
		}
		if l.LoraAlpha == 0 {
			l.LoraAlpha = 1
		}
	}
}

// Decoding defaults from the engine's prediction entry point.
const (
	DefaultBeamSize         = 5
	DefaultNBest            = 1
	DefaultTemperature      = 1.0
	DefaultLengthPenalty    = schema.LengthPenaltyAvg
	DefaultAlpha            = 1.0
	DefaultCoveragePenalty  = schema.CoveragePenaltyNone
	DefaultMaxLength        = 250
	DefaultMaxLengthRatio   = 2
	DefaultPredictBatchSize = 30
)

func applyPredictDefaults(cfg *schema.PredictConfig) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultPredictBatchSize
	}
	if cfg.BatchType == "" {
		cfg.BatchType = schema.BatchTypeSents
	}

	d := &cfg.Decoding
	if d.BeamSize == 0 {
		d.BeamSize = DefaultBeamSize
	}
	if d.NBest == 0 {
		d.NBest = DefaultNBest
	}
	if d.Temperature == 0 {
		d.Temperature = DefaultTemperature
	}
	if d.LengthPenalty == "" {
		d.LengthPenalty = DefaultLengthPenalty
	}
	if d.Alpha == 0 {
		d.Alpha = DefaultAlpha
	}
	if d.CoveragePenalty == "" {
		d.CoveragePenalty = DefaultCoveragePenalty
	}
	if d.MaxLength == 0 {
		d.MaxLength = DefaultMaxLength
	}
	if d.MaxLengthRatio == 0 {
		d.MaxLengthRatio = DefaultMaxLengthRatio
	}
}
