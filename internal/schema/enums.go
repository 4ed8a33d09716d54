package schema

import "strings"

const (
	BatchTypeTokens = "tokens"
	BatchTypeSents  = "sents"
)

func IsValidBatchType(s string) bool {
	switch strings.TrimSpace(s) {
	case "", BatchTypeTokens, BatchTypeSents:
		return true
	default:
		return false
	}
}

const (
	OptimSGD             = "sgd"
	OptimAdagrad         = "adagrad"
	OptimAdadelta        = "adadelta"
	OptimAdam            = "adam"
	OptimAdamW           = "adamw"
	OptimSparseAdam      = "sparseadam"
	OptimAdafactor       = "adafactor"
	OptimFusedAdam       = "fusedadam"
	OptimAdamW8Bit       = "adamw8bit"
	OptimPagedAdamW8Bit  = "pagedadamw8bit"
	OptimPagedAdamW32Bit = "pagedadamw32bit"
)

func IsValidOptim(s string) bool {
	switch strings.TrimSpace(s) {
	case "", OptimSGD, OptimAdagrad, OptimAdadelta, OptimAdam, OptimAdamW,
		OptimSparseAdam, OptimAdafactor, OptimFusedAdam,
		OptimAdamW8Bit, OptimPagedAdamW8Bit, OptimPagedAdamW32Bit:
		return true
	default:
		return false
	}
}

const (
	DecayNone   = "none"
	DecayNoam   = "noam"
	DecayNoamWD = "noamwd"
	DecayRsqrt  = "rsqrt"
	DecayCosine = "cosine"
)

func IsValidDecayMethod(s string) bool {
	switch strings.TrimSpace(s) {
	case "", DecayNone, DecayNoam, DecayNoamWD, DecayRsqrt, DecayCosine:
		return true
	default:
		return false
	}
}

const (
	ArchTransformer   = "transformer"
	ArchTransformerLM = "transformer_lm"
)

func IsValidArchitecture(s string) bool {
	switch strings.TrimSpace(s) {
	case "", ArchTransformer, ArchTransformerLM:
		return true
	default:
		return false
	}
}

// Position encoding strategies. The relative family is selected through the
// max_relative_positions sentinel as well; the loader checks both agree.
const (
	PosEncSinusoidalInterleaved = "SinusoidalInterleaved"
	PosEncSinusoidalConcat      = "SinusoidalConcat"
	PosEncLearned               = "Learned"
	PosEncRelative              = "Relative"
	PosEncRotary                = "Rotary"
	PosEncAlibi                 = "Alibi"
)

func IsValidPositionEncodingType(s string) bool {
	switch strings.TrimSpace(s) {
	case "", PosEncSinusoidalInterleaved, PosEncSinusoidalConcat,
		PosEncLearned, PosEncRelative, PosEncRotary, PosEncAlibi:
		return true
	default:
		return false
	}
}

// Sentinel values for max_relative_positions.
const (
	RelativePositionsNone   = 0
	RelativePositionsRotary = -1
	RelativePositionsAlibi  = -2
)

const (
	DtypeFP32 = "fp32"
	DtypeFP16 = "fp16"
	DtypeBF16 = "bf16"
)

func IsValidModelDtype(s string) bool {
	switch strings.TrimSpace(s) {
	case "", DtypeFP32, DtypeFP16, DtypeBF16:
		return true
	default:
		return false
	}
}

const (
	QuantBnb8Bit = "bnb_8bit"
	QuantBnbFP4  = "bnb_FP4"
	QuantBnbNF4  = "bnb_NF4"
)

func IsValidQuantType(s string) bool {
	switch strings.TrimSpace(s) {
	case QuantBnb8Bit, QuantBnbFP4, QuantBnbNF4:
		return true
	default:
		return false
	}
}

// ValidCorpusName is the reserved data entry holding the evaluation set.
const ValidCorpusName = "valid"
