package params

import (
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Emb is built once when a tokenizer is loaded and reused by every
// -text / -cli lookup.
var Emb *mat.Dense // (|V| x DModel)

type EncodingConfig struct {
	// Core encoding parameters
	DModel int // embedding width
	MaxLen int // rows precomputed in the table

	// Demo batch
	BatchSize int // sequences per batch
	SeqLen    int // tokens per sequence (must be <= MaxLen)
	VocabSize int // rows of the random embedding table used by -text / -cli

	// Runtime
	Workers int  // goroutines for EncodeParallel (0 = NumCPU)
	Debug   bool // enable Debugf output

	// Output paths (empty = skip)
	HeatmapPath string
	CSVPath     string
}

// Defaults match the classic demo: d_model 512, a 32x50 batch.
// Override from the shell, e.g.
// WORKERS=4 DEBUG=1 go run . -heatmap pe.png
var Config = EncodingConfig{
	DModel: 512,
	MaxLen: 500,

	BatchSize: 32,
	SeqLen:    50,
	VocabSize: 30522, // bert-base-uncased tokenizer.json

	Workers: 0,
	Debug:   false,
}

// FromEnv applies WORKERS and DEBUG overrides to Config.
// Malformed values are ignored.
func FromEnv() {
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			Config.Workers = n
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			Config.Debug = b
		}
	}
}
