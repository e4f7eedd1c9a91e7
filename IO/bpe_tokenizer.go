package IO

import (
	"fmt"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Global tokenizer used by the demo and CLI
var bpeTokenizer *tk.Tokenizer

// LoadBPE loads a pretrained tokenizer.json (HuggingFace format).
func LoadBPE(tokPath string) error {
	if !fileExists(tokPath) {
		return fmt.Errorf("tokenizer file %s not found", tokPath)
	}
	t, err := pretrained.FromFile(tokPath)
	if err != nil {
		return fmt.Errorf("load tokenizer %s: %w", tokPath, err)
	}
	bpeTokenizer = t
	return nil
}

// BPEVocabSize returns the vocab size of the loaded tokenizer
// (including added tokens), or 0 if none is loaded.
func BPEVocabSize() int {
	if bpeTokenizer == nil {
		return 0
	}
	return len(bpeTokenizer.GetVocab(true))
}

// EncodeBPE encodes raw text into token IDs and their surface tokens.
func EncodeBPE(text string) ([]int, []string, error) {
	if bpeTokenizer == nil {
		return nil, nil, fmt.Errorf("tokenizer not initialized")
	}
	enc, err := bpeTokenizer.EncodeSingle(text)
	if err != nil {
		return nil, nil, err
	}
	out := make([]int, len(enc.Ids))
	for i, v := range enc.Ids {
		out[i] = int(v)
	}
	return out, enc.Tokens, nil
}

// UnloadBPE drops the loaded tokenizer.
func UnloadBPE() {
	bpeTokenizer = nil
}
