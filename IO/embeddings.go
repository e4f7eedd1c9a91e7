package IO

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/PosEnc/transformer"
	"github.com/manningwu07/PosEnc/utils"
)

// PadID fills positions past the end of a short sequence.
const PadID = 0

// InitEmbeddings returns a (vocabSize x dModel) table of small random
// values, one row per token id.
func InitEmbeddings(vocabSize, dModel int, src rand.Source) *mat.Dense {
	data := utils.RandomArray(vocabSize*dModel, float64(dModel), src)
	return mat.NewDense(vocabSize, dModel, data)
}

// BatchFromIDs looks up every id in emb and stacks the sequences into a
// (len(seqs), seqLen, dModel) batch. Longer sequences are truncated and
// shorter ones padded with PadID. seqLen <= 0 uses the longest sequence.
func BatchFromIDs(emb *mat.Dense, seqs [][]int, seqLen int) (transformer.Batch, error) {
	vocab, dModel := emb.Dims()
	if len(seqs) == 0 {
		return transformer.Batch{}, fmt.Errorf("no sequences")
	}
	if seqLen <= 0 {
		for _, s := range seqs {
			seqLen = max(seqLen, len(s))
		}
	}
	batch, err := transformer.NewBatch(len(seqs), seqLen, dModel, nil)
	if err != nil {
		return transformer.Batch{}, err
	}
	for b, ids := range seqs {
		dst := batch.Seq(b)
		for p := 0; p < seqLen; p++ {
			id := PadID
			if p < len(ids) {
				id = ids[p]
			}
			if id < 0 || id >= vocab {
				return transformer.Batch{}, fmt.Errorf("token id %d out of range [0, %d)", id, vocab)
			}
			dst.SetRow(p, emb.RawRowView(id))
		}
	}
	return batch, nil
}
