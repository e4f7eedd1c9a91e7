package transformer

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/PosEnc/utils"
)

// DefaultMaxLen is the number of positions precomputed when the caller
// does not ask for a specific length.
const DefaultMaxLen = 500

const baseWavelength = 10000.0

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrShapeMismatch   = errors.New("shape mismatch")
)

// PositionalEncoding holds the fixed sinusoidal table
//
//	PE(p, 2i)   = sin(p / 10000^(2i/d))
//	PE(p, 2i+1) = cos(p / 10000^(2i/d))
//
// and adds it to embedding batches. pe is written once in
// NewPositionalEncoding and only read afterwards, so Encode may be
// called from many goroutines at once.
type PositionalEncoding struct {
	width  int
	maxLen int
	pe     *mat.Dense // (maxLen x width)
}

// NewPositionalEncoding precomputes a (maxLen x width) table.
func NewPositionalEncoding(width, maxLen int) (*PositionalEncoding, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidArgument, width)
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: maxLen must be positive, got %d", ErrInvalidArgument, maxLen)
	}
	pe := &PositionalEncoding{
		width:  width,
		maxLen: maxLen,
		pe:     sinusoidTable(width, maxLen),
	}
	utils.Debugf("PositionalEncoding: built %dx%d table", maxLen, width)
	return pe, nil
}

// NewDefaultPositionalEncoding is NewPositionalEncoding(width, DefaultMaxLen).
func NewDefaultPositionalEncoding(width int) (*PositionalEncoding, error) {
	return NewPositionalEncoding(width, DefaultMaxLen)
}

// sinusoidTable fills even columns with sin and odd columns with cos.
// The frequency 1/10000^(i/width) is taken through exp/log so large widths
// do not overflow the power. With an odd width the last column is a sine
// with no cosine partner.
func sinusoidTable(width, maxLen int) *mat.Dense {
	pe := mat.NewDense(maxLen, width, nil)
	logStep := -math.Log(baseWavelength) / float64(width)
	for i := 0; i < width; i += 2 {
		freq := math.Exp(float64(i) * logStep)
		for p := 0; p < maxLen; p++ {
			angle := float64(p) * freq
			pe.Set(p, i, math.Sin(angle))
			if i+1 < width {
				pe.Set(p, i+1, math.Cos(angle))
			}
		}
	}
	return pe
}

// Width is the embedding width every batch must match.
func (pe *PositionalEncoding) Width() int { return pe.width }

// MaxLen is the longest sequence the table covers.
func (pe *PositionalEncoding) MaxLen() int { return pe.maxLen }

// Table returns a copy of the (maxLen x width) table, e.g. for plotting.
func (pe *PositionalEncoding) Table() *mat.Dense {
	return mat.DenseCopyOf(pe.pe)
}

// Parameters returns the learnable weights of the layer. The table is
// derived data, not a parameter, so there are none.
func (pe *PositionalEncoding) Parameters() []*mat.Dense {
	return nil
}

// Buffers returns copies of the non-learnable state that travels with the
// layer when it is saved.
func (pe *PositionalEncoding) Buffers() map[string]*mat.Dense {
	return map[string]*mat.Dense{"pe": pe.Table()}
}

// scale keeps token embeddings from being drowned out by the table.
func (pe *PositionalEncoding) scale() float64 {
	return math.Sqrt(float64(pe.width))
}

// EncodeSeq returns x*sqrt(width) + PE[:L] for a single (L x width) sequence.
func (pe *PositionalEncoding) EncodeSeq(x mat.Matrix) (*mat.Dense, error) {
	L, w := x.Dims()
	if w != pe.width {
		return nil, fmt.Errorf("%w: sequence width %d, encoder width %d", ErrShapeMismatch, w, pe.width)
	}
	if L > pe.maxLen {
		return nil, fmt.Errorf("%w: sequence length %d exceeds max length %d", ErrShapeMismatch, L, pe.maxLen)
	}
	out := utils.Add(utils.Scale(pe.scale(), x), utils.RowSlice(pe.pe, L))
	return utils.ToDense(out), nil
}

// Encode scales every embedding by sqrt(width) and adds the first SeqLen
// rows of the table to each sequence in the batch. The input is left
// untouched; a new batch of the same shape is returned.
func (pe *PositionalEncoding) Encode(batch Batch) (Batch, error) {
	if err := pe.checkBatch(batch); err != nil {
		return Batch{}, err
	}
	out := batch.emptyLike()
	for b := 0; b < batch.Size; b++ {
		pe.encodeInto(out, batch, b)
	}
	return out, nil
}

// EncodeParallel is Encode with the sequences spread over workers
// goroutines (NumCPU when workers <= 0). Each goroutine writes a disjoint
// set of sequences, so the result is identical to Encode.
func (pe *PositionalEncoding) EncodeParallel(batch Batch, workers int) (Batch, error) {
	if err := pe.checkBatch(batch); err != nil {
		return Batch{}, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > batch.Size {
		workers = batch.Size
	}
	out := batch.emptyLike()
	if workers == 1 {
		for b := 0; b < batch.Size; b++ {
			pe.encodeInto(out, batch, b)
		}
		return out, nil
	}
	utils.Debugf("EncodeParallel: %d sequences over %d workers", batch.Size, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		ww := w
		go func() {
			defer wg.Done()
			for b := ww; b < batch.Size; b += workers {
				pe.encodeInto(out, batch, b)
			}
		}()
	}
	wg.Wait()
	return out, nil
}

// encodeInto writes sequence b of src into dst. Shapes are already checked.
func (pe *PositionalEncoding) encodeInto(dst, src Batch, b int) {
	s := pe.scale()
	w := src.Width
	base := b * src.SeqLen * w
	for p := 0; p < src.SeqLen; p++ {
		off := base + p*w
		row := dst.Data[off : off+w]
		floats.ScaleTo(row, s, src.Data[off:off+w])
		floats.Add(row, pe.pe.RawRowView(p))
	}
}

func (pe *PositionalEncoding) checkBatch(batch Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Width != pe.width {
		return fmt.Errorf("%w: batch width %d, encoder width %d", ErrShapeMismatch, batch.Width, pe.width)
	}
	if batch.SeqLen > pe.maxLen {
		return fmt.Errorf("%w: sequence length %d exceeds max length %d", ErrShapeMismatch, batch.SeqLen, pe.maxLen)
	}
	return nil
}
