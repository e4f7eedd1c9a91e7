package transformer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Batch is a row-major (Size, SeqLen, Width) block of embeddings.
type Batch struct {
	Size   int
	SeqLen int
	Width  int
	Data   []float64
}

// NewBatch wraps data as a (size, seqLen, width) batch. A nil data slice
// allocates zeros.
func NewBatch(size, seqLen, width int, data []float64) (Batch, error) {
	if data == nil && size > 0 && seqLen > 0 && width > 0 {
		data = make([]float64, size*seqLen*width)
	}
	b := Batch{Size: size, SeqLen: seqLen, Width: width, Data: data}
	if err := b.Validate(); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// BatchFromSeqs stacks equally shaped (L x width) sequences into a batch.
func BatchFromSeqs(seqs ...mat.Matrix) (Batch, error) {
	if len(seqs) == 0 {
		return Batch{}, fmt.Errorf("%w: no sequences", ErrShapeMismatch)
	}
	L, w := seqs[0].Dims()
	out, err := NewBatch(len(seqs), L, w, nil)
	if err != nil {
		return Batch{}, err
	}
	for b, s := range seqs {
		r, c := s.Dims()
		if r != L || c != w {
			return Batch{}, fmt.Errorf("%w: sequence %d is %dx%d, want %dx%d", ErrShapeMismatch, b, r, c, L, w)
		}
		out.Seq(b).Copy(s)
	}
	return out, nil
}

// Validate checks that the dims are positive and agree with len(Data).
func (b Batch) Validate() error {
	if b.Size <= 0 || b.SeqLen <= 0 || b.Width <= 0 {
		return fmt.Errorf("%w: batch dims (%d, %d, %d) must be positive", ErrShapeMismatch, b.Size, b.SeqLen, b.Width)
	}
	if want := b.Size * b.SeqLen * b.Width; len(b.Data) != want {
		return fmt.Errorf("%w: batch holds %d values, shape needs %d", ErrShapeMismatch, len(b.Data), want)
	}
	return nil
}

// Shape returns [Size, SeqLen, Width].
func (b Batch) Shape() []int {
	return []int{b.Size, b.SeqLen, b.Width}
}

func (b Batch) At(i, p, d int) float64 {
	return b.Data[(i*b.SeqLen+p)*b.Width+d]
}

// Seq returns sequence i as an (SeqLen x Width) matrix sharing b.Data.
func (b Batch) Seq(i int) *mat.Dense {
	n := b.SeqLen * b.Width
	return mat.NewDense(b.SeqLen, b.Width, b.Data[i*n:(i+1)*n:(i+1)*n])
}

func (b Batch) emptyLike() Batch {
	return Batch{
		Size:   b.Size,
		SeqLen: b.SeqLen,
		Width:  b.Width,
		Data:   make([]float64, len(b.Data)),
	}
}
