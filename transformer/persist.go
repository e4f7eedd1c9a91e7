package transformer

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// encodingData is the on-disk form. The table is stored as a buffer next
// to the dims so a loaded encoder does not have to recompute it.
type encodingData struct {
	Width  int
	MaxLen int
	PE     []float64
}

// Save persists the encoder (dims + table) to path using gob. The data is
// written to a temp file in the same directory and renamed into place, so
// a failed save never leaves a truncated file at path.
func (pe *PositionalEncoding) Save(path string) error {
	if err := writeFileAtomic(path, pe.SaveTo); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (pe *PositionalEncoding) SaveTo(w io.Writer) error {
	raw := pe.pe.RawMatrix()
	data := encodingData{
		Width:  pe.width,
		MaxLen: pe.maxLen,
		PE:     append([]float64(nil), raw.Data...),
	}
	return gob.NewEncoder(w).Encode(data)
}

// LoadPositionalEncoding reads an encoder written by Save.
func LoadPositionalEncoding(path string) (*PositionalEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pe, err := LoadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return pe, nil
}

func LoadFrom(r io.Reader) (*PositionalEncoding, error) {
	var data encodingData
	if err := gob.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	if data.Width <= 0 || data.MaxLen <= 0 {
		return nil, fmt.Errorf("%w: stored dims %dx%d", ErrInvalidArgument, data.MaxLen, data.Width)
	}
	if len(data.PE) != data.Width*data.MaxLen {
		return nil, fmt.Errorf("%w: stored table has %d values, want %d", ErrShapeMismatch, len(data.PE), data.Width*data.MaxLen)
	}
	return &PositionalEncoding{
		width:  data.Width,
		maxLen: data.MaxLen,
		pe:     mat.NewDense(data.MaxLen, data.Width, data.PE),
	}, nil
}
