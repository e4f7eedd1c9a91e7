package IO

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ExportTableCSV writes m as CSV: a header "position,d0,d1,..." then one
// row per position.
func ExportTableCSV(path string, m mat.Matrix) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, c := m.Dims()
	w := csv.NewWriter(bufio.NewWriter(f))
	header := make([]string, c+1)
	header[0] = "position"
	for j := 0; j < c; j++ {
		header[j+1] = "d" + strconv.Itoa(j)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, c+1)
	for i := 0; i < r; i++ {
		rec[0] = strconv.Itoa(i)
		for j := 0; j < c; j++ {
			rec[j+1] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExportTableBinary writes m in gonum's binary matrix format.
func ExportTableBinary(path string, m mat.Matrix) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if _, err := mat.DenseCopyOf(m).MarshalBinaryTo(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ImportTableBinary reads a matrix written by ExportTableBinary.
func ImportTableBinary(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m mat.Dense
	if _, err := m.UnmarshalBinaryFrom(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &m, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
