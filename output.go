package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/PosEnc/utils"
)

var shades = []rune(" ░▒▓█")

func asciiHeatmap(m mat.Matrix, maxRows, maxCols int) {
	writeASCIIHeatmap(os.Stdout, m, maxRows, maxCols)
}

// writeASCIIHeatmap draws a crude terminal heat map of m, sampling at most
// maxRows x maxCols cells. Values are shaded from min (blank) to max (█).
func writeASCIIHeatmap(w io.Writer, m mat.Matrix, maxRows, maxCols int) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		fmt.Fprintln(w, "no data to plot")
		return
	}
	rows, cols := min(r, maxRows), min(c, maxCols)
	lo, hi := utils.MinMax(m)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		ri := i * r / rows
		for j := 0; j < cols; j++ {
			v := (m.At(ri, j*c/cols) - lo) / span
			k := int(v * float64(len(shades)-1))
			sb.WriteRune(shades[min(max(k, 0), len(shades)-1)])
		}
		sb.WriteByte('\n')
	}
	// x-axis
	sb.WriteString(strings.Repeat("─", cols))
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "rows: position 0..%d, cols: dimension 0..%d\n", r-1, c-1)
	fmt.Fprint(w, sb.String())
}
