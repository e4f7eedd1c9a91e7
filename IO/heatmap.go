package IO

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// tableGrid adapts a (positions x dims) matrix to plotter.GridXYZ:
// columns run along x (embedding dimension), rows along y (position).
type tableGrid struct {
	m mat.Matrix
}

func (g tableGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}
func (g tableGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g tableGrid) X(c int) float64    { return float64(c) }
func (g tableGrid) Y(r int) float64    { return float64(r) }

// RenderHeatmap draws m as a heat map and saves it to path. The image
// format follows the extension (.png, .svg, .pdf, ...).
func RenderHeatmap(path string, m mat.Matrix, title string) error {
	if r, c := m.Dims(); r == 0 || c == 0 {
		return fmt.Errorf("heatmap: empty matrix")
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Embedding Dimension"
	p.Y.Label.Text = "Position"

	h := plotter.NewHeatMap(tableGrid{m: m}, palette.Heat(64, 1))
	p.Add(h)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("heatmap %s: %w", path, err)
	}
	return nil
}
