package neural

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// LayerWeights holds one weight matrix in row-major order for serialization.
type LayerWeights struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// Layers copies the weight matrices out in layer order.
func (p *Policy) Layers() []LayerWeights {
	out := make([]LayerWeights, len(p.layers))
	for i, w := range p.layers {
		rows, cols := w.Dims()
		lw := LayerWeights{Rows: rows, Cols: cols, Data: make([]float64, 0, rows*cols)}
		for r := 0; r < rows; r++ {
			lw.Data = append(lw.Data, w.RawRowView(r)...)
		}
		out[i] = lw
	}
	return out
}

// FromLayers rebuilds a policy from serialized layers.
// Consecutive layers must chain (cols of one == rows of the next).
func FromLayers(layers []LayerWeights) (*Policy, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers")
	}

	p := &Policy{layers: make([]*mat.Dense, len(layers))}
	for i, lw := range layers {
		if lw.Rows < 1 || lw.Cols < 1 || len(lw.Data) != lw.Rows*lw.Cols {
			return nil, fmt.Errorf("layer %d: %dx%d with %d values", i, lw.Rows, lw.Cols, len(lw.Data))
		}
		if i > 0 && layers[i-1].Cols != lw.Rows {
			return nil, fmt.Errorf("layer %d: expected %d rows, got %d", i, layers[i-1].Cols, lw.Rows)
		}
		p.layers[i] = mat.NewDense(lw.Rows, lw.Cols, append([]float64(nil), lw.Data...))
	}
	return p, nil
}

// WriteText writes every weight matrix in layer order in a human-readable form.
func (p *Policy) WriteText(w io.Writer) error {
	for i, layer := range p.layers {
		rows, cols := layer.Dims()
		if _, err := fmt.Fprintf(w, "# layer %d (%dx%d)\n%v\n\n", i, rows, cols, mat.Formatted(layer, mat.Squeeze())); err != nil {
			return fmt.Errorf("writing layer %d: %w", i, err)
		}
	}
	return nil
}
