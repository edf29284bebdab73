// Package neural provides the feed-forward policy networks that drive agents.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Policy is a fixed-topology feedforward network without biases.
// Layer i maps a row vector of width Rows to one of width Cols:
// x = tanh(x · W_i).
type Policy struct {
	layers []*mat.Dense
}

// NewPolicy creates a network with N(0,1) weights multiplied by scale.
// There is no fan-in normalization: initial variance drives the behavioral
// spread of early generations.
func NewPolicy(rng *rand.Rand, inputs, outputs int, hidden []int, scale float64) *Policy {
	if inputs < 1 || outputs < 1 {
		panic(fmt.Sprintf("neural: invalid policy dimensions %d -> %d", inputs, outputs))
	}

	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inputs)
	sizes = append(sizes, hidden...)
	sizes = append(sizes, outputs)

	p := &Policy{layers: make([]*mat.Dense, len(sizes)-1)}
	for i := range p.layers {
		rows, cols := sizes[i], sizes[i+1]
		data := make([]float64, rows*cols)
		for j := range data {
			data[j] = rng.NormFloat64() * scale
		}
		p.layers[i] = mat.NewDense(rows, cols, data)
	}
	return p
}

// Predict runs the network and returns one unnormalized score per output.
func (p *Policy) Predict(input []float64) []float64 {
	if len(input) != p.InputSize() {
		panic(fmt.Sprintf("neural: expected %d inputs, got %d", p.InputSize(), len(input)))
	}

	x := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for _, w := range p.layers {
		_, cols := w.Dims()
		y := mat.NewVecDense(cols, nil)
		y.MulVec(w.T(), x)
		raw := y.RawVector().Data
		for i, v := range raw {
			raw[i] = math.Tanh(v)
		}
		x = y
	}
	return append([]float64(nil), x.RawVector().Data...)
}

// Crossover averages two parents layer by layer, then independently for each
// layer adds N(0, power) noise to the whole layer with probability rate.
// Mutation is per layer, not per weight.
func Crossover(rng *rand.Rand, a, b *Policy, rate, power float64) *Policy {
	if len(a.layers) != len(b.layers) {
		panic(fmt.Sprintf("neural: crossover of %d-layer and %d-layer policies", len(a.layers), len(b.layers)))
	}

	child := &Policy{layers: make([]*mat.Dense, len(a.layers))}
	for i := range a.layers {
		ar, ac := a.layers[i].Dims()
		br, bc := b.layers[i].Dims()
		if ar != br || ac != bc {
			panic(fmt.Sprintf("neural: layer %d shape mismatch %dx%d vs %dx%d", i, ar, ac, br, bc))
		}

		w := mat.NewDense(ar, ac, nil)
		w.Add(a.layers[i], b.layers[i])
		w.Scale(0.5, w)
		child.layers[i] = w
	}
	child.Mutate(rng, rate, power)
	return child
}

// Mutate perturbs each layer with probability rate and returns how many
// layers were touched.
func (p *Policy) Mutate(rng *rand.Rand, rate, power float64) int {
	mutated := 0
	for _, w := range p.layers {
		if rng.Float64() >= rate {
			continue
		}
		w.Apply(func(_, _ int, v float64) float64 {
			return v + rng.NormFloat64()*power
		}, w)
		mutated++
	}
	return mutated
}

// Clone creates a deep copy of the network.
func (p *Policy) Clone() *Policy {
	clone := &Policy{layers: make([]*mat.Dense, len(p.layers))}
	for i, w := range p.layers {
		clone.layers[i] = mat.DenseCopyOf(w)
	}
	return clone
}

// InputSize returns the expected perception vector length.
func (p *Policy) InputSize() int {
	rows, _ := p.layers[0].Dims()
	return rows
}

// OutputSize returns the number of scores produced.
func (p *Policy) OutputSize() int {
	_, cols := p.layers[len(p.layers)-1].Dims()
	return cols
}

// NumLayers returns the number of weight matrices.
func (p *Policy) NumLayers() int {
	return len(p.layers)
}

// Layer exposes a read-only view of layer i.
func (p *Policy) Layer(i int) mat.Matrix {
	return p.layers[i]
}
