// Package nn implements the feed-forward transition classifier: an
// embedding layer over feature IDs, one cube-activated hidden layer and a
// softmax output layer, trained by minibatch AdaGrad.
package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Params holds the classifier parameters, or a gradient of the same shape.
//
//	E:  vocab x dim          one embedding per feature ID
//	W1: hidden x dim*slots   slot j uses columns [j*dim, (j+1)*dim)
//	B1: hidden
//	W2: transitions x hidden
type Params struct {
	E, W1, W2 *mat.Dense
	B1        []float64
}

// NewParams returns zeroed parameters.
func NewParams(vocab, dim, hidden, numTokens, numTrans int) *Params {
	return &Params{
		E:  mat.NewDense(vocab, dim, nil),
		W1: mat.NewDense(hidden, dim*numTokens, nil),
		B1: make([]float64, hidden),
		W2: mat.NewDense(numTrans, hidden, nil),
	}
}

// ZerosLike returns zeroed parameters shaped like p.
func (p *Params) ZerosLike() *Params {
	vocab, dim := p.E.Dims()
	hidden, cols := p.W1.Dims()
	numTrans, _ := p.W2.Dims()
	return NewParams(vocab, dim, hidden, cols/dim, numTrans)
}

func (p *Params) Vocab() int {
	r, _ := p.E.Dims()
	return r
}

func (p *Params) EmbeddingSize() int {
	_, c := p.E.Dims()
	return c
}

func (p *Params) HiddenSize() int {
	return len(p.B1)
}

func (p *Params) NumTokens() int {
	_, c := p.W1.Dims()
	return c / p.EmbeddingSize()
}

func (p *Params) NumTransitions() int {
	r, _ := p.W2.Dims()
	return r
}

// InitRandom draws every parameter uniformly from [-initRange, initRange).
func (p *Params) InitRandom(rng *rand.Rand, initRange float64) {
	for _, m := range []*mat.Dense{p.E, p.W1, p.W2} {
		uniform(rng, m.RawMatrix().Data, initRange)
	}
	uniform(rng, p.B1, initRange)
}

func uniform(rng *rand.Rand, data []float64, initRange float64) {
	for i := range data {
		data[i] = rng.Float64()*2*initRange - initRange
	}
}

// slices returns the backing data of every parameter block. The E block
// is included only when withE is set.
func (p *Params) slices(withE bool) [][]float64 {
	retval := [][]float64{p.W1.RawMatrix().Data, p.B1, p.W2.RawMatrix().Data}
	if withE {
		retval = append(retval, p.E.RawMatrix().Data)
	}
	return retval
}

// Add adds other to p in place.
func (p *Params) Add(other *Params) {
	a, b := p.slices(true), other.slices(true)
	for i := range a {
		floats.Add(a[i], b[i])
	}
}

// Scale multiplies every parameter by s.
func (p *Params) Scale(s float64) {
	for _, data := range p.slices(true) {
		floats.Scale(s, data)
	}
}

// SquaredNorm is the sum of squares of W1, b1, W2 and, when withE is
// set, E.
func (p *Params) SquaredNorm(withE bool) float64 {
	var sum float64
	for _, data := range p.slices(withE) {
		sum += floats.Dot(data, data)
	}
	return sum
}

func (p *Params) Equal(other *Params) bool {
	return mat.Equal(p.E, other.E) &&
		mat.Equal(p.W1, other.W1) &&
		mat.Equal(p.W2, other.W2) &&
		floats.Equal(p.B1, other.B1)
}

func (p *Params) Copy() *Params {
	return &Params{
		E:  mat.DenseCopyOf(p.E),
		W1: mat.DenseCopyOf(p.W1),
		W2: mat.DenseCopyOf(p.W2),
		B1: append([]float64(nil), p.B1...),
	}
}
