package nn

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Cost is the loss and gradient of a minibatch.
type Cost struct {
	Loss     float64
	Correct  int
	N        int
	Gradient *Params

	// gradSaved holds the hidden-layer gradient of precomputed rows,
	// pushed into W1 and E by backpropSaved.
	gradSaved map[int][]float64
}

// PercentCorrect is the share of examples whose highest scoring allowed
// transition is the gold one.
func (c *Cost) PercentCorrect() float64 {
	if c.N == 0 {
		return 0
	}
	return 100 * float64(c.Correct) / float64(c.N)
}

func (c *Cost) merge(other *Cost) {
	c.Loss += other.Loss
	c.Correct += other.Correct
	c.N += other.N
	c.Gradient.Add(other.Gradient)
	for row, g := range other.gradSaved {
		if mine, exists := c.gradSaved[row]; exists {
			floats.Add(mine, g)
		} else {
			c.gradSaved[row] = g
		}
	}
}

// ComputeCost returns the regularized loss and gradient over examples.
// Examples are split into one contiguous chunk per worker; each chunk
// draws its dropout masks from its own generator seeded from rng.
func (c *Classifier) ComputeCost(examples []Example, regParameter, dropProb float64, rng *rand.Rand) (*Cost, error) {
	if len(examples) == 0 {
		return nil, errors.New("nn: empty minibatch")
	}
	pool := c.workers()
	keys := c.batchKeys(examples)
	c.refresh(keys)

	threads := c.Threads
	if threads < 1 {
		threads = 1
	}
	chunkSize := (len(examples) + threads - 1) / threads
	var (
		costs []*Cost
		tasks []func() error
	)
	for start := 0; start < len(examples); start += chunkSize {
		end := min(start+chunkSize, len(examples))
		chunk := examples[start:end]
		i := len(costs)
		costs = append(costs, nil)
		chunkRng := rand.New(rand.NewSource(rng.Int63()))
		tasks = append(tasks, func() error {
			cost, err := c.chunkCost(chunk, dropProb, chunkRng)
			costs[i] = cost
			return err
		})
	}
	if err := pool.Run(tasks); err != nil {
		return nil, err
	}

	total := costs[0]
	for _, cost := range costs[1:] {
		total.merge(cost)
	}
	c.backpropSaved(total)

	n := float64(total.N)
	total.Loss /= n
	total.Gradient.Scale(1 / n)
	c.addL2(total, regParameter)
	return total, nil
}

// chunkCost runs forward and backward passes over examples and returns the
// summed, unnormalized loss and gradients.
func (c *Classifier) chunkCost(examples []Example, dropProb float64, rng *rand.Rand) (*Cost, error) {
	var (
		params     = c.Params
		hiddenSize = params.HiddenSize()
		d          = params.EmbeddingSize()
		numTrans   = params.NumTransitions()

		hidden      = make([]float64, hiddenSize)
		hidden3     = make([]float64, hiddenSize)
		gradHidden  = make([]float64, hiddenSize)
		gradHidden3 = make([]float64, hiddenSize)
		scores      = make([]float64, numTrans)
		active      = make([]int, 0, hiddenSize)
	)
	cost := &Cost{
		Gradient:  params.ZerosLike(),
		gradSaved: make(map[int][]float64),
	}
	grad := cost.Gradient

	for _, ex := range examples {
		if len(ex.Features) != c.NumTokens {
			return nil, errors.Errorf("nn: example has %d features, expected %d", len(ex.Features), c.NumTokens)
		}
		if len(ex.Label) != numTrans {
			return nil, errors.Errorf("nn: example has %d labels, expected %d", len(ex.Label), numTrans)
		}

		active = active[:0]
		for h := 0; h < hiddenSize; h++ {
			if dropProb <= 0 || rng.Float64() > dropProb {
				active = append(active, h)
			}
		}

		// forward
		for h := range hidden {
			hidden[h] = 0
			hidden3[h] = 0
			gradHidden[h] = 0
			gradHidden3[h] = 0
		}
		for j, id := range ex.Features {
			key := id*c.NumTokens + j
			if row, exists := c.preMap[key]; exists {
				saved := c.saved.RawRowView(row)
				for _, h := range active {
					hidden[h] += saved[h]
				}
				continue
			}
			emb := params.E.RawRowView(id)
			for _, h := range active {
				hidden[h] += floats.Dot(params.W1.RawRowView(h)[j*d:(j+1)*d], emb)
			}
		}
		for _, h := range active {
			hidden[h] += params.B1[h]
			hidden3[h] = hidden[h] * hidden[h] * hidden[h]
		}

		optLabel := -1
		for i, l := range ex.Label {
			if l < 0 {
				continue
			}
			w2 := params.W2.RawRowView(i)
			var s float64
			for _, h := range active {
				s += w2[h] * hidden3[h]
			}
			scores[i] = s
			if optLabel < 0 || s > scores[optLabel] {
				optLabel = i
			}
		}
		if optLabel < 0 {
			return nil, errors.New("nn: example has no allowed transition")
		}

		var sum1, sum2 float64
		maxScore := scores[optLabel]
		for i, l := range ex.Label {
			if l < 0 {
				continue
			}
			scores[i] = math.Exp(scores[i] - maxScore)
			if l == 1 {
				sum1 += scores[i]
			}
			sum2 += scores[i]
		}
		if sum1 == 0 {
			return nil, errors.New("nn: example has no gold transition")
		}
		cost.Loss += math.Log(sum2) - math.Log(sum1)
		cost.N++
		if ex.Label[optLabel] == 1 {
			cost.Correct++
		}

		// backward
		for i, l := range ex.Label {
			if l < 0 {
				continue
			}
			delta := scores[i] / sum2
			if l == 1 {
				delta -= scores[i] / sum1
			}
			gradW2 := grad.W2.RawRowView(i)
			w2 := params.W2.RawRowView(i)
			for _, h := range active {
				gradW2[h] += delta * hidden3[h]
				gradHidden3[h] += delta * w2[h]
			}
		}
		for _, h := range active {
			gradHidden[h] = gradHidden3[h] * 3 * hidden[h] * hidden[h]
			grad.B1[h] += gradHidden[h]
		}
		for j, id := range ex.Features {
			key := id*c.NumTokens + j
			if row, exists := c.preMap[key]; exists {
				gs, exists := cost.gradSaved[row]
				if !exists {
					gs = make([]float64, hiddenSize)
					cost.gradSaved[row] = gs
				}
				for _, h := range active {
					gs[h] += gradHidden[h]
				}
				continue
			}
			emb := params.E.RawRowView(id)
			var gradEmb []float64
			if c.TrainEmbeddings {
				gradEmb = grad.E.RawRowView(id)
			}
			for _, h := range active {
				floats.AddScaled(grad.W1.RawRowView(h)[j*d:(j+1)*d], gradHidden[h], emb)
				if gradEmb != nil {
					floats.AddScaled(gradEmb, gradHidden[h], params.W1.RawRowView(h)[j*d:(j+1)*d])
				}
			}
		}
	}
	return cost, nil
}

// backpropSaved pushes the gradients of precomputed rows into W1 and E.
func (c *Classifier) backpropSaved(cost *Cost) {
	rows := make([]int, 0, len(cost.gradSaved))
	for row := range cost.gradSaved {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	params, grad := c.Params, cost.Gradient
	d := params.EmbeddingSize()
	for _, row := range rows {
		gs := cost.gradSaved[row]
		key := c.preKeys[row]
		id, j := key/c.NumTokens, key%c.NumTokens
		emb := params.E.RawRowView(id)
		var gradEmb []float64
		if c.TrainEmbeddings {
			gradEmb = grad.E.RawRowView(id)
		}
		for h, g := range gs {
			if g == 0 {
				continue
			}
			floats.AddScaled(grad.W1.RawRowView(h)[j*d:(j+1)*d], g, emb)
			if gradEmb != nil {
				floats.AddScaled(gradEmb, g, params.W1.RawRowView(h)[j*d:(j+1)*d])
			}
		}
	}
	cost.gradSaved = nil
}

// addL2 adds regParameter/2 * ||theta||^2 to the loss and
// regParameter * theta to the gradient. E is included only when the
// embeddings are trained.
func (c *Classifier) addL2(cost *Cost, regParameter float64) {
	if regParameter == 0 {
		return
	}
	cost.Loss += regParameter / 2 * c.Params.SquaredNorm(c.TrainEmbeddings)
	grads := cost.Gradient.slices(c.TrainEmbeddings)
	for i, theta := range c.Params.slices(c.TrainEmbeddings) {
		floats.AddScaled(grads[i], regParameter, theta)
	}
}
