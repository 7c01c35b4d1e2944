package nn

import "math"

// TakeAdaGradientStep applies one AdaGrad update from cost's gradient:
//
//	G += g*g
//	theta -= adaAlpha * g / (sqrt(G) + adaEps)
//
// E is updated only when embeddings are trained. Precomputed rows are
// stale afterwards until the next Refresh or ComputeCost.
func (c *Classifier) TakeAdaGradientStep(cost *Cost, adaAlpha, adaEps float64) {
	if c.history == nil {
		c.history = c.Params.ZerosLike()
	}
	params := c.Params.slices(c.TrainEmbeddings)
	grads := cost.Gradient.slices(c.TrainEmbeddings)
	history := c.history.slices(c.TrainEmbeddings)
	for i, theta := range params {
		g, hist := grads[i], history[i]
		for j := range theta {
			hist[j] += g[j] * g[j]
			theta[j] -= adaAlpha * g[j] / (math.Sqrt(hist[j]) + adaEps)
		}
	}
	c.purge()
}

// ClearGradientHistories resets the AdaGrad accumulators.
func (c *Classifier) ClearGradientHistories() {
	if c.history == nil {
		return
	}
	for _, hist := range c.history.slices(true) {
		for j := range hist {
			hist[j] = 0
		}
	}
}

// GradientHistory returns the AdaGrad accumulators, or nil before the
// first step.
func (c *Classifier) GradientHistory() *Params {
	return c.history
}
