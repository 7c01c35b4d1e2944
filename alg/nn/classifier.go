package nn

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Options struct {
	// NumTokens is the number of feature slots per example.
	NumTokens int
	// Threads is the number of training workers.
	Threads         int
	TrainEmbeddings bool
	// CacheSize bounds the LRU of hidden-layer contributions for keys that
	// are not precomputed; 0 disables it.
	CacheSize int
}

// Classifier scores transitions for a feature vector.
//
// A feature at slot j with ID id has key id*NumTokens+j. Its contribution
// to the hidden layer, the W1 block of slot j times E[id], is cached for
// precomputed keys.
type Classifier struct {
	Params *Params
	Options

	preMap  map[int]int
	preKeys []int
	saved   *mat.Dense

	cache   *lru.Cache[int, []float64]
	history *Params
	pool    *Pool
}

func NewClassifier(params *Params, opts Options) (*Classifier, error) {
	if opts.NumTokens <= 0 || params.NumTokens() != opts.NumTokens {
		return nil, errors.Errorf("nn: W1 has %d slots, expected %d", params.NumTokens(), opts.NumTokens)
	}
	c := &Classifier{
		Params:  params,
		Options: opts,
		preMap:  make(map[int]int),
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[int, []float64](opts.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "nn: creating cache")
		}
		c.cache = cache
	}
	return c, nil
}

// SetPreComputed fixes the set of precomputed keys without filling their
// rows. Duplicate keys are ignored.
func (c *Classifier) SetPreComputed(keys []int) {
	c.preMap = make(map[int]int, len(keys))
	c.preKeys = make([]int, 0, len(keys))
	for _, key := range keys {
		if _, exists := c.preMap[key]; !exists {
			c.preMap[key] = len(c.preKeys)
			c.preKeys = append(c.preKeys, key)
		}
	}
	c.saved = nil
	if len(c.preKeys) > 0 {
		c.saved = mat.NewDense(len(c.preKeys), c.Params.HiddenSize(), nil)
	}
	c.purge()
}

// PreCompute sets the precomputed keys and fills every row.
func (c *Classifier) PreCompute(keys []int) {
	c.SetPreComputed(keys)
	c.refresh(c.preKeys)
}

// Refresh recomputes every precomputed row from the current parameters.
func (c *Classifier) Refresh() {
	c.refresh(c.preKeys)
	c.purge()
}

// PreComputed returns the precomputed keys in row order.
func (c *Classifier) PreComputed() []int {
	return c.preKeys
}

func (c *Classifier) IsPreComputed(key int) bool {
	_, exists := c.preMap[key]
	return exists
}

func (c *Classifier) refresh(keys []int) {
	for _, key := range keys {
		if row, exists := c.preMap[key]; exists {
			c.contribution(key, c.saved.RawRowView(row))
		}
	}
}

func (c *Classifier) purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// contribution writes the hidden-layer contribution of key into dst.
func (c *Classifier) contribution(key int, dst []float64) {
	id, slot := key/c.NumTokens, key%c.NumTokens
	d := c.Params.EmbeddingSize()
	emb := c.Params.E.RawRowView(id)
	for h := range dst {
		dst[h] = floats.Dot(c.Params.W1.RawRowView(h)[slot*d:(slot+1)*d], emb)
	}
}

// Scores runs the forward pass without dropout. It is safe for concurrent
// use as long as the parameters are not being updated.
func (c *Classifier) Scores(features []int) []float64 {
	hiddenSize := c.Params.HiddenSize()
	hidden := make([]float64, hiddenSize)
	var direct []float64
	for j, id := range features {
		key := id*c.NumTokens + j
		if row, exists := c.preMap[key]; exists {
			floats.Add(hidden, c.saved.RawRowView(row))
			continue
		}
		if c.cache != nil {
			v, exists := c.cache.Get(key)
			if !exists {
				v = make([]float64, hiddenSize)
				c.contribution(key, v)
				c.cache.Add(key, v)
			}
			floats.Add(hidden, v)
			continue
		}
		if direct == nil {
			direct = make([]float64, hiddenSize)
		}
		c.contribution(key, direct)
		floats.Add(hidden, direct)
	}
	floats.Add(hidden, c.Params.B1)
	for h, v := range hidden {
		hidden[h] = v * v * v
	}
	scores := make([]float64, c.Params.NumTransitions())
	for i := range scores {
		scores[i] = floats.Dot(c.Params.W2.RawRowView(i), hidden)
	}
	return scores
}

// batchKeys returns the precomputed keys used by examples, sorted.
func (c *Classifier) batchKeys(examples []Example) []int {
	seen := make(map[int]struct{})
	for _, ex := range examples {
		for j, id := range ex.Features {
			key := id*c.NumTokens + j
			if _, exists := c.preMap[key]; exists {
				seen[key] = struct{}{}
			}
		}
	}
	keys := make([]int, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

// Close releases the training workers. Further ComputeCost calls fail
// with ErrPoolClosed.
func (c *Classifier) Close() {
	if c.pool == nil {
		c.pool = NewPool(1)
	}
	c.pool.Close()
}

func (c *Classifier) workers() *Pool {
	if c.pool == nil {
		c.pool = NewPool(c.Threads)
	}
	return c.pool
}
