// Package nndep is a greedy transition-based dependency parser whose
// transitions are chosen by a feed-forward neural classifier.
package nndep

import (
	"context"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"nndep/alg/nn"
	"nndep/eval"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/parser/dependency/transition"
	"nndep/nlp/types"
)

var ErrNoLegalTransition = errors.New("nndep: no legal transition")

// Parser decodes sentences greedily with a trained classifier.
type Parser struct {
	Config     *Config
	Vocab      *Vocabulary
	System     *transition.ArcStandard
	Classifier *nn.Classifier
}

// NewParser wires a vocabulary and parameters into a parser. The
// classifier's precomputed rows are left empty.
func NewParser(conf *Config, vocab *Vocabulary, params *nn.Params) (*Parser, error) {
	system := transition.NewArcStandard(vocab.RealLabels(), conf.SingleRoot)
	if params.Vocab() != vocab.Size() {
		return nil, errors.Errorf("embedding table has %d rows, vocabulary has %d", params.Vocab(), vocab.Size())
	}
	if params.NumTransitions() != system.NumTransitions() {
		return nil, errors.Errorf("W2 has %d rows, expected %d transitions", params.NumTransitions(), system.NumTransitions())
	}
	classifier, err := nn.NewClassifier(params, nn.Options{
		NumTokens:       NumTokens,
		Threads:         conf.TrainingThreads,
		TrainEmbeddings: conf.TrainEmbeddings,
		CacheSize:       conf.NumCachedLRU,
	})
	if err != nil {
		return nil, err
	}
	return &Parser{
		Config:     conf,
		Vocab:      vocab,
		System:     system,
		Classifier: classifier,
	}, nil
}

// LoadParser loads a model file and precomputes its stored keys.
func LoadParser(modelFile string, conf *Config) (*Parser, error) {
	m, err := LoadModel(modelFile)
	if err != nil {
		return nil, err
	}
	if m.NumTokens != NumTokens {
		return nil, errors.Errorf("model has %d feature slots, expected %d", m.NumTokens, NumTokens)
	}
	p, err := NewParser(conf, m.Vocab, m.Params)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", modelFile)
	}
	p.Classifier.PreCompute(m.PreComputed)
	glog.Infof("Loaded model %s: %d words, %d POS, %d labels, %d precomputed", modelFile,
		m.Vocab.Words.Len(), m.Vocab.POS.Len(), m.Vocab.Labels.Len(), len(m.PreComputed))
	return p, nil
}

func (p *Parser) Model() *Model {
	return &Model{
		Vocab:       p.Vocab,
		Params:      p.Classifier.Params,
		NumTokens:   NumTokens,
		PreComputed: p.Classifier.PreComputed(),
	}
}

func (p *Parser) Save(modelFile string) error {
	return p.Model().Save(modelFile)
}

// Parse returns the tree of the highest scoring legal transition
// sequence, choosing greedily. Ties go to the lowest transition index.
func (p *Parser) Parse(sent types.TaggedSentence) (*dependency.Tree, error) {
	c := p.System.Initial(sent)
	for !p.System.IsTerminal(c) {
		scores := p.Classifier.Scores(p.Vocab.Features(c))
		best, bestScore := transition.NONE, math.Inf(-1)
		for t, score := range scores {
			tr := transition.Transition(t)
			if (best == transition.NONE || score > bestScore) && p.System.CanApply(c, tr) {
				best, bestScore = tr, score
			}
		}
		if best == transition.NONE {
			return nil, errors.Wrapf(ErrNoLegalTransition, "configuration %v", c)
		}
		p.System.Apply(c, best)
	}
	return c.Tree, nil
}

// ParseCorpus parses sentences concurrently on up to threads goroutines.
// The output order matches the input.
func (p *Parser) ParseCorpus(ctx context.Context, sents []types.TaggedSentence, threads int) ([]*dependency.Tree, error) {
	trees := make([]*dependency.Tree, len(sents))
	g, gctx := errgroup.WithContext(ctx)
	if threads < 1 {
		threads = 1
	}
	g.SetLimit(threads)
	for i, sent := range sents {
		if gctx.Err() != nil {
			break
		}
		i, sent := i, sent
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := p.Parse(sent)
			if err != nil {
				return errors.Wrapf(err, "sentence %d", i)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// gctx is always cancelled once Wait returns
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return trees, nil
}

// Evaluate parses sents and scores them against the gold trees, judging
// punctuation by goldTags.
func (p *Parser) Evaluate(ctx context.Context, sents []types.TaggedSentence, gold []*dependency.Tree, goldTags [][]string) (*eval.DependencyEval, error) {
	trees, err := p.ParseCorpus(ctx, sents, p.Config.TrainingThreads)
	if err != nil {
		return nil, err
	}
	return eval.EvaluateDependencies(gold, trees, goldTags, p.Config.PunctuationTags)
}

// UAS picks the score reported during training.
func (p *Parser) UAS(e *eval.DependencyEval) float64 {
	if p.Config.NoPunc {
		return e.NoPunc.UAS()
	}
	return e.All.UAS()
}
