package nndep

import (
	"context"
	"math/rand"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nndep/alg/nn"
	"nndep/nlp/format/embedding"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
	"nndep/util"
)

var (
	ErrFinalized = errors.New("nndep: trainer finalized")
	ErrNotReady  = errors.New("nndep: trainer not set up")
)

type trainerState int

const (
	stateNew trainerState = iota
	stateReady
	stateFinalized
)

// Trainer drives minibatch AdaGrad training of a Parser.
//
// A trainer is set up once, stepped or trained, and finalized. After
// Finalize its parser is ready for inference and Step and Train return
// ErrFinalized.
type Trainer struct {
	Config  *Config
	Dataset *nn.Dataset

	parser *Parser
	rng    *rand.Rand
	state  trainerState
	iter   int

	dev      []types.TaggedSentence
	devTrees []*dependency.Tree
	devTags  [][]string

	bestUAS float64
	saved   bool
}

func NewTrainer(conf *Config) *Trainer {
	return &Trainer{
		Config: conf,
		rng:    rand.New(rand.NewSource(conf.Seed)),
	}
}

// Eligible reports whether a gold tree can be reproduced by the oracle.
func Eligible(tree *dependency.Tree) bool {
	return tree.IsTree() && tree.IsProjective()
}

// unlabel maps every non-root label to UnlabeledLabel.
func unlabel(tree *dependency.Tree) *dependency.Tree {
	retval := tree.Copy()
	for k := 1; k <= retval.N(); k++ {
		if retval.Head(k) != 0 {
			retval.Set(k, retval.Head(k), UnlabeledLabel)
		}
	}
	return retval
}

// Setup builds the vocabulary, initializes the parameters, seeds word rows
// from embed when it is not nil and generates the training examples.
func (t *Trainer) Setup(sents []TrainSentence, embed *embedding.Embeddings) error {
	switch t.state {
	case stateFinalized:
		return ErrFinalized
	case stateReady:
		return errors.New("nndep: trainer already set up")
	}
	conf := t.Config
	if err := conf.Validate(); err != nil {
		return err
	}
	if embed != nil && embed.Dim != conf.EmbeddingSize {
		return errors.Errorf("pretrained embeddings have dimension %d, expected %d", embed.Dim, conf.EmbeddingSize)
	}

	train := make([]TrainSentence, 0, len(sents))
	for i, s := range sents {
		if s.Tree.N() != len(s.Sentence) {
			return errors.Errorf("sentence %d has %d tokens but its tree has %d", i, len(s.Sentence), s.Tree.N())
		}
		if !Eligible(s.Tree) {
			glog.Warningf("Skipping sentence %d: tree is not projective or not single rooted", i)
			continue
		}
		if conf.Unlabeled {
			s.Tree = unlabel(s.Tree)
		}
		train = append(train, s)
	}
	if len(train) == 0 {
		return errors.New("no eligible training sentences")
	}
	glog.Infof("Training sentences: %d of %d", len(train), len(sents))

	tagged := make([]types.TaggedSentence, len(train))
	trees := make([]*dependency.Tree, len(train))
	for i, s := range train {
		tagged[i], trees[i] = s.Sentence, s.Tree
	}
	vocab, err := BuildVocabulary(tagged, trees, conf.WordCutOff)
	if err != nil {
		return err
	}
	glog.Infof("Vocabulary: %d words, %d POS, %d labels; root label %s",
		vocab.Words.Len(), vocab.POS.Len(), vocab.Labels.Len(), vocab.RootLabel())

	numTrans := 2*len(vocab.RealLabels()) + 1
	params := nn.NewParams(vocab.Size(), conf.EmbeddingSize, conf.HiddenSize, NumTokens, numTrans)
	params.InitRandom(t.rng, conf.InitRange)
	if embed != nil {
		found := 0
		for id, word := range vocab.Words.Index {
			if vec, exists := embed.Vector(word); exists {
				copy(params.E.RawRowView(id), vec)
				found++
			}
		}
		glog.Infof("Found embeddings: %d / %d", found, vocab.Words.Len())
	}

	parser, err := NewParser(conf, vocab, params)
	if err != nil {
		return err
	}
	dataset, counts := vocab.Examples(parser.System, train)
	candidates := PreComputeCandidates(counts, conf.NumPreComputed)
	parser.Classifier.SetPreComputed(candidates)
	glog.Infof("Training examples: %d; precomputed keys: %d of %d", dataset.Len(), len(candidates), len(counts))
	util.LogMemory()

	t.parser = parser
	t.Dataset = dataset
	t.state = stateReady
	return nil
}

// SetDev sets the sentences scored every EvalPerIter iterations.
// Punctuation is judged by the sentences' own tags.
func (t *Trainer) SetDev(sents []TrainSentence) {
	t.dev = make([]types.TaggedSentence, len(sents))
	t.devTrees = make([]*dependency.Tree, len(sents))
	t.devTags = make([][]string, len(sents))
	for i, s := range sents {
		t.dev[i] = s.Sentence
		t.devTrees[i] = s.Tree
		t.devTags[i] = s.Sentence.POSTags()
	}
}

func (t *Trainer) ready() error {
	switch t.state {
	case stateNew:
		return ErrNotReady
	case stateFinalized:
		return ErrFinalized
	}
	return nil
}

// Iteration is the number of steps taken.
func (t *Trainer) Iteration() int {
	return t.iter
}

// Step trains on one minibatch sampled without replacement.
func (t *Trainer) Step() (*nn.Cost, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	conf := t.Config
	classifier := t.parser.Classifier
	batch := t.Dataset.Sample(t.rng, conf.BatchSize)
	cost, err := classifier.ComputeCost(batch, conf.RegParameter, conf.DropProb, t.rng)
	if err != nil {
		return nil, errors.Wrapf(err, "iteration %d", t.iter)
	}
	classifier.TakeAdaGradientStep(cost, conf.AdaAlpha, conf.AdaEps)
	if conf.ClearGradientsPerIter > 0 && t.iter%conf.ClearGradientsPerIter == 0 {
		glog.V(1).Infof("Clearing gradient histories at iteration %d", t.iter)
		classifier.ClearGradientHistories()
	}
	t.iter++
	return cost, nil
}

// evalDev refreshes the precomputed rows and returns the dev UAS.
func (t *Trainer) evalDev(ctx context.Context) (float64, error) {
	t.parser.Classifier.Refresh()
	result, err := t.parser.Evaluate(ctx, t.dev, t.devTrees, t.devTags)
	if err != nil {
		return 0, err
	}
	return t.parser.UAS(result), nil
}

func (t *Trainer) save(modelFile string) error {
	if modelFile == "" {
		return nil
	}
	if err := t.parser.Save(modelFile); err != nil {
		return err
	}
	t.saved = true
	if sum, err := util.MD5File(modelFile); err == nil {
		glog.Infof("Saved model %s (md5 %s)", modelFile, sum)
	}
	return nil
}

// Train runs until MaxIter iterations, MaxTime or cancellation of ctx,
// then finalizes the trainer. The model is written to modelFile whenever
// the dev UAS improves and once more at the end when the final model is
// the best or nothing was written yet. On cancellation the model is
// written only if nothing was written before, and ctx.Err() is returned.
func (t *Trainer) Train(ctx context.Context, modelFile string) error {
	if err := t.ready(); err != nil {
		return err
	}
	conf := t.Config
	conf.Log()
	start := time.Now()
	for t.iter < conf.MaxIter {
		if err := ctx.Err(); err != nil {
			return t.interrupted(ctx, modelFile)
		}
		if conf.MaxTime > 0 && time.Since(start) > conf.MaxTime {
			glog.Infof("Reached max time %v after %d iterations", conf.MaxTime, t.iter)
			break
		}
		iter := t.iter
		cost, err := t.Step()
		if err != nil {
			return err
		}
		glog.Infof("##### Iteration %d", iter)
		glog.Infof("Cost = %g, Correct(%%) = %.2f, Elapsed = %v", cost.Loss, cost.PercentCorrect(), time.Since(start))

		if len(t.dev) > 0 && conf.EvalPerIter > 0 && iter%conf.EvalPerIter == 0 {
			uas, err := t.evalDev(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return t.interrupted(ctx, modelFile)
				}
				return err
			}
			glog.Infof("UAS: %.4f", uas)
			if uas > t.bestUAS {
				t.bestUAS = uas
				if conf.SaveIntermediate {
					if err := t.save(modelFile); err != nil {
						return err
					}
				}
			}
		}
	}
	t.Finalize()

	if len(t.dev) == 0 {
		return t.save(modelFile)
	}
	uas, err := t.evalDev(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return t.interrupted(ctx, modelFile)
		}
		return err
	}
	glog.Infof("Final UAS: %.4f (best %.4f)", uas, t.bestUAS)
	if uas > t.bestUAS || !t.saved {
		t.bestUAS = max(t.bestUAS, uas)
		return t.save(modelFile)
	}
	return nil
}

func (t *Trainer) interrupted(ctx context.Context, modelFile string) error {
	glog.Warningf("Training interrupted at iteration %d: %v", t.iter, ctx.Err())
	t.Finalize()
	if !t.saved {
		if err := t.save(modelFile); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Finalize fills the precomputed rows from the final parameters and
// releases the training workers. It is idempotent.
func (t *Trainer) Finalize() {
	if t.state != stateReady {
		return
	}
	t.parser.Classifier.Refresh()
	t.parser.Classifier.Close()
	t.state = stateFinalized
}

// BestUAS is the best dev UAS seen so far.
func (t *Trainer) BestUAS() float64 {
	return t.bestUAS
}

// Parser returns the trained parser, or nil before Setup.
func (t *Trainer) Parser() *Parser {
	return t.parser
}
