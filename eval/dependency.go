package eval

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

// Attachment holds attachment counts over a set of sentences.
type Attachment struct {
	Unlabeled, Labeled Total
	CorrectRoot        int
}

// UAS is the percentage of tokens with the correct head.
func (a *Attachment) UAS() float64 {
	return 100 * a.Unlabeled.Accuracy()
}

// LAS is the percentage of tokens with the correct head and label.
func (a *Attachment) LAS() float64 {
	return 100 * a.Labeled.Accuracy()
}

// UEM is the percentage of sentences whose heads are all correct.
func (a *Attachment) UEM() float64 {
	return 100 * a.Unlabeled.ExactMatch()
}

func (a *Attachment) LEM() float64 {
	return 100 * a.Labeled.ExactMatch()
}

// Root is the percentage of sentences whose predicted root is correct.
func (a *Attachment) Root() float64 {
	if a.Unlabeled.Population == 0 {
		return 0
	}
	return 100 * float64(a.CorrectRoot) / float64(a.Unlabeled.Population)
}

func (a *Attachment) String() string {
	return fmt.Sprintf("UAS = %.4f\tLAS = %.4f\tUEM = %.4f\tROOT = %.4f", a.UAS(), a.LAS(), a.UEM(), a.Root())
}

// DependencyEval scores predicted trees against gold trees, once over all
// tokens and once ignoring tokens whose gold tag is punctuation.
type DependencyEval struct {
	All, NoPunc Attachment
	Labels      map[string]*Result
	Punctuation types.TagSet
}

func NewDependencyEval(punctuation []string) *DependencyEval {
	return &DependencyEval{
		Labels:      make(map[string]*Result),
		Punctuation: types.NewTagSet(punctuation),
	}
}

// Add scores one sentence. goldTags are the gold POS tags used to decide
// punctuation.
func (e *DependencyEval) Add(gold, test *dependency.Tree, goldTags []string) error {
	n := gold.N()
	if test.N() != n {
		return errors.Errorf("tree size mismatch: gold %d, test %d", n, test.N())
	}
	if len(goldTags) != n {
		return errors.Errorf("tag count %d does not match tree size %d", len(goldTags), n)
	}
	var unlabeled, labeled, unlabeledNP, labeledNP Result
	for k := 1; k <= n; k++ {
		headOK := gold.Head(k) == test.Head(k)
		labelOK := headOK && gold.Label(k) == test.Label(k)
		punct := e.Punctuation.Contains(goldTags[k-1])
		score(&unlabeled, headOK)
		score(&labeled, labelOK)
		if !punct {
			score(&unlabeledNP, headOK)
			score(&labeledNP, labelOK)
		}
		e.scoreLabel(gold.Label(k), test.Label(k), labelOK)
	}
	rootOK := gold.Root() == test.Root()
	e.All.add(&unlabeled, &labeled, rootOK)
	e.NoPunc.add(&unlabeledNP, &labeledNP, rootOK)
	return nil
}

func (e *DependencyEval) scoreLabel(goldLabel, testLabel string, correct bool) {
	if correct {
		e.label(goldLabel).TP++
		return
	}
	e.label(goldLabel).FN++
	e.label(testLabel).FP++
}

func (e *DependencyEval) label(l string) *Result {
	r, exists := e.Labels[l]
	if !exists {
		r = new(Result)
		e.Labels[l] = r
	}
	return r
}

// LabelNames returns the scored labels sorted by name.
func (e *DependencyEval) LabelNames() []string {
	names := make([]string, 0, len(e.Labels))
	for l := range e.Labels {
		names = append(names, l)
	}
	sort.Strings(names)
	return names
}

func (a *Attachment) add(unlabeled, labeled *Result, rootOK bool) {
	a.Unlabeled.Add(unlabeled)
	a.Labeled.Add(labeled)
	if rootOK {
		a.CorrectRoot++
	}
}

func score(r *Result, correct bool) {
	if correct {
		r.TP++
	} else {
		r.FN++
	}
}

// EvaluateDependencies scores a whole corpus.
func EvaluateDependencies(gold, test []*dependency.Tree, goldTags [][]string, punctuation []string) (*DependencyEval, error) {
	if len(gold) != len(test) || len(gold) != len(goldTags) {
		return nil, errors.Errorf("corpus size mismatch: gold %d, test %d, tags %d", len(gold), len(test), len(goldTags))
	}
	e := NewDependencyEval(punctuation)
	for i := range gold {
		if err := e.Add(gold[i], test[i], goldTags[i]); err != nil {
			return nil, errors.Wrapf(err, "sentence %d", i)
		}
	}
	return e, nil
}
