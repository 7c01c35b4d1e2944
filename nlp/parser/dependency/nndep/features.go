package nndep

import (
	"nndep/alg/nn"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/parser/dependency/transition"
	"nndep/nlp/types"
	"nndep/util"
)

const (
	numWordFeatures  = 18
	numPOSFeatures   = 18
	numLabelFeatures = 12

	// NumTokens is the number of feature slots per configuration.
	NumTokens = numWordFeatures + numPOSFeatures + numLabelFeatures
)

// Features returns the feature IDs of c:
//
//	words and POS of stack 2,1,0 and buffer 0,1,2, then for stack 0 and
//	stack 1: lc1, rc1, lc2, rc2, lc1(lc1), rc1(rc1)
//	labels of those 12 children
func (v *Vocabulary) Features(c *transition.Configuration) []int {
	var (
		words  = make([]int, 0, numWordFeatures)
		pos    = make([]int, 0, numPOSFeatures)
		labels = make([]int, 0, numLabelFeatures)
	)
	token := func(k int) {
		words = append(words, v.WordID(c.Word(k)))
		pos = append(pos, v.POSID(c.POS(k)))
	}
	child := func(k int) {
		token(k)
		labels = append(labels, v.LabelID(c.Label(k)))
	}
	for j := 2; j >= 0; j-- {
		token(c.Stack(j))
	}
	for j := 0; j <= 2; j++ {
		token(c.Buffer(j))
	}
	for j := 0; j <= 1; j++ {
		k := c.Stack(j)
		child(c.LeftChild(k, 1))
		child(c.RightChild(k, 1))
		child(c.LeftChild(k, 2))
		child(c.RightChild(k, 2))
		child(c.LeftChild(c.LeftChild(k, 1), 1))
		child(c.RightChild(c.RightChild(k, 1), 1))
	}
	features := make([]int, 0, NumTokens)
	features = append(features, words...)
	features = append(features, pos...)
	return append(features, labels...)
}

// Examples generates one training example per oracle transition of every
// gold tree, and counts the (ID, slot) keys of all features.
func (v *Vocabulary) Examples(system transition.TransitionSystem, sents []TrainSentence) (*nn.Dataset, map[int]int) {
	var (
		dataset = new(nn.Dataset)
		counts  = make(map[int]int)
		numT    = system.NumTransitions()
	)
	for _, s := range sents {
		c := system.Initial(s.Sentence)
		for !system.IsTerminal(c) {
			oracle := system.Oracle(c, s.Tree)
			features := v.Features(c)
			label := make([]int, numT)
			for t := range label {
				switch {
				case transition.Transition(t) == oracle:
					label[t] = 1
				case system.CanApply(c, transition.Transition(t)):
					label[t] = 0
				default:
					label[t] = -1
				}
			}
			dataset.Add(features, label)
			for j, id := range features {
				counts[id*NumTokens+j]++
			}
			system.Apply(c, oracle)
		}
	}
	return dataset, counts
}

// PreComputeCandidates returns the n most frequent keys.
func PreComputeCandidates(counts map[int]int, n int) []int {
	return util.GetTopN(counts, n).Keys()
}

// TrainSentence is a tagged sentence with its gold tree.
type TrainSentence struct {
	Sentence types.TaggedSentence
	Tree     *dependency.Tree
}
