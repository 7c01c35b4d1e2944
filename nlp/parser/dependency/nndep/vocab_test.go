package nndep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/parser/dependency/transition"
	"nndep/nlp/types"
)

func testTree(heads []int, labels []string) *dependency.Tree {
	tree := dependency.NewTree(0)
	for i, head := range heads {
		tree.Add(head, labels[i])
	}
	return tree
}

func testCorpus() []TrainSentence {
	return []TrainSentence{
		{
			types.TaggedSentence{{Token: "John", POS: "NNP"}, {Token: "saw", POS: "VBD"}, {Token: "Mary", POS: "NNP"}, {Token: ".", POS: "."}},
			testTree([]int{2, 0, 2, 2}, []string{"nsubj", "root", "dobj", "punct"}),
		},
		{
			types.TaggedSentence{{Token: "Mary", POS: "NNP"}, {Token: "saw", POS: "VBD"}, {Token: "John", POS: "NNP"}, {Token: ".", POS: "."}},
			testTree([]int{2, 0, 2, 2}, []string{"nsubj", "root", "dobj", "punct"}),
		},
		{
			types.TaggedSentence{{Token: "John", POS: "NNP"}, {Token: "ran", POS: "VBD"}, {Token: ".", POS: "."}},
			testTree([]int{2, 0, 2}, []string{"nsubj", "root", "punct"}),
		},
	}
}

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	corpus := testCorpus()
	sents := make([]types.TaggedSentence, len(corpus))
	trees := make([]*dependency.Tree, len(corpus))
	for i, s := range corpus {
		sents[i], trees[i] = s.Sentence, s.Tree
	}
	vocab, err := BuildVocabulary(sents, trees, 1)
	require.NoError(t, err)
	return vocab
}

func TestBuildVocabulary(t *testing.T) {
	vocab := testVocabulary(t)
	assert.Equal(t, []string{types.UNKNOWN, types.NULL, types.ROOT, ".", "John", "Mary", "saw", "ran"}, vocab.Words.Index)
	assert.Equal(t, []string{types.UNKNOWN, types.NULL, types.ROOT, "NNP", ".", "VBD"}, vocab.POS.Index)
	assert.Equal(t, []string{types.NULL, "root", "nsubj", "punct", "dobj"}, vocab.Labels.Index)
	assert.Equal(t, "root", vocab.RootLabel())
	assert.Equal(t, []string{"root", "nsubj", "punct", "dobj"}, vocab.RealLabels())
	assert.Equal(t, 19, vocab.Size())
	assert.Len(t, vocab.Strings(), vocab.Size())
}

func TestBuildVocabularyCutOff(t *testing.T) {
	corpus := testCorpus()
	vocab, err := BuildVocabulary(
		[]types.TaggedSentence{corpus[0].Sentence, corpus[1].Sentence, corpus[2].Sentence},
		[]*dependency.Tree{corpus[0].Tree, corpus[1].Tree, corpus[2].Tree}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{types.UNKNOWN, types.NULL, types.ROOT, ".", "John", "Mary", "saw"}, vocab.Words.Index)
	assert.Equal(t, 0, vocab.WordID("ran"))
}

func TestVocabularyIDs(t *testing.T) {
	vocab := testVocabulary(t)
	assert.Equal(t, 4, vocab.WordID("John"))
	assert.Equal(t, 0, vocab.WordID("Paul"))
	assert.Equal(t, 8+5, vocab.POSID("VBD"))
	assert.Equal(t, 8, vocab.POSID("JJ"))
	assert.Equal(t, 8+6+2, vocab.LabelID("nsubj"))
	assert.Equal(t, 8+6, vocab.LabelID("amod"), "unknown labels share the NULL row")
}

func TestNewVocabularyErrors(t *testing.T) {
	sentinels := []string{types.UNKNOWN, types.NULL, types.ROOT}
	_, err := NewVocabulary([]string{"a"}, sentinels, []string{types.NULL, "root"})
	assert.Error(t, err)
	_, err = NewVocabulary(sentinels, sentinels, []string{"root"})
	assert.Error(t, err)
	_, err = NewVocabulary(append(sentinels, "a", "a"), sentinels, []string{types.NULL, "root"})
	assert.Error(t, err)
	_, err = BuildVocabulary(nil, nil, 1)
	assert.Error(t, err)
}

func TestFeaturesInitial(t *testing.T) {
	vocab := testVocabulary(t)
	system := transition.NewArcStandard(vocab.RealLabels(), true)
	c := system.Initial(testCorpus()[0].Sentence)
	features := vocab.Features(c)
	require.Len(t, features, NumTokens)

	const (
		null     = 1
		root     = 2
		posNull  = 8 + 1
		posRoot  = 8 + 2
		labelNil = 8 + 6
	)
	expected := []int{null, null, root, 4, 6, 5}
	for i := 0; i < 12; i++ {
		expected = append(expected, null)
	}
	expected = append(expected, posNull, posNull, posRoot, 8+3, 8+5, 8+3)
	for i := 0; i < 12; i++ {
		expected = append(expected, posNull)
	}
	for i := 0; i < 12; i++ {
		expected = append(expected, labelNil)
	}
	assert.Equal(t, expected, features)
}

func TestFeaturesChildren(t *testing.T) {
	vocab := testVocabulary(t)
	system := transition.NewArcStandard(vocab.RealLabels(), true)
	c := system.Initial(testCorpus()[0].Sentence)
	for _, name := range []string{"S", "S", "L(nsubj)", "S"} {
		tr, exists := system.Lookup(name)
		require.True(t, exists)
		system.Apply(c, tr)
	}
	// stack: ROOT saw Mary, buffer: .
	features := vocab.Features(c)
	assert.Equal(t, vocab.WordID(types.ROOT), features[0])
	assert.Equal(t, vocab.WordID("saw"), features[1])
	assert.Equal(t, vocab.WordID("Mary"), features[2])
	assert.Equal(t, vocab.WordID("."), features[3])
	assert.Equal(t, vocab.WordID(types.NULL), features[4])
	// lc1(stack 1) is John
	assert.Equal(t, vocab.WordID("John"), features[6+6])
	assert.Equal(t, vocab.POSID("NNP"), features[18+6+6])
	assert.Equal(t, vocab.LabelID("nsubj"), features[36+6])
}

func TestExamples(t *testing.T) {
	vocab := testVocabulary(t)
	system := transition.NewArcStandard(vocab.RealLabels(), true)
	corpus := testCorpus()
	dataset, counts := vocab.Examples(system, corpus)
	require.Equal(t, 2*(4+4+3), dataset.Len())

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, dataset.Len()*NumTokens, total)

	for _, ex := range dataset.Examples {
		require.Len(t, ex.Features, NumTokens)
		require.Len(t, ex.Label, system.NumTransitions())
		gold := 0
		for _, l := range ex.Label {
			if l == 1 {
				gold++
			}
		}
		assert.Equal(t, 1, gold)
	}
	// the first configuration only allows shift
	first := dataset.Examples[0]
	for tr, l := range first.Label {
		if transition.Transition(tr) == system.SHIFT {
			assert.Equal(t, 1, l)
		} else {
			assert.Equal(t, -1, l)
		}
	}

	candidates := PreComputeCandidates(counts, 5)
	require.Len(t, candidates, 5)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, counts[candidates[i-1]], counts[candidates[i]])
	}
	assert.Len(t, PreComputeCandidates(counts, len(counts)+10), len(counts))
}
