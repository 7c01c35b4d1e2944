package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

func tree(heads []int, labels []string) *dependency.Tree {
	t := dependency.NewTree(0)
	for i, h := range heads {
		t.Add(h, labels[i])
	}
	return t
}

func TestEvaluateDependencies(t *testing.T) {
	gold := []*dependency.Tree{
		tree([]int{2, 0, 2}, []string{"nsubj", "root", "punct"}),
		tree([]int{0}, []string{"root"}),
	}
	test := []*dependency.Tree{
		tree([]int{2, 0, 1}, []string{"obj", "root", "punct"}),
		tree([]int{0}, []string{"root"}),
	}
	tags := [][]string{{"NN", "VB", "."}, {"NN"}}

	e, err := EvaluateDependencies(gold, test, tags, types.DefaultPunctuationTags)
	require.NoError(t, err)

	assert.InDelta(t, 75.0, e.All.UAS(), 1e-9)
	assert.InDelta(t, 50.0, e.All.LAS(), 1e-9)
	assert.InDelta(t, 50.0, e.All.UEM(), 1e-9)
	assert.InDelta(t, 100.0, e.All.Root(), 1e-9)

	assert.InDelta(t, 100.0, e.NoPunc.UAS(), 1e-9)
	assert.InDelta(t, 200.0/3, e.NoPunc.LAS(), 1e-9)
	assert.InDelta(t, 100.0, e.NoPunc.UEM(), 1e-9)
	assert.InDelta(t, 50.0, e.NoPunc.LEM(), 1e-9)

	assert.Equal(t, []string{"nsubj", "obj", "punct", "root"}, e.LabelNames())
	assert.Equal(t, Result{TP: 2}, *e.Labels["root"])
	assert.Equal(t, Result{FN: 1}, *e.Labels["nsubj"])
	assert.Equal(t, Result{FP: 1}, *e.Labels["obj"])
	assert.Equal(t, 0.0, e.Labels["punct"].F1())
	assert.Equal(t, 1.0, e.Labels["root"].F1())
}

func TestEvaluateDependenciesMismatch(t *testing.T) {
	gold := []*dependency.Tree{tree([]int{0}, []string{"root"})}
	test := []*dependency.Tree{tree([]int{0, 1}, []string{"root", "dep"})}
	_, err := EvaluateDependencies(gold, test, [][]string{{"NN"}}, nil)
	assert.EqualError(t, err, "sentence 0: tree size mismatch: gold 1, test 2")

	_, err = EvaluateDependencies(gold, nil, nil, nil)
	assert.Error(t, err)
}

func TestEmptyAttachment(t *testing.T) {
	var a Attachment
	assert.Equal(t, 0.0, a.UAS())
	assert.Equal(t, 0.0, a.Root())
	assert.Equal(t, 0.0, a.UEM())
}

func TestResultMeasures(t *testing.T) {
	r := &Result{TP: 3, FP: 1, FN: 2}
	assert.InDelta(t, 0.75, r.Precision(), 1e-9)
	assert.InDelta(t, 0.6, r.Recall(), 1e-9)
	assert.InDelta(t, 2*0.75*0.6/1.35, r.F1(), 1e-9)

	var total Total
	total.Add(r)
	total.Add(&Result{TP: 1})
	assert.Equal(t, 1, total.Exact)
	assert.Equal(t, 0.5, total.ExactMatch())
}
