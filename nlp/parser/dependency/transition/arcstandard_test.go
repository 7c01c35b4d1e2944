package transition

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

var testSent = types.TaggedSentence{
	{Token: "Economic", POS: "NN"},
	{Token: "news", POS: "NN"},
	{Token: "had", POS: "VB"},
	{Token: "little", POS: "ADJ"},
	{Token: "effect", POS: "NN"},
	{Token: "on", POS: "NN"},
	{Token: "financial", POS: "NN"},
	{Token: "markets", POS: "NN"},
	{Token: ".", POS: "yyDOT"},
}

var testRelations = []string{"ROOT", "ATT", "SBJ", "OBJ", "PC", "PU"}

var testGoldSequence = []string{
	"S", "S", "L(ATT)", "S", "L(SBJ)", "S", "S", "L(ATT)", "S", "S", "S",
	"L(ATT)", "R(PC)", "R(ATT)", "R(OBJ)", "S", "R(PU)", "R(ROOT)",
}

func testGold() *dependency.Tree {
	gold := dependency.NewTree(0)
	gold.Add(2, "ATT")
	gold.Add(3, "SBJ")
	gold.Add(0, "ROOT")
	gold.Add(5, "ATT")
	gold.Add(3, "OBJ")
	gold.Add(5, "ATT")
	gold.Add(8, "ATT")
	gold.Add(6, "PC")
	gold.Add(3, "PU")
	return gold
}

func TestArcStandardEncoding(t *testing.T) {
	a := NewArcStandard([]string{"root", "dep"}, true)
	require.Equal(t, 5, a.NumTransitions())
	assert.Equal(t, "L(root)", a.TransitionName(0))
	assert.Equal(t, "L(dep)", a.TransitionName(1))
	assert.Equal(t, "R(root)", a.TransitionName(2))
	assert.Equal(t, "R(dep)", a.TransitionName(3))
	assert.Equal(t, "S", a.TransitionName(a.SHIFT))
	assert.Equal(t, Transition(4), a.SHIFT)

	tr, exists := a.Lookup("R(dep)")
	require.True(t, exists)
	assert.Equal(t, Transition(3), tr)
	_, exists = a.Lookup("L(none)")
	assert.False(t, exists)
}

func TestArcStandardScenario(t *testing.T) {
	a := NewArcStandard([]string{"root", "dep"}, true)
	sent := types.TaggedSentence{{Token: "A", POS: "X"}, {Token: "B", POS: "Y"}, {Token: "C", POS: "Z"}}
	c := a.Initial(sent)

	for _, name := range []string{"S", "S", "L(dep)", "S", "R(dep)", "R(root)"} {
		require.False(t, a.IsTerminal(c))
		tr, _ := a.Lookup(name)
		require.True(t, a.CanApply(c, tr), "%v in %v", name, c)
		a.Apply(c, tr)
	}
	require.True(t, a.IsTerminal(c))
	assert.Equal(t, 2, c.Head(1))
	assert.Equal(t, "dep", c.Label(1))
	assert.Equal(t, 0, c.Head(2))
	assert.Equal(t, "root", c.Label(2))
	assert.Equal(t, 2, c.Head(3))
	assert.True(t, c.Tree.IsTree())
}

func TestArcStandardLegality(t *testing.T) {
	single := NewArcStandard([]string{"root", "dep"}, true)
	multi := NewArcStandard([]string{"root", "dep"}, false)
	sent := types.TaggedSentence{{Token: "A", POS: "X"}, {Token: "B", POS: "Y"}, {Token: "C", POS: "Z"}}

	c := single.Initial(sent)
	assert.True(t, single.CanApply(c, single.SHIFT))
	for tr := Transition(0); tr < single.SHIFT; tr++ {
		assert.False(t, single.CanApply(c, tr), "%v on initial", single.TransitionName(tr))
	}
	assert.False(t, single.CanApply(c, -1))
	assert.False(t, single.CanApply(c, single.SHIFT+1))

	single.Apply(c, single.SHIFT)
	rootR, _ := single.Right("root")
	depR, _ := single.Right("dep")
	depL, _ := single.Left("dep")
	assert.False(t, single.CanApply(c, rootR), "single root keeps the buffer")
	assert.True(t, multi.CanApply(c, rootR))
	assert.False(t, multi.CanApply(c, depR), "non-root label from the virtual root")
	assert.False(t, single.CanApply(c, depL), "left arc onto the virtual root")

	single.Apply(c, single.SHIFT)
	rootL, _ := single.Left("root")
	assert.True(t, single.CanApply(c, depL))
	assert.False(t, single.CanApply(c, rootL), "root label below the virtual root")
	assert.True(t, single.CanApply(c, depR))
	assert.False(t, single.CanApply(c, rootR))
}

func TestOracleReproducesGold(t *testing.T) {
	a := NewArcStandard(testRelations, true)
	gold := testGold()
	require.True(t, gold.IsProjective())

	c := a.Initial(testSent)
	var sequence []string
	for !a.IsTerminal(c) {
		tr := a.Oracle(c, gold)
		require.True(t, a.CanApply(c, tr), "oracle chose illegal %v in %v", a.TransitionName(tr), c)
		sequence = append(sequence, a.TransitionName(tr))
		a.Apply(c, tr)
		assertPartition(t, c, len(testSent))
	}
	assert.Equal(t, testGoldSequence, sequence)
	assert.Len(t, sequence, a.NumTransitionsFor(len(testSent)))
	assert.True(t, gold.Equal(c.Tree))
}

func TestOracleNestedTree(t *testing.T) {
	a := NewArcStandard([]string{"root", "a", "b", "c"}, false)
	gold := dependency.NewTree(0)
	for i, h := range []int{2, 0, 4, 2} {
		gold.Add(h, []string{"a", "root", "b", "c"}[i])
	}
	sent := types.TaggedSentence{{Token: "w", POS: "P"}, {Token: "x", POS: "P"}, {Token: "y", POS: "P"}, {Token: "z", POS: "P"}}
	c := a.Initial(sent)
	steps := 0
	for !a.IsTerminal(c) {
		a.Apply(c, a.Oracle(c, gold))
		steps++
	}
	assert.Equal(t, 8, steps)
	assert.True(t, gold.Equal(c.Tree))
}

func TestOracleUnknownLabelPanics(t *testing.T) {
	a := NewArcStandard([]string{"root"}, true)
	gold := dependency.NewTree(0)
	gold.Add(2, "amod")
	gold.Add(0, "root")
	c := a.Initial(types.TaggedSentence{{Token: "a", POS: "A"}, {Token: "b", POS: "B"}})
	a.Apply(c, a.SHIFT)
	a.Apply(c, a.SHIFT)
	assert.Panics(t, func() { a.Oracle(c, gold) })
}

// assertPartition checks every token is in exactly one of the stack, the
// buffer or the set of attached tokens.
func assertPartition(t *testing.T, c *Configuration, n int) {
	t.Helper()
	var seen []int
	for i := 0; i < c.StackSize(); i++ {
		seen = append(seen, c.Stack(i))
	}
	for i := 0; i < c.BufferSize(); i++ {
		seen = append(seen, c.Buffer(i))
	}
	for k := 1; k <= n; k++ {
		if c.Head(k) != dependency.NONEXIST {
			seen = append(seen, k)
		}
	}
	sort.Ints(seen)
	expected := make([]int, n+1)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, seen)
}
