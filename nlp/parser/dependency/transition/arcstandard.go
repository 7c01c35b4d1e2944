package transition

import (
	"fmt"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

// ArcStandard is the arc-standard system over a fixed label set.
// Transition encoding: LEFT+l, RIGHT+l for every label l, then SHIFT.
//
// Transition System:
// LA-r	(S|wj|wi,	B,	A) => (S|wi,	B,	A+{(wi,r,wj)})	if: j != 0
// RA-r	(S|wj|wi,	B,	A) => (S|wj,	B,	A+{(wj,r,wi)})
// SH	(S,	wi|B,	A) => (S|wi,	B,	A)
type ArcStandard struct {
	// Labels holds the real relation labels; Labels[0] is the root label.
	Labels     []string
	SingleRoot bool

	LEFT, RIGHT, SHIFT Transition

	labelIndex map[string]int
	names      []string
}

var _ TransitionSystem = &ArcStandard{}

func NewArcStandard(labels []string, singleRoot bool) *ArcStandard {
	if len(labels) == 0 {
		panic("Arc standard requires at least the root label")
	}
	n := Transition(len(labels))
	a := &ArcStandard{
		Labels:     labels,
		SingleRoot: singleRoot,
		LEFT:       0,
		RIGHT:      n,
		SHIFT:      2 * n,
		labelIndex: make(map[string]int, len(labels)),
		names:      make([]string, 0, 2*n+1),
	}
	for i, label := range labels {
		a.labelIndex[label] = i
	}
	for _, label := range labels {
		a.names = append(a.names, "L("+label+")")
	}
	for _, label := range labels {
		a.names = append(a.names, "R("+label+")")
	}
	a.names = append(a.names, "S")
	return a
}

func (a *ArcStandard) RootLabel() string {
	return a.Labels[0]
}

func (a *ArcStandard) NumTransitions() int {
	return len(a.names)
}

func (a *ArcStandard) TransitionName(t Transition) string {
	if t < 0 || int(t) >= len(a.names) {
		return fmt.Sprintf("?(%d)", int(t))
	}
	return a.names[t]
}

// Lookup returns the transition named name (e.g. "L(nsubj)", "S").
func (a *ArcStandard) Lookup(name string) (Transition, bool) {
	for i, n := range a.names {
		if n == name {
			return Transition(i), true
		}
	}
	return NONE, false
}

func (a *ArcStandard) Left(label string) (Transition, bool) {
	l, exists := a.labelIndex[label]
	if !exists {
		return NONE, false
	}
	return a.LEFT + Transition(l), true
}

func (a *ArcStandard) Right(label string) (Transition, bool) {
	l, exists := a.labelIndex[label]
	if !exists {
		return NONE, false
	}
	return a.RIGHT + Transition(l), true
}

func (a *ArcStandard) Initial(sent types.TaggedSentence) *Configuration {
	return NewConfiguration(sent)
}

func (a *ArcStandard) IsTerminal(c *Configuration) bool {
	return c.StackSize() == 1 && c.BufferSize() == 0
}

func (a *ArcStandard) CanApply(c *Configuration, t Transition) bool {
	if t < 0 || t > a.SHIFT {
		return false
	}
	if t == a.SHIFT {
		return c.BufferSize() > 0
	}
	var label string
	var head int
	if t < a.RIGHT {
		label = a.Labels[t-a.LEFT]
		head = c.Stack(0)
	} else {
		label = a.Labels[t-a.RIGHT]
		head = c.Stack(1)
	}
	if head < 0 {
		return false
	}
	// the root label is used exactly for arcs from the virtual root
	if (head == 0) != (label == a.RootLabel()) {
		return false
	}

	nStack, nBuffer := c.StackSize(), c.BufferSize()
	if t < a.RIGHT {
		return nStack > 2
	}
	if a.SingleRoot {
		return nStack > 2 || (nStack == 2 && nBuffer == 0)
	}
	return nStack >= 2
}

func (a *ArcStandard) Apply(c *Configuration, t Transition) {
	switch {
	case t >= a.LEFT && t < a.RIGHT:
		w1, w2 := c.Stack(0), c.Stack(1)
		c.AddArc(w1, w2, a.Labels[t-a.LEFT])
		c.RemoveSecondTopStack()
	case t >= a.RIGHT && t < a.SHIFT:
		w1, w2 := c.Stack(0), c.Stack(1)
		c.AddArc(w2, w1, a.Labels[t-a.RIGHT])
		c.RemoveTopStack()
	case t == a.SHIFT:
		if !c.Shift() {
			panic("Can't shift, buffer is empty")
		}
	default:
		panic(fmt.Sprintf("Unknown transition %v SHIFT is %v", t, a.SHIFT))
	}
}

// Oracle is the static arc-standard oracle: left-attach the second item
// when its gold head is the top, right-attach the top once all its gold
// children are attached, otherwise shift.
func (a *ArcStandard) Oracle(c *Configuration, gold *dependency.Tree) Transition {
	s0, s1 := c.Stack(0), c.Stack(1)
	if s1 > 0 && gold.Head(s1) == s0 {
		t, exists := a.Left(gold.Label(s1))
		if !exists {
			panic(fmt.Sprintf("Unknown label %v in gold tree", gold.Label(s1)))
		}
		return t
	}
	if s1 >= 0 && gold.Head(s0) == s1 && !c.HasOtherChild(s0, gold) {
		t, exists := a.Right(gold.Label(s0))
		if !exists {
			panic(fmt.Sprintf("Unknown label %v in gold tree", gold.Label(s0)))
		}
		return t
	}
	return a.SHIFT
}

func (a *ArcStandard) NumTransitionsFor(n int) int {
	return 2 * n
}

func (a *ArcStandard) Name() string {
	return "Arc Standard"
}
