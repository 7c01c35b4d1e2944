// Package transition implements transition systems over a stack/buffer
// Configuration for greedy dependency parsing.
package transition

import (
	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

// Transition is a dense transition index in [0, NumTransitions).
type Transition int

// NONE is returned where no transition applies.
const NONE Transition = -1

type TransitionSystem interface {
	NumTransitions() int
	TransitionName(t Transition) string

	Initial(sent types.TaggedSentence) *Configuration
	IsTerminal(c *Configuration) bool
	CanApply(c *Configuration, t Transition) bool
	// Apply mutates c; t must be legal in c.
	Apply(c *Configuration, t Transition)

	// Oracle returns the gold transition for c given the gold tree.
	Oracle(c *Configuration, gold *dependency.Tree) Transition
	// NumTransitionsFor is the length of any complete derivation of an
	// n token sentence.
	NumTransitionsFor(n int) int

	Name() string
}
