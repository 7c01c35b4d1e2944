// Package dependency holds the labeled dependency tree produced by the
// parsers and consumed by the oracle and the evaluator.
package dependency

import (
	"fmt"
	"strings"

	"nndep/nlp/types"
)

// NONEXIST marks an unassigned head or an out of range token.
const NONEXIST = -1

// Tree stores a head index and a relation label for every token of a
// sentence. Tokens are 1-based; head 0 is the virtual root.
type Tree struct {
	heads  []int
	labels []string
}

// NewTree returns a tree of n tokens with no arcs.
func NewTree(n int) *Tree {
	t := &Tree{
		heads:  make([]int, n+1),
		labels: make([]string, n+1),
	}
	for i := range t.heads {
		t.heads[i] = NONEXIST
		t.labels[i] = types.UNKNOWN
	}
	return t
}

// N is the number of tokens.
func (t *Tree) N() int {
	return len(t.heads) - 1
}

// Add appends a token with the given head and label.
func (t *Tree) Add(head int, label string) {
	t.heads = append(t.heads, head)
	t.labels = append(t.labels, label)
}

func (t *Tree) Set(k, head int, label string) {
	if k <= 0 || k > t.N() {
		panic(fmt.Sprintf("Token %d out of range [1,%d]", k, t.N()))
	}
	t.heads[k] = head
	t.labels[k] = label
}

func (t *Tree) Head(k int) int {
	if k <= 0 || k > t.N() {
		return NONEXIST
	}
	return t.heads[k]
}

func (t *Tree) Label(k int) string {
	if k <= 0 || k > t.N() {
		return types.NULL
	}
	return t.labels[k]
}

// Root returns the first token attached to the virtual root, or 0.
func (t *Tree) Root() int {
	for k := 1; k <= t.N(); k++ {
		if t.heads[k] == 0 {
			return k
		}
	}
	return 0
}

func (t *Tree) IsSingleRoot() bool {
	roots := 0
	for k := 1; k <= t.N(); k++ {
		if t.heads[k] == 0 {
			roots++
		}
	}
	return roots == 1
}

// IsTree reports whether every head is in range, exactly one token hangs
// off the virtual root and following heads from any token reaches the
// virtual root without a cycle.
func (t *Tree) IsTree() bool {
	n := t.N()
	if !t.IsSingleRoot() {
		return false
	}
	visited := make([]int, n+1)
	for k := 1; k <= n; k++ {
		if t.heads[k] < 0 || t.heads[k] > n {
			return false
		}
		visited[k] = -1
	}
	for i := 1; i <= n; i++ {
		k := i
		for k > 0 {
			if visited[k] >= 0 && visited[k] < i {
				break
			}
			if visited[k] == i {
				return false
			}
			visited[k] = i
			k = t.heads[k]
		}
	}
	return true
}

// IsProjective reports whether the tree is a tree whose every subtree
// covers a contiguous range of tokens.
func (t *Tree) IsProjective() bool {
	if !t.IsTree() {
		return false
	}
	counter := -1
	return t.visit(0, &counter)
}

// visit walks the subtree of w in order; the walk position must equal
// the token index at every node.
func (t *Tree) visit(w int, counter *int) bool {
	for i := 1; i < w; i++ {
		if t.heads[i] == w && !t.visit(i, counter) {
			return false
		}
	}
	*counter++
	if w != *counter {
		return false
	}
	for i := w + 1; i <= t.N(); i++ {
		if t.heads[i] == w && !t.visit(i, counter) {
			return false
		}
	}
	return true
}

func (t *Tree) Copy() *Tree {
	c := &Tree{
		heads:  make([]int, len(t.heads)),
		labels: make([]string, len(t.labels)),
	}
	copy(c.heads, t.heads)
	copy(c.labels, t.labels)
	return c
}

func (t *Tree) Equal(other *Tree) bool {
	if other == nil || t.N() != other.N() {
		return false
	}
	for k := 1; k <= t.N(); k++ {
		if t.heads[k] != other.heads[k] || t.labels[k] != other.labels[k] {
			return false
		}
	}
	return true
}

func (t *Tree) String() string {
	arcs := make([]string, 0, t.N())
	for k := 1; k <= t.N(); k++ {
		arcs = append(arcs, fmt.Sprintf("(%d,%s,%d)", t.heads[k], t.labels[k], k))
	}
	return strings.Join(arcs, " ")
}
