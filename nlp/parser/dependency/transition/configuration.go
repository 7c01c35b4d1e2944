package transition

import (
	"fmt"
	"strings"

	"nndep/alg"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

// Configuration is a parser state: a stack and a buffer of token indices
// over a sentence plus the tree built so far. Token 0 is the virtual root.
type Configuration struct {
	Sentence types.TaggedSentence
	Tree     *dependency.Tree

	stack  alg.StackArray
	buffer alg.QueueSlice
}

// NewConfiguration returns the initial state: stack [0], buffer [1..n]
// and an empty tree.
func NewConfiguration(sent types.TaggedSentence) *Configuration {
	n := len(sent)
	c := &Configuration{
		Sentence: sent,
		Tree:     dependency.NewTree(n),
		stack:    *alg.NewStackArray(n + 1),
		buffer:   *alg.NewQueueSlice(n),
	}
	c.stack.Push(0)
	for i := 1; i <= n; i++ {
		c.buffer.Enqueue(i)
	}
	return c
}

func (c *Configuration) StackSize() int {
	return c.stack.Size()
}

func (c *Configuration) BufferSize() int {
	return c.buffer.Size()
}

// Stack returns the i-th element from the top of the stack, or
// dependency.NONEXIST.
func (c *Configuration) Stack(i int) int {
	if v, exists := c.stack.Index(i); exists {
		return v
	}
	return dependency.NONEXIST
}

// Buffer returns the i-th element of the buffer, or dependency.NONEXIST.
func (c *Configuration) Buffer(i int) int {
	if v, exists := c.buffer.Index(i); exists {
		return v
	}
	return dependency.NONEXIST
}

// Shift moves the front of the buffer onto the stack.
func (c *Configuration) Shift() bool {
	k, exists := c.buffer.Dequeue()
	if !exists {
		return false
	}
	c.stack.Push(k)
	return true
}

func (c *Configuration) RemoveTopStack() bool {
	_, exists := c.stack.Pop()
	return exists
}

func (c *Configuration) RemoveSecondTopStack() bool {
	_, exists := c.stack.Remove(1)
	return exists
}

func (c *Configuration) AddArc(head, modifier int, label string) {
	c.Tree.Set(modifier, head, label)
}

func (c *Configuration) Head(k int) int {
	return c.Tree.Head(k)
}

func (c *Configuration) Label(k int) string {
	return c.Tree.Label(k)
}

// Word returns the form of token k; the virtual root and out of range
// indices map to their sentinels.
func (c *Configuration) Word(k int) string {
	switch {
	case k == 0:
		return types.ROOT
	case k < 0 || k > len(c.Sentence):
		return types.NULL
	default:
		return c.Sentence[k-1].Token
	}
}

func (c *Configuration) POS(k int) string {
	switch {
	case k == 0:
		return types.ROOT
	case k < 0 || k > len(c.Sentence):
		return types.NULL
	default:
		return c.Sentence[k-1].POS
	}
}

// LeftChild returns the cnt-th leftmost child of k left of k.
func (c *Configuration) LeftChild(k, cnt int) int {
	if k < 0 || k > c.Tree.N() {
		return dependency.NONEXIST
	}
	found := 0
	for i := 1; i < k; i++ {
		if c.Tree.Head(i) == k {
			found++
			if found == cnt {
				return i
			}
		}
	}
	return dependency.NONEXIST
}

// RightChild returns the cnt-th rightmost child of k right of k.
func (c *Configuration) RightChild(k, cnt int) int {
	if k < 0 || k > c.Tree.N() {
		return dependency.NONEXIST
	}
	found := 0
	for i := c.Tree.N(); i > k; i-- {
		if c.Tree.Head(i) == k {
			found++
			if found == cnt {
				return i
			}
		}
	}
	return dependency.NONEXIST
}

func (c *Configuration) LeftValency(k int) int {
	if k < 0 || k > c.Tree.N() {
		return 0
	}
	cnt := 0
	for i := 1; i < k; i++ {
		if c.Tree.Head(i) == k {
			cnt++
		}
	}
	return cnt
}

func (c *Configuration) RightValency(k int) int {
	if k < 0 || k > c.Tree.N() {
		return 0
	}
	cnt := 0
	for i := k + 1; i <= c.Tree.N(); i++ {
		if c.Tree.Head(i) == k {
			cnt++
		}
	}
	return cnt
}

// LeftLabelSet returns the labels of the left children of k, in token
// order, without duplicates.
func (c *Configuration) LeftLabelSet(k int) []string {
	return c.labelSet(k, 1, k)
}

func (c *Configuration) RightLabelSet(k int) []string {
	return c.labelSet(k, k+1, c.Tree.N()+1)
}

func (c *Configuration) labelSet(k, from, to int) []string {
	if k < 0 || k > c.Tree.N() {
		return nil
	}
	var (
		retval []string
		seen   = make(map[string]struct{})
	)
	for i := from; i < to; i++ {
		if c.Tree.Head(i) != k {
			continue
		}
		label := c.Tree.Label(i)
		if _, exists := seen[label]; !exists {
			seen[label] = struct{}{}
			retval = append(retval, label)
		}
	}
	return retval
}

// HasOtherChild reports whether k has a gold child that is not yet
// attached to it in the current tree.
func (c *Configuration) HasOtherChild(k int, gold *dependency.Tree) bool {
	for i := 1; i <= gold.N(); i++ {
		if gold.Head(i) == k && c.Tree.Head(i) != k {
			return true
		}
	}
	return false
}

// Copy returns an independent copy; the sentence is shared.
func (c *Configuration) Copy() *Configuration {
	newConf := &Configuration{
		Sentence: c.Sentence,
		Tree:     c.Tree.Copy(),
	}
	c.stack.CopyTo(&newConf.stack)
	c.buffer.CopyTo(&newConf.buffer)
	return newConf
}

func (c *Configuration) String() string {
	return fmt.Sprintf("([%s],\t[%s],\t%s)", c.StringStack(), c.StringBuffer(), c.Tree)
}

func (c *Configuration) StringStack() string {
	strs := make([]string, 0, c.StackSize())
	for i := c.StackSize() - 1; i >= 0; i-- {
		strs = append(strs, c.Word(c.Stack(i)))
	}
	return strings.Join(strs, ",")
}

func (c *Configuration) StringBuffer() string {
	strs := make([]string, 0, c.BufferSize())
	for i := 0; i < c.BufferSize(); i++ {
		strs = append(strs, c.Word(c.Buffer(i)))
	}
	return strings.Join(strs, ",")
}
