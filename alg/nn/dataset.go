package nn

import "math/rand"

// Example is one training instance: the feature IDs of a configuration and
// a label per transition, 1 for the gold transition, 0 for other legal
// transitions and -1 for illegal ones.
type Example struct {
	Features []int
	Label    []int
}

// Gold returns the index of the first transition labeled 1, or -1.
func (e *Example) Gold() int {
	for i, l := range e.Label {
		if l == 1 {
			return i
		}
	}
	return -1
}

type Dataset struct {
	Examples []Example
}

func (d *Dataset) Add(features, label []int) {
	d.Examples = append(d.Examples, Example{features, label})
}

func (d *Dataset) Len() int {
	return len(d.Examples)
}

// Sample draws n examples without replacement; n is capped at Len.
func (d *Dataset) Sample(rng *rand.Rand, n int) []Example {
	if n >= len(d.Examples) {
		n = len(d.Examples)
	}
	perm := rng.Perm(len(d.Examples))
	retval := make([]Example, n)
	for i := range retval {
		retval[i] = d.Examples[perm[i]]
	}
	return retval
}
