package nndep

import (
	"github.com/pkg/errors"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
	"nndep/util"
)

// Vocabulary maps words, POS tags and labels into one ID space: word IDs
// first, then POS IDs, then label IDs.
type Vocabulary struct {
	Words, POS, Labels *util.EnumSet

	unknownWord, unknownPOS, nullLabel int
}

// NewVocabulary freezes the three dictionaries. Words and POS must start
// with the UNKNOWN, NULL, ROOT sentinels; labels with NULL followed by
// the root label.
func NewVocabulary(words, pos, labels []string) (*Vocabulary, error) {
	for _, dict := range [][]string{words, pos} {
		if len(dict) < 3 || dict[0] != types.UNKNOWN || dict[1] != types.NULL || dict[2] != types.ROOT {
			return nil, errors.New("word and POS dictionaries must start with the sentinels")
		}
	}
	if len(labels) < 2 || labels[0] != types.NULL {
		return nil, errors.New("label dictionary must start with NULL and the root label")
	}
	v := &Vocabulary{
		Words:  util.NewFrozenEnumSet(words),
		POS:    util.NewFrozenEnumSet(pos),
		Labels: util.NewFrozenEnumSet(labels),
	}
	if v.Words.Len() != len(words) || v.POS.Len() != len(pos) || v.Labels.Len() != len(labels) {
		return nil, errors.New("duplicate dictionary entry")
	}
	v.unknownWord, _ = v.Words.IndexOf(types.UNKNOWN)
	v.unknownPOS, _ = v.POS.IndexOf(types.UNKNOWN)
	v.nullLabel, _ = v.Labels.IndexOf(types.NULL)
	return v, nil
}

// BuildVocabulary collects the dictionaries of a training corpus. Entries
// are ordered by descending frequency, ties broken lexicographically;
// words seen fewer than wordCutOff times are dropped. The root label is
// the label most often attached to the virtual root.
func BuildVocabulary(sents []types.TaggedSentence, trees []*dependency.Tree, wordCutOff int) (*Vocabulary, error) {
	var (
		wordCount  = make(map[string]int)
		posCount   = make(map[string]int)
		labelCount = make(map[string]int)
		rootCount  = make(map[string]int)
	)
	for _, sent := range sents {
		for _, tok := range sent {
			wordCount[tok.Token]++
			posCount[tok.POS]++
		}
	}
	for _, tree := range trees {
		for k := 1; k <= tree.N(); k++ {
			if tree.Head(k) == 0 {
				rootCount[tree.Label(k)]++
			} else {
				labelCount[tree.Label(k)]++
			}
		}
	}
	roots := util.GetTopN(rootCount, 1)
	if len(roots) == 0 {
		return nil, errors.New("no root label in training trees")
	}
	rootLabel := roots[0].S
	delete(labelCount, rootLabel)

	words := []string{types.UNKNOWN, types.NULL, types.ROOT}
	for _, d := range util.GetTopN(wordCount, -1) {
		if d.N >= wordCutOff && !isSentinel(d.S) {
			words = append(words, d.S)
		}
	}
	pos := []string{types.UNKNOWN, types.NULL, types.ROOT}
	for _, d := range util.GetTopN(posCount, -1) {
		if !isSentinel(d.S) {
			pos = append(pos, d.S)
		}
	}
	labels := []string{types.NULL, rootLabel}
	for _, d := range util.GetTopN(labelCount, -1) {
		if d.S != types.NULL {
			labels = append(labels, d.S)
		}
	}
	return NewVocabulary(words, pos, labels)
}

func isSentinel(s string) bool {
	return s == types.UNKNOWN || s == types.NULL || s == types.ROOT
}

func (v *Vocabulary) WordID(word string) int {
	if id, exists := v.Words.IndexOf(word); exists {
		return id
	}
	return v.unknownWord
}

func (v *Vocabulary) POSID(pos string) int {
	id, exists := v.POS.IndexOf(pos)
	if !exists {
		id = v.unknownPOS
	}
	return v.Words.Len() + id
}

// LabelID maps unknown labels to the NULL label row.
func (v *Vocabulary) LabelID(label string) int {
	id, exists := v.Labels.IndexOf(label)
	if !exists {
		id = v.nullLabel
	}
	return v.Words.Len() + v.POS.Len() + id
}

// Size is the number of embedding rows.
func (v *Vocabulary) Size() int {
	return v.Words.Len() + v.POS.Len() + v.Labels.Len()
}

// RootLabel is the label of arcs from the virtual root.
func (v *Vocabulary) RootLabel() string {
	return v.Labels.ValueOf(1)
}

// RealLabels returns the transition labels: every label but NULL, root
// label first.
func (v *Vocabulary) RealLabels() []string {
	return append([]string(nil), v.Labels.Index[1:]...)
}

// Strings returns the string of every ID in ID order.
func (v *Vocabulary) Strings() []string {
	retval := make([]string, 0, v.Size())
	retval = append(retval, v.Words.Index...)
	retval = append(retval, v.POS.Index...)
	return append(retval, v.Labels.Index...)
}
