package types

import "strings"

// Sentinel vocabulary entries. They occupy the first rows of each
// dictionary and are trained like any other embedding.
const (
	UNKNOWN = "-UNKNOWN-"
	NULL    = "-NULL-"
	ROOT    = "-ROOT-"
)

// DefaultPunctuationTags are the PTB tags excluded by the no-punctuation
// evaluation scores.
var DefaultPunctuationTags = []string{"``", "''", ".", ",", ":"}

type TaggedToken struct {
	Token, POS string
}

func (t TaggedToken) String() string {
	return t.Token + "/" + t.POS
}

type TaggedSentence []TaggedToken

func (s TaggedSentence) Tokens() []string {
	retval := make([]string, len(s))
	for i, val := range s {
		retval[i] = val.Token
	}
	return retval
}

func (s TaggedSentence) POSTags() []string {
	retval := make([]string, len(s))
	for i, val := range s {
		retval[i] = val.POS
	}
	return retval
}

func (s TaggedSentence) String() string {
	strs := make([]string, len(s))
	for i, val := range s {
		strs[i] = val.String()
	}
	return strings.Join(strs, " ")
}

// TagSet is a set of POS tags.
type TagSet map[string]struct{}

func NewTagSet(tags []string) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func (s TagSet) Contains(tag string) bool {
	_, exists := s[tag]
	return exists
}
