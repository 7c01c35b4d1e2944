// Package conll reads and writes CoNLL-X dependency files.
// For a description see http://ilk.uvt.nl/conll/#dataformat
package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

const (
	FIELD_SEPARATOR      = '\t'
	NUM_FIELDS           = 10
	MIN_FIELDS           = 8
	FEATURES_SEPARATOR   = "|"
	FEATURE_SEPARATOR    = "="
	FEATURE_CONCAT_DELIM = ","
)

type Features map[string]string

func (f Features) String() string {
	return FormatFeatures(f)
}

func FormatFeatures(feat map[string]string) string {
	if len(feat) == 0 {
		return "_"
	}
	strs := make([]string, 0, len(feat))
	for k, v := range feat {
		strs = append(strs, fmt.Sprintf("%v%v%v", k, FEATURE_SEPARATOR, v))
	}
	sort.Strings(strs)
	return strings.Join(strs, FEATURES_SEPARATOR)
}

// A Row is a single parsed row of a conll data set
type Row struct {
	ID      int
	Form    string
	Lemma   string
	CPosTag string
	PosTag  string
	Feats   Features
	FeatStr string
	Head    int
	DepRel  string
}

func (r Row) String() string {
	feats := r.FeatStr
	if feats == "" {
		feats = FormatFeatures(r.Feats)
	}
	fields := []string{
		strconv.Itoa(r.ID),
		r.Form,
		formatString(r.Lemma),
		formatString(r.CPosTag),
		formatString(r.PosTag),
		feats,
		strconv.Itoa(r.Head),
		formatString(r.DepRel),
		"_",
		"_"}
	return strings.Join(fields, string(FIELD_SEPARATOR))
}

// A Sentence holds the rows of a sentence ordered by ID
type Sentence []Row

type Sentences []Sentence

// Tagged returns the (form, tag) sequence, using CPOSTAG when cpos is set.
func (s Sentence) Tagged(cpos bool) types.TaggedSentence {
	sent := make(types.TaggedSentence, len(s))
	for i, row := range s {
		tag := row.PosTag
		if cpos {
			tag = row.CPosTag
		}
		sent[i] = types.TaggedToken{Token: row.Form, POS: tag}
	}
	return sent
}

// Tags returns the POS (or CPOS) column.
func (s Sentence) Tags(cpos bool) []string {
	return s.Tagged(cpos).POSTags()
}

// Tree returns the HEAD/DEPREL columns as a dependency tree.
func (s Sentence) Tree() *dependency.Tree {
	tree := dependency.NewTree(0)
	for _, row := range s {
		tree.Add(row.Head, row.DepRel)
	}
	return tree
}

// WithTree returns a copy of the sentence whose HEAD/DEPREL columns are
// taken from tree.
func (s Sentence) WithTree(tree *dependency.Tree) Sentence {
	retval := make(Sentence, len(s))
	copy(retval, s)
	for i := range retval {
		retval[i].Head = tree.Head(i + 1)
		retval[i].DepRel = tree.Label(i + 1)
	}
	return retval
}

func ParseInt(value string) (int, error) {
	if value == "_" {
		return 0, nil
	}
	i, err := strconv.ParseInt(value, 10, 0)
	return int(i), err
}

func ParseString(value string) string {
	if value == "_" {
		return ""
	}
	return value
}

func formatString(value string) string {
	if value == "" {
		return "_"
	}
	return value
}

func ParseFeatures(featuresStr string) (Features, error) {
	var featureMap Features
	if featuresStr == "_" {
		return featureMap, nil
	}

	featureList := strings.Split(featuresStr, FEATURES_SEPARATOR)
	featureMap = make(Features, len(featureList))
	for _, featureStr := range featureList {
		featureKV := strings.Split(featureStr, FEATURE_SEPARATOR)
		if len(featureKV) != 2 {
			return nil, errors.Errorf("wrong number of fields for split of feature %q", featureStr)
		}
		featName := featureKV[0]
		featValue := featureKV[1]
		existingFeatValue, featExist := featureMap[featName]
		if featExist {
			featureMap[featName] = existingFeatValue + FEATURE_CONCAT_DELIM + featValue
		} else {
			featureMap[featName] = featValue
		}
	}
	return featureMap, nil
}

func ParseRow(record []string) (Row, error) {
	var row Row
	if len(record) < MIN_FIELDS {
		return row, errors.Errorf("expected at least %d fields, got %d", MIN_FIELDS, len(record))
	}
	id, err := ParseInt(record[0])
	if err != nil {
		return row, errors.Wrapf(err, "error parsing ID field (%s)", record[0])
	}
	row.ID = id

	// a bare underscore is a legitimate token
	row.Form = record[1]
	row.Lemma = ParseString(record[2])

	cpostag := ParseString(record[3])
	if cpostag == "" {
		return row, errors.New("empty CPOSTAG field")
	}
	row.CPosTag = cpostag

	postag := ParseString(record[4])
	if postag == "" {
		return row, errors.New("empty POSTAG field")
	}
	row.PosTag = postag

	head, err := ParseInt(record[6])
	if err != nil {
		return row, errors.Wrapf(err, "error parsing HEAD field (%s)", record[6])
	}
	row.Head = head

	row.DepRel = ParseString(record[7])

	features, err := ParseFeatures(record[5])
	if err != nil {
		return row, errors.Wrapf(err, "error parsing FEATS field (%s)", record[5])
	}
	row.Feats = features
	row.FeatStr = ParseString(record[5])
	return row, nil
}

// Read parses sentences separated by blank lines. Comment lines and
// CoNLL-U multiword or empty-node rows are skipped. A positive limit
// stops after that many sentences.
func Read(reader io.Reader, limit int) (Sentences, error) {
	var (
		sentences   Sentences
		currentSent Sentence
		lineNum     int
	)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(currentSent) > 0 {
				sentences = append(sentences, currentSent)
				currentSent = nil
				if limit > 0 && len(sentences) >= limit {
					return sentences, nil
				}
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		record := strings.Split(line, string(FIELD_SEPARATOR))
		if strings.ContainsAny(record[0], "-.") {
			continue
		}
		row, err := ParseRow(record)
		if err != nil {
			return nil, errors.Wrapf(err, "error processing line %d at sentence %d", lineNum, len(sentences))
		}
		if row.ID != len(currentSent)+1 {
			return nil, errors.Errorf("line %d: expected ID %d, got %d", lineNum, len(currentSent)+1, row.ID)
		}
		currentSent = append(currentSent, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failure reading conll file")
	}
	if len(currentSent) > 0 {
		sentences = append(sentences, currentSent)
	}
	return sentences, nil
}

func ReadFile(filename string, limit int) (Sentences, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	sents, err := Read(file, limit)
	return sents, errors.Wrapf(err, "reading %s", filename)
}

func Write(writer io.Writer, sents []Sentence) error {
	w := bufio.NewWriter(writer)
	for _, sent := range sents {
		for _, row := range sent {
			if _, err := w.WriteString(row.String() + "\n"); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

func WriteFile(filename string, sents []Sentence) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(file, sents); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
