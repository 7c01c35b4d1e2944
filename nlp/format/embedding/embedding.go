// Package embedding reads pretrained word vectors in the plain text
// format: one "word v1 ... vd" line per word, with an optional word2vec
// "count dim" header line.
package embedding

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"nndep/util"
)

type Embeddings struct {
	Dim     int
	Words   []string
	Vectors [][]float64
	index   map[string]int
}

// Vector returns the vector of word, falling back to its lowercase form.
func (e *Embeddings) Vector(word string) ([]float64, bool) {
	if i, exists := e.index[word]; exists {
		return e.Vectors[i], true
	}
	if i, exists := e.index[strings.ToLower(word)]; exists {
		return e.Vectors[i], true
	}
	return nil, false
}

func (e *Embeddings) Len() int {
	return len(e.Words)
}

func Read(reader io.Reader) (*Embeddings, error) {
	e := &Embeddings{index: make(map[string]int)}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNum == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				continue
			}
		}
		if e.Dim == 0 {
			e.Dim = len(fields) - 1
			if e.Dim <= 0 {
				return nil, errors.Errorf("line %d: no vector values", lineNum)
			}
		}
		if len(fields)-1 != e.Dim {
			return nil, errors.Errorf("line %d: expected %d values, got %d", lineNum, e.Dim, len(fields)-1)
		}
		vec := make([]float64, e.Dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			vec[i] = v
		}
		if _, exists := e.index[fields[0]]; exists {
			continue
		}
		e.index[fields[0]] = len(e.Words)
		e.Words = append(e.Words, fields[0])
		e.Vectors = append(e.Vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading embeddings")
	}
	return e, nil
}

// ReadFile reads an embedding file; .gz files are decompressed.
func ReadFile(filename string) (*Embeddings, error) {
	file, err := util.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	e, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return e, nil
}
