package nndep

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"nndep/alg/nn"
	"nndep/util"
)

// Model is the content of a model file.
//
// Text layout:
//
//	dict=, pos=, label=, embeddingSize=, hiddenSize=, numTokens=,
//	preComputed= header lines
//	one "<string> <floats>" line per embedding row (words, POS, labels)
//	W1 column-major: one line of hiddenSize floats per input column
//	b1 on one line
//	W2 column-major: one line of numTransitions floats per hidden unit
//	precomputed keys, 100 per line
type Model struct {
	Vocab       *Vocabulary
	Params      *nn.Params
	NumTokens   int
	PreComputed []int
}

const preComputedPerLine = 100

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFloats(w *bufio.Writer, prefix string, values func(i int) float64, n int) {
	if prefix != "" {
		w.WriteString(prefix)
		w.WriteByte(' ')
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(formatFloat(values(i)))
	}
	w.WriteByte('\n')
}

func (m *Model) Write(writer io.Writer) error {
	var (
		w         = bufio.NewWriter(writer)
		p         = m.Params
		dim       = p.EmbeddingSize()
		hidden    = p.HiddenSize()
		numTrans  = p.NumTransitions()
		_, inputs = p.W1.Dims()
	)
	header := []struct {
		key   string
		value int
	}{
		{"dict", m.Vocab.Words.Len()},
		{"pos", m.Vocab.POS.Len()},
		{"label", m.Vocab.Labels.Len()},
		{"embeddingSize", dim},
		{"hiddenSize", hidden},
		{"numTokens", m.NumTokens},
		{"preComputed", len(m.PreComputed)},
	}
	for _, h := range header {
		w.WriteString(h.key + "=" + strconv.Itoa(h.value) + "\n")
	}
	for id, s := range m.Vocab.Strings() {
		row := p.E.RawRowView(id)
		writeFloats(w, s, func(i int) float64 { return row[i] }, dim)
	}
	for j := 0; j < inputs; j++ {
		writeFloats(w, "", func(i int) float64 { return p.W1.At(i, j) }, hidden)
	}
	writeFloats(w, "", func(i int) float64 { return p.B1[i] }, hidden)
	for j := 0; j < hidden; j++ {
		writeFloats(w, "", func(i int) float64 { return p.W2.At(i, j) }, numTrans)
	}
	for i, key := range m.PreComputed {
		w.WriteString(strconv.Itoa(key))
		if (i+1)%preComputedPerLine == 0 || i == len(m.PreComputed)-1 {
			w.WriteByte('\n')
		} else {
			w.WriteByte(' ')
		}
	}
	return w.Flush()
}

// Save writes the model to filename; .gz files are compressed.
func (m *Model) Save(filename string) error {
	file, err := util.CreateFile(filename)
	if err != nil {
		return err
	}
	if err := m.Write(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "writing %s", filename)
	}
	return file.Close()
}

type modelReader struct {
	scanner *bufio.Scanner
	line    int
}

func (r *modelReader) next(what string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", errors.Wrapf(err, "line %d", r.line+1)
		}
		return "", errors.Errorf("unexpected end of file reading %s", what)
	}
	r.line++
	return r.scanner.Text(), nil
}

func (r *modelReader) header(key string) (int, error) {
	line, err := r.next(key)
	if err != nil {
		return 0, err
	}
	prefix := key + "="
	if !strings.HasPrefix(line, prefix) {
		return 0, errors.Errorf("line %d: expected %s header, got %q", r.line, key, line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(line[len(prefix):]))
	if err != nil || v < 0 {
		return 0, errors.Errorf("line %d: bad %s value %q", r.line, key, line[len(prefix):])
	}
	return v, nil
}

// floats parses exactly len(dst) floats from fields.
func (r *modelReader) floats(fields []string, dst []float64, what string) error {
	if len(fields) != len(dst) {
		return errors.Errorf("line %d: %s has %d values, expected %d", r.line, what, len(fields), len(dst))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return errors.Wrapf(err, "line %d: %s", r.line, what)
		}
		dst[i] = v
	}
	return nil
}

func (r *modelReader) floatLine(dst []float64, what string) error {
	line, err := r.next(what)
	if err != nil {
		return err
	}
	return r.floats(strings.Fields(line), dst, what)
}

// ReadModel parses a model. Any deviation from the layout is an error;
// no partial model is returned.
func ReadModel(reader io.Reader) (*Model, error) {
	r := &modelReader{scanner: bufio.NewScanner(reader)}
	r.scanner.Buffer(make([]byte, 0, 1024*1024), 256*1024*1024)

	var sizes [7]int
	for i, key := range []string{"dict", "pos", "label", "embeddingSize", "hiddenSize", "numTokens", "preComputed"} {
		v, err := r.header(key)
		if err != nil {
			return nil, err
		}
		sizes[i] = v
	}
	nDict, nPOS, nLabel, dim, hidden, numTokens, nPre := sizes[0], sizes[1], sizes[2], sizes[3], sizes[4], sizes[5], sizes[6]
	if dim == 0 || hidden == 0 || numTokens == 0 || nLabel < 2 {
		return nil, errors.New("model sizes must be positive and hold the root label")
	}
	numTrans := 2*(nLabel-1) + 1
	vocabSize := nDict + nPOS + nLabel
	params := nn.NewParams(vocabSize, dim, hidden, numTokens, numTrans)

	strs := make([]string, vocabSize)
	for id := range strs {
		line, err := r.next("embeddings")
		if err != nil {
			return nil, err
		}
		fields := strings.Split(line, " ")
		if len(fields) < dim+1 {
			return nil, errors.Errorf("line %d: embedding row has %d fields, expected %d", r.line, len(fields), dim+1)
		}
		split := len(fields) - dim
		strs[id] = strings.Join(fields[:split], " ")
		if err := r.floats(fields[split:], params.E.RawRowView(id), "embedding"); err != nil {
			return nil, err
		}
	}

	_, inputs := params.W1.Dims()
	column := make([]float64, hidden)
	for j := 0; j < inputs; j++ {
		if err := r.floatLine(column, "W1"); err != nil {
			return nil, err
		}
		params.W1.SetCol(j, column)
	}
	if err := r.floatLine(params.B1, "b1"); err != nil {
		return nil, err
	}
	column = make([]float64, numTrans)
	for j := 0; j < hidden; j++ {
		if err := r.floatLine(column, "W2"); err != nil {
			return nil, err
		}
		params.W2.SetCol(j, column)
	}

	preComputed := make([]int, 0, nPre)
	for len(preComputed) < nPre {
		line, err := r.next("precomputed keys")
		if err != nil {
			return nil, err
		}
		for _, f := range strings.Fields(line) {
			key, err := strconv.Atoi(f)
			if err != nil || key < 0 || key >= vocabSize*numTokens {
				return nil, errors.Errorf("line %d: bad precomputed key %q", r.line, f)
			}
			preComputed = append(preComputed, key)
		}
	}
	if len(preComputed) != nPre {
		return nil, errors.Errorf("expected %d precomputed keys, got %d", nPre, len(preComputed))
	}

	vocab, err := NewVocabulary(strs[:nDict], strs[nDict:nDict+nPOS], strs[nDict+nPOS:])
	if err != nil {
		return nil, err
	}
	return &Model{
		Vocab:       vocab,
		Params:      params,
		NumTokens:   numTokens,
		PreComputed: preComputed,
	}, nil
}

// LoadModel reads filename; .gz files are decompressed.
func LoadModel(filename string) (*Model, error) {
	file, err := util.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadModel(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading model %s", filename)
	}
	return m, nil
}
