package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nndep/alg/nn"
	"nndep/nlp/format/conll"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/parser/dependency/nndep"
	"nndep/nlp/types"
)

const sampleConll = "1\tJohn\t_\tN\tNNP\t_\t2\tnsubj\t_\t_\n" +
	"2\tran\t_\tV\tVBD\t_\t0\troot\t_\t_\n" +
	"3\t.\t_\tP\t.\t_\t2\tpunct\t_\t_\n\n"

func testParser(t *testing.T) *nndep.Parser {
	t.Helper()
	sents, err := conll.Read(strings.NewReader(sampleConll), 0)
	require.NoError(t, err)
	train := TrainSentences(sents, false)
	vocab, err := nndep.BuildVocabulary(
		[]types.TaggedSentence{train[0].Sentence}, []*dependency.Tree{train[0].Tree}, 1)
	require.NoError(t, err)
	params := nn.NewParams(vocab.Size(), 2, 3, nndep.NumTokens, 2*len(vocab.RealLabels())+1)
	parser, err := nndep.NewParser(nndep.DefaultConfig(), vocab, params)
	require.NoError(t, err)
	return parser
}

func TestTrainSentences(t *testing.T) {
	sents, err := conll.Read(strings.NewReader(sampleConll), 0)
	require.NoError(t, err)
	train := TrainSentences(sents, true)
	require.Len(t, train, 1)
	assert.Equal(t, types.TaggedSentence{{Token: "John", POS: "N"}, {Token: "ran", POS: "V"}, {Token: ".", POS: "P"}}, train[0].Sentence)
	assert.Equal(t, 0, train[0].Tree.Head(2))
	assert.Equal(t, "punct", train[0].Tree.Label(3))
}

func post(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, Data) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/dep/parse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var data Data
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	return rec, data
}

func TestDepParserHandler(t *testing.T) {
	router := NewRouter(testParser(t))

	rec, data := post(t, router, `{"tokens":[{"word":"A","pos":"X"},{"word":"B","pos":"Y"},{"word":"C","pos":"Z"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	// all scores tie on zero parameters, so the lowest legal transition wins
	assert.Equal(t, []int{2, 3, 0}, data.Heads)
	assert.Equal(t, []string{"nsubj", "nsubj", "root"}, data.Labels)
	assert.Empty(t, data.Error)

	rec, data = post(t, router, `{"tokens":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, data.Error)

	rec, data = post(t, router, `{"tokens":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no tokens", data.Error)
}

func TestDepParserHandlerMethod(t *testing.T) {
	router := NewRouter(testParser(t))
	req := httptest.NewRequest(http.MethodGet, "/dep/parse", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPropertiesFlag(t *testing.T) {
	p := make(properties)
	require.NoError(t, p.Set("hiddenSize=10"))
	require.NoError(t, p.Set(" dropProb = 0.1 "))
	assert.Equal(t, properties{"hiddenSize": "10", "dropProb": "0.1"}, p)
	assert.Error(t, p.Set("hiddenSize"))
	assert.Error(t, p.Set("=1"))
}

func TestParseCmdOverrides(t *testing.T) {
	defer func() {
		overrides = make(properties)
		cpos = false
	}()
	overrides = make(properties)
	cmd := ParseCmd()
	require.NoError(t, cmd.Flag.Parse([]string{"-set", "hiddenSize=10", "-set", "dropProb=0.1", "-cpos"}))
	assert.Equal(t, map[string]string{"hiddenSize": "10", "dropProb": "0.1"}, cmd.Flag.Lookup("set").Value.Get())

	conf, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, conf.HiddenSize)
	assert.Equal(t, 0.1, conf.DropProb)
	assert.True(t, conf.CPOS)

	require.NoError(t, cmd.Flag.Parse([]string{"-set", "hiddenSize=ten"}))
	_, err = LoadConfig()
	assert.Error(t, err)
}
