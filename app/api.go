package app

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"nndep/nlp/parser/dependency/nndep"
	"nndep/nlp/types"
)

var apiAddr string

type Token struct {
	Word string `json:"word"`
	POS  string `json:"pos"`
}

type Request struct {
	Tokens []Token `json:"tokens"`
}

type Data struct {
	Heads  []int    `json:"heads,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func respondWithJSON(resp http.ResponseWriter, code int, payload Data) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	if err := json.NewEncoder(resp).Encode(payload); err != nil {
		glog.Errorf("Writing response: %v", err)
	}
}

// DepParserHandler parses one tagged sentence per request.
func DepParserHandler(parser *nndep.Parser) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		request := Request{}
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			respondWithJSON(resp, http.StatusBadRequest, Data{Error: err.Error()})
			return
		}
		if len(request.Tokens) == 0 {
			respondWithJSON(resp, http.StatusBadRequest, Data{Error: "no tokens"})
			return
		}
		sent := make(types.TaggedSentence, len(request.Tokens))
		for i, tok := range request.Tokens {
			sent[i] = types.TaggedToken{Token: tok.Word, POS: tok.POS}
		}
		tree, err := parser.Parse(sent)
		if err != nil {
			respondWithJSON(resp, http.StatusInternalServerError, Data{Error: err.Error()})
			return
		}
		data := Data{
			Heads:  make([]int, tree.N()),
			Labels: make([]string, tree.N()),
		}
		for k := 1; k <= tree.N(); k++ {
			data.Heads[k-1] = tree.Head(k)
			data.Labels[k-1] = tree.Label(k)
		}
		respondWithJSON(resp, http.StatusOK, data)
	}
}

func NewRouter(parser *nndep.Parser) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/dep/parse", DepParserHandler(parser)).Methods(http.MethodPost)
	return router
}

func StartAPIServer(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"m"}); err != nil {
		return err
	}
	conf, err := LoadConfig()
	if err != nil {
		return err
	}
	parser, err := nndep.LoadParser(modelFile, conf)
	if err != nil {
		return err
	}
	glog.Infof("Listening on %s", apiAddr)
	return errors.Wrap(http.ListenAndServe(apiAddr, NewRouter(parser)), "api server")
}

func APIServerCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       StartAPIServer,
		UsageLine: "api",
		Short:     "start api server",
		Long: `
listen to parse requests

	$ ./nndep api -m <model file> [options]

	POST /dep/parse {"tokens": [{"word": "John", "pos": "NNP"}, ...]}
	-> {"heads": [...], "labels": [...]}

`,
		Flag: *flag.NewFlagSet("api", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&modelFile, "m", "", "Model file")
	cmd.Flag.StringVar(&configFile, "cfg", "", "Optional - Configuration (.properties or .yaml)")
	cmd.Flag.Var(overrides, "set", "Configuration override key=value (repeatable)")
	cmd.Flag.StringVar(&apiAddr, "addr", ":8000", "Listen address")
	return cmd
}
