package app

import (
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/pkg/errors"

	"nndep/nlp/format/conll"
	"nndep/nlp/parser/dependency/nndep"
	"nndep/nlp/types"
)

var (
	// file names
	tConll     string
	devConll   string
	testConll  string
	input      string
	inputGold  string
	outConll   string
	modelFile  string
	embedFile  string
	configFile string

	// processing options
	limit     int
	cpos      bool
	overrides = make(properties)
)

// properties collects repeated -set key=value flags.
type properties map[string]string

func (p properties) String() string {
	strs := make([]string, 0, len(p))
	for k, v := range p {
		strs = append(strs, k+"="+v)
	}
	return strings.Join(strs, ",")
}

func (p properties) Get() interface{} {
	return map[string]string(p)
}

func (p properties) Set(value string) error {
	sep := strings.Index(value, "=")
	if sep <= 0 {
		return errors.Errorf("expected key=value, got %q", value)
	}
	p[strings.TrimSpace(value[:sep])] = strings.TrimSpace(value[sep+1:])
	return nil
}

func VerifyExists(filename string) bool {
	_, err := os.Stat(filename)
	if err != nil {
		glog.Errorf("Error accessing file %s: %v", filename, err)
		return false
	}
	return true
}

func VerifyFlags(cmd *commander.Command, required []string) error {
	for _, name := range required {
		f := cmd.Flag.Lookup(name)
		if f == nil || f.Value.String() == "" {
			cmd.Usage()
			return errors.Errorf("required flag -%s not set", name)
		}
	}
	return nil
}

// LoadConfig reads the -cfg file and applies -set overrides and -cpos.
func LoadConfig() (*nndep.Config, error) {
	if configFile != "" && !VerifyExists(configFile) {
		return nil, errors.Errorf("configuration file %s not found", configFile)
	}
	conf, err := nndep.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if cpos {
		overrides["cPOS"] = "true"
	}
	if err := conf.Apply(overrides); err != nil {
		return nil, err
	}
	return conf, nil
}

func readConll(filename string) (conll.Sentences, error) {
	if !VerifyExists(filename) {
		return nil, errors.Errorf("conll file %s not found", filename)
	}
	sents, err := conll.ReadFile(filename, limit)
	if err != nil {
		return nil, err
	}
	glog.Infof("Read %d sentences from %s", len(sents), filename)
	return sents, nil
}

// TrainSentences pairs each sentence's tags with its HEAD/DEPREL tree.
func TrainSentences(sents conll.Sentences, cpos bool) []nndep.TrainSentence {
	retval := make([]nndep.TrainSentence, len(sents))
	for i, sent := range sents {
		retval[i] = nndep.TrainSentence{
			Sentence: sent.Tagged(cpos),
			Tree:     sent.Tree(),
		}
	}
	return retval
}

func TaggedSentences(sents conll.Sentences, cpos bool) []types.TaggedSentence {
	retval := make([]types.TaggedSentence, len(sents))
	for i, sent := range sents {
		retval[i] = sent.Tagged(cpos)
	}
	return retval
}
