package app

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"nndep/eval"
	"nndep/nlp/format/conll"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/parser/dependency/nndep"
)

var scoreInput bool

// evaluateFile parses a gold conll file and prints its scores. When out
// is set the parsed sentences are written there.
func evaluateFile(ctx context.Context, parser *nndep.Parser, filename, out string) error {
	sents, err := readConll(filename)
	if err != nil {
		return err
	}
	cposTags := parser.Config.CPOS
	start := time.Now()
	trees, err := parser.ParseCorpus(ctx, TaggedSentences(sents, cposTags), parser.Config.TrainingThreads)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	glog.Infof("Parsed %d sentences in %v (%.1f sents/s)", len(sents), elapsed, float64(len(sents))/elapsed.Seconds())

	if out != "" {
		parsed := make([]conll.Sentence, len(sents))
		for i, sent := range sents {
			parsed[i] = sent.WithTree(trees[i])
		}
		if err := conll.WriteFile(out, parsed); err != nil {
			return err
		}
		glog.Infof("Wrote %s", out)
	}
	if out != "" && !scoreInput {
		return nil
	}

	gold := make([]*dependency.Tree, len(sents))
	tags := make([][]string, len(sents))
	for i, sent := range sents {
		gold[i] = sent.Tree()
		tags[i] = sent.Tags(cposTags)
	}
	result, err := eval.EvaluateDependencies(gold, trees, tags, parser.Config.PunctuationTags)
	if err != nil {
		return err
	}
	PrintDepEval(result, false)
	return nil
}

func DepParse(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"m", "in", "oc"}); err != nil {
		return err
	}
	conf, err := LoadConfig()
	if err != nil {
		return err
	}
	glog.Infof("Model file:\t\t%s", modelFile)
	glog.Infof("Input file (conll):\t%s", input)
	glog.Infof("Out (conll) file:\t%s", outConll)
	parser, err := nndep.LoadParser(modelFile, conf)
	if err != nil {
		return err
	}
	return errors.Wrapf(evaluateFile(context.Background(), parser, input, outConll), "parsing %s", input)
}

func ParseCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DepParse,
		UsageLine: "parse <file options> [arguments]",
		Short:     "parses tagged sentences with a trained model",
		Long: `
parses tagged sentences with a trained model

	$ ./nndep parse -m <model file> -in <input conll> -oc <out conll> [-score] [options]

Only the FORM and POSTAG (or CPOSTAG with -cpos) columns of the input are
used. With -score the input's HEAD/DEPREL columns are taken as gold.
`,
		Flag: *flag.NewFlagSet("parse", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&modelFile, "m", "", "Model file")
	cmd.Flag.StringVar(&input, "in", "", "Input Conll File")
	cmd.Flag.StringVar(&outConll, "oc", "", "Output Conll File")
	cmd.Flag.StringVar(&configFile, "cfg", "", "Optional - Configuration (.properties or .yaml)")
	cmd.Flag.Var(overrides, "set", "Configuration override key=value (repeatable)")
	cmd.Flag.BoolVar(&cpos, "cpos", false, "Use the CPOSTAG column instead of POSTAG")
	cmd.Flag.BoolVar(&scoreInput, "score", false, "Score the parse against the input's gold trees")
	cmd.Flag.IntVar(&limit, "limit", 0, "limit input sentences")
	return cmd
}
