package app

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"nndep/eval"
	"nndep/nlp/parser/dependency"
	"nndep/nlp/types"
)

var (
	punctTags string
	perLabel  bool
)

func DepEvalConfigOut() {
	glog.Infoln("Data")
	glog.Infof("Parsed result file:\t%s", input)
	glog.Infof("Gold file:\t\t%s", inputGold)
	glog.Infof("Punctuation tags:\t%s", punctTags)
}

// PrintDepEval writes attachment scores with and without punctuation,
// and optionally per-label precision, recall and F1.
func PrintDepEval(e *eval.DependencyEval, labels bool) {
	fmt.Printf("All tokens:\t%v\n", &e.All)
	fmt.Printf("No punctuation:\t%v\n", &e.NoPunc)
	if !labels {
		return
	}
	fmt.Printf("%-16s %8s %8s %8s %8s\n", "label", "gold", "P", "R", "F1")
	for _, name := range e.LabelNames() {
		r := e.Labels[name]
		fmt.Printf("%-16s %8d %8.2f %8.2f %8.2f\n", name, r.ConditionPositives(),
			100*r.Precision(), 100*r.Recall(), 100*r.F1())
	}
}

func DepEvalConll(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"p", "g"}); err != nil {
		return err
	}
	DepEvalConfigOut()
	pred, err := readConll(input)
	if err != nil {
		return err
	}
	gold, err := readConll(inputGold)
	if err != nil {
		return err
	}
	if len(pred) != len(gold) {
		return errors.Errorf("evaluation set sizes are different: %d parsed, %d gold", len(pred), len(gold))
	}

	var (
		predTrees = make([]*dependency.Tree, len(pred))
		goldTrees = make([]*dependency.Tree, len(gold))
		goldTags  = make([][]string, len(gold))
	)
	for i := range gold {
		predTrees[i] = pred[i].Tree()
		goldTrees[i] = gold[i].Tree()
		goldTags[i] = gold[i].Tags(cpos)
	}
	result, err := eval.EvaluateDependencies(goldTrees, predTrees, goldTags, strings.Fields(punctTags))
	if err != nil {
		return err
	}
	PrintDepEval(result, perLabel)
	return nil
}

func DepEvalCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DepEvalConll,
		UsageLine: "depeval <file options> [arguments]",
		Short:     "runs dependency eval",
		Long: `
runs dependency eval

	$ ./nndep depeval -p <conll> -g <conll> [options]

`,
		Flag: *flag.NewFlagSet("depeval", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&input, "p", "", "Parse Result Conll File")
	cmd.Flag.StringVar(&inputGold, "g", "", "Gold Conll File")
	cmd.Flag.StringVar(&punctTags, "punct", strings.Join(types.DefaultPunctuationTags, " "), "Punctuation tags, space separated")
	cmd.Flag.BoolVar(&cpos, "cpos", false, "Judge punctuation by the gold CPOSTAG column")
	cmd.Flag.BoolVar(&perLabel, "labels", false, "Print per-label scores")
	return cmd
}
