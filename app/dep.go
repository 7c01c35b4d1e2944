package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"nndep/nlp/format/embedding"
	"nndep/nlp/parser/dependency/nndep"
)

func DepConfigOut() {
	glog.Infoln("Data")
	glog.Infof("Train file (conll):\t%s", tConll)
	glog.Infof("Dev file (conll):\t%s", devConll)
	glog.Infof("Test file (conll):\t%s", testConll)
	glog.Infof("Embeddings file:\t%s", embedFile)
	glog.Infof("Model file:\t\t%s", modelFile)
	glog.Infof("Config file:\t\t%s", configFile)
	glog.Infof("Limit:\t\t\t%d", limit)
}

func DepTrain(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"tc", "m"}); err != nil {
		return err
	}
	conf, err := LoadConfig()
	if err != nil {
		return err
	}
	DepConfigOut()

	trainConll, err := readConll(tConll)
	if err != nil {
		return err
	}
	var embed *embedding.Embeddings
	if embedFile != "" {
		if embed, err = embedding.ReadFile(embedFile); err != nil {
			return err
		}
		glog.Infof("Read %d embeddings of dimension %d", embed.Len(), embed.Dim)
	}

	trainer := nndep.NewTrainer(conf)
	if err := trainer.Setup(TrainSentences(trainConll, conf.CPOS), embed); err != nil {
		return err
	}
	if devConll != "" {
		dev, err := readConll(devConll)
		if err != nil {
			return err
		}
		trainer.SetDev(TrainSentences(dev, conf.CPOS))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	start := time.Now()
	err = trainer.Train(ctx, modelFile)
	switch {
	case errors.Is(err, context.Canceled):
		glog.Warningf("Training stopped by signal after %v", time.Since(start))
	case err != nil:
		return err
	default:
		glog.Infof("Training finished in %v; best dev UAS %.4f", time.Since(start), trainer.BestUAS())
	}

	if testConll == "" {
		return nil
	}
	parser, err := nndep.LoadParser(modelFile, conf)
	if err != nil {
		return err
	}
	return evaluateFile(context.Background(), parser, testConll, "")
}

func TrainCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DepTrain,
		UsageLine: "train <file options> [arguments]",
		Short:     "trains a neural network dependency parser",
		Long: `
trains a neural network dependency parser

	$ ./nndep train -tc <train conll> -m <model file> [-dc <dev conll>] [-e <embeddings>] [-cfg <config>] [options]

Model files ending in .gz are compressed. Configuration keys may be
overridden with repeated -set key=value flags.
`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&tConll, "tc", "", "Training Conll File")
	cmd.Flag.StringVar(&devConll, "dc", "", "Optional - Dev Conll File (for model selection)")
	cmd.Flag.StringVar(&testConll, "test", "", "Optional - Test Conll File, evaluated after training")
	cmd.Flag.StringVar(&modelFile, "m", "", "Output model file")
	cmd.Flag.StringVar(&embedFile, "e", "", "Optional - Pretrained word embeddings file")
	cmd.Flag.StringVar(&configFile, "cfg", "", "Optional - Training configuration (.properties or .yaml)")
	cmd.Flag.Var(overrides, "set", "Configuration override key=value (repeatable)")
	cmd.Flag.BoolVar(&cpos, "cpos", false, "Use the CPOSTAG column instead of POSTAG")
	cmd.Flag.IntVar(&limit, "limit", 0, "limit training set")
	return cmd
}
