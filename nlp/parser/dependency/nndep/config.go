package nndep

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nndep/nlp/types"
	"nndep/util/conf"
)

// Config holds the training and parsing parameters.
type Config struct {
	TrainingThreads       int
	WordCutOff            int
	InitRange             float64
	MaxIter               int
	MaxTime               time.Duration
	BatchSize             int
	AdaEps                float64
	AdaAlpha              float64
	RegParameter          float64
	DropProb              float64
	HiddenSize            int
	EmbeddingSize         int
	NumPreComputed        int
	NumCachedLRU          int
	EvalPerIter           int
	ClearGradientsPerIter int
	SaveIntermediate      bool
	CPOS                  bool
	Unlabeled             bool
	NoPunc                bool
	SingleRoot            bool
	TrainEmbeddings       bool
	Seed                  int64
	PunctuationTags       []string
}

// UnlabeledLabel replaces every non-root label in unlabeled mode.
const UnlabeledLabel = "dep"

func DefaultConfig() *Config {
	return &Config{
		TrainingThreads:  1,
		WordCutOff:       1,
		InitRange:        0.01,
		MaxIter:          20000,
		BatchSize:        10000,
		AdaEps:           1e-6,
		AdaAlpha:         0.01,
		RegParameter:     1e-8,
		DropProb:         0.5,
		HiddenSize:       200,
		EmbeddingSize:    50,
		NumPreComputed:   100000,
		NumCachedLRU:     10000,
		EvalPerIter:      100,
		SaveIntermediate: true,
		NoPunc:           true,
		SingleRoot:       true,
		TrainEmbeddings:  true,
		Seed:             1,
		PunctuationTags:  append([]string(nil), types.DefaultPunctuationTags...),
	}
}

type setter func(c *Config, value string) error

func intSetter(field func(c *Config) *int) setter {
	return func(c *Config, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func floatSetter(field func(c *Config) *float64) setter {
	return func(c *Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func boolSetter(field func(c *Config) *bool) setter {
	return func(c *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

var setters = map[string]setter{
	"trainingThreads":       intSetter(func(c *Config) *int { return &c.TrainingThreads }),
	"wordCutOff":            intSetter(func(c *Config) *int { return &c.WordCutOff }),
	"initRange":             floatSetter(func(c *Config) *float64 { return &c.InitRange }),
	"maxIter":               intSetter(func(c *Config) *int { return &c.MaxIter }),
	"batchSize":             intSetter(func(c *Config) *int { return &c.BatchSize }),
	"adaEps":                floatSetter(func(c *Config) *float64 { return &c.AdaEps }),
	"adaAlpha":              floatSetter(func(c *Config) *float64 { return &c.AdaAlpha }),
	"regParameter":          floatSetter(func(c *Config) *float64 { return &c.RegParameter }),
	"dropProb":              floatSetter(func(c *Config) *float64 { return &c.DropProb }),
	"hiddenSize":            intSetter(func(c *Config) *int { return &c.HiddenSize }),
	"embeddingSize":         intSetter(func(c *Config) *int { return &c.EmbeddingSize }),
	"numPreComputed":        intSetter(func(c *Config) *int { return &c.NumPreComputed }),
	"numCachedLRU":          intSetter(func(c *Config) *int { return &c.NumCachedLRU }),
	"evalPerIter":           intSetter(func(c *Config) *int { return &c.EvalPerIter }),
	"clearGradientsPerIter": intSetter(func(c *Config) *int { return &c.ClearGradientsPerIter }),
	"saveIntermediate":      boolSetter(func(c *Config) *bool { return &c.SaveIntermediate }),
	"cPOS":                  boolSetter(func(c *Config) *bool { return &c.CPOS }),
	"unlabeled":             boolSetter(func(c *Config) *bool { return &c.Unlabeled }),
	"noPunc":                boolSetter(func(c *Config) *bool { return &c.NoPunc }),
	"singleRoot":            boolSetter(func(c *Config) *bool { return &c.SingleRoot }),
	"trainEmbeddings":       boolSetter(func(c *Config) *bool { return &c.TrainEmbeddings }),
	"seed": func(c *Config, value string) error {
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = v
		return nil
	},
	// maxTime is a Go duration ("90m") or a number of seconds
	"maxTime": func(c *Config, value string) error {
		if secs, err := strconv.ParseFloat(value, 64); err == nil {
			c.MaxTime = time.Duration(secs * float64(time.Second))
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		c.MaxTime = d
		return nil
	},
	"punctuationTags": func(c *Config, value string) error {
		c.PunctuationTags = strings.Fields(value)
		return nil
	},
}

// Set parses value into the parameter named key.
func (c *Config) Set(key, value string) error {
	set, exists := setters[key]
	if !exists {
		return errors.Errorf("unknown configuration key %q", key)
	}
	if err := set(c, strings.TrimSpace(value)); err != nil {
		return errors.Wrapf(err, "configuration key %q", key)
	}
	return nil
}

// Apply sets every key of props, in key order.
func (c *Config) Apply(props map[string]string) error {
	for _, key := range conf.Keys(props) {
		if err := c.Set(key, props[key]); err != nil {
			return err
		}
	}
	return c.Validate()
}

// LoadConfig reads a properties or YAML file over the defaults.
func LoadConfig(filename string) (*Config, error) {
	c := DefaultConfig()
	if filename == "" {
		return c, nil
	}
	props, err := conf.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(props); err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.TrainingThreads < 1:
		return errors.New("trainingThreads must be positive")
	case c.BatchSize < 1:
		return errors.New("batchSize must be positive")
	case c.HiddenSize < 1 || c.EmbeddingSize < 1:
		return errors.New("hiddenSize and embeddingSize must be positive")
	case c.DropProb < 0 || c.DropProb >= 1:
		return errors.New("dropProb must be in [0, 1)")
	case c.NumPreComputed < 0 || c.NumCachedLRU < 0:
		return errors.New("numPreComputed and numCachedLRU must not be negative")
	}
	return nil
}

func (c *Config) Punctuation() types.TagSet {
	return types.NewTagSet(c.PunctuationTags)
}

func (c *Config) Log() {
	glog.Infoln("Configuration")
	glog.Infof("Training Threads:\t%d", c.TrainingThreads)
	glog.Infof("Word Cut Off:\t\t%d", c.WordCutOff)
	glog.Infof("Init Range:\t\t%g", c.InitRange)
	glog.Infof("Max Iter:\t\t%d", c.MaxIter)
	glog.Infof("Max Time:\t\t%v", c.MaxTime)
	glog.Infof("Batch Size:\t\t%d", c.BatchSize)
	glog.Infof("AdaGrad Alpha:\t\t%g", c.AdaAlpha)
	glog.Infof("AdaGrad Eps:\t\t%g", c.AdaEps)
	glog.Infof("Reg Parameter:\t\t%g", c.RegParameter)
	glog.Infof("Drop Prob:\t\t%g", c.DropProb)
	glog.Infof("Hidden Size:\t\t%d", c.HiddenSize)
	glog.Infof("Embedding Size:\t\t%d", c.EmbeddingSize)
	glog.Infof("Num PreComputed:\t%d", c.NumPreComputed)
	glog.Infof("Num Cached LRU:\t\t%d", c.NumCachedLRU)
	glog.Infof("Eval Per Iter:\t\t%d", c.EvalPerIter)
	glog.Infof("Clear Gradients:\t%d", c.ClearGradientsPerIter)
	glog.Infof("Save Intermediate:\t%v", c.SaveIntermediate)
	glog.Infof("CPOS:\t\t\t%v", c.CPOS)
	glog.Infof("Unlabeled:\t\t%v", c.Unlabeled)
	glog.Infof("No Punc:\t\t%v", c.NoPunc)
	glog.Infof("Single Root:\t\t%v", c.SingleRoot)
	glog.Infof("Train Embeddings:\t%v", c.TrainEmbeddings)
	glog.Infof("Seed:\t\t\t%d", c.Seed)
	glog.Infof("Punctuation Tags:\t%v", c.PunctuationTags)
}
