package app

import (
	stdflag "flag"
	"os"
	"runtime"
	"strconv"

	"github.com/golang/glog"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

const (
	NUM_CPUS_FLAG = "cpus"
)

var (
	CPUs      int
	Verbosity int
	LogDir    string
)

var AppCommands = []*commander.Command{
	TrainCmd(),
	ParseCmd(),
	DepEvalCmd(),
	APIServerCmd(),
}

func AllCommands() *commander.Command {
	cmd := &commander.Command{
		UsageLine:   os.Args[0] + " train|parse|depeval|api",
		Short:       "neural network transition-based dependency parser",
		Subcommands: AppCommands,
		Flag:        *flag.NewFlagSet("app", flag.ExitOnError),
	}
	for _, app := range cmd.Subcommands {
		app.Run = NewAppWrapCommand(app.Run)
		app.Flag.IntVar(&CPUs, NUM_CPUS_FLAG, 0, "Max CPUS to use (runtime.GOMAXPROCS); 0 = all")
		app.Flag.IntVar(&Verbosity, "v", 0, "Log verbosity (glog -v)")
		app.Flag.StringVar(&LogDir, "log_dir", "", "Write log files to this directory instead of stderr")
	}
	return cmd
}

// InitCommand caps GOMAXPROCS and forwards the logging flags to glog.
func InitCommand(cmd *commander.Command, args []string) {
	maxCPUs := runtime.NumCPU()
	if CPUs > maxCPUs {
		glog.Warningf("Number of CPUs capped to all available (%d)", maxCPUs)
		CPUs = 0
	}
	if CPUs == 0 {
		CPUs = maxCPUs
	}
	runtime.GOMAXPROCS(CPUs)

	stdflag.Set("v", strconv.Itoa(Verbosity))
	if LogDir != "" {
		stdflag.Set("log_dir", LogDir)
	} else {
		stdflag.Set("logtostderr", "true")
	}
}

func NewAppWrapCommand(f func(cmd *commander.Command, args []string) error) func(cmd *commander.Command, args []string) error {
	wrapped := func(cmd *commander.Command, args []string) error {
		InitCommand(cmd, args)
		defer glog.Flush()
		return f(cmd, args)
	}
	return wrapped
}
