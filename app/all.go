package app

import (
	"os"
	"runtime"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"yasl/alg/search"
	"yasl/util"
)

const (
	NUM_CPUS_FLAG = "cpus"
)

var (
	CPUs int
)

func AppCommands() []*commander.Command {
	return []*commander.Command{
		TrainCmd(),
		TagCmd(),
		EvalCmd(),
	}
}

func AllCommands() *commander.Command {
	cmd := &commander.Command{
		UsageLine:   os.Args[0],
		Short:       "sequence labeling with a history-aware beam decoder",
		Subcommands: AppCommands(),
		Flag:        *flag.NewFlagSet("app", flag.ExitOnError),
	}
	for _, app := range cmd.Subcommands {
		app.Run = NewAppWrapCommand(app.Run)
		app.Flag.IntVar(&CPUs, NUM_CPUS_FLAG, 0, "Max CPUS to use (runtime.GOMAXPROCS); 0 = all")
		app.Flag.BoolVar(&allOut, "v", false, "Verbose (debug) logging")
		app.Flag.BoolVar(&search.AgendaOut, "agenda", false, "Log every beam agenda (requires -v)")
	}
	return cmd
}

func InitCommand(cmd *commander.Command, args []string) error {
	logger, err := util.NewLogger(allOut)
	if err != nil {
		return err
	}
	util.SetLogger(logger)

	maxCPUs := runtime.NumCPU()
	if CPUs > maxCPUs {
		util.Logger().Warnf("Number of CPUs capped to all available (%d)", maxCPUs)
		CPUs = 0
	}
	if CPUs == 0 {
		CPUs = maxCPUs
	}
	runtime.GOMAXPROCS(CPUs)
	return nil
}

func NewAppWrapCommand(f func(cmd *commander.Command, args []string) error) func(cmd *commander.Command, args []string) error {
	wrapped := func(cmd *commander.Command, args []string) error {
		if err := InitCommand(cmd, args); err != nil {
			return err
		}
		defer util.Logger().Sync()
		return f(cmd, args)
	}

	return wrapped
}
