package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/dimacs"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/dpll"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/engine"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/trace"
)

type config struct {
	traceFile string
	engineBin string
	workDir   string
	verbose   bool
	debug     bool
}

func addFlags(fs *pflag.FlagSet, cfg *config) {
	fs.StringVar(&cfg.traceFile, "trace", "master_trace.txt", "path of the master execution trace file")
	fs.StringVar(&cfg.engineBin, "engine", "", "external inference engine binary (default: built-in engine)")
	fs.StringVar(&cfg.workDir, "workdir", "data", "directory holding the engine trigger/output files")
	fs.BoolVar(&cfg.verbose, "verbose", false, "dump the trail at every decision")
	fs.BoolVar(&cfg.debug, "debug", false, "enable debug logging")
}

func newRootCmd() *cobra.Command {
	cfg := &config{}
	cmd := &cobra.Command{
		Use:   "dpll [flags] <instance.cnf>",
		Short: "DPLL search engine for CNF satisfiability",
		Long: "dpll systematically assigns truth values to the variables of a DIMACS\n" +
			"CNF formula, delegates constraint propagation to an inference engine,\n" +
			"and backtracks chronologically on conflict until it proves the formula\n" +
			"satisfiable or unsatisfiable.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, args[0])
		},
	}
	addFlags(cmd.Flags(), cfg)
	return cmd
}

func run(cmd *cobra.Command, cfg *config, instanceFile string) error {
	if cfg.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	formula, err := dimacs.Load(instanceFile)
	if err != nil {
		return fmt.Errorf("could not load instance: %w", err)
	}

	var eng engine.Engine
	if cfg.engineBin != "" {
		eng = engine.NewExecEngine(cfg.engineBin, nil, cfg.workDir, logrus.StandardLogger())
	} else {
		eng = engine.NewBCPEngine(formula)
	}

	rec := trace.New(instanceFile, logrus.StandardLogger())
	solver := dpll.NewSolver(formula, eng, rec, dpll.Options{Verbose: cfg.verbose})

	fmt.Printf("c variables:  %d\n", formula.NumVars)
	fmt.Printf("c clauses:    %d\n", len(formula.Clauses))

	t := time.Now()
	outcome, err := solver.Solve(cmd.Context())
	elapsed := time.Since(t)
	if err != nil {
		// No trace file on a fatal error: a search that never reached a
		// terminal outcome must not leave a partial trace in place.
		return err
	}

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c decisions:  %d\n", outcome.Decisions)
	fmt.Printf("c backtracks: %d\n", outcome.Backtracks)

	if outcome.Status == dpll.Satisfiable {
		fmt.Println("SAT")
		for i, b := range outcome.Model {
			fmt.Printf("%d = %s\n", i+1, sat.Lift(b))
		}
	} else {
		fmt.Println("UNSAT")
	}

	// Best effort: a trace-write failure is a warning, not an error.
	_ = rec.WriteFile(cfg.traceFile)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
