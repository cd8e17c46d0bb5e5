package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/lineprofile/internal/version"
)

func main() {
	flag.Usage = func() { printUsage(os.Stdout) }
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), flag.Args()[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(command string, args []string, stdout, stderr io.Writer) int {
	var err error
	switch command {
	case "eval":
		err = runEval(args, stdout)
	case "guess":
		err = runGuess(args, stdout)
	case "sweep":
		err = runSweep(args, stdout)
	case "runs":
		err = runRuns(args, stdout)
	case "serve":
		err = runServe(args)
	case "version":
		fmt.Fprintf(stdout, "hill5 version %s\n", version.String())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `hill5 - Hill5 infall line-profile model

Usage: hill5 <command> [options]

Commands:
  eval       Evaluate the model on a velocity range and print CSV
  guess      Estimate starting parameters from an observed spectrum (CSV)
  sweep      Evaluate the model across values of one parameter
  runs       List or delete recorded evaluations
  serve      Serve the model over gRPC
  version    Show version
  help       Show this help message

Model Flags (eval, sweep):
  --config <file>      JSON or YAML config file
  --tau, --v-lsr, --v-infall, --sigma, --tpeak
                       Hill5 parameters (override config)
  --tbg <K>            Background temperature (default 2.73)
  --rest-hz <Hz>       Line rest frequency (default HCO+ 1-0)
  --range <spec>       Velocity range min:max:step in km/s

Examples:
  # Default infall profile
  hill5 eval

  # Plot a profile and record it
  hill5 eval --v-infall 0.3 --plot --record

  # Blue/red asymmetry as a function of infall speed
  hill5 sweep --param v_infall --values 0:1:0.1

  # Starting guess from an observed spectrum
  hill5 guess --in spectrum.csv`)
}
