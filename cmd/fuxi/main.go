package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitBadScript    = 3
	ExitFetchFailed  = 4
	ExitConfigError  = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "inspect":
		return runInspect(cmdArgs)
	case "fetch":
		return runFetch(cmdArgs)
	case "serve":
		return runServe(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: fuxi <command> [options]

Commands:
  inspect   Parse a wget script and list the datasets it references
  fetch     Download all datasets from a script and bundle them into a zip
  serve     Run the job-tracking HTTP service

Run 'fuxi <command> -h' for command-specific help.`)
}
