package main

import (
	"fmt"
	"os"
	"runtime"

	"imagededup/logging"
	"imagededup/signalhandler"
)

func main() {
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	cmd := newRootCommand()
	err := cmd.Execute()
	logging.CloseLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor("Error:"), err)
		os.Exit(1)
	}
}
