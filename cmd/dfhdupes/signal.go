package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler returns a channel closed on the first SIGINT or SIGTERM.
// In-flight hashes stop at their next chunk and the partial report is still
// printed. A second signal exits at once.
func setupSignalHandler() <-chan struct{} {
	return watchSignals(os.Stderr, func() { os.Exit(exitInterrupted) })
}

func watchSignals(notices io.Writer, forceExit func()) <-chan struct{} {
	shutdown := make(chan struct{})
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(notices, "\n%s: received %v, finishing current file (repeat to abort)\n", appName, sig)
		close(shutdown)

		<-sigChan
		signal.Stop(sigChan)
		forceExit()
	}()

	return shutdown
}
