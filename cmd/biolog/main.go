// Command biolog is the terminal front end: log workouts and meals, rebuild
// and print the daily summary, and run one-off estimates.
// Usage: go run ./cmd/biolog --help
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
