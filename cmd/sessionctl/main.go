// Command sessionctl inspects and changes the shell's persisted session from
// the command line. It goes through the same holder as the shell, so the
// single-writer rule for the credential holds here too.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
