// Command consolectl runs maintenance tasks against a console deployment.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "consolectl:", err)
		os.Exit(1)
	}
}
