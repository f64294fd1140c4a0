// Command numsvc serves descriptive statistics and prime factorization over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "numsvc:", err)
		os.Exit(1)
	}
}
