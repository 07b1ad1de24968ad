package main

import (
	"fmt"
	"os"

	"github.com/burrowtool/burrow/pkg/errors"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if remedy := errors.Remedy(err); remedy != "" {
			fmt.Fprintf(os.Stderr, "Try: %s\n", remedy)
		}
		os.Exit(1)
	}
}
