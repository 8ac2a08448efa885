package main

import (
	"fmt"
	"os"

	"github.com/hayeah/repocat"
)

func main() {
	run, err := repocat.InitMain()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing repocat: %v\n", err)
		os.Exit(1)
	}
	run()
}
