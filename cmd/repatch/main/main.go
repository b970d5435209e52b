package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/repatch/cmd/repatch"
	"github.com/arthur-debert/repatch/pkg/output/styles"
)

func main() {
	rootCmd := repatch.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
