// Command carprice estimates used car resale prices from a trained model,
// either interactively in the terminal or as an HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/mimir-aip/carprice/pkg/models"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Failures have already been rendered by the command
		if _, ok := models.AsFailure(err); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
