// Quill — file-backed encrypted secret store for application configuration.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
