// Command swiftbench is the executable entry point: it hands off to
// internal/cli and maps the returned error to a process exit code.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/cli"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}

	var configErr *bmerrors.ConfigError
	if errors.As(err, &configErr) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var benchErr *bmerrors.BenchmarkError
	if errors.As(err, &benchErr) {
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
