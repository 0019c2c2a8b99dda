package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/taskrank/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cycleErr *cli.CycleError
		if errors.As(err, &cycleErr) {
			os.Exit(3)
		}
		var invalidErr *cli.InvalidTasksError
		if errors.As(err, &invalidErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
