// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Intelhub.
//
// Usage:
//
//	go run . [flags]
//	./intelhub [command] [flags]
//
// Without a command the interactive menu starts. See --help for options.
package main

import (
	"errors"
	"os"

	"github.com/toeirei/intelhub/internal/logging"
	"github.com/toeirei/intelhub/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Rejections have already been explained to the user.
		if !errors.Is(err, cli.ErrRejected) {
			logging.Errorf("%v", err)
		}
		os.Exit(1)
	}
}
