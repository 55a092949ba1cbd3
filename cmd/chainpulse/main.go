// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package main

import (
	"fmt"
	"os"
)

// Version is stamped by the build.
var Version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
