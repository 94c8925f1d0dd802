// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("ripple: %v", err)
	}
}
