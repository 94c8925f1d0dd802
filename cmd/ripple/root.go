// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/Melchoirr/Ripple/pkg/logging"
)

// --- Global Command Flags ---
var (
	logJSON       bool
	logQuiet      bool
	logDebug      bool
	traceStdout   bool
	metricsStdout bool

	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "ripple",
		Short: "A reactive dataflow engine: compile a Ripple program and drive it",
		Long: `Ripple compiles a reactive dataflow program (sources, streams, sinks)
and propagates values through it in rank order with glitch-free semantics.

  ripple run program.json             # compile, print initial sink values
  ripple watch program.json -w a=src  # keep the engine alive against files`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if logDebug {
				level = logging.LevelDebug
			}
			logger = logging.New(logging.Config{Level: level, JSON: logJSON, Quiet: logQuiet})

			shutdown, err := setupTelemetry(cmd.Context(), traceStdout, metricsStdout)
			if err != nil {
				return err
			}
			telemetryShutdown = shutdown
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&logQuiet, "quiet", false, "suppress log output")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "log at Debug level")
	rootCmd.PersistentFlags().BoolVar(&traceStdout, "trace", false, "print OpenTelemetry spans to stdout")
	rootCmd.PersistentFlags().BoolVar(&metricsStdout, "metrics", false, "print OpenTelemetry metrics to stdout on exit")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}
