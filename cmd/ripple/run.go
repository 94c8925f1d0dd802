// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/compiler"
	"github.com/Melchoirr/Ripple/internal/engine"
	"github.com/Melchoirr/Ripple/internal/program"
	rcsv "github.com/Melchoirr/Ripple/internal/source/csv"
)

var (
	runDump   bool
	runPushes []string

	runCmd = &cobra.Command{
		Use:   "run [program.json]",
		Short: "Compile a program and print its sink values",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
)

func init() {
	runCmd.Flags().BoolVar(&runDump, "dump", false, "print every node, not just sinks")
	runCmd.Flags().StringArrayVar(&runPushes, "push", nil,
		`push a value before printing, repeatable: --push name='"hello"' --push rate=2`)
}

func runRun(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %q: %w", args[0], err)
	}
	defer f.Close()

	p, err := program.Decode(f)
	if err != nil {
		return err
	}

	eng, diags, err := compiler.Compile(p, compiler.Options{Logger: logger.Slog(), CSV: rcsv.New()})
	for _, d := range diags {
		logger.Warn("diagnostic", "message", d.Error())
	}
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, push := range runPushes {
		name, raw, ok := strings.Cut(push, "=")
		if !ok {
			return fmt.Errorf("malformed --push %q, expected name=value", push)
		}
		v, err := parseValue(raw)
		if err != nil {
			return err
		}
		if err := eng.PushEvent(ctx, name, v); err != nil {
			return fmt.Errorf("pushing %s: %w", name, err)
		}
	}

	printSnapshot(eng, p, runDump)
	if telemetryShutdown != nil {
		return telemetryShutdown(context.Background())
	}
	return nil
}

// printSnapshot prints every sink's current value, or every node's if all is
// set.
func printSnapshot(eng *engine.Engine, p ast.Program, all bool) {
	if all {
		for _, n := range eng.Dump() {
			status := ""
			if n.Failed {
				status = " (poisoned)"
			}
			fmt.Printf("%-20s %-8s rank=%-3d %s%s\n", n.Name, n.Kind, n.Rank, formatValue(n.Value), status)
		}
		return
	}
	for _, s := range p.Sinks() {
		v, _ := eng.Read(s.Name)
		fmt.Printf("%s = %s\n", s.Name, formatValue(v))
	}
}
