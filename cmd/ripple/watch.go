// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/compiler"
	"github.com/Melchoirr/Ripple/internal/engine"
	"github.com/Melchoirr/Ripple/internal/program"
	rcsv "github.com/Melchoirr/Ripple/internal/source/csv"
	"github.com/Melchoirr/Ripple/internal/source/watch"
	"github.com/Melchoirr/Ripple/internal/value"
)

var (
	watchBindings []string
	watchInterval time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch [program.json]",
		Short: "Compile a program and re-propagate it as bound files change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
)

func init() {
	watchCmd.Flags().StringArrayVarP(&watchBindings, "watch", "w", nil,
		"bind a file to a source, repeatable: --watch temperature.txt=temperature")
	watchCmd.Flags().DurationVar(&watchInterval, "poll", 200*time.Millisecond,
		"how often to check sinks for updates and print changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %q: %w", args[0], err)
	}
	p, err := program.Decode(f)
	f.Close()
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

	w, err := watch.New(watch.Options{Logger: logger.Slog()})
	if err != nil {
		return err
	}
	defer w.Stop()

	for _, binding := range watchBindings {
		path, name, ok := strings.Cut(binding, "=")
		if !ok {
			return fmt.Errorf("malformed --watch %q, expected path=sourceName", binding)
		}
		if err := w.Add(path, name); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := w.Run(ctx, eng); err != nil && err != context.Canceled {
			logger.Error("watcher stopped", "error", err.Error())
		}
	}()

	logger.Info("watching", "bindings", len(watchBindings), "sinks", len(p.Sinks()))
	printSinkChanges(ctx, eng, p, watchInterval)

	if telemetryShutdown != nil {
		return telemetryShutdown(context.Background())
	}
	return nil
}

// printSinkChanges polls every sink at interval and prints a line whenever
// one's value changes, until ctx is canceled.
func printSinkChanges(ctx context.Context, eng *engine.Engine, p ast.Program, interval time.Duration) {
	last := make(map[string]value.Value, len(p.Sinks()))
	for _, s := range p.Sinks() {
		v, _ := eng.Read(s.Name)
		last[s.Name] = v
		fmt.Printf("%s = %s\n", s.Name, formatValue(v))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range p.Sinks() {
				v, _ := eng.Read(s.Name)
				if !value.Equal(v, last[s.Name]) {
					last[s.Name] = v
					fmt.Printf("%s = %s\n", s.Name, formatValue(v))
				}
			}
		}
	}
}
