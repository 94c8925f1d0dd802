// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// telemetryShutdown is set by setupTelemetry and must be called before the
// process exits so the stdout exporters flush their last batch.
var telemetryShutdown func(context.Context) error

// setupTelemetry installs the global OTel tracer/meter providers that
// internal/engine's package-level tracer/meter pull from. With both flags
// off it installs nothing: otel's default no-op providers are already in
// place, and internal/engine's spans/histograms become free no-ops.
func setupTelemetry(ctx context.Context, traceEnabled, metricsEnabled bool) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error

	if traceEnabled {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if metricsEnabled {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return func(ctx context.Context) error {
		var first error
		for _, s := range shutdowns {
			if err := s(ctx); err != nil && first == nil {
				first = err
			}
		}
		return first
	}, nil
}
