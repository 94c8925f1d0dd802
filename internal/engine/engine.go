// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Melchoirr/Ripple/internal/ast"
	"github.com/Melchoirr/Ripple/internal/diag"
	"github.com/Melchoirr/Ripple/internal/eval"
	"github.com/Melchoirr/Ripple/internal/value"
	"github.com/Melchoirr/Ripple/pkg/ripplerr"
)

var (
	tracer = otel.Tracer("ripple.engine")
	meter  = otel.Meter("ripple.engine")
)

// Engine is the compiled, runnable dataflow graph (spec.md §4.6-§4.7): a
// node table, a subscriber index, and the rank-ordered scheduler that drives
// propagate(). It exposes exactly the three verbs spec.md §6 names:
// PushEvent, Read, plus registration methods only internal/compiler calls.
//
// Engine is single-threaded by design (spec.md §5): the node table, heap,
// and caches are mutated only by the propagation loop. mu serializes
// external callbacks (CSV loads, file-watch events) onto that loop — it is
// not a concurrency mechanism for parallel evaluation.
type Engine struct {
	mu sync.Mutex

	nodes       map[string]*node
	order       []string            // registration order, for deterministic Dump
	subscribers map[string][]string // name -> node names to enqueue when name changes
	structRoots map[string][]string // struct-source root name -> expanded field names, in decl order

	funcs map[string]ast.FuncDecl
	csv   eval.CSVProvider

	logger *slog.Logger

	nextID int

	metricsOnce     sync.Once
	passLatency     metric.Float64Histogram
	nodeLatency     metric.Float64Histogram
	nodeFailures    metric.Int64Counter
	propagationRuns metric.Int64Counter
}

// New builds an empty engine. logger defaults to slog.Default() if nil; csv
// may be nil if the program never calls a CSV builtin.
func New(logger *slog.Logger, csv eval.CSVProvider) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		nodes:       make(map[string]*node),
		subscribers: make(map[string][]string),
		structRoots: make(map[string][]string),
		funcs:       make(map[string]ast.FuncDecl),
		csv:         csv,
		logger:      logger,
	}
}

func (e *Engine) initMetrics() {
	e.metricsOnce.Do(func() {
		var err error
		if e.passLatency, err = meter.Float64Histogram("ripple_pass_duration_seconds",
			metric.WithDescription("Time spent in one propagation pass"), metric.WithUnit("s")); err != nil {
			e.logger.Error("failed to init pass_duration metric", slog.String("error", err.Error()))
		}
		if e.nodeLatency, err = meter.Float64Histogram("ripple_node_recompute_duration_seconds",
			metric.WithDescription("Time spent recomputing a single node"), metric.WithUnit("s")); err != nil {
			e.logger.Error("failed to init node_recompute metric", slog.String("error", err.Error()))
		}
		if e.nodeFailures, err = meter.Int64Counter("ripple_node_failure_total",
			metric.WithDescription("Number of runtime evaluation failures, by node")); err != nil {
			e.logger.Error("failed to init node_failure metric", slog.String("error", err.Error()))
		}
		if e.propagationRuns, err = meter.Int64Counter("ripple_propagation_total",
			metric.WithDescription("Number of propagation passes run")); err != nil {
			e.logger.Error("failed to init propagation_total metric", slog.String("error", err.Error()))
		}
	})
}

// SetFuncs installs the user-function table every stream/sink formula may
// call. internal/compiler calls this once before registering any stream.
func (e *Engine) SetFuncs(funcs map[string]ast.FuncDecl) {
	e.funcs = funcs
}

// RegisterSource adds a scalar source node with its initial cached value.
func (e *Engine) RegisterSource(name string, initial value.Value) error {
	if _, exists := e.nodes[name]; exists {
		return fmt.Errorf("%w: %q", ripplerr.ErrDuplicateNode, name)
	}
	e.nodes[name] = &node{id: e.nextID, name: name, kind: Source, rank: 0, cached: initial}
	e.order = append(e.order, name)
	e.nextID++
	return nil
}

// RegisterStructSource registers a struct-typed source as spec.md §3
// describes: one Source node per field (named "root.field", rank 0) plus the
// caller-supplied assembly stream (registered separately via RegisterStream
// with a StructLit formula reading each field). RegisterStructSource only
// records the root→fields mapping PushEvent needs to fan a struct push out
// to its fields; it does not itself create the assembly node.
func (e *Engine) RegisterStructSource(root string, fields []string, initial value.Struct) error {
	e.structRoots[root] = append([]string(nil), fields...)
	for _, f := range fields {
		fieldVal, ok := initial.Get(f)
		if !ok {
			fieldVal = value.Unit{}
		}
		if err := e.RegisterSource(root+"."+f, fieldVal); err != nil {
			return err
		}
	}
	return nil
}

// RegisterStream adds a derived computation node. readDeps is the full set
// of names the formula reads (used to populate the eval.Context.Deps map at
// recompute time); trigger, if non-empty, restricts which of those names
// actually subscribes this node for re-enqueue (spec.md §4.6's `on X`).
// defaultValue is used as the node's value until its trigger first fires; it
// is ignored when trigger is "".
func (e *Engine) RegisterStream(name string, expr ast.Expr, readDeps []string, trigger string, rank int, stateful bool, defaultValue value.Value) error {
	return e.registerDerived(name, Stream, expr, readDeps, trigger, rank, stateful, defaultValue)
}

// RegisterSink adds a terminal observable-output node; otherwise identical
// to a stream (spec.md §2).
func (e *Engine) RegisterSink(name string, expr ast.Expr, readDeps []string, rank int, stateful bool) error {
	return e.registerDerived(name, Sink, expr, readDeps, "", rank, stateful, nil)
}

func (e *Engine) registerDerived(name string, kind Kind, expr ast.Expr, readDeps []string, trigger string, rank int, stateful bool, defaultValue value.Value) error {
	if _, exists := e.nodes[name]; exists {
		return fmt.Errorf("%w: %q", ripplerr.ErrDuplicateNode, name)
	}
	n := &node{
		id: e.nextID, name: name, kind: kind, rank: rank,
		expr: expr, readDeps: readDeps, trigger: trigger, stateful: stateful,
	}
	if stateful {
		n.temporal = eval.NewState()
	}
	if trigger != "" {
		if defaultValue == nil {
			defaultValue = value.Unit{}
		}
		n.cached = defaultValue
	}
	e.nodes[name] = n
	e.order = append(e.order, name)
	e.nextID++

	subs := readDeps
	if trigger != "" {
		subs = []string{trigger}
	}
	for _, d := range subs {
		e.subscribers[d] = append(e.subscribers[d], name)
	}
	return nil
}

// Initialize runs spec.md §4.7 step 11: for every non-source node in
// ascending rank, compute and cache its initial value, except triggered
// streams (which keep the default RegisterStream was given). Call this once
// after every source, stream, and sink has been registered.
func (e *Engine) Initialize(ctx context.Context) diag.Diagnostics {
	var diags diag.Diagnostics

	names := make([]string, 0, len(e.nodes))
	for name, n := range e.nodes {
		if n.kind != Source {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := e.nodes[names[i]], e.nodes[names[j]]
		if ni.rank != nj.rank {
			return ni.rank < nj.rank
		}
		return ni.id < nj.id
	})

	for _, name := range names {
		n := e.nodes[name]
		if n.trigger != "" {
			continue // already seeded with its declared default at registration
		}
		v, err := e.recompute(ctx, n)
		if err != nil {
			diags = append(diags, diag.Evaluation(name, err))
			continue
		}
		n.cached = v
	}
	return diags
}

// PushEvent implements spec.md §6's push_event verb: updates a source (or
// fans a struct value out to its expanded fields), then runs exactly one
// propagation pass to quiescence. The engine is not reentrant; callers
// driving PushEvent from a helper goroutine (the CSV loader, the file
// watcher) must serialize through mu themselves or call PushEvent directly,
// since it takes the lock itself.
func (e *Engine) PushEvent(ctx context.Context, name string, v value.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sched := newScheduler()

	if fields, ok := e.structRoots[name]; ok {
		sv, ok := v.(value.Struct)
		if !ok {
			return fmt.Errorf("eval: pushing struct source %q requires a struct value", name)
		}
		for _, f := range fields {
			fieldName := name + "." + f
			fieldVal, ok := sv.Get(f)
			if !ok {
				return fmt.Errorf("%w: %q", ripplerr.ErrUnknownField, f)
			}
			fn := e.nodes[fieldName]
			fn.cached = fieldVal
			e.enqueueSubscribers(sched, fieldName)
		}
		e.propagate(ctx, sched)
		return nil
	}

	n, ok := e.nodes[name]
	if !ok || n.kind != Source {
		return fmt.Errorf("%w: %q", ripplerr.ErrNotASource, name)
	}
	n.cached = v
	e.enqueueSubscribers(sched, name)
	e.propagate(ctx, sched)
	return nil
}

// Read implements spec.md §6's read verb: a pure lookup that never triggers
// computation. ok is false if name is unknown.
func (e *Engine) Read(name string) (value.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.nodes[name]
	if !ok {
		return nil, false
	}
	return n.cached, true
}

func (e *Engine) enqueueSubscribers(sched *scheduler, name string) {
	for _, subName := range e.subscribers[name] {
		sched.enqueue(e.nodes[subName])
	}
}

// propagate runs the min-heap loop spec.md §4.6 specifies to quiescence.
func (e *Engine) propagate(ctx context.Context, sched *scheduler) {
	e.initMetrics()
	passID := uuid.NewString()[:12]
	start := time.Now()

	ctx, span := tracer.Start(ctx, "engine.propagate",
		trace.WithAttributes(attribute.String("ripple.pass_id", passID)))
	defer span.End()

	nodesRecomputed := 0
	for !sched.empty() {
		name := sched.pop()
		n := e.nodes[name]

		old := n.cached
		newVal, err := e.recompute(ctx, n)
		nodesRecomputed++
		if err != nil {
			n.lastErr = err
			if e.nodeFailures != nil {
				e.nodeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("node", name)))
			}
			e.logger.Error("node evaluation failed, node poisoned for this pass",
				slog.String("node", name), slog.String("pass_id", passID), slog.String("error", err.Error()))
			continue // poisoned: cached value unchanged, subscribers not re-enqueued
		}
		n.lastErr = nil

		if value.Equal(old, newVal) {
			continue // change-detection prunes the cascade (spec.md §4.6)
		}
		n.cached = newVal
		e.enqueueSubscribers(sched, name)
	}

	duration := time.Since(start)
	if e.propagationRuns != nil {
		e.propagationRuns.Add(ctx, 1)
	}
	if e.passLatency != nil {
		e.passLatency.Record(ctx, duration.Seconds())
	}
	span.SetAttributes(attribute.Int("ripple.nodes_recomputed", nodesRecomputed))
	span.SetStatus(codes.Ok, "")
	e.logger.Debug("propagation pass complete",
		slog.String("pass_id", passID), slog.Duration("duration", duration), slog.Int("nodes_recomputed", nodesRecomputed))
}

// recompute evaluates a single node's formula, instrumented per spec.md §4.6
// (the engine fans this out to every dependent during propagate, and
// Initialize calls it once per node in topological order at compile time).
func (e *Engine) recompute(ctx context.Context, n *node) (value.Value, error) {
	if n.kind == Source {
		return n.cached, nil
	}

	_, span := tracer.Start(ctx, "engine.recompute",
		trace.WithAttributes(attribute.String("ripple.node", n.name), attribute.String("ripple.kind", n.kind.String())))
	defer span.End()

	start := time.Now()
	deps := make(map[string]value.Value, len(n.readDeps))
	for _, d := range n.readDeps {
		if dn, ok := e.nodes[d]; ok {
			deps[d] = dn.cached
		}
	}

	v, err := eval.EvalNode(n.expr, n.name, deps, e.funcs, n.temporal, e.csv)
	if e.nodeLatency != nil {
		e.nodeLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("node", n.name)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return v, nil
}
