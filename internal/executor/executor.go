package executor

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"enricher/internal/common"
	"enricher/internal/container"
	"enricher/internal/diagnostic"
	"enricher/internal/errs"
	"enricher/internal/logs"
	"enricher/internal/operation"
)

// Executor enriches targets according to their operation graph.
// It is safe for concurrent use once built.
type Executor struct {
	mode       Mode
	cfg        Config
	containers *container.Registry
	logger     *zap.Logger
}

// New creates an executor dispatching in mode.
func New(mode Mode, containers *container.Registry, cfg Config, logger *zap.Logger) *Executor {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = DefaultParallelism
	}

	return &Executor{
		mode:       mode,
		cfg:        cfg,
		containers: containers,
		logger:     logs.OrDefault(logger).Named("executor"),
	}
}

// NewDisordered creates an executor minimizing container lookups.
func NewDisordered(containers *container.Registry, cfg Config, logger *zap.Logger) *Executor {
	return New(ModeDisordered, containers, cfg, logger)
}

// NewOrdered creates an executor honoring operation sort values.
func NewOrdered(containers *container.Registry, cfg Config, logger *zap.Logger) *Executor {
	return New(ModeOrdered, containers, cfg, logger)
}

// NewConcurrent creates an executor dispatching groups in parallel.
func NewConcurrent(containers *container.Registry, cfg Config, logger *zap.Logger) *Executor {
	return New(ModeConcurrent, containers, cfg, logger)
}

// Mode returns the dispatch mode.
func (e *Executor) Mode() Mode { return e.mode }

// run is the state of one Execute call.
type run struct {
	id     string
	logger *zap.Logger

	mu    sync.Mutex
	diags diagnostic.Diagnostics
}

func (r *run) report(d diagnostic.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.diags.Append(d)
}

// Execute enriches targets, which must all be described by ops.
//
// The error is non-nil only for configuration problems, in which case no
// target has been modified. Dispatch failures are reported in the returned
// Diagnostics.
func (e *Executor) Execute(
	ctx context.Context,
	targets []any,
	ops *operation.BeanOperations,
	filter operation.Filter,
) (*diagnostic.Diagnostics, error) {
	if len(targets) == 0 || ops == nil {
		return &diagnostic.Diagnostics{}, nil
	}

	if !ops.Active() {
		return nil, errs.ErrInactiveOperations.
			WithMsg("operations of %s are not active", ops.Name()).
			WithData("bean", ops.Name())
	}

	if ops.Empty() {
		return &diagnostic.Diagnostics{}, nil
	}

	r := &run{id: uuid.NewString()}
	r.logger = e.logger.With(zap.String("run", r.id), zap.String("bean", ops.Name()))

	start := time.Now()

	grouped, err := e.disassemble(ops, targets, filter, r.logger)
	if err != nil {
		return nil, err
	}

	executions, err := e.plan(grouped, filter)
	if err != nil {
		return nil, err
	}

	objects := grouped.objects()
	beforeAssemble(objects)

	switch e.mode {
	case ModeOrdered:
		e.dispatchOrdered(ctx, r, executions)
	case ModeConcurrent:
		e.dispatchConcurrent(ctx, r, executions)
	default:
		e.dispatchDisordered(ctx, r, executions)
	}

	afterAssemble(objects)

	elapsed := time.Since(start)
	fields := []zap.Field{
		zap.Stringer("mode", e.mode),
		zap.Int("targets", len(targets)),
		zap.Int("objects", len(objects)),
		zap.Int("executions", len(executions)),
		zap.Int("failures", len(r.diags.Errors)),
		zap.Duration("elapsed", elapsed),
	}

	if e.cfg.SlowThreshold > 0 && elapsed > e.cfg.SlowThreshold {
		r.logger.Warn("slow execution", fields...)
	} else {
		r.logger.Debug("execution finished", fields...)
	}

	return &r.diags, nil
}

// plan builds the executions of every group.
func (e *Executor) plan(grouped *groups, filter operation.Filter) ([]*operation.Execution, error) {
	var executions []*operation.Execution

	for _, grp := range grouped.order {
		for _, op := range grp.Bean.Assembles() {
			if !filter.Allows(op) {
				continue
			}

			targets, err := applicable(grp.Objects, op)
			if err != nil {
				return nil, err
			}

			if len(targets) == 0 {
				continue
			}

			c, err := e.containerOf(op)
			if err != nil {
				return nil, err
			}

			for _, batch := range common.Partition(targets, e.cfg.BatchSize) {
				executions = append(executions, operation.NewExecution(grp.Bean, op, c, batch))
			}
		}
	}

	return executions, nil
}

// applicable returns the objects op applies to.
func applicable(objects []any, op *operation.AssembleOperation) ([]any, error) {
	cond := op.Condition()

	out := make([]any, 0, len(objects))
	for _, obj := range objects {
		if !supports(obj, op) {
			continue
		}

		if cond != nil {
			ok, err := cond.Test(obj, op)
			if err != nil {
				return nil, errs.ErrCondition.WithMsg("condition of %s", op.ID()).WithCause(err)
			}

			if !ok {
				continue
			}
		}

		out = append(out, obj)
	}

	return out, nil
}

func (e *Executor) containerOf(op *operation.AssembleOperation) (container.Container, error) {
	if op.SelfMapping() {
		return container.Empty(), nil
	}

	c, err := e.containers.Lookup(op.Namespace())
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", op.ID(), err)
	}

	return c, nil
}

// bucket is a set of executions dispatched with one handler call.
type bucket struct {
	container  container.Container
	handler    operation.AssembleHandler
	executions []*operation.Execution
}

// buckets groups executions by container, then by handler, in first-seen order.
func buckets(executions []*operation.Execution) []*bucket {
	type bucketKey struct {
		namespace string
		handler   operation.AssembleHandler
	}

	var out []*bucket

	index := make(map[bucketKey]*bucket)

	for _, exec := range executions {
		key := bucketKey{namespace: exec.Namespace(), handler: exec.Handler()}

		b, ok := index[key]
		if !ok {
			b = &bucket{container: exec.Container, handler: exec.Handler()}
			index[key] = b
			out = append(out, b)
		}

		b.executions = append(b.executions, exec)
	}

	return out
}

func (e *Executor) dispatchDisordered(ctx context.Context, r *run, executions []*operation.Execution) {
	for _, b := range buckets(executions) {
		e.process(ctx, r, b)
	}
}

func (e *Executor) dispatchOrdered(ctx context.Context, r *run, executions []*operation.Execution) {
	sorted := slices.Clone(executions)
	slices.SortStableFunc(sorted, func(a, b *operation.Execution) int {
		if c := cmp.Compare(a.Sort(), b.Sort()); c != 0 {
			return c
		}

		return cmp.Compare(a.Operation.Index(), b.Operation.Index())
	})

	for _, exec := range sorted {
		e.process(ctx, r, &bucket{
			container:  exec.Container,
			handler:    exec.Handler(),
			executions: []*operation.Execution{exec},
		})
	}
}

// dispatchConcurrent runs container lookups in parallel. Targets are only
// touched on the calling goroutine: keys are resolved before the lookups
// start and merges run one bucket at a time once all lookups are done.
// Handlers that cannot be staged run whole during the merge phase.
func (e *Executor) dispatchConcurrent(ctx context.Context, r *run, executions []*operation.Execution) {
	type pending struct {
		b     *bucket
		stage operation.Stage
		err   error
	}

	var all []*pending

	for _, b := range buckets(executions) {
		p := &pending{b: b}

		if staged, ok := b.handler.(operation.StagedHandler); ok {
			p.err = guard(func() (err error) {
				p.stage, err = staged.Stage(b.executions)
				return err
			})
		}

		all = append(all, p)
	}

	var g errgroup.Group

	g.SetLimit(e.cfg.Parallelism)

	for _, p := range all {
		if p.stage == nil || p.err != nil {
			continue
		}

		g.Go(func() error {
			p.err = guard(func() error { return p.stage.Fetch(ctx, p.b.container) })
			return nil
		})
	}

	_ = g.Wait()

	for _, p := range all {
		err := p.err

		switch {
		case err != nil:
		case p.stage != nil:
			err = guard(p.stage.Merge)
		default:
			err = guard(func() error { return p.b.handler.Process(ctx, p.b.container, p.b.executions) })
		}

		e.fail(r, p.b, err)
	}
}

// process dispatches one bucket.
func (e *Executor) process(ctx context.Context, r *run, b *bucket) {
	e.fail(r, b, guard(func() error { return b.handler.Process(ctx, b.container, b.executions) }))
}

// fail reports the error of a bucket, if any.
func (e *Executor) fail(r *run, b *bucket, err error) {
	if err == nil {
		return
	}

	ids := make([]string, 0, len(b.executions))
	for _, exec := range b.executions {
		ids = append(ids, exec.String())
	}

	namespace := b.container.Namespace()
	opList := strings.Join(slices.Compact(ids), ",")

	r.logger.Error("dispatch failed",
		zap.String("namespace", namespace),
		zap.String("handler", b.handler.Name()),
		zap.String("operation", opList),
		zap.Error(err),
	)

	r.report(diagnostic.Diagnostic{
		Severity:  diagnostic.SeverityError,
		Code:      string(errs.CodeDispatch),
		Message:   fmt.Sprintf("%s failed: %v", b.handler.Name(), err),
		Bean:      b.executions[0].Bean.Name(),
		Operation: opList,
		Namespace: namespace,
		Cause:     err,
	})
}

// guard runs fn, turning a panic into a dispatch error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errs.ErrDispatch.WithMsg("panic: %v", p)
		}
	}()

	return fn()
}
