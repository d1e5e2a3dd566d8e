// Package handler implements assemble handlers, which fetch data for batches
// of targets and merge it, and the reflective disassemble handler.
//
// All assemble handlers issue exactly one container lookup per Process call,
// whatever the number of executions and targets passed in. Targets of an
// operation on the empty namespace are their own data source.
package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"enricher/internal/common"
	"enricher/internal/container"
	"enricher/internal/keys"
	"enricher/internal/logs"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// Handler names.
const (
	NameOneToOne   = "one_to_one"
	NameOneToMany  = "one_to_many"
	NameManyToMany = "many_to_many"

	// Default is used when an operation names no handler.
	Default = NameOneToOne
)

// cardinality tells how keys and fetched data relate for one target.
type cardinality int

const (
	// one key, one data object
	oneToOne cardinality = iota
	// one key, a collection of data objects
	oneToMany
	// many keys, one data object each
	manyToMany
)

// Assemble is the assemble handler of one cardinality.
type Assemble struct {
	name   string
	card   cardinality
	logger *zap.Logger
}

// NewOneToOne creates the handler mapping one fetched object per key.
func NewOneToOne(logger *zap.Logger) *Assemble {
	return newAssemble(NameOneToOne, oneToOne, logger)
}

// NewOneToMany creates the handler for containers returning a collection
// per key. Mapped source values are gathered into a slice.
func NewOneToMany(logger *zap.Logger) *Assemble {
	return newAssemble(NameOneToMany, oneToMany, logger)
}

// NewManyToMany creates the handler for targets holding many keys.
// The key resolver must yield a collection; the objects found for every key
// are gathered into a slice.
func NewManyToMany(logger *zap.Logger) *Assemble {
	return newAssemble(NameManyToMany, manyToMany, logger)
}

func newAssemble(name string, card cardinality, logger *zap.Logger) *Assemble {
	return &Assemble{
		name:   name,
		card:   card,
		logger: logs.OrDefault(logger).Named("handler").With(zap.String("handler", name)),
	}
}

func (h *Assemble) Name() string { return h.name }

// target is one object to enrich along with its resolved key(s).
type target struct {
	exec   *operation.Execution
	origin any
	key    any
	keys   []any
}

// Process fetches the data of every target of executions with one container
// lookup and applies the mappings.
func (h *Assemble) Process(ctx context.Context, c container.Container, executions []*operation.Execution) error {
	s, err := h.stage(executions)
	if err != nil {
		return err
	}

	if err := s.Fetch(ctx, c); err != nil {
		return err
	}

	return s.Merge()
}

// Stage resolves the keys of executions. Fetching and merging are left to
// the returned stage.
func (h *Assemble) Stage(executions []*operation.Execution) (operation.Stage, error) {
	s, err := h.stage(executions)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (h *Assemble) stage(executions []*operation.Execution) (*stage, error) {
	targets, lookup, err := h.collect(executions)
	if err != nil {
		return nil, err
	}

	return &stage{h: h, targets: targets, lookup: lookup}, nil
}

// stage holds the resolved targets of one Process call between its lookup
// and its merge.
type stage struct {
	h       *Assemble
	targets []target
	lookup  []any
	sources map[any]any
}

func (s *stage) Fetch(ctx context.Context, c container.Container) error {
	if len(s.targets) == 0 || len(s.lookup) == 0 || container.IsEmpty(c) {
		return nil
	}

	s.h.logger.Debug("fetching",
		zap.String("namespace", c.Namespace()),
		zap.Int("targets", len(s.targets)),
		logs.Dump("keys", s.lookup),
	)

	sources, err := c.Get(ctx, s.lookup)
	if err != nil {
		return fmt.Errorf("container %q: %w", c.Namespace(), err)
	}

	s.sources = sources

	return nil
}

// Merge applies the mappings of every target. A failing target does not
// stop the others; their errors are joined.
func (s *stage) Merge() error {
	var failures []error

	for _, t := range s.targets {
		source, found := s.h.sourceOf(t, s.sources)
		if !found {
			s.h.logger.Debug("no data for target",
				zap.String("operation", t.exec.Operation.ID()),
				zap.String("key", keys.Describe(t.key)),
			)

			continue
		}

		if err := s.h.apply(t, source); err != nil {
			failures = append(failures, err)
		}
	}

	return errors.Join(failures...)
}

// collect resolves the key(s) of every target and the distinct keys to fetch.
func (h *Assemble) collect(executions []*operation.Execution) ([]target, []any, error) {
	var (
		targets []target
		lookup  []any
	)

	for _, exec := range executions {
		op := exec.Operation

		for _, origin := range exec.Targets {
			if op.SelfMapping() {
				targets = append(targets, target{exec: exec, origin: origin})
				continue
			}

			key, err := op.ResolveKey(origin)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", exec, err)
			}

			t := target{exec: exec, origin: origin, key: key}

			if h.card == manyToMany {
				t.keys = keyList(key)
				lookup = append(lookup, t.keys...)
			} else if key != nil {
				lookup = append(lookup, key)
			}

			targets = append(targets, t)
		}
	}

	return targets, common.UniqueComparable(lookup), nil
}

// sourceOf returns the data a target is enriched with.
func (h *Assemble) sourceOf(t target, sources map[any]any) (any, bool) {
	if t.exec.Operation.SelfMapping() {
		return t.origin, true
	}

	if h.card == manyToMany {
		found := make([]any, 0, len(t.keys))

		for _, k := range t.keys {
			if !common.IsComparable(k) {
				continue
			}

			if v, ok := sources[k]; ok && !common.IsNil(v) {
				found = append(found, v)
			}
		}

		return found, len(found) > 0
	}

	if t.key == nil || !common.IsComparable(t.key) {
		return nil, false
	}

	v, ok := sources[t.key]

	return v, ok
}

func (h *Assemble) apply(t target, source any) error {
	op := t.exec.Operation

	for _, m := range op.Mappings() {
		value, err := h.sourceValue(source, m)
		if err != nil {
			return fmt.Errorf("%s: %w", t.exec, err)
		}

		write := func(v any) error {
			return property.Write(t.origin, m.Reference, v)
		}

		if err := op.Strategy().Map(t.origin, source, value, m, write); err != nil {
			return fmt.Errorf("%s: mapping %s: %w", t.exec, m, err)
		}
	}

	return nil
}

func (h *Assemble) sourceValue(source any, m operation.PropertyMapping) (any, error) {
	if h.card == oneToOne {
		if !m.HasSource() {
			return source, nil
		}

		return property.Read(source, m.Source)
	}

	// collection cardinalities gather one value per fetched object
	items := property.Elements(source)
	if !m.HasSource() {
		return items, nil
	}

	values := make([]any, 0, len(items))

	for _, item := range items {
		v, err := property.Read(item, m.Source)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

func keyList(key any) []any {
	if list, ok := key.([]any); ok {
		return list
	}

	return property.Elements(key)
}

// NewRegistry returns a registry holding the built-in assemble handlers.
func NewRegistry(logger *zap.Logger) *common.Registry[operation.AssembleHandler] {
	return common.NewRegistry[operation.AssembleHandler]("assemble handler",
		NewOneToOne(logger),
		NewOneToMany(logger),
		NewManyToMany(logger),
	)
}
