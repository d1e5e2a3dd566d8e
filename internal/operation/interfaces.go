package operation

import (
	"context"
	"reflect"

	"enricher/internal/container"
)

// Operation is the common view of assemble and disassemble operations.
type Operation interface {
	ID() string
	Key() string
	Sort() int
	Groups() []string
}

// MappingStrategy decides whether a fetched value is written onto a target.
type MappingStrategy interface {
	Name() string
	// Map calls write when sourceValue should replace target's m.Reference.
	Map(target, source, sourceValue any, m PropertyMapping, write func(value any) error) error
}

// KeySpec is what a key resolver is built from.
type KeySpec struct {
	Key         string
	KeyType     reflect.Type
	Description string
}

// KeyResolver extracts the lookup key of a target.
// Multi-key resolvers return a []any.
type KeyResolver interface {
	Resolve(target any) (any, error)
}

// KeyResolverFunc adapts a function to KeyResolver.
type KeyResolverFunc func(target any) (any, error)

func (f KeyResolverFunc) Resolve(target any) (any, error) {
	return f(target)
}

// KeyResolverProvider builds key resolvers by name.
type KeyResolverProvider interface {
	Name() string
	Build(spec KeySpec) (KeyResolver, error)
}

// AssembleHandler fetches data for executions sharing one container and
// merges it into their targets.
type AssembleHandler interface {
	Name() string
	Process(ctx context.Context, c container.Container, executions []*Execution) error
}

// StagedHandler is an AssembleHandler whose work splits into stages.
// Stage and Merge read and write targets; Fetch only talks to the container
// and may run concurrently with other fetches.
type StagedHandler interface {
	AssembleHandler
	Stage(executions []*Execution) (Stage, error)
}

// Stage is one pending Process call of a StagedHandler.
type Stage interface {
	Fetch(ctx context.Context, c container.Container) error
	Merge() error
}

// DisassembleHandler extracts nested objects from a target.
// It returns an empty, non-nil slice when there is nothing to extract.
type DisassembleHandler interface {
	Name() string
	Extract(target any, op *DisassembleOperation) ([]any, error)
}

// Condition decides whether an operation applies to a target.
type Condition interface {
	Test(target any, op Operation) (bool, error)
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(target any, op Operation) (bool, error)

func (f ConditionFunc) Test(target any, op Operation) (bool, error) {
	return f(target, op)
}

// Provider returns the graph of a target type.
// It must return an equivalent graph for the same name on every call.
type Provider interface {
	Operations(typeName string) (*BeanOperations, error)
}
