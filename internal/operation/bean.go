package operation

import (
	"reflect"
	"sync/atomic"

	"enricher/internal/errs"
)

// BeanOperations is the operation graph of one target type.
// It is mutable until Publish and read-only afterwards.
type BeanOperations struct {
	name         string
	typ          reflect.Type
	assembles    []*AssembleOperation
	disassembles []*DisassembleOperation
	published    atomic.Bool
}

// NewBeanOperations creates an empty, unpublished graph.
// typ is optional and only used for diagnostics.
func NewBeanOperations(name string, typ reflect.Type) *BeanOperations {
	return &BeanOperations{name: name, typ: typ}
}

// Name returns the target type name.
func (b *BeanOperations) Name() string { return b.name }

// Type returns the target Go type, if known.
func (b *BeanOperations) Type() reflect.Type { return b.typ }

// Assembles returns the assemble operations in declaration order.
// The slice must not be modified.
func (b *BeanOperations) Assembles() []*AssembleOperation { return b.assembles }

// Disassembles returns the disassemble operations in declaration order.
// The slice must not be modified.
func (b *BeanOperations) Disassembles() []*DisassembleOperation { return b.disassembles }

// AddAssemble appends op and records its declaration index.
func (b *BeanOperations) AddAssemble(op *AssembleOperation) error {
	if err := b.checkMutable(); err != nil {
		return err
	}

	if op == nil {
		return errs.ErrConfiguration.WithMsg("%s: nil assemble operation", b.name)
	}

	op.index = len(b.assembles)
	b.assembles = append(b.assembles, op)

	return nil
}

// AddDisassemble appends op.
func (b *BeanOperations) AddDisassemble(op *DisassembleOperation) error {
	if err := b.checkMutable(); err != nil {
		return err
	}

	if op == nil {
		return errs.ErrConfiguration.WithMsg("%s: nil disassemble operation", b.name)
	}

	op.index = len(b.disassembles)
	b.disassembles = append(b.disassembles, op)

	return nil
}

// Publish freezes the graph. Publishing twice is a no-op.
func (b *BeanOperations) Publish() *BeanOperations {
	b.published.Store(true)
	return b
}

// Active reports whether the graph has been published.
func (b *BeanOperations) Active() bool {
	return b != nil && b.published.Load()
}

// Empty reports whether the graph has no operations at all.
func (b *BeanOperations) Empty() bool {
	return len(b.assembles) == 0 && len(b.disassembles) == 0
}

func (b *BeanOperations) String() string {
	return b.name
}

func (b *BeanOperations) checkMutable() error {
	if b.published.Load() {
		return errs.ErrConfiguration.WithMsg("%s: operations already published", b.name)
	}

	return nil
}
