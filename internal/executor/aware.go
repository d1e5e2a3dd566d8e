package executor

import "enricher/internal/operation"

// BeforeAssembler is implemented by targets wanting a callback before any of
// their assemble operations run.
type BeforeAssembler interface {
	BeforeAssemble()
}

// AfterAssembler is implemented by targets wanting a callback once all
// assemble operations of the call have run.
type AfterAssembler interface {
	AfterAssemble()
}

// OperationSupporter is implemented by targets that opt out of individual
// assemble operations.
type OperationSupporter interface {
	SupportsOperation(op operation.Operation) bool
}

func supports(target any, op operation.Operation) bool {
	if s, ok := target.(OperationSupporter); ok {
		return s.SupportsOperation(op)
	}

	return true
}

func beforeAssemble(objects []any) {
	for _, o := range objects {
		if b, ok := o.(BeforeAssembler); ok {
			b.BeforeAssemble()
		}
	}
}

func afterAssemble(objects []any) {
	for _, o := range objects {
		if a, ok := o.(AfterAssembler); ok {
			a.AfterAssemble()
		}
	}
}
