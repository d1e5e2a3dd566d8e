package operation

import (
	"enricher/internal/container"
)

// Execution binds one assemble operation to the targets needing it in one run.
type Execution struct {
	Bean      *BeanOperations
	Operation *AssembleOperation
	Container container.Container
	Targets   []any
}

// NewExecution creates an Execution.
func NewExecution(bean *BeanOperations, op *AssembleOperation, c container.Container, targets []any) *Execution {
	return &Execution{Bean: bean, Operation: op, Container: c, Targets: targets}
}

// Handler returns the handler of the bound operation.
func (e *Execution) Handler() AssembleHandler {
	return e.Operation.Handler()
}

// Namespace returns the namespace of the bound container.
func (e *Execution) Namespace() string {
	if e.Container == nil {
		return e.Operation.Namespace()
	}

	return e.Container.Namespace()
}

// Sort returns the sort value of the bound operation.
func (e *Execution) Sort() int {
	return e.Operation.Sort()
}

func (e *Execution) String() string {
	return e.Bean.Name() + "." + e.Operation.ID()
}
