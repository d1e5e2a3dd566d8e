// Package operation defines the operation graph: the immutable description of
// what to fetch for a target type and how to merge it.
//
// # Graph
//
// A BeanOperations holds the ordered assemble and disassemble operations of
// one target type. It is built once, published, and then only read, so one
// graph may serve any number of concurrent executions.
//
// An AssembleOperation names the key property of the target, the container
// namespace to query, the property mappings to apply and the pluggable
// behaviour (handler, mapping strategy, key resolver) used to do so.
//
// A DisassembleOperation names a property holding nested objects and a
// NestedResolver yielding the graph those nested objects are enriched with.
//
// # Mappings
//
// Property mappings use the "source:reference" syntax, comma separated:
//
//	"name:userName, age"   // name -> userName, age -> age
//	":user"                // whole fetched object -> user
//
// # Executions
//
// An Execution binds one assemble operation to the concrete targets that need
// it in one run. Executions are created per call and never shared.
package operation
