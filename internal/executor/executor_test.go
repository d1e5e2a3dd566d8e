package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"enricher/internal/container"
	"enricher/internal/errs"
	"enricher/internal/handler"
	"enricher/internal/keys"
	"enricher/internal/operation"
	"enricher/internal/strategy"
)

type user struct {
	Name string
}

type item struct {
	UserID   int
	UserName string
}

type order struct {
	UserID   int
	UserName string
	Items    []*item
	Label    string

	before, after int
	skip          string
}

func (o *order) BeforeAssemble() { o.before++ }
func (o *order) AfterAssemble()  { o.after++ }

func (o *order) SupportsOperation(op operation.Operation) bool {
	return op.ID() != o.skip
}

type node struct {
	Name     string
	Children []*node
}

type countingContainer struct {
	container.Container

	mu    sync.Mutex
	calls int
	keys  [][]any
}

func (c *countingContainer) Get(ctx context.Context, keys []any) (map[any]any, error) {
	c.mu.Lock()
	c.calls++
	c.keys = append(c.keys, keys)
	c.mu.Unlock()

	return c.Container.Get(ctx, keys)
}

// recorder is an assemble handler recording the executions it receives.
type recorder struct {
	name  string
	fail  error
	panic bool

	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Process(_ context.Context, _ container.Container, executions []*operation.Execution) error {
	if r.panic {
		panic("handler exploded")
	}

	ids := make([]string, 0, len(executions))
	for _, e := range executions {
		ids = append(ids, e.Operation.ID())
	}

	r.mu.Lock()
	r.calls = append(r.calls, ids)
	r.mu.Unlock()

	return r.fail
}

type opts struct {
	id        string
	sort      int
	groups    []string
	condition operation.Condition
}

func assembleOp(t *testing.T, h operation.AssembleHandler, ns, key string, mapping string, o opts) *operation.AssembleOperation {
	t.Helper()

	ms, err := operation.ParseMappings(mapping)
	require.NoError(t, err)

	op, err := operation.NewAssembleOperation(operation.AssembleDef{
		ID:          o.id,
		Key:         key,
		Namespace:   ns,
		Mappings:    ms,
		Handler:     h,
		Strategy:    strategy.OverwriteNotNull{},
		KeyResolver: keys.Property{},
		Sort:        o.sort,
		Groups:      o.groups,
		Condition:   o.condition,
	})
	require.NoError(t, err)

	return op
}

func nestedOp(t *testing.T, key string, nested *operation.BeanOperations) *operation.DisassembleOperation {
	t.Helper()

	op, err := operation.NewDisassembleOperation(operation.DisassembleDef{
		Key:     key,
		Handler: handler.Reflect{},
		Nested:  operation.Fixed(nested),
	})
	require.NoError(t, err)

	return op
}

func newRegistry(t *testing.T, cs ...container.Container) *container.Registry {
	t.Helper()

	r := container.NewRegistry(nil)
	for _, c := range cs {
		require.NoError(t, r.Register(c))
	}

	return r
}

func usersFixture(t *testing.T) (*countingContainer, *operation.BeanOperations) {
	t.Helper()

	users := &countingContainer{Container: container.FromMap("users", map[int]user{
		1: {Name: "Ann"},
		2: {Name: "Bo"},
	})}

	h := handler.NewOneToOne(nil)

	itemOps := operation.NewBeanOperations("item", reflect.TypeOf(item{}))
	require.NoError(t, itemOps.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{})))
	itemOps.Publish()

	orderOps := operation.NewBeanOperations("order", reflect.TypeOf(order{}))
	require.NoError(t, orderOps.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{})))
	require.NoError(t, orderOps.AddDisassemble(nestedOp(t, "Items", itemOps)))
	orderOps.Publish()

	return users, orderOps
}

func TestExecute_NestedTargetsShareOneLookup(t *testing.T) {
	users, ops := usersFixture(t)
	exec := NewDisordered(newRegistry(t, users), DefaultConfig(), nil)

	first := &order{UserID: 1, Items: []*item{{UserID: 2}, {UserID: 3}}}
	second := &order{UserID: 2, Items: []*item{{UserID: 1}}}

	diags, err := exec.Execute(context.Background(), []any{first, second}, ops, nil)
	require.NoError(t, err)
	require.NotNil(t, diags)
	assert.False(t, diags.HasErrors())

	assert.Equal(t, "Ann", first.UserName)
	assert.Equal(t, "Bo", second.UserName)
	assert.Equal(t, "Bo", first.Items[0].UserName)
	assert.Empty(t, first.Items[1].UserName)
	assert.Equal(t, "Ann", second.Items[0].UserName)

	assert.Equal(t, 1, users.calls)
	assert.ElementsMatch(t, []any{1, 2, 3}, users.keys[0])
}

func TestExecute_EmptyInputs(t *testing.T) {
	users, ops := usersFixture(t)
	exec := NewDisordered(newRegistry(t, users), DefaultConfig(), nil)

	diags, err := exec.Execute(context.Background(), nil, ops, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	diags, err = exec.Execute(context.Background(), []any{&order{}}, nil, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	empty := operation.NewBeanOperations("empty", nil).Publish()
	diags, err = exec.Execute(context.Background(), []any{&order{UserID: 1}}, empty, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())
	assert.Zero(t, users.calls)
}

func TestExecute_InactiveOperations(t *testing.T) {
	users := container.FromMap("users", map[int]user{})
	exec := NewDisordered(newRegistry(t, users), DefaultConfig(), nil)

	ops := operation.NewBeanOperations("order", nil)

	_, err := exec.Execute(context.Background(), []any{&order{}}, ops, nil)
	assert.ErrorIs(t, err, errs.ErrInactiveOperations)
}

func TestExecute_InactiveNestedOperations(t *testing.T) {
	users := container.FromMap("users", map[int]user{})
	exec := NewDisordered(newRegistry(t, users), DefaultConfig(), nil)

	h := handler.NewOneToOne(nil)
	itemOps := operation.NewBeanOperations("item", nil)
	require.NoError(t, itemOps.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{})))

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddDisassemble(nestedOp(t, "Items", itemOps)))
	ops.Publish()

	target := &order{Items: []*item{{UserID: 1}}}
	_, err := exec.Execute(context.Background(), []any{target}, ops, nil)
	assert.ErrorIs(t, err, errs.ErrInactiveOperations)
}

func TestExecute_UnknownNamespace(t *testing.T) {
	_, ops := usersFixture(t)
	exec := NewDisordered(newRegistry(t), DefaultConfig(), nil)

	target := &order{UserID: 1}
	_, err := exec.Execute(context.Background(), []any{target}, ops, nil)
	require.ErrorIs(t, err, errs.ErrContainerNotFound)
	assert.Empty(t, target.UserName)
}

func TestExecute_FaultIsolation(t *testing.T) {
	boom := errors.New("boom")

	good := &recorder{name: "good"}
	bad := &recorder{name: "bad", fail: boom}
	panicking := &recorder{name: "panicking", panic: true}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, bad, "users", "UserID", "Name:UserName", opts{id: "bad"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, panicking, "users", "UserID", "Name:Label", opts{id: "panic"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, good, "users", "UserID", "Name:Label", opts{id: "good"})))
	ops.Publish()

	for _, mode := range []Mode{ModeDisordered, ModeOrdered, ModeConcurrent} {
		t.Run(mode.String(), func(t *testing.T) {
			good.calls = nil

			exec := New(mode, newRegistry(t, container.FromMap("users", map[int]user{})), DefaultConfig(), nil)

			diags, err := exec.Execute(context.Background(), []any{&order{UserID: 1}}, ops, nil)
			require.NoError(t, err)
			require.Len(t, diags.Errors, 2)

			assert.Equal(t, [][]string{{"good"}}, good.calls)

			causes := make(map[string]error)
			for _, d := range diags.Errors {
				assert.Equal(t, string(errs.CodeDispatch), d.Code)
				assert.Equal(t, "order", d.Bean)
				assert.Equal(t, "users", d.Namespace)
				causes[d.Operation] = d.Cause
			}

			assert.ErrorIs(t, causes["order.bad"], boom)
			assert.ErrorIs(t, causes["order.panic"], errs.ErrDispatch)
		})
	}
}

func TestExecute_DisorderedBatchesByContainerAndHandler(t *testing.T) {
	first := &recorder{name: "first"}
	second := &recorder{name: "second"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, first, "users", "UserID", "Name:UserName", opts{id: "a"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, second, "users", "UserID", "Name:Label", opts{id: "b"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, first, "users", "UserID", "Name:Label", opts{id: "c"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, first, "teams", "UserID", "Name:Label", opts{id: "d"})))
	ops.Publish()

	reg := newRegistry(t,
		container.FromMap("users", map[int]user{}),
		container.FromMap("teams", map[int]user{}),
	)

	diags, err := NewDisordered(reg, DefaultConfig(), nil).Execute(context.Background(), []any{&order{}}, ops, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	assert.Equal(t, [][]string{{"a", "c"}, {"d"}}, first.calls)
	assert.Equal(t, [][]string{{"b"}}, second.calls)
}

func TestExecute_OrderedFollowsSortThenDeclaration(t *testing.T) {
	h := &recorder{name: "rec"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "late", sort: 10})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "first", sort: -1})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "tie1"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "tie2"})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))

	_, err := NewOrdered(reg, DefaultConfig(), nil).Execute(context.Background(), []any{&order{}}, ops, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"first"}, {"tie1"}, {"tie2"}, {"late"}}, h.calls)
}

func TestExecute_OrderedExtremeSortValues(t *testing.T) {
	h := &recorder{name: "rec"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "max", sort: math.MaxInt})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "one", sort: 1})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "min", sort: math.MinInt})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))

	_, err := NewOrdered(reg, DefaultConfig(), nil).Execute(context.Background(), []any{&order{}}, ops, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"min"}, {"one"}, {"max"}}, h.calls)
}

func TestExecute_Concurrent(t *testing.T) {
	users, ops := usersFixture(t)
	exec := NewConcurrent(newRegistry(t, users), Config{Parallelism: 2}, nil)

	targets := make([]any, 0, 20)
	for i := range 20 {
		targets = append(targets, &order{UserID: i%2 + 1, Items: []*item{{UserID: 1}}})
	}

	diags, err := exec.Execute(context.Background(), targets, ops, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	for i, target := range targets {
		o := target.(*order)
		if i%2 == 0 {
			assert.Equal(t, "Ann", o.UserName)
		} else {
			assert.Equal(t, "Bo", o.UserName)
		}

		assert.Equal(t, "Ann", o.Items[0].UserName)
	}

	assert.Equal(t, 1, users.calls)
}

func TestExecute_ConcurrentMapTargets(t *testing.T) {
	h := handler.NewOneToOne(nil)
	namespaces := []string{"users", "teams", "roles", "sites"}

	ops := operation.NewBeanOperations("row", nil)
	cs := make([]container.Container, 0, len(namespaces))

	for _, ns := range namespaces {
		cs = append(cs, container.FromMap(ns, map[int]user{1: {Name: ns + "-1"}, 2: {Name: ns + "-2"}}))
		require.NoError(t, ops.AddAssemble(assembleOp(t, h, ns, "id", "Name:"+ns, opts{id: ns})))
	}

	ops.Publish()

	targets := make([]any, 0, 2000)
	for i := range 2000 {
		targets = append(targets, map[string]any{"id": i%2 + 1})
	}

	exec := NewConcurrent(newRegistry(t, cs...), Config{Parallelism: 4, BatchSize: 100}, nil)

	diags, err := exec.Execute(context.Background(), targets, ops, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	for i, target := range targets {
		row := target.(map[string]any)
		for _, ns := range namespaces {
			assert.Equal(t, fmt.Sprintf("%s-%d", ns, i%2+1), row[ns])
		}
	}
}

func TestExecute_ConcurrentUnstagedHandler(t *testing.T) {
	h := &recorder{name: "rec"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "a"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "teams", "UserID", "Name:Label", opts{id: "b"})))
	ops.Publish()

	reg := newRegistry(t,
		container.FromMap("users", map[int]user{}),
		container.FromMap("teams", map[int]user{}),
	)

	diags, err := NewConcurrent(reg, DefaultConfig(), nil).Execute(context.Background(), []any{&order{}}, ops, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	assert.Equal(t, [][]string{{"a"}, {"b"}}, h.calls)
}

func TestExecute_BatchSize(t *testing.T) {
	h := &recorder{name: "rec"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "a"})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))
	exec := NewOrdered(reg, Config{BatchSize: 2}, nil)

	_, err := exec.Execute(context.Background(), []any{&order{}, &order{}, &order{}, &order{}, &order{}}, ops, nil)
	require.NoError(t, err)

	assert.Len(t, h.calls, 3)
}

func TestExecute_Filter(t *testing.T) {
	h := &recorder{name: "rec"}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "basic", groups: []string{"basic"}})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "detail", groups: []string{"detail"}})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))

	_, err := NewOrdered(reg, DefaultConfig(), nil).
		Execute(context.Background(), []any{&order{}}, ops, operation.InGroups("detail"))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"detail"}}, h.calls)
}

func TestExecute_FilterSkipsDisassembly(t *testing.T) {
	users, ops := usersFixture(t)
	exec := NewDisordered(newRegistry(t, users), DefaultConfig(), nil)

	target := &order{UserID: 1, Items: []*item{{UserID: 2}}}
	noNested := func(op operation.Operation) bool {
		_, nested := op.(*operation.DisassembleOperation)
		return !nested
	}

	_, err := exec.Execute(context.Background(), []any{target}, ops, noNested)
	require.NoError(t, err)

	assert.Equal(t, "Ann", target.UserName)
	assert.Empty(t, target.Items[0].UserName)
}

func TestExecute_Condition(t *testing.T) {
	h := handler.NewOneToOne(nil)

	onlyEven := operation.ConditionFunc(func(target any, _ operation.Operation) (bool, error) {
		return target.(*order).UserID%2 == 0, nil
	})

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{condition: onlyEven})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{1: {Name: "Ann"}, 2: {Name: "Bo"}}))
	exec := NewDisordered(reg, DefaultConfig(), nil)

	odd, even := &order{UserID: 1}, &order{UserID: 2}
	_, err := exec.Execute(context.Background(), []any{odd, even}, ops, nil)
	require.NoError(t, err)

	assert.Empty(t, odd.UserName)
	assert.Equal(t, "Bo", even.UserName)
}

func TestExecute_ConditionError(t *testing.T) {
	h := &recorder{name: "rec"}
	failing := operation.ConditionFunc(func(any, operation.Operation) (bool, error) {
		return false, errors.New("bad condition")
	})

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{condition: failing})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))

	_, err := NewDisordered(reg, DefaultConfig(), nil).Execute(context.Background(), []any{&order{}}, ops, nil)
	require.ErrorIs(t, err, errs.ErrCondition)
	assert.Empty(t, h.calls)
}

func TestExecute_HooksAndOptOut(t *testing.T) {
	h := handler.NewOneToOne(nil)

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "name"})))
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:Label", opts{id: "label"})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{1: {Name: "Ann"}}))

	target := &order{UserID: 1, skip: "label"}
	_, err := NewDisordered(reg, DefaultConfig(), nil).Execute(context.Background(), []any{target}, ops, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ann", target.UserName)
	assert.Empty(t, target.Label)
	assert.Equal(t, 1, target.before)
	assert.Equal(t, 1, target.after)
}

func treeOps(t *testing.T) *operation.BeanOperations {
	t.Helper()

	ops := operation.NewBeanOperations("node", reflect.TypeOf(node{}))
	require.NoError(t, ops.AddAssemble(assembleOp(t, handler.NewOneToOne(nil), container.EmptyNamespace, "", "Name:Name", opts{})))
	require.NoError(t, ops.AddDisassemble(nestedOp(t, "Children", ops)))

	return ops.Publish()
}

func TestDisassemble_RecursiveFlattening(t *testing.T) {
	root := &node{Name: "root", Children: []*node{
		{Name: "a", Children: []*node{{Name: "a1"}, {Name: "a2"}}},
		{Name: "b"},
	}}

	exec := NewDisordered(newRegistry(t), DefaultConfig(), nil)

	grouped, err := exec.Disassemble(treeOps(t), []any{root}, nil)
	require.NoError(t, err)
	require.Len(t, grouped, 1)

	names := make([]string, 0, len(grouped[0].Objects))
	for _, obj := range grouped[0].Objects {
		names = append(names, obj.(*node).Name)
	}

	assert.Equal(t, []string{"root", "a", "b", "a1", "a2"}, names)
}

func TestExecute_ArrayOfStructs(t *testing.T) {
	type cart struct {
		Fixed [2]item
	}

	users := container.FromMap("users", map[int]user{1: {Name: "Ann"}, 2: {Name: "Bo"}})
	h := handler.NewOneToOne(nil)

	itemOps := operation.NewBeanOperations("item", reflect.TypeOf(item{}))
	require.NoError(t, itemOps.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{})))
	itemOps.Publish()

	cartOps := operation.NewBeanOperations("cart", reflect.TypeOf(cart{}))
	require.NoError(t, cartOps.AddDisassemble(nestedOp(t, "Fixed", itemOps)))
	cartOps.Publish()

	target := &cart{Fixed: [2]item{{UserID: 1}, {UserID: 2}}}

	diags, err := NewDisordered(newRegistry(t, users), DefaultConfig(), nil).
		Execute(context.Background(), []any{target}, cartOps, nil)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors())

	assert.Equal(t, "Ann", target.Fixed[0].UserName)
	assert.Equal(t, "Bo", target.Fixed[1].UserName)
}

func TestDisassemble_MaxDepth(t *testing.T) {
	root := &node{Name: "root", Children: []*node{{Name: "a", Children: []*node{{Name: "a1"}}}}}
	ops := treeOps(t)

	tests := []struct {
		name     string
		maxDepth int
		wantErr  bool
	}{
		{name: "unbounded", maxDepth: 0},
		{name: "exact", maxDepth: 3},
		{name: "too shallow", maxDepth: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewDisordered(newRegistry(t), Config{MaxDepth: tt.maxDepth}, nil)

			_, err := exec.Execute(context.Background(), []any{root}, ops, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrDepthExceeded)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestDisassemble_UnresolvedNestedIsSkipped(t *testing.T) {
	ops := operation.NewBeanOperations("order", nil)

	dis, err := operation.NewDisassembleOperation(operation.DisassembleDef{
		Key:     "Items",
		Handler: handler.Reflect{},
		Nested:  operation.DynamicFunc(func(any) (*operation.BeanOperations, error) { return nil, nil }),
	})
	require.NoError(t, err)
	require.NoError(t, ops.AddDisassemble(dis))
	ops.Publish()

	exec := NewDisordered(newRegistry(t), DefaultConfig(), nil)

	grouped, err := exec.Disassemble(ops, []any{&order{Items: []*item{{}}}}, nil)
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	assert.Len(t, grouped[0].Objects, 1)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeDisordered},
		{in: "Ordered", want: ModeOrdered},
		{in: " concurrent ", want: ModeConcurrent},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrConfiguration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, must(ParseMode(got.String())))
		})
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

func TestExecute_Logging(t *testing.T) {
	core, logged := observer.New(zap.DebugLevel)

	h := &recorder{name: "rec", fail: errors.New("boom")}

	ops := operation.NewBeanOperations("order", nil)
	require.NoError(t, ops.AddAssemble(assembleOp(t, h, "users", "UserID", "Name:UserName", opts{id: "a"})))
	ops.Publish()

	reg := newRegistry(t, container.FromMap("users", map[int]user{}))
	exec := NewDisordered(reg, Config{SlowThreshold: time.Nanosecond}, zap.New(core))

	_, err := exec.Execute(context.Background(), []any{&order{}}, ops, nil)
	require.NoError(t, err)

	failed := logged.FilterMessage("dispatch failed").All()
	require.Len(t, failed, 1)

	fields := failed[0].ContextMap()
	assert.Equal(t, "users", fields["namespace"])
	assert.Equal(t, "order.a", fields["operation"])
	assert.Equal(t, "order", fields["bean"])
	assert.NotEmpty(t, fields["run"])

	assert.Equal(t, 1, logged.FilterMessage("slow execution").Len())
}
