package executor

import (
	"go.uber.org/zap"

	"enricher/internal/errs"
	"enricher/internal/operation"
)

// Group is the set of objects enriched under one graph.
type Group struct {
	Bean    *operation.BeanOperations
	Objects []any
}

// groups is an insertion-ordered multimap from graph to objects.
type groups struct {
	order []*Group
	index map[*operation.BeanOperations]*Group
}

func newGroups() *groups {
	return &groups{index: make(map[*operation.BeanOperations]*Group)}
}

func (g *groups) add(bean *operation.BeanOperations, objects ...any) {
	grp, ok := g.index[bean]
	if !ok {
		grp = &Group{Bean: bean}
		g.index[bean] = grp
		g.order = append(g.order, grp)
	}

	grp.Objects = append(grp.Objects, objects...)
}

func (g *groups) objects() []any {
	var out []any
	for _, grp := range g.order {
		out = append(out, grp.Objects...)
	}

	return out
}

// level is a batch of objects waiting to be disassembled.
type level struct {
	bean    *operation.BeanOperations
	objects []any
	depth   int
}

// Disassemble flattens targets and their nested objects into groups keyed by
// graph, in discovery order. Objects are not deduplicated.
func (e *Executor) Disassemble(root *operation.BeanOperations, targets []any, filter operation.Filter) ([]*Group, error) {
	out, err := e.disassemble(root, targets, filter, e.logger)
	if err != nil {
		return nil, err
	}

	return out.order, nil
}

func (e *Executor) disassemble(
	root *operation.BeanOperations,
	targets []any,
	filter operation.Filter,
	logger *zap.Logger,
) (*groups, error) {
	out := newGroups()
	queue := []level{{bean: root, objects: targets, depth: 1}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		out.add(cur.bean, cur.objects...)

		for _, op := range cur.bean.Disassembles() {
			if !filter.Allows(op) {
				continue
			}

			nested, err := e.extract(cur, op, logger)
			if err != nil {
				return nil, err
			}

			if len(nested.order) == 0 {
				continue
			}

			if e.cfg.MaxDepth > 0 && cur.depth+1 > e.cfg.MaxDepth {
				return nil, errs.ErrDepthExceeded.
					WithMsg("%s.%s exceeds max depth %d", cur.bean.Name(), op.Key(), e.cfg.MaxDepth).
					WithData("bean", cur.bean.Name())
			}

			for _, grp := range nested.order {
				queue = append(queue, level{bean: grp.Bean, objects: grp.Objects, depth: cur.depth + 1})
			}
		}
	}

	return out, nil
}

// extract collects the nested objects of one disassemble operation over a
// level, grouped by their resolved graph.
func (e *Executor) extract(cur level, op *operation.DisassembleOperation, logger *zap.Logger) (*groups, error) {
	nested := newGroups()

	for _, obj := range cur.objects {
		items, err := op.Extract(obj)
		if err != nil {
			return nil, errs.ErrConfiguration.WithMsg("disassemble %s.%s", cur.bean.Name(), op.Key()).WithCause(err)
		}

		for _, item := range items {
			bean, err := op.Nested().Resolve(item)
			if err != nil {
				return nil, errs.ErrConfiguration.
					WithMsg("resolve nested operations of %s.%s", cur.bean.Name(), op.Key()).
					WithCause(err)
			}

			if bean == nil {
				logger.Warn("nested object has no operations",
					zap.String("bean", cur.bean.Name()),
					zap.String("operation", op.ID()),
				)

				continue
			}

			if !bean.Active() {
				return nil, errs.ErrInactiveOperations.WithMsg("nested operations %s are not active", bean.Name())
			}

			if bean.Empty() {
				continue
			}

			nested.add(bean, item)
		}
	}

	return nested, nil
}
