package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// distinctSet collects distinct values in first-occurrence order
type distinctSet struct {
	seen   map[string]struct{}
	values []types.Value
}

func newDistinctSet() distinctSet {
	return distinctSet{seen: make(map[string]struct{})}
}

func (s *distinctSet) add(v types.Value) {
	key := v.Key()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.values = append(s.values, v)
}

func (s distinctSet) clone() distinctSet {
	c := distinctSet{seen: make(map[string]struct{}, len(s.seen)), values: make([]types.Value, len(s.values))}
	for k := range s.seen {
		c.seen[k] = struct{}{}
	}
	copy(c.values, s.values)
	return c
}

// CountDistinctFunction counts distinct values, nulls count once when
// CountNulls is set
type CountDistinctFunction struct {
	*BaseFunction
	opts *Options
	set  distinctSet
}

func newCountDistinctFunction(opts *Options) AggregatorFunction {
	return &CountDistinctFunction{
		BaseFunction: NewBaseFunction(spec.TypeCountDistinct, descriptions[spec.TypeCountDistinct]),
		opts:         opts,
		set:          newDistinctSet(),
	}
}

func (f *CountDistinctFunction) New() AggregatorFunction {
	return newCountDistinctFunction(f.opts)
}

func (f *CountDistinctFunction) Add(in Input) error {
	if in.Value.IsNull() && !f.opts.Params.CountNulls {
		return nil
	}
	f.set.add(in.Value)
	return nil
}

func (f *CountDistinctFunction) Result() (types.Value, error) {
	return types.Int(int64(len(f.set.values))), nil
}

func (f *CountDistinctFunction) Reset() {
	f.set = newDistinctSet()
}

func (f *CountDistinctFunction) Clone() AggregatorFunction {
	c := *f
	c.set = f.set.clone()
	return &c
}

// DistinctFunction collects distinct values into a vector
type DistinctFunction struct {
	*BaseFunction
	opts *Options
	set  distinctSet
}

func newDistinctFunction(opts *Options) AggregatorFunction {
	return &DistinctFunction{
		BaseFunction: NewBaseFunction(spec.TypeDistinct, descriptions[spec.TypeDistinct]),
		opts:         opts,
		set:          newDistinctSet(),
	}
}

func (f *DistinctFunction) New() AggregatorFunction {
	return newDistinctFunction(f.opts)
}

func (f *DistinctFunction) Add(in Input) error {
	if in.Value.IsNull() && !f.opts.Params.IncludeNulls {
		return nil
	}
	f.set.add(in.Value)
	return nil
}

func (f *DistinctFunction) Result() (types.Value, error) {
	values := make([]types.Value, len(f.set.values))
	copy(values, f.set.values)
	return types.Vector(values), nil
}

func (f *DistinctFunction) Reset() {
	f.set = newDistinctSet()
}

func (f *DistinctFunction) Clone() AggregatorFunction {
	c := *f
	c.set = f.set.clone()
	return &c
}

// UniqueFunction yields the only candidate value of a group. With zero or
// several candidates it yields the sentinel, or null without one.
type UniqueFunction struct {
	*BaseFunction
	opts      *Options
	candidate types.Value
	count     int
}

func newUniqueFunction(opts *Options) AggregatorFunction {
	return &UniqueFunction{
		BaseFunction: NewBaseFunction(spec.TypeUnique, descriptions[spec.TypeUnique]),
		opts:         opts,
	}
}

func (f *UniqueFunction) New() AggregatorFunction {
	return newUniqueFunction(f.opts)
}

func (f *UniqueFunction) Add(in Input) error {
	if in.Value.IsNull() && !f.opts.Params.IncludeNulls {
		return nil
	}
	switch {
	case f.count == 0:
		f.candidate, f.count = in.Value, 1
	case f.count == 1 && !f.candidate.Equal(in.Value):
		// 第二个不同的值出现后不再需要继续比较
		f.count = 2
	}
	return nil
}

func (f *UniqueFunction) Result() (types.Value, error) {
	if f.count == 1 {
		return f.candidate, nil
	}
	if !f.opts.Params.Sentinel.IsNull() {
		return f.opts.Params.Sentinel, nil
	}
	return types.Null(f.opts.InputKind), nil
}

func (f *UniqueFunction) Reset() {
	f.candidate, f.count = types.Value{}, 0
}

func (f *UniqueFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}

// GroupFunction collects every value of the group, in row order
type GroupFunction struct {
	*BaseFunction
	opts   *Options
	values []types.Value
}

func newGroupFunction(opts *Options) AggregatorFunction {
	return &GroupFunction{
		BaseFunction: NewBaseFunction(spec.TypeGroup, descriptions[spec.TypeGroup]),
		opts:         opts,
	}
}

func (f *GroupFunction) New() AggregatorFunction {
	return newGroupFunction(f.opts)
}

func (f *GroupFunction) Add(in Input) error {
	f.values = append(f.values, in.Value)
	return nil
}

func (f *GroupFunction) Result() (types.Value, error) {
	values := make([]types.Value, len(f.values))
	copy(values, f.values)
	return types.Vector(values), nil
}

func (f *GroupFunction) Reset() {
	f.values = nil
}

func (f *GroupFunction) Clone() AggregatorFunction {
	c := *f
	c.values = append([]types.Value(nil), f.values...)
	return &c
}
