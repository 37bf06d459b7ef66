package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// ExtremeFunction keeps the smallest or largest non-null value. NaN is the
// largest float.
type ExtremeFunction struct {
	*BaseFunction
	opts  *Options
	sign  int
	best  types.Value
	found bool
}

func newExtremeFunction(kind spec.AggregateType, opts *Options) *ExtremeFunction {
	sign := 1
	if kind == spec.TypeMin {
		sign = -1
	}
	return &ExtremeFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
		sign:         sign,
	}
}

func (f *ExtremeFunction) New() AggregatorFunction {
	return newExtremeFunction(f.kind, f.opts)
}

func (f *ExtremeFunction) Add(in Input) error {
	if in.Value.IsNull() {
		return nil
	}
	if !f.found || types.Compare(in.Value, f.best, f.opts.Config.NullOrdering)*f.sign > 0 {
		f.best = in.Value
		f.found = true
	}
	return nil
}

func (f *ExtremeFunction) Result() (types.Value, error) {
	if !f.found {
		return types.Null(f.opts.InputKind), nil
	}
	return f.best, nil
}

func (f *ExtremeFunction) Reset() {
	f.best, f.found = types.Value{}, false
}

func (f *ExtremeFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}

// PositionalFunction takes the value of the first or last row, nulls included
type PositionalFunction struct {
	*BaseFunction
	opts  *Options
	value types.Value
	seen  bool
}

func newPositionalFunction(kind spec.AggregateType, opts *Options) *PositionalFunction {
	return &PositionalFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
	}
}

func (f *PositionalFunction) New() AggregatorFunction {
	return newPositionalFunction(f.kind, f.opts)
}

func (f *PositionalFunction) Add(in Input) error {
	if f.kind == spec.TypeFirst && f.seen {
		return nil
	}
	f.value = in.Value
	f.seen = true
	return nil
}

func (f *PositionalFunction) Result() (types.Value, error) {
	if !f.seen {
		return types.Null(f.opts.InputKind), nil
	}
	return f.value, nil
}

func (f *PositionalFunction) Reset() {
	f.value, f.seen = types.Value{}, false
}

func (f *PositionalFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}

// SortedFunction takes the value of the row with the smallest (sorted_first)
// or largest (sorted_last) sort key. Among equal keys sorted_first keeps the
// earliest row and sorted_last the latest, as a stable ascending sort would.
type SortedFunction struct {
	*BaseFunction
	opts  *Options
	key   types.Value
	value types.Value
	seen  bool
}

func newSortedFunction(kind spec.AggregateType, opts *Options) *SortedFunction {
	return &SortedFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
	}
}

func (f *SortedFunction) New() AggregatorFunction {
	return newSortedFunction(f.kind, f.opts)
}

func (f *SortedFunction) Add(in Input) error {
	if !f.seen {
		f.key, f.value, f.seen = in.SortKey, in.Value, true
		return nil
	}
	c := types.Compare(in.SortKey, f.key, f.opts.Config.NullOrdering)
	if (f.kind == spec.TypeSortedFirst && c < 0) || (f.kind == spec.TypeSortedLast && c >= 0) {
		f.key, f.value = in.SortKey, in.Value
	}
	return nil
}

func (f *SortedFunction) Result() (types.Value, error) {
	if !f.seen {
		return types.Null(f.opts.InputKind), nil
	}
	return f.value, nil
}

func (f *SortedFunction) Reset() {
	f.key, f.value, f.seen = types.Value{}, types.Value{}, false
}

func (f *SortedFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}
