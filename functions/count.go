package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// CountFunction counts rows. For count_where only rows whose filter verdict
// is true are counted.
type CountFunction struct {
	*BaseFunction
	opts  *Options
	count int64
}

func newCountFunction(kind spec.AggregateType, opts *Options) *CountFunction {
	return &CountFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
	}
}

func (f *CountFunction) New() AggregatorFunction {
	return newCountFunction(f.kind, f.opts)
}

func (f *CountFunction) Add(in Input) error {
	if f.kind == spec.TypeCountWhere && !in.Matched {
		return nil
	}
	f.count++
	return nil
}

func (f *CountFunction) Result() (types.Value, error) {
	return types.Int(f.count), nil
}

func (f *CountFunction) Reset() {
	f.count = 0
}

func (f *CountFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}
