package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// PartitionFunction records the rows of a group and builds a nested table
// from them
type PartitionFunction struct {
	*BaseFunction
	opts *Options
	rows []int
}

func newPartitionFunction(opts *Options) AggregatorFunction {
	return &PartitionFunction{
		BaseFunction: NewBaseFunction(spec.TypePartition, descriptions[spec.TypePartition]),
		opts:         opts,
	}
}

func (f *PartitionFunction) New() AggregatorFunction {
	return newPartitionFunction(f.opts)
}

func (f *PartitionFunction) Add(in Input) error {
	f.rows = append(f.rows, in.Row)
	return nil
}

func (f *PartitionFunction) Result() (types.Value, error) {
	t, err := f.opts.Source.Select(f.rows, f.opts.Columns...)
	if err != nil {
		return types.Value{}, err
	}
	return types.TableValue(t), nil
}

func (f *PartitionFunction) Reset() {
	f.rows = nil
}

func (f *PartitionFunction) Clone() AggregatorFunction {
	c := *f
	c.rows = append([]int(nil), f.rows...)
	return &c
}
