package functions

import (
	"math"

	"github.com/google/btree"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"github.com/shopspring/decimal"
)

const percentileDegree = 16

// percentileItem orders buffered values by value, then by row so that equal
// values stay distinct entries
type percentileItem struct {
	value types.Value
	row   int
}

func (a percentileItem) Less(than btree.Item) bool {
	b := than.(percentileItem)
	if c := types.Compare(a.value, b.value, types.NullsFirst); c != 0 {
		return c < 0
	}
	return a.row < b.row
}

// PercentileFunction buffers the non-null values of a group in an ordered
// tree. The target position is p*(n-1); when it falls between two values the
// lower one is taken, or both are averaged when AverageEvenlyDivided is set.
type PercentileFunction struct {
	*BaseFunction
	opts   *Options
	tree   *btree.BTree
	done   bool
	result types.Value
}

func newPercentileFunction(kind spec.AggregateType, opts *Options) *PercentileFunction {
	return &PercentileFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
		tree:         btree.New(percentileDegree),
	}
}

func (f *PercentileFunction) New() AggregatorFunction {
	return newPercentileFunction(f.kind, f.opts)
}

func (f *PercentileFunction) Add(in Input) error {
	if in.Value.IsNull() {
		return nil
	}
	if f.done {
		return types.InvalidArgumentf("%s: value added after the result was computed", f.name)
	}
	f.tree.ReplaceOrInsert(percentileItem{value: in.Value, row: in.Row})
	return nil
}

func (f *PercentileFunction) Result() (types.Value, error) {
	if f.done {
		return f.result, nil
	}
	result, err := f.compute()
	if err != nil {
		return types.Value{}, err
	}
	// 结果计算完成后释放缓冲
	f.result, f.done, f.tree = result, true, nil
	return result, nil
}

func (f *PercentileFunction) outputKind() types.Kind {
	if !f.opts.Params.AverageEvenlyDivided {
		return f.opts.InputKind
	}
	if f.opts.InputKind == types.KindDecimal {
		return types.KindDecimal
	}
	return types.KindFloat
}

func (f *PercentileFunction) compute() (types.Value, error) {
	n := f.tree.Len()
	if n == 0 {
		return types.Null(f.outputKind()), nil
	}
	pos := f.opts.Params.Percentile * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if hi >= n {
		hi = n - 1
	}

	var low, high types.Value
	i := 0
	f.tree.Ascend(func(item btree.Item) bool {
		if i == lo {
			low = item.(percentileItem).value
		}
		if i == hi {
			high = item.(percentileItem).value
			return false
		}
		i++
		return true
	})

	if !f.opts.Params.AverageEvenlyDivided {
		return low, nil
	}
	if f.outputKind() == types.KindDecimal {
		a, _ := low.AsDecimal()
		if lo == hi {
			return types.Decimal(a), nil
		}
		b, _ := high.AsDecimal()
		return types.Decimal(a.Add(b).Div(decimal.NewFromInt(2))), nil
	}
	a, ok := low.AsFloat()
	if !ok {
		return types.Value{}, types.TypeMismatchf("cannot average %s values", low.Kind())
	}
	if lo == hi {
		return types.Float(a), nil
	}
	b, _ := high.AsFloat()
	return types.Float((a + b) / 2), nil
}

func (f *PercentileFunction) Reset() {
	f.tree = btree.New(percentileDegree)
	f.done, f.result = false, types.Value{}
}

func (f *PercentileFunction) Clone() AggregatorFunction {
	c := *f
	if f.tree != nil {
		c.tree = f.tree.Clone()
	}
	return &c
}
