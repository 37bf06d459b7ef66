package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// WeightedFunction computes weighted_avg and weighted_sum. Rows with a null
// value or a null weight are left out of both sums.
type WeightedFunction struct {
	*BaseFunction
	opts    *Options
	count   int
	sum     float64 // Σ v·w
	weights float64 // Σ w
	isum    int64   // Σ v·w for integer columns
}

func newWeightedFunction(kind spec.AggregateType, opts *Options) *WeightedFunction {
	return &WeightedFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
	}
}

func (f *WeightedFunction) New() AggregatorFunction {
	return newWeightedFunction(f.kind, f.opts)
}

func (f *WeightedFunction) integer() bool {
	return f.kind == spec.TypeWeightedSum && f.opts.InputKind == types.KindInt && f.opts.WeightKind == types.KindInt
}

func (f *WeightedFunction) Add(in Input) error {
	if in.Value.IsNull() || in.Weight.IsNull() {
		return nil
	}
	f.count++
	if f.integer() {
		product, ok := mulInt64(in.Value.Int(), in.Weight.Int())
		if !ok {
			return types.Overflowf("weighted product %d * %d overflows int64", in.Value.Int(), in.Weight.Int())
		}
		sum, ok := addInt64(f.isum, product)
		if !ok {
			return types.Overflowf("weighted sum overflows int64")
		}
		f.isum = sum
		return nil
	}
	v, err := toFloat(in.Value)
	if err != nil {
		return err
	}
	w, err := toFloat(in.Weight)
	if err != nil {
		return err
	}
	f.sum += v * w
	f.weights += w
	return nil
}

func (f *WeightedFunction) Result() (types.Value, error) {
	if f.kind == spec.TypeWeightedAvg {
		if f.count == 0 {
			return types.Null(types.KindFloat), nil
		}
		return types.Float(f.sum / f.weights), nil
	}
	if f.integer() {
		if f.count == 0 && !f.opts.Config.EmptySumAsZero {
			return types.Null(types.KindInt), nil
		}
		return types.Int(f.isum), nil
	}
	if f.count == 0 && !f.opts.Config.EmptySumAsZero {
		return types.Null(types.KindFloat), nil
	}
	return types.Float(f.sum), nil
}

func (f *WeightedFunction) Reset() {
	f.count, f.sum, f.weights, f.isum = 0, 0, 0, 0
}

func (f *WeightedFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}
