package functions

import (
	"math"

	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"github.com/shopspring/decimal"
)

// addInt64 adds with overflow detection
func addInt64(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

// mulInt64 multiplies with overflow detection
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return c, false
	}
	return c, true
}

// SumFunction sums non-null values. Integer sums are checked for overflow,
// float sums follow IEEE semantics and decimal sums are exact.
type SumFunction struct {
	*BaseFunction
	opts  *Options
	abs   bool
	count int
	isum  int64
	fsum  float64
	dsum  decimal.Decimal
}

func newSumFunction(kind spec.AggregateType, opts *Options, abs bool) *SumFunction {
	return &SumFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
		abs:          abs,
	}
}

func (f *SumFunction) New() AggregatorFunction {
	return newSumFunction(f.kind, f.opts, f.abs)
}

func (f *SumFunction) Add(in Input) error {
	v := in.Value
	if v.IsNull() {
		return nil
	}
	f.count++
	switch f.opts.InputKind {
	case types.KindInt:
		x := v.Int()
		if f.abs && x < 0 {
			if x == math.MinInt64 {
				return types.Overflowf("absolute value of %d overflows int64", x)
			}
			x = -x
		}
		sum, ok := addInt64(f.isum, x)
		if !ok {
			return types.Overflowf("integer sum overflows int64")
		}
		f.isum = sum
	case types.KindDecimal:
		d := v.Decimal()
		if f.abs {
			d = d.Abs()
		}
		f.dsum = f.dsum.Add(d)
	default:
		x, err := toFloat(v)
		if err != nil {
			return err
		}
		if f.abs {
			x = math.Abs(x)
		}
		f.fsum += x
	}
	return nil
}

func (f *SumFunction) Result() (types.Value, error) {
	if f.count == 0 && !f.opts.Config.EmptySumAsZero {
		return types.Null(f.outputKind()), nil
	}
	switch f.opts.InputKind {
	case types.KindInt:
		return types.Int(f.isum), nil
	case types.KindDecimal:
		return types.Decimal(f.dsum), nil
	default:
		return types.Float(f.fsum), nil
	}
}

func (f *SumFunction) outputKind() types.Kind {
	if f.opts.InputKind == types.KindObject {
		return types.KindFloat
	}
	return f.opts.InputKind
}

func (f *SumFunction) Reset() {
	f.count, f.isum, f.fsum, f.dsum = 0, 0, 0, decimal.Zero
}

func (f *SumFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}

// AvgFunction is the arithmetic mean of non-null values
type AvgFunction struct {
	*BaseFunction
	opts  *Options
	count int64
	sum   float64
	dsum  decimal.Decimal
}

func newAvgFunction(opts *Options) AggregatorFunction {
	return &AvgFunction{
		BaseFunction: NewBaseFunction(spec.TypeAvg, descriptions[spec.TypeAvg]),
		opts:         opts,
	}
}

func (f *AvgFunction) New() AggregatorFunction {
	return newAvgFunction(f.opts)
}

func (f *AvgFunction) Add(in Input) error {
	v := in.Value
	if v.IsNull() {
		return nil
	}
	if f.opts.InputKind == types.KindDecimal {
		f.dsum = f.dsum.Add(v.Decimal())
	} else {
		x, err := toFloat(v)
		if err != nil {
			return err
		}
		f.sum += x
	}
	f.count++
	return nil
}

func (f *AvgFunction) Result() (types.Value, error) {
	if f.opts.InputKind == types.KindDecimal {
		if f.count == 0 {
			return types.Null(types.KindDecimal), nil
		}
		return types.Decimal(f.dsum.Div(decimal.NewFromInt(f.count))), nil
	}
	if f.count == 0 {
		return types.Null(types.KindFloat), nil
	}
	return types.Float(f.sum / float64(f.count)), nil
}

func (f *AvgFunction) Reset() {
	f.count, f.sum, f.dsum = 0, 0, decimal.Zero
}

func (f *AvgFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}

// VarianceFunction computes the sample variance or standard deviation with
// Welford's algorithm and Bessel's correction
type VarianceFunction struct {
	*BaseFunction
	opts  *Options
	count int
	mean  float64
	m2    float64
}

func newVarianceFunction(kind spec.AggregateType, opts *Options) *VarianceFunction {
	return &VarianceFunction{
		BaseFunction: NewBaseFunction(kind, descriptions[kind]),
		opts:         opts,
	}
}

func (f *VarianceFunction) New() AggregatorFunction {
	return newVarianceFunction(f.kind, f.opts)
}

func (f *VarianceFunction) Add(in Input) error {
	if in.Value.IsNull() {
		return nil
	}
	x, err := toFloat(in.Value)
	if err != nil {
		return err
	}
	f.count++
	delta := x - f.mean
	f.mean += delta / float64(f.count)
	f.m2 += delta * (x - f.mean)
	return nil
}

func (f *VarianceFunction) Result() (types.Value, error) {
	if f.count < 2 {
		if f.opts.Config.UndefinedAsNaN {
			return types.Float(math.NaN()), nil
		}
		return types.Null(types.KindFloat), nil
	}
	variance := f.m2 / float64(f.count-1)
	if f.kind == spec.TypeStd {
		return types.Float(math.Sqrt(variance)), nil
	}
	return types.Float(variance), nil
}

func (f *VarianceFunction) Reset() {
	f.count, f.mean, f.m2 = 0, 0, 0
}

func (f *VarianceFunction) Clone() AggregatorFunction {
	c := *f
	return &c
}
