package functions

import (
	"errors"
	"math"
	"testing"

	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reduce 创建聚合器并依次添加输入
func reduce(t *testing.T, kind spec.AggregateType, opts *Options, inputs ...Input) types.Value {
	t.Helper()
	fn, _, err := Create(kind, opts)
	require.NoError(t, err)
	for i, in := range inputs {
		in.Row = i
		require.NoError(t, fn.Add(in))
	}
	v, err := fn.Result()
	require.NoError(t, err)
	return v
}

func values(items ...interface{}) []Input {
	inputs := make([]Input, len(items))
	for i, item := range items {
		inputs[i] = Input{Value: types.ValueOf(item)}
	}
	return inputs
}

func optsFor(kind types.Kind) *Options {
	return &Options{Config: types.NewConfig(), InputKind: kind}
}

func TestSumFunction(t *testing.T) {
	t.Run("整数求和", func(t *testing.T) {
		v := reduce(t, spec.TypeSum, optsFor(types.KindInt), values(1, nil, 2, 3)...)
		assert.Equal(t, types.KindInt, v.Kind())
		assert.Equal(t, int64(6), v.Int())
	})
	t.Run("绝对值求和", func(t *testing.T) {
		v := reduce(t, spec.TypeAbsSum, optsFor(types.KindFloat), values(-1.5, 2.0)...)
		assert.Equal(t, 3.5, v.Float())
	})
	t.Run("全空返回null", func(t *testing.T) {
		v := reduce(t, spec.TypeSum, optsFor(types.KindInt), values(nil, nil)...)
		assert.True(t, v.IsNull())
		assert.Equal(t, types.KindInt, v.Kind())
	})
	t.Run("全空返回0", func(t *testing.T) {
		opts := optsFor(types.KindFloat)
		opts.Config.EmptySumAsZero = true
		v := reduce(t, spec.TypeSum, opts, values(nil)...)
		assert.Equal(t, 0.0, v.Float())
	})
	t.Run("NaN传播", func(t *testing.T) {
		v := reduce(t, spec.TypeSum, optsFor(types.KindFloat), values(1.0, math.NaN())...)
		assert.True(t, math.IsNaN(v.Float()))
	})
	t.Run("十进制精确求和", func(t *testing.T) {
		d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
		v := reduce(t, spec.TypeSum, optsFor(types.KindDecimal), values(d("0.1"), d("0.2"))...)
		assert.True(t, v.Decimal().Equal(d("0.3")))
	})
	t.Run("对象列转换", func(t *testing.T) {
		v := reduce(t, spec.TypeSum, optsFor(types.KindObject), values("1.5", 2)...)
		assert.Equal(t, 3.5, v.Float())
	})
	t.Run("整数溢出", func(t *testing.T) {
		fn, _, err := Create(spec.TypeSum, optsFor(types.KindInt))
		require.NoError(t, err)
		require.NoError(t, fn.Add(Input{Value: types.Int(math.MaxInt64)}))
		err = fn.Add(Input{Value: types.Int(1)})
		assert.True(t, errors.Is(err, types.ErrOverflow))

		abs, _, err := Create(spec.TypeAbsSum, optsFor(types.KindInt))
		require.NoError(t, err)
		assert.True(t, errors.Is(abs.Add(Input{Value: types.Int(math.MinInt64)}), types.ErrOverflow))
	})
	t.Run("类型不匹配", func(t *testing.T) {
		_, _, err := Create(spec.TypeSum, optsFor(types.KindString))
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
}

func TestAvgAndVariance(t *testing.T) {
	v := reduce(t, spec.TypeAvg, optsFor(types.KindInt), values(1, 2, nil, 4)...)
	assert.InDelta(t, 7.0/3.0, v.Float(), 1e-12)

	v = reduce(t, spec.TypeAvg, optsFor(types.KindInt), values(nil)...)
	assert.True(t, v.IsNull())

	v = reduce(t, spec.TypeVar, optsFor(types.KindFloat), values(2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0)...)
	assert.InDelta(t, 32.0/7.0, v.Float(), 1e-12)

	v = reduce(t, spec.TypeStd, optsFor(types.KindInt), values(1, 2, 3, 4)...)
	assert.InDelta(t, 1.2909944, v.Float(), 1e-6)

	t.Run("单个值方差未定义", func(t *testing.T) {
		v := reduce(t, spec.TypeStd, optsFor(types.KindFloat), values(1.0)...)
		assert.True(t, v.IsNull())

		opts := optsFor(types.KindFloat)
		opts.Config.UndefinedAsNaN = true
		v = reduce(t, spec.TypeVar, opts, values(1.0)...)
		assert.True(t, math.IsNaN(v.Float()))
	})
}

func TestExtremeAndPositional(t *testing.T) {
	assert.Equal(t, int64(1), reduce(t, spec.TypeMin, optsFor(types.KindInt), values(3, nil, 1, 2)...).Int())
	assert.Equal(t, int64(3), reduce(t, spec.TypeMax, optsFor(types.KindInt), values(3, nil, 1, 2)...).Int())
	assert.Equal(t, "b", reduce(t, spec.TypeMax, optsFor(types.KindString), values("a", "b")...).Str())

	// NaN 视为最大值
	assert.True(t, math.IsNaN(reduce(t, spec.TypeMax, optsFor(types.KindFloat), values(1.0, math.NaN(), 2.0)...).Float()))
	assert.Equal(t, 1.0, reduce(t, spec.TypeMin, optsFor(types.KindFloat), values(math.NaN(), 1.0)...).Float())

	assert.True(t, reduce(t, spec.TypeFirst, optsFor(types.KindInt), values(nil, 1)...).IsNull())
	assert.Equal(t, int64(1), reduce(t, spec.TypeLast, optsFor(types.KindInt), values(nil, 1)...).Int())

	_, _, err := Create(spec.TypeMin, optsFor(types.KindObject))
	assert.True(t, errors.Is(err, types.ErrTypeMismatch))
}

func TestSortedFunction(t *testing.T) {
	opts := &Options{Config: types.NewConfig(), InputKind: types.KindString, SortKind: types.KindInt}
	inputs := []Input{
		{Value: types.String("a"), SortKey: types.Int(3)},
		{Value: types.String("b"), SortKey: types.Int(1)},
		{Value: types.String("c"), SortKey: types.Int(1)},
		{Value: types.String("d"), SortKey: types.Int(3)},
	}
	// 相同排序键按原始行序
	assert.Equal(t, "b", reduce(t, spec.TypeSortedFirst, opts, inputs...).Str())
	assert.Equal(t, "d", reduce(t, spec.TypeSortedLast, opts, inputs...).Str())

	t.Run("空值排序", func(t *testing.T) {
		withNull := append([]Input{{Value: types.String("n"), SortKey: types.Null(types.KindInt)}}, inputs...)
		assert.Equal(t, "n", reduce(t, spec.TypeSortedFirst, opts, withNull...).Str())

		last := *opts
		last.Config.NullOrdering = types.NullsLast
		assert.Equal(t, "n", reduce(t, spec.TypeSortedLast, &last, withNull...).Str())
	})
	t.Run("排序列不可比较", func(t *testing.T) {
		bad := &Options{Config: types.NewConfig(), InputKind: types.KindInt, SortKind: types.KindVector}
		_, _, err := Create(spec.TypeSortedFirst, bad)
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
}

func TestPercentileFunction(t *testing.T) {
	median := func(average bool, kind types.Kind) *Options {
		return &Options{
			Config:    types.NewConfig(),
			InputKind: kind,
			Params:    spec.Params{Percentile: 0.5, AverageEvenlyDivided: average},
		}
	}
	t.Run("中位数取平均", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(true, types.KindInt), values(4, 1, 3, 2)...)
		assert.Equal(t, types.KindFloat, v.Kind())
		assert.Equal(t, 2.5, v.Float())
	})
	t.Run("中位数取低位", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(false, types.KindInt), values(4, 1, 3, 2)...)
		assert.Equal(t, types.KindInt, v.Kind())
		assert.Equal(t, int64(2), v.Int())
	})
	t.Run("奇数个值", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(true, types.KindInt), values(5, nil, 1, 3)...)
		assert.Equal(t, 3.0, v.Float())
	})
	t.Run("重复值", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(false, types.KindInt), values(2, 2, 2, 9)...)
		assert.Equal(t, int64(2), v.Int())
	})
	t.Run("十进制平均", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(true, types.KindDecimal),
			values(decimal.NewFromInt(1), decimal.NewFromInt(2))...)
		assert.True(t, v.Decimal().Equal(decimal.RequireFromString("1.5")))
	})
	t.Run("百分位", func(t *testing.T) {
		opts := median(false, types.KindFloat)
		opts.Params.Percentile = 1
		assert.Equal(t, 9.0, reduce(t, spec.TypePercentile, opts, values(9.0, 1.0, 5.0)...).Float())
		opts.Params.Percentile = 0
		assert.Equal(t, 1.0, reduce(t, spec.TypePercentile, opts, values(9.0, 1.0, 5.0)...).Float())
		opts.Params.Percentile = 0.25
		opts.Params.AverageEvenlyDivided = true
		// pos = 0.25 * 4 = 1
		assert.Equal(t, 2.0, reduce(t, spec.TypePercentile, opts, values(1.0, 2.0, 3.0, 4.0, 5.0)...).Float())
	})
	t.Run("字符串", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(false, types.KindString), values("c", "a", "b", "d")...)
		assert.Equal(t, "b", v.Str())

		_, _, err := Create(spec.TypeMedian, median(true, types.KindString))
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
	t.Run("空组", func(t *testing.T) {
		v := reduce(t, spec.TypeMedian, median(true, types.KindInt), values(nil)...)
		assert.True(t, v.IsNull())
		assert.Equal(t, types.KindFloat, v.Kind())
	})
	t.Run("结果后释放缓冲", func(t *testing.T) {
		fn, _, err := Create(spec.TypeMedian, median(false, types.KindInt))
		require.NoError(t, err)
		require.NoError(t, fn.Add(Input{Value: types.Int(1)}))
		clone := fn.Clone()
		first, err := fn.Result()
		require.NoError(t, err)
		again, err := fn.Result()
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Error(t, fn.Add(Input{Value: types.Int(2)}))

		require.NoError(t, clone.Add(Input{Value: types.Int(3), Row: 1}))
		v, err := clone.Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), v.Int())
	})
}

func TestDistinctFunctions(t *testing.T) {
	t.Run("计数去重", func(t *testing.T) {
		assert.Equal(t, int64(2), reduce(t, spec.TypeCountDistinct, optsFor(types.KindInt), values(1, 1, nil, 2, nil)...).Int())
		opts := optsFor(types.KindInt)
		opts.Params.CountNulls = true
		assert.Equal(t, int64(3), reduce(t, spec.TypeCountDistinct, opts, values(1, 1, nil, 2, nil)...).Int())
	})
	t.Run("去重集合", func(t *testing.T) {
		v := reduce(t, spec.TypeDistinct, optsFor(types.KindInt), values(3, 1, nil, 3, 2)...)
		assert.Equal(t, "[3, 1, 2]", v.String())
		opts := optsFor(types.KindInt)
		opts.Params.IncludeNulls = true
		v = reduce(t, spec.TypeDistinct, opts, values(3, nil, 1, nil)...)
		assert.Equal(t, "[3, null, 1]", v.String())
	})
	t.Run("分组收集", func(t *testing.T) {
		v := reduce(t, spec.TypeGroup, optsFor(types.KindInt), values(3, nil, 3)...)
		assert.Equal(t, "[3, null, 3]", v.String())
	})
	t.Run("唯一值", func(t *testing.T) {
		assert.Equal(t, int64(5), reduce(t, spec.TypeUnique, optsFor(types.KindInt), values(5, 5, nil)...).Int())
		assert.True(t, reduce(t, spec.TypeUnique, optsFor(types.KindInt), values(5, 7)...).IsNull())
		assert.True(t, reduce(t, spec.TypeUnique, optsFor(types.KindInt), values(nil)...).IsNull())

		opts := optsFor(types.KindInt)
		opts.Params = spec.Params{IncludeNulls: true, Sentinel: types.Float(-1)}
		v := reduce(t, spec.TypeUnique, opts, values(5, 5, nil)...)
		assert.Equal(t, types.KindInt, v.Kind())
		assert.Equal(t, int64(-1), v.Int())

		opts = optsFor(types.KindInt)
		opts.Params = spec.Params{Sentinel: types.Int(-1)}
		assert.Equal(t, int64(-1), reduce(t, spec.TypeUnique, opts, values(5, 7)...).Int())
	})
	t.Run("哨兵类型不匹配", func(t *testing.T) {
		opts := optsFor(types.KindInt)
		opts.Params = spec.Params{Sentinel: types.String("none")}
		_, _, err := Create(spec.TypeUnique, opts)
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
}

func TestCountFunctions(t *testing.T) {
	assert.Equal(t, int64(3), reduce(t, spec.TypeCount, optsFor(types.KindInt), values(nil, 1, 2)...).Int())

	inputs := []Input{{Matched: true}, {Matched: false}, {Matched: true}}
	assert.Equal(t, int64(2), reduce(t, spec.TypeCountWhere, optsFor(types.KindObject), inputs...).Int())
}

func TestWeightedFunctions(t *testing.T) {
	weighted := func(v, w interface{}) Input {
		return Input{Value: types.ValueOf(v), Weight: types.ValueOf(w)}
	}
	opts := &Options{Config: types.NewConfig(), InputKind: types.KindInt, WeightKind: types.KindInt}

	t.Run("加权平均", func(t *testing.T) {
		v := reduce(t, spec.TypeWeightedAvg, opts, weighted(2, 1), weighted(4, 3))
		assert.Equal(t, 3.5, v.Float())
	})
	t.Run("空值排除", func(t *testing.T) {
		v := reduce(t, spec.TypeWeightedAvg, opts, weighted(2, 1), weighted(nil, 100), weighted(100, nil), weighted(4, 3))
		assert.Equal(t, 3.5, v.Float())
		assert.True(t, reduce(t, spec.TypeWeightedAvg, opts, weighted(nil, 1)).IsNull())
	})
	t.Run("整数加权和", func(t *testing.T) {
		v := reduce(t, spec.TypeWeightedSum, opts, weighted(2, 1), weighted(4, 3))
		assert.Equal(t, types.KindInt, v.Kind())
		assert.Equal(t, int64(14), v.Int())

		fn, _, err := Create(spec.TypeWeightedSum, opts)
		require.NoError(t, err)
		assert.True(t, errors.Is(fn.Add(weighted(math.MaxInt64, 2)), types.ErrOverflow))
	})
	t.Run("浮点加权和", func(t *testing.T) {
		fopts := &Options{Config: types.NewConfig(), InputKind: types.KindFloat, WeightKind: types.KindInt}
		v := reduce(t, spec.TypeWeightedSum, fopts, weighted(1.5, 2))
		assert.Equal(t, 3.0, v.Float())
	})
	t.Run("权重列类型", func(t *testing.T) {
		bad := &Options{Config: types.NewConfig(), InputKind: types.KindInt, WeightKind: types.KindString}
		_, _, err := Create(spec.TypeWeightedAvg, bad)
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
}

func TestPartitionFunction(t *testing.T) {
	source := types.MustTable(
		types.MustColumn("sym", "A", "B", "A"),
		types.MustColumn("qty", 1, 2, 3),
	)
	opts := &Options{Config: types.NewConfig(), Source: source, Columns: []string{"qty"}}
	fn, kind, err := Create(spec.TypePartition, opts)
	require.NoError(t, err)
	assert.Equal(t, types.KindTable, kind)
	require.NoError(t, fn.Add(Input{Row: 0}))
	require.NoError(t, fn.Add(Input{Row: 2}))
	v, err := fn.Result()
	require.NoError(t, err)
	nested := v.Table()
	assert.Equal(t, 2, nested.NumRows())
	assert.Equal(t, []string{"qty"}, nested.ColumnNames())
	qty, _ := nested.Column("qty")
	assert.Equal(t, int64(3), qty.Value(1).Int())

	_, _, err = Create(spec.TypePartition, &Options{Source: source, Columns: []string{"missing"}})
	assert.True(t, errors.Is(err, types.ErrColumnNotFound))
}

func TestFormulaFunction(t *testing.T) {
	opts := &Options{
		Config:     types.NewConfig(),
		Evaluator:  formula.NewExprEvaluator(),
		Expression: "max(b) - min(a)",
		Variables:  []string{"a", "b"},
	}
	fn, kind, err := Create(spec.TypeFormula, opts)
	require.NoError(t, err)
	assert.Equal(t, types.KindObject, kind)
	require.NoError(t, fn.Add(Input{Args: []types.Value{types.Float(1), types.Float(5)}}))
	require.NoError(t, fn.Add(Input{Args: []types.Value{types.Float(2), types.Null(types.KindFloat)}}))
	v, err := fn.Result()
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Float())

	assert.Error(t, fn.Add(Input{Args: []types.Value{types.Float(1)}}))

	def, ok := Lookup(spec.TypeFormula)
	require.True(t, ok)
	assert.True(t, def.InferKind)

	t.Run("逐行求值", func(t *testing.T) {
		rowOpts := &Options{
			Config:     types.NewConfig(),
			Evaluator:  formula.NewExprEvaluator(),
			Expression: "(a + b) * c",
			Variables:  []string{"a", "b", "c"},
			RowWise:    true,
		}
		fn, _, err := Create(spec.TypeFormula, rowOpts)
		require.NoError(t, err)
		require.NoError(t, fn.Add(Input{Args: []types.Value{types.Int(1), types.Int(10), types.Int(2)}}))
		require.NoError(t, fn.Add(Input{Args: []types.Value{types.Int(2), types.Null(types.KindInt), types.Int(2)}}))
		require.NoError(t, fn.Add(Input{Args: []types.Value{types.Int(3), types.Int(30), types.Float(0.5)}}))

		clone := fn.Clone()
		v, err := fn.Result()
		require.NoError(t, err)
		require.Equal(t, types.KindVector, v.Kind())
		items := v.Vector()
		require.Len(t, items, 3)
		assert.Equal(t, int64(22), items[0].Int())
		assert.True(t, items[1].IsNull())
		assert.Equal(t, 16.5, items[2].Float())

		fn.Reset()
		v, err = fn.Result()
		require.NoError(t, err)
		assert.Empty(t, v.Vector())

		v, err = clone.Result()
		require.NoError(t, err)
		assert.Len(t, v.Vector(), 3)

		// 行值类型不支持运算
		fn = fn.New()
		assert.Error(t, fn.Add(Input{Args: []types.Value{types.String("x"), types.Bool(true), types.Int(1)}}))
	})
}

func TestRegistry(t *testing.T) {
	// 每种聚合类型都有对应的实现
	for _, kind := range spec.AllTypes {
		def, ok := Lookup(kind)
		require.True(t, ok, kind)
		assert.Equal(t, kind, def.Kind)
		assert.NotEmpty(t, def.Description)
	}
	assert.Len(t, List(), len(spec.AllTypes))

	_, _, err := Create(spec.AggregateType("mode"), optsFor(types.KindInt))
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestNewResetClone(t *testing.T) {
	for _, kind := range []spec.AggregateType{spec.TypeSum, spec.TypeAvg, spec.TypeMax, spec.TypeLast, spec.TypeCountDistinct, spec.TypeGroup, spec.TypeMedian} {
		t.Run(string(kind), func(t *testing.T) {
			opts := optsFor(types.KindInt)
			opts.Params.Percentile = 0.5
			opts.Params.AverageEvenlyDivided = true
			fn, _, err := Create(kind, opts)
			require.NoError(t, err)
			assert.Equal(t, string(kind), fn.GetName())
			assert.Equal(t, kind, fn.GetKind())

			require.NoError(t, fn.Add(Input{Value: types.Int(1)}))
			clone := fn.Clone()
			require.NoError(t, clone.Add(Input{Value: types.Int(7), Row: 1}))

			a, err := fn.Result()
			require.NoError(t, err)
			b, err := clone.Result()
			require.NoError(t, err)
			assert.NotEqual(t, a.String(), b.String())

			fresh := fn.New()
			require.NoError(t, fresh.Add(Input{Value: types.Int(1)}))
			c, err := fresh.Result()
			require.NoError(t, err)
			assert.Equal(t, a.String(), c.String())

			fresh.Reset()
			require.NoError(t, fresh.Add(Input{Value: types.Int(1)}))
			d, err := fresh.Result()
			require.NoError(t, err)
			assert.Equal(t, a.String(), d.String())
		})
	}
}
