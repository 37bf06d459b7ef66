package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/rulego/tableagg/condition"
	"github.com/rulego/tableagg/logger"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trades() *types.Table {
	return types.MustTable(
		types.MustColumn("sym", "AAPL", "MSFT", "AAPL", "GOOG", "MSFT", "AAPL"),
		types.MustColumn("side", "buy", "sell", "sell", "buy", "buy", "buy"),
		types.MustColumn("qty", 100, 50, nil, 10, 70, 300),
		types.MustColumn("price", 10.0, 20.0, 12.0, 30.0, 22.0, 11.0),
	)
}

func run(t *testing.T, table *types.Table, groupBy []string, cfg types.Config, specs ...spec.AggregationSpec) (*types.Table, error) {
	t.Helper()
	r := NewGroupReducer(table, groupBy, specs, Options{Config: cfg, Logger: logger.NewDiscardLogger()})
	return r.Run(context.Background())
}

func mustRun(t *testing.T, table *types.Table, groupBy []string, specs ...spec.AggregationSpec) *types.Table {
	t.Helper()
	out, err := run(t, table, groupBy, types.NewConfig(), specs...)
	require.NoError(t, err)
	return out
}

func column(t *testing.T, table *types.Table, name string) *types.Column {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "missing column %s", name)
	return col
}

func strs(col *types.Column) []string {
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.Value(i).String()
	}
	return out
}

func vectorColumn(t *testing.T, v types.Value) *types.Column {
	t.Helper()
	require.Equal(t, types.KindVector, v.Kind())
	values := make([]interface{}, len(v.Vector()))
	for i, item := range v.Vector() {
		values[i] = item.Interface()
	}
	return types.MustColumn("v", values...)
}

func TestApplyWithoutSpecs(t *testing.T) {
	out := mustRun(t, trades(), []string{"sym"})
	assert.Equal(t, []string{"sym"}, out.ColumnNames())
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, strs(column(t, out, "sym")))

	out = mustRun(t, trades(), []string{"side", "sym"})
	assert.Equal(t, 5, out.NumRows())
	assert.Equal(t, []string{"buy", "sell", "sell", "buy", "buy"}, strs(column(t, out, "side")))
	assert.Equal(t, []string{"AAPL", "MSFT", "AAPL", "GOOG", "MSFT"}, strs(column(t, out, "sym")))
}

func TestApplyColumnOrder(t *testing.T) {
	out := mustRun(t, trades(), []string{"sym"},
		spec.Must(spec.Sum("total = qty")),
		spec.Must(spec.Count("n")),
		spec.Must(spec.Max("price", "qty")),
	)
	assert.Equal(t, []string{"sym", "total", "n", "price", "qty"}, out.ColumnNames())
	assert.Equal(t, []string{"400", "120", "10"}, strs(column(t, out, "total")))
	assert.Equal(t, []string{"3", "2", "1"}, strs(column(t, out, "n")))
	assert.Equal(t, []string{"12", "22", "30"}, strs(column(t, out, "price")))
	assert.Equal(t, types.KindInt, column(t, out, "total").Kind())
	assert.Equal(t, types.KindFloat, column(t, out, "price").Kind())
}

func TestApplyNullPolicies(t *testing.T) {
	table := types.MustTable(
		types.MustColumn("g", "a", "a", "b"),
		types.MustColumn("x", nil, nil, 1.5),
	)
	t.Run("全空分组求和", func(t *testing.T) {
		out := mustRun(t, table, []string{"g"}, spec.Must(spec.Sum("x")))
		assert.Equal(t, []string{"null", "1.5"}, strs(column(t, out, "x")))

		cfg := types.NewConfig()
		cfg.EmptySumAsZero = true
		out, err := run(t, table, []string{"g"}, cfg, spec.Must(spec.Sum("x")))
		require.NoError(t, err)
		assert.Equal(t, []string{"0", "1.5"}, strs(column(t, out, "x")))
	})
	t.Run("单值方差", func(t *testing.T) {
		out := mustRun(t, table, []string{"g"}, spec.Must(spec.Std("x")))
		assert.True(t, column(t, out, "x").Value(1).IsNull())

		cfg := types.NewConfig()
		cfg.UndefinedAsNaN = true
		out, err := run(t, table, []string{"g"}, cfg, spec.Must(spec.Var("x")))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(column(t, out, "x").Value(1).Float()))
	})
	t.Run("空值分组键", func(t *testing.T) {
		keys := types.MustTable(
			types.MustColumn("k", nil, 1, nil),
			types.MustColumn("v", 1, 2, 3),
		)
		out := mustRun(t, keys, []string{"k"}, spec.Must(spec.Sum("v")))
		assert.Equal(t, []string{"null", "1"}, strs(column(t, out, "k")))
		assert.Equal(t, []string{"4", "2"}, strs(column(t, out, "v")))
	})
}

func TestApplyMedianUniqueWeighted(t *testing.T) {
	table := types.MustTable(
		types.MustColumn("g", "a", "a", "a", "a", "b", "b", "b"),
		types.MustColumn("v", 1, 2, 3, 4, 5, 5, nil),
		types.MustColumn("w", 1, 1, 1, 1, 1, 3, 1),
	)
	out := mustRun(t, table, []string{"g"},
		spec.Must(spec.Median(true, "avg_median = v")),
		spec.Must(spec.Median(false, "low_median = v")),
		spec.Must(spec.Unique(false, types.Null(types.KindInt), "u = v")),
	)
	assert.Equal(t, []string{"2.5", "5"}, strs(column(t, out, "avg_median")))
	assert.Equal(t, []string{"2", "5"}, strs(column(t, out, "low_median")))
	assert.Equal(t, []string{"null", "5"}, strs(column(t, out, "u")))

	weighted := types.MustTable(
		types.MustColumn("g", "x", "x"),
		types.MustColumn("v", 2, 4),
		types.MustColumn("w", 1, 3),
	)
	out = mustRun(t, weighted, []string{"g"},
		spec.Must(spec.WeightedAvg("w", "wavg = v")),
		spec.Must(spec.WeightedSum("w", "wsum = v")),
	)
	assert.Equal(t, 3.5, column(t, out, "wavg").Value(0).Float())
	assert.Equal(t, int64(14), column(t, out, "wsum").Value(0).Int())
}

func TestApplyStructuralKinds(t *testing.T) {
	t.Run("count_where", func(t *testing.T) {
		out := mustRun(t, trades(), []string{"sym"},
			spec.Must(spec.CountWhereExpr("big_buys", "side == 'buy'", "qty >= 100")),
		)
		// qty 为空的行不满足条件
		assert.Equal(t, []string{"2", "0", "0"}, strs(column(t, out, "big_buys")))
	})
	t.Run("partition", func(t *testing.T) {
		out := mustRun(t, trades(), []string{"sym"},
			spec.Must(spec.Partition("rows", false)),
			spec.Must(spec.Partition("full", true)),
		)
		nested := column(t, out, "rows").Value(0).Table()
		assert.Equal(t, []string{"side", "qty", "price"}, nested.ColumnNames())
		assert.Equal(t, 3, nested.NumRows())
		assert.Equal(t, []string{"10", "12", "11"}, strs(column(t, nested, "price")))

		full := column(t, out, "full").Value(2).Table()
		assert.Equal(t, []string{"sym", "side", "qty", "price"}, full.ColumnNames())
		assert.Equal(t, 1, full.NumRows())
	})
	t.Run("formula", func(t *testing.T) {
		out := mustRun(t, trades(), []string{"sym"},
			spec.Must(spec.Formula("notional = sum(price) * count(qty)", "")),
			spec.Must(spec.Formula("max(x) - min(x)", "x", "spread = price")),
		)
		assert.Equal(t, []string{"66", "84", "30"}, strs(column(t, out, "notional")))
		assert.Equal(t, []string{"2", "2", "0"}, strs(column(t, out, "spread")))
		assert.Equal(t, types.KindFloat, column(t, out, "spread").Kind())
	})
	t.Run("row formula", func(t *testing.T) {
		table := types.MustTable(
			types.MustColumn("k", "x", "x", "y"),
			types.MustColumn("a", 1, 2, 3),
			types.MustColumn("b", 10, 20, 30),
			types.MustColumn("c", 2, 2, 2),
		)
		out := mustRun(t, table, []string{"k"},
			spec.Must(spec.Formula("out = (a + b) * c", "")),
			spec.Must(spec.Formula("total = sum(a) * 2", "")),
		)
		outCol := column(t, out, "out")
		assert.Equal(t, types.KindVector, outCol.Kind())
		assert.Equal(t, []string{"22", "44"}, strs(vectorColumn(t, outCol.Value(0))))
		assert.Equal(t, []string{"66"}, strs(vectorColumn(t, outCol.Value(1))))
		assert.Equal(t, []string{"6", "6"}, strs(column(t, out, "total")))
	})
	t.Run("sorted", func(t *testing.T) {
		out := mustRun(t, trades(), []string{"sym"},
			spec.Must(spec.SortedFirst("price", "cheapest = side")),
			spec.Must(spec.SortedLast("price", "dearest = side")),
		)
		assert.Equal(t, []string{"buy", "sell", "buy"}, strs(column(t, out, "cheapest")))
		assert.Equal(t, []string{"sell", "buy", "buy"}, strs(column(t, out, "dearest")))
	})
}

func TestApplyWithoutGroupBy(t *testing.T) {
	out := mustRun(t, trades(), nil, spec.Must(spec.Sum("qty")), spec.Must(spec.Count("n")))
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"qty", "n"}, out.ColumnNames())
	assert.Equal(t, int64(530), column(t, out, "qty").Value(0).Int())

	empty := types.MustTable(types.MustColumn("x"))
	out = mustRun(t, empty, nil, spec.Must(spec.Count("n")), spec.Must(spec.Sum("x")))
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, int64(0), column(t, out, "n").Value(0).Int())
	assert.True(t, column(t, out, "x").Value(0).IsNull())

	out = mustRun(t, empty, []string{"x"}, spec.Must(spec.Count("n")))
	assert.Equal(t, 0, out.NumRows())
}

func TestApplyErrors(t *testing.T) {
	cfg := types.NewConfig()
	tests := []struct {
		name    string
		groupBy []string
		specs   []spec.AggregationSpec
		want    error
	}{
		{"重复输出列", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Sum("qty")), spec.Must(spec.Max("qty"))}, types.ErrSchemaConflict},
		{"输出与分组列同名", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.First("sym"))}, types.ErrSchemaConflict},
		{"重复分组列", []string{"sym", "sym"}, nil, types.ErrSchemaConflict},
		{"分组列不存在", []string{"venue"}, nil, types.ErrColumnNotFound},
		{"输入列不存在", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Sum("volume"))}, types.ErrColumnNotFound},
		{"权重列不存在", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.WeightedAvg("volume", "price"))}, types.ErrColumnNotFound},
		{"过滤列不存在", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.CountWhereExpr("n", "venue == 'X'"))}, types.ErrColumnNotFound},
		{"公式列不存在", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Formula("x = sum(volume)", ""))}, types.ErrColumnNotFound},
		{"字符串取平均中位数", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Median(true, "side"))}, types.ErrTypeMismatch},
		{"字符串求和", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Sum("side"))}, types.ErrTypeMismatch},
		{"未指定列", []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Sum())}, types.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, trades(), tt.groupBy, cfg, tt.specs...)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("绑定失败前不读取行", func(t *testing.T) {
		var calls int32
		probe := condition.NewFuncFilter("probe", []string{"qty"}, func(env map[string]interface{}) (bool, error) {
			atomic.AddInt32(&calls, 1)
			return true, nil
		})
		_, err := run(t, trades(), []string{"sym"}, cfg,
			spec.Must(spec.CountWhere("n", probe)),
			spec.Must(spec.Count("n")),
		)
		assert.True(t, errors.Is(err, types.ErrSchemaConflict))
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})
	t.Run("整数溢出", func(t *testing.T) {
		big := types.MustTable(
			types.MustColumn("g", "a", "a"),
			types.MustColumn("v", int64(math.MaxInt64), 1),
		)
		_, err := run(t, big, []string{"g"}, cfg, spec.Must(spec.Sum("v")))
		assert.True(t, errors.Is(err, types.ErrOverflow))
	})
	t.Run("过滤条件出错", func(t *testing.T) {
		failing := condition.NewFuncFilter("failing", nil, func(env map[string]interface{}) (bool, error) {
			return false, fmt.Errorf("boom")
		})
		_, err := run(t, trades(), []string{"sym"}, cfg, spec.Must(spec.CountWhere("n", failing)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
	t.Run("非法配置", func(t *testing.T) {
		bad := types.NewConfig()
		bad.WorkerConfig.Workers = -1
		_, err := run(t, trades(), []string{"sym"}, bad)
		assert.True(t, errors.Is(err, types.ErrInvalidArgument))
	})
}

func TestGroupReducerLifecycle(t *testing.T) {
	r := NewGroupReducer(trades(), []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Count("n"))},
		Options{Config: types.NewConfig(), Logger: logger.NewDiscardLogger()})
	assert.Equal(t, StateInit, r.State())
	assert.NotEmpty(t, r.ID())

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, StateDone, r.State())
	assert.True(t, r.State().Terminal())

	_, err = r.Run(context.Background())
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	failed := NewGroupReducer(trades(), []string{"nope"}, nil, Options{Config: types.NewConfig(), Logger: logger.NewDiscardLogger()})
	_, err = failed.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, failed.State())
}

func TestGroupReducerStats(t *testing.T) {
	r := NewGroupReducer(trades(), []string{"sym"},
		[]spec.AggregationSpec{spec.Must(spec.Count("n")), spec.Must(spec.Sum("qty", "price"))},
		Options{Config: types.NewConfig(), Logger: logger.NewDiscardLogger()})
	assert.Equal(t, int64(0), r.Stats()[GroupCount])

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	stats := r.Stats()
	assert.Equal(t, int64(6), stats[InputRows])
	assert.Equal(t, int64(3), stats[GroupCount])
	assert.Equal(t, int64(3), stats[GroupsReduced])
	assert.Equal(t, int64(6), stats[RowsReduced])
	assert.Equal(t, int64(3), stats[OutputColumns])
	assert.Equal(t, int64(1), stats[Workers])

	failed := NewGroupReducer(trades(), []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.Sum("nope"))},
		Options{Config: types.NewConfig(), Logger: logger.NewDiscardLogger()})
	_, err = failed.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(0), failed.Stats()[InputRows])
	assert.Equal(t, int64(0), failed.Stats()[PartitionNanos])
}

func TestGroupReducerCancellation(t *testing.T) {
	t.Run("运行前取消", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewGroupReducer(trades(), []string{"sym"}, nil, Options{Config: types.NewConfig(), Logger: logger.NewDiscardLogger()})
		out, err := r.Run(ctx)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, types.ErrCancelled))
		assert.Equal(t, StateCancelled, r.State())
	})
	t.Run("分组之间取消", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stop := condition.NewFuncFilter("stop", nil, func(env map[string]interface{}) (bool, error) {
			cancel()
			return true, nil
		})
		r := NewGroupReducer(trades(), []string{"sym"}, []spec.AggregationSpec{spec.Must(spec.CountWhere("n", stop))},
			Options{Config: types.SingleThreadedConfig(), Logger: logger.NewDiscardLogger()})
		out, err := r.Run(ctx)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, types.ErrCancelled))
		assert.Equal(t, StateCancelled, r.State())
	})
}

func bigTable(rows int) *types.Table {
	syms := make([]interface{}, rows)
	qty := make([]interface{}, rows)
	price := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		syms[i] = fmt.Sprintf("S%03d", (i*7919)%211)
		if i%13 == 0 {
			qty[i] = nil
		} else {
			qty[i] = i % 1000
		}
		price[i] = float64(i%97) + 0.25
	}
	return types.MustTable(
		types.MustColumn("sym", syms...),
		types.MustColumn("qty", qty...),
		types.MustColumn("price", price...),
	)
}

func TestApplyParallelDeterminism(t *testing.T) {
	table := bigTable(20000)
	specs := []spec.AggregationSpec{
		spec.Must(spec.Sum("qty")),
		spec.Must(spec.Avg("avg_price = price")),
		spec.Must(spec.Median(true, "median_price = price")),
		spec.Must(spec.First("first_qty = qty")),
		spec.Must(spec.Distinct(false, "distinct_qty = qty")),
		spec.Must(spec.Count("n")),
	}

	serial, err := run(t, table, []string{"sym"}, types.SingleThreadedConfig(), specs...)
	require.NoError(t, err)

	parallel := types.NewConfig()
	parallel.WorkerConfig = types.WorkerConfig{Workers: 8, ParallelThreshold: 0, ChunkSize: 333}
	for i := 0; i < 3; i++ {
		out, err := run(t, table, []string{"sym"}, parallel, specs...)
		require.NoError(t, err)
		assert.True(t, serial.Equal(out), "parallel run %d differs from the serial run", i)
	}
	assert.Equal(t, 211, serial.NumRows())
	assert.Equal(t, "S000", column(t, serial, "sym").Value(0).Str())
}

func TestApplyIdempotent(t *testing.T) {
	specs := []spec.AggregationSpec{
		spec.Must(spec.Sum("qty")),
		spec.Must(spec.Group("prices = price")),
		spec.Must(spec.Partition("rows", true)),
	}
	a, err := Apply(context.Background(), trades(), []string{"sym"}, specs, types.HighThroughputConfig())
	require.NoError(t, err)
	b, err := Apply(context.Background(), trades(), []string{"sym"}, specs, types.HighThroughputConfig())
	require.NoError(t, err)

	ab, err := a.MarshalBinary()
	require.NoError(t, err)
	bb, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, ab, bb)
}

func TestShardOf(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64} {
		for _, h := range []uint64{0, 1, math.MaxUint64, 0x8000000000000000} {
			s := shardOf(h, n)
			assert.True(t, s >= 0 && s < n)
		}
	}
	assert.Equal(t, 0, shardOf(0, 4))
	assert.Equal(t, 3, shardOf(math.MaxUint64, 4))
}

func TestInferKind(t *testing.T) {
	assert.Equal(t, types.KindFloat, inferKind([]types.Value{types.Float(1), types.Null(types.KindObject)}))
	assert.Equal(t, types.KindObject, inferKind([]types.Value{types.Float(1), types.Int(1)}))
	assert.Equal(t, types.KindObject, inferKind(nil))
}
