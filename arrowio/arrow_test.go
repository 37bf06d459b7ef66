package arrowio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rulego/tableagg/aggregator"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *types.Table {
	t0 := time.Date(2024, 3, 1, 9, 30, 0, 123, time.UTC)
	return types.MustTable(
		types.MustColumn("sym", "AAPL", nil, "MSFT"),
		types.MustColumn("qty", 100, 50, nil),
		types.MustColumn("price", 10.5, nil, 20.25),
		types.MustColumn("buy", true, false, nil),
		types.MustColumn("ts", t0, nil, t0.Add(time.Second)),
		types.MustColumn("fee", decimal.RequireFromString("0.10"), nil, decimal.RequireFromString("1.25")),
	)
}

func TestRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	table := sample()
	rec, err := ToRecord(table, mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(6), rec.NumCols())
	assert.Equal(t, arrow.INT64, rec.Column(1).DataType().ID())
	assert.Equal(t, arrow.TIMESTAMP, rec.Column(4).DataType().ID())
	assert.Equal(t, 1, rec.Column(0).NullN())

	back, err := FromRecord(rec)
	require.NoError(t, err)
	assert.True(t, table.Equal(back))

	fee, _ := back.Column("fee")
	assert.Equal(t, types.KindDecimal, fee.Kind())
	assert.True(t, fee.Value(2).Decimal().Equal(decimal.RequireFromString("1.25")))
}

func TestAggregatedTableToRecord(t *testing.T) {
	out, err := aggregator.Apply(context.Background(), sample(), []string{"buy"},
		[]spec.AggregationSpec{spec.Must(spec.Sum("qty")), spec.Must(spec.Avg("price"))}, types.SingleThreadedConfig())
	require.NoError(t, err)

	rec, err := ToRecord(out, nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, int64(out.NumRows()), rec.NumRows())
	assert.Equal(t, "qty", rec.ColumnName(1))
}

func TestUnsupportedKinds(t *testing.T) {
	table := types.MustTable(types.MustColumn("v", types.Vector([]types.Value{types.Int(1)})))
	_, err := ToRecord(table, nil)
	assert.True(t, errors.Is(err, types.ErrTypeMismatch))

	_, err = FromRecord(nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestFromRecordWidening(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "b", Type: arrow.PrimitiveTypes.Float32, Nullable: true},
		{Name: "c", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2}, []bool{true, false})
	b.Field(1).(*array.Float32Builder).AppendValues([]float32{1.5, 2.5}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"x", "y"}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	table, err := FromRecord(rec)
	require.NoError(t, err)
	a, _ := table.Column("a")
	assert.Equal(t, types.KindInt, a.Kind())
	assert.True(t, a.Value(1).IsNull())
	c, _ := table.Column("c")
	assert.Equal(t, types.KindString, c.Kind())

	t.Run("非法十进制", func(t *testing.T) {
		md := arrow.NewMetadata([]string{KindMetadataKey}, []string{"decimal"})
		schema := arrow.NewSchema([]arrow.Field{{Name: "d", Type: arrow.BinaryTypes.String, Nullable: true, Metadata: md}}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.StringBuilder).Append("not-a-number")
		rec := b.NewRecord()
		defer rec.Release()
		_, err := FromRecord(rec)
		assert.True(t, errors.Is(err, types.ErrTypeMismatch))
	})
}
