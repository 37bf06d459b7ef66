package functions

import (
	"github.com/rulego/tableagg/types"
	"github.com/spf13/cast"
)

// numericInput accepts numeric columns and object columns, whose payloads are
// coerced with cast when they are read
func numericInput(kind types.Kind, role string) error {
	if kind.IsNumeric() || kind == types.KindObject {
		return nil
	}
	return types.TypeMismatchf("%s column must be numeric, got %s", role, kind)
}

// toFloat reads a non-null value as float64
func toFloat(v types.Value) (float64, error) {
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	f, err := cast.ToFloat64E(v.Interface())
	if err != nil {
		return 0, types.TypeMismatchf("cannot use %s value %v as a number", v.Kind(), v.Interface())
	}
	return f, nil
}

func bindSum(opts *Options) (types.Kind, error) {
	if err := numericInput(opts.InputKind, "input"); err != nil {
		return 0, err
	}
	if opts.InputKind == types.KindObject {
		return types.KindFloat, nil
	}
	return opts.InputKind, nil
}

func bindAvg(opts *Options) (types.Kind, error) {
	if err := numericInput(opts.InputKind, "input"); err != nil {
		return 0, err
	}
	if opts.InputKind == types.KindDecimal {
		return types.KindDecimal, nil
	}
	return types.KindFloat, nil
}

func bindVariance(opts *Options) (types.Kind, error) {
	if err := numericInput(opts.InputKind, "input"); err != nil {
		return 0, err
	}
	return types.KindFloat, nil
}

func bindOrdered(opts *Options) (types.Kind, error) {
	if !opts.InputKind.IsOrdered() {
		return 0, types.TypeMismatchf("%s column has no ordering", opts.InputKind)
	}
	return opts.InputKind, nil
}

func bindSame(opts *Options) (types.Kind, error) {
	return opts.InputKind, nil
}

func bindSorted(opts *Options) (types.Kind, error) {
	if !opts.SortKind.IsOrdered() {
		return 0, types.TypeMismatchf("order-by column of kind %s has no ordering", opts.SortKind).WithColumn(opts.Params.OrderBy)
	}
	return opts.InputKind, nil
}

func bindPercentile(opts *Options) (types.Kind, error) {
	if !opts.InputKind.IsOrdered() {
		return 0, types.TypeMismatchf("%s column has no ordering", opts.InputKind)
	}
	if !opts.Params.AverageEvenlyDivided {
		return opts.InputKind, nil
	}
	switch opts.InputKind {
	case types.KindInt, types.KindFloat:
		return types.KindFloat, nil
	case types.KindDecimal:
		return types.KindDecimal, nil
	}
	return 0, types.TypeMismatchf("average_evenly_divided requires a numeric column, got %s", opts.InputKind)
}

func bindCount(opts *Options) (types.Kind, error) {
	return types.KindInt, nil
}

func bindVector(opts *Options) (types.Kind, error) {
	return types.KindVector, nil
}

func bindUnique(opts *Options) (types.Kind, error) {
	if !opts.Params.Sentinel.IsNull() {
		sentinel, err := opts.Params.Sentinel.ConvertTo(opts.InputKind)
		if err != nil {
			return 0, types.TypeMismatchf("sentinel %s does not fit a %s column", opts.Params.Sentinel, opts.InputKind)
		}
		opts.Params.Sentinel = sentinel
	}
	return opts.InputKind, nil
}

func bindWeighted(opts *Options) error {
	if err := numericInput(opts.InputKind, "input"); err != nil {
		return err
	}
	if err := numericInput(opts.WeightKind, "weight"); err != nil {
		return err.(*types.Error).WithColumn(opts.Params.Weight)
	}
	return nil
}

func bindWeightedAvg(opts *Options) (types.Kind, error) {
	if err := bindWeighted(opts); err != nil {
		return 0, err
	}
	return types.KindFloat, nil
}

func bindWeightedSum(opts *Options) (types.Kind, error) {
	if err := bindWeighted(opts); err != nil {
		return 0, err
	}
	if opts.InputKind == types.KindInt && opts.WeightKind == types.KindInt {
		return types.KindInt, nil
	}
	return types.KindFloat, nil
}

func bindPartition(opts *Options) (types.Kind, error) {
	if opts.Source == nil {
		return 0, types.InvalidArgumentf("partition requires a source table")
	}
	for _, c := range opts.Columns {
		if _, ok := opts.Source.Column(c); !ok {
			return 0, types.ColumnNotFound(c)
		}
	}
	return types.KindTable, nil
}

func bindFormula(opts *Options) (types.Kind, error) {
	if opts.Evaluator == nil {
		return 0, types.InvalidArgumentf("formula requires an evaluator")
	}
	if opts.Expression == "" {
		return 0, types.InvalidArgumentf("formula expression cannot be empty")
	}
	return types.KindObject, nil
}
