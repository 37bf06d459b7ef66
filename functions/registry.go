package functions

import (
	"sort"

	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// Definition describes one reduction strategy
type Definition struct {
	Kind        spec.AggregateType
	Description string
	// Bind checks the bound column kinds and returns the output kind. It may
	// normalise parameters in opts, such as converting the unique sentinel to
	// the column kind.
	Bind func(opts *Options) (types.Kind, error)
	// New creates the reduction state for one group
	New func(opts *Options) AggregatorFunction
	// InferKind marks strategies whose output kind is decided from the results
	InferKind bool
}

// descriptions 聚合函数说明
var descriptions = map[spec.AggregateType]string{
	spec.TypeSum:           "sum of non-null values",
	spec.TypeAbsSum:        "sum of absolute non-null values",
	spec.TypeAvg:           "mean of non-null values",
	spec.TypeStd:           "sample standard deviation",
	spec.TypeVar:           "sample variance",
	spec.TypeMin:           "smallest non-null value",
	spec.TypeMax:           "largest non-null value",
	spec.TypeFirst:         "value of the first row",
	spec.TypeLast:          "value of the last row",
	spec.TypeSortedFirst:   "value of the row with the smallest sort key",
	spec.TypeSortedLast:    "value of the row with the largest sort key",
	spec.TypeMedian:        "50th percentile",
	spec.TypePercentile:    "percentile of non-null values",
	spec.TypeCount:         "number of rows",
	spec.TypeCountWhere:    "number of rows matching every filter",
	spec.TypeCountDistinct: "number of distinct values",
	spec.TypeDistinct:      "distinct values in first-occurrence order",
	spec.TypeUnique:        "the single distinct value, or the sentinel",
	spec.TypeGroup:         "every value in row order",
	spec.TypeWeightedAvg:   "weighted mean",
	spec.TypeWeightedSum:   "weighted sum",
	spec.TypePartition:     "nested table of the group's rows",
	spec.TypeFormula:       "formula evaluated over the group's values",
}

// definitions is the fixed strategy table, one entry per aggregation kind
var definitions = map[spec.AggregateType]Definition{
	spec.TypeSum: {
		Bind: bindSum,
		New:  func(opts *Options) AggregatorFunction { return newSumFunction(spec.TypeSum, opts, false) },
	},
	spec.TypeAbsSum: {
		Bind: bindSum,
		New:  func(opts *Options) AggregatorFunction { return newSumFunction(spec.TypeAbsSum, opts, true) },
	},
	spec.TypeAvg: {
		Bind: bindAvg,
		New:  newAvgFunction,
	},
	spec.TypeStd: {
		Bind: bindVariance,
		New:  func(opts *Options) AggregatorFunction { return newVarianceFunction(spec.TypeStd, opts) },
	},
	spec.TypeVar: {
		Bind: bindVariance,
		New:  func(opts *Options) AggregatorFunction { return newVarianceFunction(spec.TypeVar, opts) },
	},
	spec.TypeMin: {
		Bind: bindOrdered,
		New:  func(opts *Options) AggregatorFunction { return newExtremeFunction(spec.TypeMin, opts) },
	},
	spec.TypeMax: {
		Bind: bindOrdered,
		New:  func(opts *Options) AggregatorFunction { return newExtremeFunction(spec.TypeMax, opts) },
	},
	spec.TypeFirst: {
		Bind: bindSame,
		New:  func(opts *Options) AggregatorFunction { return newPositionalFunction(spec.TypeFirst, opts) },
	},
	spec.TypeLast: {
		Bind: bindSame,
		New:  func(opts *Options) AggregatorFunction { return newPositionalFunction(spec.TypeLast, opts) },
	},
	spec.TypeSortedFirst: {
		Bind: bindSorted,
		New:  func(opts *Options) AggregatorFunction { return newSortedFunction(spec.TypeSortedFirst, opts) },
	},
	spec.TypeSortedLast: {
		Bind: bindSorted,
		New:  func(opts *Options) AggregatorFunction { return newSortedFunction(spec.TypeSortedLast, opts) },
	},
	spec.TypeMedian: {
		Bind: bindPercentile,
		New:  func(opts *Options) AggregatorFunction { return newPercentileFunction(spec.TypeMedian, opts) },
	},
	spec.TypePercentile: {
		Bind: bindPercentile,
		New:  func(opts *Options) AggregatorFunction { return newPercentileFunction(spec.TypePercentile, opts) },
	},
	spec.TypeCount: {
		Bind: bindCount,
		New:  func(opts *Options) AggregatorFunction { return newCountFunction(spec.TypeCount, opts) },
	},
	spec.TypeCountWhere: {
		Bind: bindCount,
		New:  func(opts *Options) AggregatorFunction { return newCountFunction(spec.TypeCountWhere, opts) },
	},
	spec.TypeCountDistinct: {
		Bind: bindCount,
		New:  newCountDistinctFunction,
	},
	spec.TypeDistinct: {
		Bind: bindVector,
		New:  newDistinctFunction,
	},
	spec.TypeUnique: {
		Bind: bindUnique,
		New:  newUniqueFunction,
	},
	spec.TypeGroup: {
		Bind: bindVector,
		New:  newGroupFunction,
	},
	spec.TypeWeightedAvg: {
		Bind: bindWeightedAvg,
		New:  func(opts *Options) AggregatorFunction { return newWeightedFunction(spec.TypeWeightedAvg, opts) },
	},
	spec.TypeWeightedSum: {
		Bind: bindWeightedSum,
		New:  func(opts *Options) AggregatorFunction { return newWeightedFunction(spec.TypeWeightedSum, opts) },
	},
	spec.TypePartition: {
		Bind: bindPartition,
		New:  newPartitionFunction,
	},
	spec.TypeFormula: {
		Bind:      bindFormula,
		New:       newFormulaFunction,
		InferKind: true,
	},
}

func init() {
	for kind, def := range definitions {
		def.Kind = kind
		def.Description = descriptions[kind]
		definitions[kind] = def
	}
}

// Lookup returns the strategy of a kind
func Lookup(kind spec.AggregateType) (Definition, bool) {
	def, ok := definitions[kind]
	return def, ok
}

// Create binds opts and creates the first reduction state of a kind
func Create(kind spec.AggregateType, opts *Options) (AggregatorFunction, types.Kind, error) {
	def, ok := Lookup(kind)
	if !ok {
		return nil, types.KindObject, types.InvalidArgumentf("unsupported aggregation %q", kind)
	}
	out, err := def.Bind(opts)
	if err != nil {
		return nil, types.KindObject, err
	}
	return def.New(opts), out, nil
}

// List returns every definition sorted by kind
func List() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Kind < out[j].Kind
	})
	return out
}
