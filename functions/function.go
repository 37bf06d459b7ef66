package functions

import (
	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// Function 函数接口定义
type Function interface {
	// GetName 获取函数名称
	GetName() string
	// GetKind 获取聚合类型
	GetKind() spec.AggregateType
	// GetDescription 获取函数描述
	GetDescription() string
}

// AggregatorFunction is the per-group reduction state of one output column
type AggregatorFunction interface {
	Function
	// New creates a fresh state sharing the bound options
	New() AggregatorFunction
	// Add consumes one row of the group, rows arrive in table order
	Add(in Input) error
	// Result returns the reduced value
	Result() (types.Value, error)
	// Reset clears the state
	Reset()
	// Clone copies the state
	Clone() AggregatorFunction
}

// Input is one row of a group as seen by a reduction
type Input struct {
	// Row is the row index in the source table
	Row   int
	Value types.Value
	// Weight is set for weighted_avg and weighted_sum
	Weight types.Value
	// SortKey is set for sorted_first and sorted_last
	SortKey types.Value
	// Matched is the filter verdict for count_where
	Matched bool
	// Args holds the row values of the formula variables, in Options.Variables order
	Args []types.Value
}

// Options are bound once per output column and shared read-only by every
// group's state
type Options struct {
	Config types.Config
	Params spec.Params
	// InputKind is the kind of the source column
	InputKind types.Kind
	// WeightKind is the kind of the weight column
	WeightKind types.Kind
	// SortKind is the kind of the order-by column
	SortKind types.Kind

	// Source and Columns describe the nested table built by partition
	Source  *types.Table
	Columns []string

	// Evaluator, Expression and Variables drive formula evaluation
	Evaluator  formula.Evaluator
	Expression string
	Variables  []string
	// RowWise 为 true 时逐行求值，变量绑定该行的值，结果为每行结果组成的向量
	RowWise bool
}

// BaseFunction 基础函数实现，提供通用功能
type BaseFunction struct {
	name        string
	kind        spec.AggregateType
	description string
}

// NewBaseFunction 创建基础函数
func NewBaseFunction(kind spec.AggregateType, description string) *BaseFunction {
	return &BaseFunction{name: string(kind), kind: kind, description: description}
}

func (bf *BaseFunction) GetName() string {
	return bf.name
}

func (bf *BaseFunction) GetKind() spec.AggregateType {
	return bf.kind
}

func (bf *BaseFunction) GetDescription() string {
	return bf.description
}
