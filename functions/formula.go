package functions

import (
	"github.com/rulego/tableagg/spec"
	"github.com/rulego/tableagg/types"
)

// FormulaFunction gathers the group values of every bound variable and
// evaluates the expression once per group. A row-wise formula is evaluated
// for every row instead and its result is the vector of row results.
type FormulaFunction struct {
	*BaseFunction
	opts    *Options
	vectors [][]interface{}
	rows    []types.Value
}

func newFormulaFunction(opts *Options) AggregatorFunction {
	f := &FormulaFunction{
		BaseFunction: NewBaseFunction(spec.TypeFormula, descriptions[spec.TypeFormula]),
		opts:         opts,
	}
	f.Reset()
	return f
}

func (f *FormulaFunction) New() AggregatorFunction {
	return newFormulaFunction(f.opts)
}

func (f *FormulaFunction) Add(in Input) error {
	if len(in.Args) != len(f.opts.Variables) {
		return types.InvalidArgumentf("formula expects %d arguments, got %d", len(f.opts.Variables), len(in.Args))
	}
	if f.opts.RowWise {
		return f.addRow(in.Args)
	}
	for i, arg := range in.Args {
		f.vectors[i] = append(f.vectors[i], arg.Interface())
	}
	return nil
}

// addRow evaluates one row. A null operand makes the row result null.
func (f *FormulaFunction) addRow(args []types.Value) error {
	vars := make(map[string]interface{}, len(args))
	for i, arg := range args {
		if arg.IsNull() {
			f.rows = append(f.rows, types.Null(types.KindObject))
			return nil
		}
		vars[f.opts.Variables[i]] = arg.Interface()
	}
	result, err := f.opts.Evaluator.Evaluate(f.opts.Expression, vars)
	if err != nil {
		return err
	}
	f.rows = append(f.rows, types.ValueOf(result))
	return nil
}

func (f *FormulaFunction) Result() (types.Value, error) {
	if f.opts.RowWise {
		return types.Vector(append([]types.Value{}, f.rows...)), nil
	}
	vars := make(map[string]interface{}, len(f.opts.Variables))
	for i, name := range f.opts.Variables {
		vector := f.vectors[i]
		if vector == nil {
			vector = []interface{}{}
		}
		vars[name] = vector
	}
	result, err := f.opts.Evaluator.Evaluate(f.opts.Expression, vars)
	if err != nil {
		return types.Value{}, err
	}
	return types.ValueOf(result), nil
}

func (f *FormulaFunction) Reset() {
	f.vectors = make([][]interface{}, len(f.opts.Variables))
	f.rows = nil
}

func (f *FormulaFunction) Clone() AggregatorFunction {
	c := *f
	c.vectors = make([][]interface{}, len(f.vectors))
	for i, v := range f.vectors {
		c.vectors[i] = append([]interface{}(nil), v...)
	}
	c.rows = append([]types.Value(nil), f.rows...)
	return &c
}
