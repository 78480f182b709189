package shopsheet

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterRecords evaluates a boolean expression against each record and keeps
// the ones where it holds. The expression sees the fields ShopID, Region and
// LastUpdated, e.g. `Region == "North"` or `ShopID startsWith "S1"`.
//
// An empty expression keeps everything.
func FilterRecords(records []Record, expression string) ([]Record, error) {
	if expression == "" {
		return records, nil
	}

	program, err := compileFilter(expression)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, rec := range records {
		keep, err := runFilter(program, rec)
		if err != nil {
			return nil, fmt.Errorf("evaluate filter %q: %w", expression, err)
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

func compileFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(Record{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return program, nil
}

func runFilter(program *vm.Program, rec Record) (bool, error) {
	result, err := expr.Run(program, rec)
	if err != nil {
		return false, err
	}
	keep, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter evaluated to %T, expected bool", result)
	}
	return keep, nil
}
