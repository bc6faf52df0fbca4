package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/output"
)

// Compile compiles a boolean filter expression. Field names of the
// configuration document are variables; unknown names evaluate to nil.
func Compile(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression,
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("invalid filter expression: %v", err), "",
			`Example: module == "python" && len(install.packages) > 0`)
	}
	return program, nil
}

// Filter returns the configurations for which expression evaluates to true,
// for example:
//
//	module == "python" && "numpy" in install.packages
//
// A document on which evaluation fails does not match.
func Filter(src Source, expression string) (Result, error) {
	program, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	all, err := src.GetAll()
	if err != nil {
		return nil, err
	}

	out := Result{}
	for id, cfg := range all {
		doc, err := document(id, cfg)
		if err != nil {
			output.Debug("skipping unencodable configuration", "id", id, "error", err)
			continue
		}
		ok, err := eval(program, doc)
		if err != nil {
			output.Debug("filter evaluation failed", "id", id, "expression", expression, "error", err)
			continue
		}
		if ok {
			out[id] = cfg
		}
	}
	return out, nil
}

func eval(program *vm.Program, env map[string]interface{}) (bool, error) {
	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned non-boolean result: %T", result)
	}
	return b, nil
}

// Narrow applies Filter to an existing result.
func (r Result) Narrow(expression string) (Result, error) {
	return Filter(SourceFunc(func() (map[string]*environment.Configuration, error) {
		return r, nil
	}), expression)
}
