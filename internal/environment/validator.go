package environment

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	oerrors "github.com/opmodel/devenv/internal/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// Validator checks configuration documents against the embedded
// #Environment CUE definition.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	compiled := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compiling environment schema: %w", err)
	}

	schema := compiled.LookupPath(cue.ParsePath("#Environment"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("looking up #Environment: %w", err)
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks cfg. Nil lists are treated as empty. The returned error
// wraps errors.ErrValidation and carries the CUE error details.
func (v *Validator) Validate(cfg *Configuration) error {
	norm := cfg.Clone()
	norm.Normalize()

	data, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return v.ValidateJSON("config.json", data)
}

// ValidateJSON checks a raw JSON document. name is used as the error location.
func (v *Validator) ValidateJSON(name string, data []byte) error {
	value := v.ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return oerrors.NewValidationError(cueerrors.Details(err, nil), name,
			"The document is not valid JSON")
	}

	if err := v.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return oerrors.NewValidationError(cueerrors.Details(err, nil), name,
			"Check the module name, absolute paths, and variable names")
	}
	return nil
}
