// This file contains the logic for turning HCL expressions of entity blocks
// (base types, value sets, bounds) into cty and entity values.

package hcl_adapter

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/zclconf/go-cty/cty"
)

// baseTypeFromExpr converts a base type keyword into its cty.Type. Both the
// bare keyword (base_type = number) and its quoted form are accepted. An
// omitted base type yields cty.NilType so the visitor can report it.
func baseTypeFromExpr(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if !isExprDefined(ctx, expr, "base_type") {
		return cty.NilType, nil
	}

	var keyword string
	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("invalid base type: traversal path is not a single identifier")
		}
		keyword = v.Traversal.RootName()
	default:
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilType, fmt.Errorf("invalid base type: %w", diags)
		}
		if !val.Type().Equals(cty.String) || val.IsNull() {
			return cty.NilType, fmt.Errorf("invalid base type: expected a type keyword, got %s", val.Type().FriendlyName())
		}
		keyword = val.AsString()
	}

	logger.Debug("Parsing base type keyword.", "keyword", keyword)
	switch strings.ToLower(keyword) {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	}
	return cty.NilType, fmt.Errorf("unknown base type %q (want string, number or bool)", keyword)
}

// valuesFromExpr evaluates a list of literal values. Elements are kept with
// the type they were written in; conformance to the base type is a
// validation concern, not a loading one.
func valuesFromExpr(ctx context.Context, expr hcl.Expression, attrName string) ([]cty.Value, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid %s: %w", attrName, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("invalid %s: expected a list of values, got %s", attrName, ty.FriendlyName())
	}

	values := make([]cty.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if !v.Type().IsPrimitiveType() {
			return nil, fmt.Errorf("invalid %s: element of type %s is not a primitive value", attrName, v.Type().FriendlyName())
		}
		values = append(values, v)
	}
	return values, nil
}

// upperBoundFromExpr reads an upper bound written as a non-negative whole
// number or "*". An omitted bound defaults to 1. Only "*" maps to
// entity.Unbounded.
func upperBoundFromExpr(ctx context.Context, expr hcl.Expression) (int, error) {
	if !isExprDefined(ctx, expr, "upper_bound") {
		return 1, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid upper_bound: %w", diags)
	}
	switch {
	case val.IsNull():
		return 1, nil
	case val.Type().Equals(cty.String):
		if val.AsString() == "*" {
			return entity.Unbounded, nil
		}
		return 0, fmt.Errorf("invalid upper_bound %q: want a whole number or \"*\"", val.AsString())
	case val.Type().Equals(cty.Number):
		bf := val.AsBigFloat()
		if !bf.IsInt() {
			return 0, fmt.Errorf("invalid upper_bound %s: want a whole number or \"*\"", bf.Text('f', -1))
		}
		if bf.Sign() < 0 {
			return 0, fmt.Errorf("invalid upper_bound %s: want a non-negative whole number or \"*\"", bf.Text('f', -1))
		}
		n, acc := bf.Int64()
		if acc != big.Exact || n > 1<<31-1 {
			return 0, fmt.Errorf("invalid upper_bound %s: out of range", bf.Text('f', -1))
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("invalid upper_bound: want a whole number or \"*\", got %s", val.Type().FriendlyName())
}
