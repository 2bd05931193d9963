// Package evaluator renders a parsed fragment body: literal text passes
// through unchanged, "{% if/for/set %}" blocks drive control flow, and
// "{{ ... }}" expressions are either dispatched to the fragment resolver (a
// whole-content "@slug(...)" reference) or evaluated as a general
// expression through hashicorp/hcl's hclsyntax parser against the current
// scope.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/prompy/prompy/internal/refparser"
	"github.com/prompy/prompy/internal/scope"
)

// ReferenceResolver renders the fragment a "@slug(...)" token names, with
// its own arguments bound into a fresh scope. The fragment resolver (the
// engine component that owns cycle detection and argument binding)
// implements this so the evaluator never has to know about fragment
// loading itself.
type ReferenceResolver interface {
	ResolveReference(ctx context.Context, tok *refparser.Token, callerScope *scope.Scope) (string, error)
}

// Evaluate renders nodes to their final text.
func Evaluate(ctx context.Context, nodes []Node, sc *scope.Scope, resolver ReferenceResolver) (string, error) {
	var b strings.Builder
	if err := evalInto(ctx, &b, nodes, sc, resolver); err != nil {
		return "", err
	}
	return b.String(), nil
}

func evalInto(ctx context.Context, b *strings.Builder, nodes []Node, sc *scope.Scope, resolver ReferenceResolver) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case TextNode:
			b.WriteString(node.Text)

		case ExprNode:
			out, err := evalExprNode(ctx, node.Raw, node.Line, sc, resolver)
			if err != nil {
				return err
			}
			b.WriteString(out)

		case SetNode:
			val, err := evalExpr(node.ExprRaw, sc)
			if err != nil {
				return err
			}
			sc.Set(node.Name, val)

		case IfNode:
			if err := evalIf(ctx, b, node, sc, resolver); err != nil {
				return err
			}

		case ForNode:
			if err := evalFor(ctx, b, node, sc, resolver); err != nil {
				return err
			}

		default:
			return fmt.Errorf("evaluator: unhandled node type %T", n)
		}
	}
	return nil
}

func evalExprNode(ctx context.Context, raw string, line int, sc *scope.Scope, resolver ReferenceResolver) (string, error) {
	if tok, ok, err := refparser.IsReference(raw); err != nil {
		return "", err
	} else if ok {
		tok.Line = line
		return resolver.ResolveReference(ctx, tok, sc)
	}

	val, err := evalExpr(raw, sc)
	if err != nil {
		return "", err
	}
	return valueToString(val)
}

func evalExpr(raw string, sc *scope.Scope) (cty.Value, error) {
	rewritten := rewritePipes(raw)
	expr, diags := hclsyntax.ParseExpression([]byte(rewritten), "<expr>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid expression %q: %s", raw, diags.Error())
	}
	val, diags := expr.Value(sc.EvalContext())
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating expression %q: %s", raw, diags.Error())
	}
	return val, nil
}

func valueToString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot render value as text: %w", err)
	}
	return converted.AsString(), nil
}

func evalIf(ctx context.Context, b *strings.Builder, node IfNode, sc *scope.Scope, resolver ReferenceResolver) error {
	for _, branch := range node.Branches {
		val, err := evalExpr(branch.CondRaw, sc)
		if err != nil {
			return err
		}
		truthy, err := convert.Convert(val, cty.Bool)
		if err != nil {
			return fmt.Errorf("if condition %q did not evaluate to a boolean: %w", branch.CondRaw, err)
		}
		if truthy.True() {
			return evalInto(ctx, b, branch.Body, sc.Child(), resolver)
		}
	}
	return evalInto(ctx, b, node.Else, sc.Child(), resolver)
}

func evalFor(ctx context.Context, b *strings.Builder, node ForNode, sc *scope.Scope, resolver ReferenceResolver) error {
	val, err := evalExpr(node.IterRaw, sc)
	if err != nil {
		return err
	}
	if !val.CanIterateElements() {
		return fmt.Errorf("for-loop expression %q is not iterable", node.IterRaw)
	}

	it := val.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		child := sc.Child()
		child.Set(node.VarName, elem)
		if err := evalInto(ctx, b, node.Body, child, resolver); err != nil {
			return err
		}
	}
	return nil
}
