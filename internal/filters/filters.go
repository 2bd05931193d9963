// Package filters implements the pipe-filter functions available inside
// "{{ expr|filter }}" template expressions, as zclconf/go-cty functions so
// the template evaluator can run them through the same hclsyntax call path
// as any other function expression.
package filters

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

func stringFilter(impl func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "value", Type: cty.String, AllowNull: false},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(impl(args[0].AsString())), nil
		},
	})
}

var capitalizeFunc = stringFilter(func(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
})

var upperFunc = stringFilter(strings.ToUpper)
var lowerFunc = stringFilter(strings.ToLower)
var trimFunc = stringFilter(strings.TrimSpace)
var titleFunc = stringFilter(strings.Title) //nolint:staticcheck // matches the simple word-title behavior fragments expect

var defaultFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "value", Type: cty.String, AllowNull: true},
		{Name: "fallback", Type: cty.String, AllowNull: false},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		if args[0].IsNull() || args[0].AsString() == "" {
			return args[1], nil
		}
		return args[0], nil
	},
})

// All returns the full filter library, keyed by the name used on the
// right-hand side of a pipe in template expressions.
func All() map[string]function.Function {
	return map[string]function.Function{
		"capitalize": capitalizeFunc,
		"upper":      upperFunc,
		"lower":      lowerFunc,
		"trim":       trimFunc,
		"title":      titleFunc,
		"default":    defaultFunc,
	}
}
