package extract

import (
	"strings"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// enumValues is the fixed table of dotted enum expressions the classifier
// canonicalizes to lowercase catalog strings. Process-wide constant.
var enumValues = map[string]string{
	"IOType.STDOUT": "stdout",
	"IOType.STDIN":  "stdin",
	"IOType.BOTH":   "both",
}

// stepsAttr is the reserved attribute suffix whose access is answered by
// the decorator step scanner rather than evaluated.
const stepsAttr = ".steps"

// ClassifyValue converts one raw keyword-argument value into its typed
// representation. Rules apply in order, first match wins:
//
//  1. empty text is null
//  2. the literal keywords None, True, False
//  3. a matching quoted string, returned unquoted
//  4. a dotted enum expression from the fixed table, canonical lowercase
//  5. a dotted expression ending in .steps raises the recoverable
//     needsStepScan signal; any other dotted expression is an unsupported
//     attribute access
//  6. bracketed list syntax becomes an empty array placeholder; list
//     contents are not introspected
//  7. a bare identifier found in the symbol table becomes a callable
//     reference with parameters left to be filled on demand
//  8. anything else is kept as an opaque string
//
// Returned values are nil, bool, string, []any, or *manifest.CallableDescriptor.
func ClassifyValue(raw string, symbols *SymbolTable) (any, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" || trimmed == "None" {
		return nil, nil
	}
	if trimmed == "True" {
		return true, nil
	}
	if trimmed == "False" {
		return false, nil
	}

	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return trimmed[1 : len(trimmed)-1], nil
		}
	}

	if canonical, ok := enumValues[trimmed]; ok {
		return canonical, nil
	}

	if strings.Contains(trimmed, ".") && !strings.HasPrefix(trimmed, "[") {
		if className, ok := strings.CutSuffix(trimmed, stepsAttr); ok {
			return nil, &needsStepScan{className: className}
		}
		return nil, unsupportedf("attribute access %q cannot be evaluated statically", trimmed)
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return []any{}, nil
	}

	if sym, ok := symbols.Resolve(trimmed); ok {
		callable := manifest.NewCallable(sym.Module, sym.Name)
		return &callable, nil
	}

	return trimmed, nil
}
