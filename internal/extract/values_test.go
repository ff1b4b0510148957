package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// Test Plan for ClassifyValue:
// - Literal keywords map to nil/true/false
// - Quoted strings are unquoted, both quote styles
// - Enum expressions canonicalize to lowercase catalog strings
// - .steps attribute access raises the recoverable step-scan signal
// - Other dotted expressions are unsupported constructs
// - List syntax becomes an empty array placeholder
// - Resolvable identifiers become callable references, kind by capitalization
// - Unresolvable identifiers are kept as opaque strings

func TestClassifyValue_Literals(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	for raw, want := range map[string]any{
		"":      nil,
		"None":  nil,
		"True":  true,
		"False": false,
	} {
		got, err := ClassifyValue(raw, symbols)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, want, got, "raw %q", raw)
	}
}

func TestClassifyValue_Strings(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	got, err := ClassifyValue(`"hello, world"`, symbols)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", got)

	got, err = ClassifyValue(`'single'`, symbols)
	require.NoError(t, err)
	assert.Equal(t, "single", got)
}

func TestClassifyValue_Enums(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	for raw, want := range map[string]string{
		"IOType.STDOUT": "stdout",
		"IOType.STDIN":  "stdin",
		"IOType.BOTH":   "both",
	} {
		got, err := ClassifyValue(raw, symbols)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestClassifyValue_StepsSignal(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	_, err := ClassifyValue("DataUpgrader.steps", symbols)
	require.Error(t, err)

	signal, ok := err.(*needsStepScan)
	require.True(t, ok)
	assert.Equal(t, "DataUpgrader", signal.className)
}

func TestClassifyValue_UnsupportedDotted(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	_, err := ClassifyValue("module.attribute", symbols)
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
}

func TestClassifyValue_ListPlaceholder(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	got, err := ClassifyValue("[step_one, step_two]", symbols)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestClassifyValue_CallableReference(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("from acme.parser import AcmeParser\nfrom acme.utils import rename_columns\n")

	got, err := ClassifyValue("AcmeParser", symbols)
	require.NoError(t, err)
	callable, ok := got.(*manifest.CallableDescriptor)
	require.True(t, ok)
	assert.Equal(t, "acme.parser", callable.Module)
	assert.Equal(t, "AcmeParser", callable.Name)
	assert.Equal(t, manifest.CallableClass, callable.Kind)

	got, err = ClassifyValue("rename_columns", symbols)
	require.NoError(t, err)
	callable, ok = got.(*manifest.CallableDescriptor)
	require.True(t, ok)
	assert.Equal(t, manifest.CallableFunction, callable.Kind)
}

func TestClassifyValue_OpaqueFallback(t *testing.T) {
	t.Parallel()

	symbols := BuildSymbolTable("")

	got, err := ClassifyValue("not_imported", symbols)
	require.NoError(t, err)
	assert.Equal(t, "not_imported", got)
}
