package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for BuildSymbolTable:
// - Single import resolves to (module, name)
// - Comma-separated imports each resolve
// - Rename syntax keeps the local name as key, original name as value
// - Later imports of the same local symbol overwrite earlier ones
// - Comment lines and non-import lines are ignored
// - Parenthesized multi-line import lists do not produce wrong entries

func TestBuildSymbolTable_Single(t *testing.T) {
	t.Parallel()

	table := BuildSymbolTable("from acme.parser import AcmeParser")

	require.Equal(t, 1, table.Len())
	sym, ok := table.Resolve("AcmeParser")
	require.True(t, ok)
	assert.Equal(t, "acme.parser", sym.Module)
	assert.Equal(t, "AcmeParser", sym.Name)
}

func TestBuildSymbolTable_MultipleAndRename(t *testing.T) {
	t.Parallel()

	table := BuildSymbolTable("from m import A, B as C")

	require.Equal(t, 2, table.Len())

	a, ok := table.Resolve("A")
	require.True(t, ok)
	assert.Equal(t, Symbol{Module: "m", Name: "A"}, a)

	c, ok := table.Resolve("C")
	require.True(t, ok)
	assert.Equal(t, Symbol{Module: "m", Name: "B"}, c)

	_, ok = table.Resolve("B")
	assert.False(t, ok, "the original name of a renamed import is not bound")
}

func TestBuildSymbolTable_LastImportWins(t *testing.T) {
	t.Parallel()

	source := "from first import Thing\nfrom second import Thing\n"
	table := BuildSymbolTable(source)

	sym, ok := table.Resolve("Thing")
	require.True(t, ok)
	assert.Equal(t, "second", sym.Module)
}

func TestBuildSymbolTable_IgnoresNoise(t *testing.T) {
	t.Parallel()

	source := `# from commented import Ignored
import os

from acme.exporter import AcmeExporter

x = 1
`
	table := BuildSymbolTable(source)

	require.Equal(t, 1, table.Len())
	_, ok := table.Resolve("AcmeExporter")
	assert.True(t, ok)
	_, ok = table.Resolve("Ignored")
	assert.False(t, ok)
	_, ok = table.Resolve("os")
	assert.False(t, ok, "plain import statements are out of scope")
}

func TestBuildSymbolTable_ParenthesizedImportSkipped(t *testing.T) {
	t.Parallel()

	// A multi-line parenthesized list only matches its first line; the
	// artifacts must be stripped rather than mis-parsed.
	source := "from acme.models import (\n    Generator,\n    Storage,\n)\n"
	table := BuildSymbolTable(source)

	for local := range map[string]bool{"(": true, ")": true, "": true} {
		_, ok := table.Resolve(local)
		assert.False(t, ok, "no artifact symbol %q", local)
	}
}

func TestBuildSymbolTable_EmptySource(t *testing.T) {
	t.Parallel()

	table := BuildSymbolTable("")
	assert.Equal(t, 0, table.Len())
}
