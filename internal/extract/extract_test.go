package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// Test Plan for the full extraction pipeline:
// - The fixture package yields four plugins in registration order, with
//   resolved callables, parameters, enum values, and decorator steps
// - Both locator strategies produce the same manifest
// - An explicit entry file bypasses discovery
// - An empty plugins list and a missing registration file are NotFound
// - Duplicate registration names keep the first occurrence
// - The marshaled document carries the expected field names and omissions

func fixtureRoot(pkg string) string {
	return filepath.Join("..", "..", "testdata", "python", pkg)
}

func extractFixture(t *testing.T, strategy Strategy) *manifest.Package {
	t.Helper()

	extractor, err := New(Options{
		PackageName: "acme_plugins",
		PackageRoot: fixtureRoot("acme_plugins"),
		Strategy:    strategy,
	})
	require.NoError(t, err)
	t.Cleanup(extractor.Close)

	pkg, err := extractor.Extract(context.Background())
	require.NoError(t, err)
	return pkg
}

func TestExtract_Fixture(t *testing.T) {
	t.Parallel()

	pkg := extractFixture(t, StrategyTree)

	assert.Equal(t, "acme_plugins", pkg.Name)
	assert.Empty(t, pkg.Metadata)
	require.Len(t, pkg.Plugins, 4)

	parser := pkg.Plugins[0]
	assert.Equal(t, "acme-parser", parser.Name)
	assert.Equal(t, manifest.KindParser, parser.Kind)
	assert.Equal(t, "acme_plugins.parser", parser.Obj.Module)
	assert.Equal(t, "AcmeParser", parser.Obj.Name)
	assert.Equal(t, manifest.CallableClass, parser.Obj.Kind)
	assert.Len(t, parser.Obj.Parameters, 3)
	assert.True(t, parser.Obj.Parameters["config"].Required)
	require.NotNil(t, parser.Config)
	assert.Equal(t, "AcmeParserConfig", parser.Config.Name)
	assert.True(t, parser.Config.Parameters["weather_year"].Required)
	assert.Equal(t, "2012", parser.Config.Parameters["solve_year"].Default)
	assert.Equal(t, "stdout", parser.IOType)
	require.NotNil(t, parser.RequiresStore)
	assert.True(t, *parser.RequiresStore)

	exporter := pkg.Plugins[1]
	assert.Equal(t, "acme-exporter", exporter.Name)
	assert.Equal(t, manifest.KindExporter, exporter.Kind)
	assert.Equal(t, "Exports systems, (even) unusual ones", exporter.Description)
	assert.Len(t, exporter.Obj.Parameters, 2)
	assert.Nil(t, exporter.Config)
	assert.Nil(t, exporter.RequiresStore)

	upgrader := pkg.Plugins[2]
	assert.Equal(t, "acme-upgrader", upgrader.Name)
	assert.Equal(t, manifest.KindUpgrader, upgrader.Kind)
	require.Len(t, upgrader.UpgradeSteps, 3)
	assert.Equal(t, "upgrade_folder_layout", upgrader.UpgradeSteps[0].Name)
	assert.Equal(t, 10, upgrader.UpgradeSteps[0].Priority)
	assert.Equal(t, "migrate_system_records", upgrader.UpgradeSteps[1].Name)
	assert.Equal(t, manifest.StepSystem, upgrader.UpgradeSteps[1].Category)
	assert.Equal(t, "backfill_missing_headers", upgrader.UpgradeSteps[2].Name)
	assert.Equal(t, manifest.DefaultStepPriority, upgrader.UpgradeSteps[2].Priority)

	utility := pkg.Plugins[3]
	assert.Equal(t, "rename-columns", utility.Name)
	assert.Equal(t, manifest.KindUtility, utility.Kind)
	assert.Equal(t, manifest.CallableFunction, utility.Obj.Kind)
	assert.Len(t, utility.Obj.Parameters, 1)
}

func TestExtract_StrategiesAgree(t *testing.T) {
	t.Parallel()

	tree := extractFixture(t, StrategyTree)
	text := extractFixture(t, StrategyText)

	assert.Equal(t, tree, text)
}

func TestExtract_ExplicitEntryFile(t *testing.T) {
	t.Parallel()

	extractor, err := New(Options{
		PackageName: "acme_plugins",
		PackageRoot: fixtureRoot("acme_plugins"),
		EntryFile:   filepath.Join(fixtureRoot("acme_plugins"), "plugins.py"),
	})
	require.NoError(t, err)
	defer extractor.Close()

	pkg, err := extractor.Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkg.Plugins, 4)
}

func TestExtract_EmptyRegistry(t *testing.T) {
	t.Parallel()

	for _, strategy := range []Strategy{StrategyTree, StrategyText} {
		extractor, err := New(Options{
			PackageName: "empty_registry",
			PackageRoot: fixtureRoot("empty_registry"),
			Strategy:    strategy,
		})
		require.NoError(t, err)
		defer extractor.Close()

		_, err = extractor.Extract(context.Background())
		require.Error(t, err, strategy)
		assert.True(t, IsNotFound(err), strategy)
	}
}

func TestExtract_MissingEntryFile(t *testing.T) {
	t.Parallel()

	extractor, err := New(Options{
		PackageName: "ghost",
		PackageRoot: t.TempDir(),
	})
	require.NoError(t, err)
	defer extractor.Close()

	_, err = extractor.Extract(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestExtract_DuplicateNamesKeepFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	source := `from pkg.mod import first_fn, second_fn


def register_plugin():
    return PluginComponents(
        plugins=[
            BasePlugin(name="dup", obj=first_fn),
            BasePlugin(name="dup", obj=second_fn),
        ],
    )
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugins.py"), []byte(source), 0o644))

	extractor, err := New(Options{PackageName: "dup_pkg", PackageRoot: root})
	require.NoError(t, err)
	defer extractor.Close()

	pkg, err := extractor.Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, pkg.Plugins, 1)
	assert.Equal(t, "first_fn", pkg.Plugins[0].Obj.Name)
}

func TestExtract_MarshaledDocument(t *testing.T) {
	t.Parallel()

	pkg := extractFixture(t, StrategyTree)
	data, err := pkg.Marshal()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "acme_plugins", doc["name"])
	assert.Equal(t, map[string]any{}, doc["metadata"])

	plugins, ok := doc["plugins"].([]any)
	require.True(t, ok)
	require.Len(t, plugins, 4)

	parser, ok := plugins[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "parser", parser["plugin_type"])
	assert.Equal(t, true, parser["requires_store"])
	obj, ok := parser["obj"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "class", obj["type"])
	assert.Nil(t, obj["return_annotation"])

	exporter, ok := plugins[1].(map[string]any)
	require.True(t, ok)
	_, hasStore := exporter["requires_store"]
	assert.False(t, hasStore, "inapplicable optionals are omitted, not null")
	_, hasConfig := exporter["config"]
	assert.False(t, hasConfig)

	utility, ok := plugins[3].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function", utility["plugin_type"])
}
