// Package extract reconstructs a structured plugin manifest from the source
// text of a plugin-registration file, without executing it. It combines a
// best-effort parser over a small grammar subset (keyword-argument calls,
// single-line imports, decorator-annotated methods) with import resolution
// and type inference heuristics, degrading gracefully on partial input: a
// malformed registration is skipped with a warning, while a missing entry
// file or an empty registration section aborts the extraction.
package extract

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// Options configures one extractor.
type Options struct {
	// PackageName is the name recorded in the output document.
	PackageName string
	// PackageRoot is the directory searched recursively for decorator
	// steps and parameter-defining files.
	PackageRoot string
	// EntryFile, when set, bypasses entry-file discovery.
	EntryFile string
	// EntryCandidates overrides the registration file names probed under
	// PackageRoot. Empty means DefaultEntryCandidates.
	EntryCandidates []string
	// EnvRoot, when set, enables entry_points.txt index lookup under the
	// environment before falling back to candidate probing.
	EnvRoot string
	// PackageVersion qualifies the index lookup.
	PackageVersion string
	// Strategy selects the call locator implementation.
	Strategy Strategy
	// IgnorePatterns are glob patterns excluded from recursive scans, in
	// addition to hidden entries and the fixed skip set.
	IgnorePatterns []string
	// ParallelScan >1 fans the decorator scan out across subtrees with at
	// most that many workers.
	ParallelScan int
	// CacheCapacity bounds the source-file cache (entries, not bytes).
	CacheCapacity int
}

// Extractor extracts one package's plugin manifest. It holds no state
// between calls beyond the read-only file cache; Close releases the cache.
type Extractor struct {
	opts    Options
	locator CallLocator
	files   *fileCache
	steps   *StepScanner
	params  *ParamExtractor
}

// New builds an extractor for the given options.
func New(opts Options) (*Extractor, error) {
	w, err := newWalker(opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	files, err := newFileCache(opts.CacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		opts:    opts,
		locator: NewLocator(opts.Strategy),
		files:   files,
		steps:   newStepScanner(w, files, opts.ParallelScan),
		params:  newParamExtractor(w, files),
	}, nil
}

// Close releases the extractor's file cache.
func (e *Extractor) Close() {
	e.files.close()
}

// Extract runs the full pipeline: entry-file discovery, import resolution,
// call location, keyword parsing and classification, decorator and
// parameter enrichment, and manifest assembly.
func (e *Extractor) Extract(ctx context.Context) (*manifest.Package, error) {
	entryFile, err := e.entryFile()
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(entryFile)
	if err != nil {
		return nil, notFoundf("failed to read %s: %v", entryFile, err)
	}

	symbols := BuildSymbolTable(string(source))

	calls, err := e.locator.Locate(source)
	if err != nil {
		return nil, err
	}

	pkg := manifest.NewPackage(e.opts.PackageName)
	for _, call := range calls {
		record, err := e.assemble(ctx, call, symbols)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Warning: skipping registration %q: %v", firstLine(call), err)
			continue
		}
		if err := pkg.Add(*record); err != nil {
			log.Printf("Warning: %v, keeping first occurrence", err)
		}
	}

	return pkg, nil
}

// entryFile resolves the registration file: explicit option first, then the
// environment's registration index, then candidate probing.
func (e *Extractor) entryFile() (string, error) {
	if e.opts.EntryFile != "" {
		return e.opts.EntryFile, nil
	}
	if e.opts.EnvRoot != "" {
		if path, err := FindEntryFileViaIndex(e.opts.PackageName, e.opts.PackageVersion, e.opts.EnvRoot); err == nil {
			return path, nil
		}
	}
	return FindEntryFile(e.opts.PackageRoot, e.opts.EntryCandidates)
}

// assemble turns one registration call text into a plugin record.
func (e *Extractor) assemble(ctx context.Context, call string, symbols *SymbolTable) (*manifest.PluginRecord, error) {
	parenIdx := strings.IndexByte(call, '(')
	if parenIdx < 0 {
		return nil, syntaxf("invalid registration call format")
	}
	constructor := strings.TrimSpace(call[:parenIdx])
	kind, ok := manifest.KindForConstructor(constructor)
	if !ok {
		return nil, syntaxf("unrecognized constructor %q", constructor)
	}

	pairs, err := ParseKwargs(call)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		value, err := ClassifyValue(pair.Value, symbols)
		if err != nil {
			scan, recoverable := err.(*needsStepScan)
			if !recoverable {
				return nil, err
			}
			value, err = e.scanSteps(ctx, scan.className)
			if err != nil {
				return nil, err
			}
		}
		values[pair.Key] = value
	}

	return e.buildRecord(ctx, kind, values)
}

// scanSteps answers a ClassName.steps attribute access with the decorator
// scan. Finding nothing is an empty list, not a failure; the attribute is
// enrichment.
func (e *Extractor) scanSteps(ctx context.Context, className string) ([]manifest.UpgradeStep, error) {
	steps, err := e.steps.Scan(ctx, className, e.opts.PackageRoot)
	if err != nil {
		if IsNotFound(err) {
			return []manifest.UpgradeStep{}, nil
		}
		return nil, err
	}
	return steps, nil
}

// buildRecord maps classified keyword values onto a plugin record. name and
// obj are mandatory; everything else is optional and omitted when absent.
func (e *Extractor) buildRecord(ctx context.Context, kind manifest.PluginKind, values map[string]any) (*manifest.PluginRecord, error) {
	name, _ := values["name"].(string)
	if name == "" {
		return nil, syntaxf("registration missing 'name'")
	}

	obj, ok := values["obj"].(*manifest.CallableDescriptor)
	if !ok || obj == nil {
		return nil, syntaxf("registration %q missing a resolvable 'obj'", name)
	}

	roots := SearchRoots(e.opts.PackageRoot)
	obj.Parameters = e.params.Extract(ctx, obj.Module, obj.Name, roots)

	record := &manifest.PluginRecord{
		Name: name,
		Kind: kind,
		Obj:  *obj,
	}

	if callMethod, ok := values["call_method"].(string); ok {
		record.CallMethod = callMethod
	}
	if config, ok := values["config"].(*manifest.CallableDescriptor); ok && config != nil {
		config.Parameters = e.params.Extract(ctx, config.Module, config.Name, roots)
		record.Config = config
	}
	if description, ok := values["description"].(string); ok {
		record.Description = description
	}
	if ioType, ok := values["io_type"].(string); ok {
		record.IOType = ioType
	}
	if requiresStore, ok := values["requires_store"].(bool); ok {
		record.RequiresStore = &requiresStore
	}
	if strategy, ok := values["version_strategy"]; ok && strategy != nil {
		record.VersionStrategy = strategy
	}
	if reader, ok := values["version_reader"]; ok && reader != nil {
		record.VersionReader = reader
	}
	if steps, ok := values["upgrade_steps"].([]manifest.UpgradeStep); ok && len(steps) > 0 {
		record.UpgradeSteps = steps
	}

	return record, nil
}
