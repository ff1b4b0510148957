package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/pluginspect/internal/config"
	"github.com/mvp-joe/pluginspect/internal/extract"
	"github.com/mvp-joe/pluginspect/internal/manifest"
	"github.com/mvp-joe/pluginspect/internal/watcher"
)

var (
	nameFlag     string
	outputFlag   string
	strategyFlag string
	versionFlag  string
	quietFlag    bool
	watchFlag    bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract PACKAGE_DIR...",
	Short: "Extract plugin manifests from plugin packages",
	Long: `Extract statically analyzes each package's plugin registration file and
writes one JSON manifest document per package.

The extractor:
  - Locates the registration file (plugins.py / plugin.py, or the
    environment's entry point index)
  - Resolves imports and parses each registration call
  - Scans for decorator-declared upgrade steps
  - Extracts constructor parameter signatures

Examples:
  # Extract one installed package
  pluginspect extract ./site-packages/acme_plugins

  # Extract a whole plugin directory with a progress bar
  pluginspect extract ./site-packages/*/

  # Re-extract whenever the registration file changes
  pluginspect extract --watch ./src/acme_plugins
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&nameFlag, "name", "", "Package name recorded in the manifest (single package only)")
	extractCmd.Flags().StringVarP(&outputFlag, "output", "o", "-", "Output file, or - for stdout")
	extractCmd.Flags().StringVar(&strategyFlag, "strategy", "", "Call locator strategy: tree or text")
	extractCmd.Flags().StringVar(&versionFlag, "package-version", "", "Package version for entry point index lookup")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress output")
	extractCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the registration file and re-extract on change")
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling extraction...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	var cfg *config.Config
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(rootDir, cfgFile)
	} else {
		cfg, err = config.LoadFromDir(rootDir)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
	}

	switch strategyFlag {
	case "", "tree", "text":
	default:
		return fmt.Errorf("invalid --strategy %q: must be \"tree\" or \"text\"", strategyFlag)
	}

	if nameFlag != "" && len(args) > 1 {
		return fmt.Errorf("--name only applies to a single package")
	}
	if watchFlag && len(args) > 1 {
		return fmt.Errorf("--watch only applies to a single package")
	}

	if watchFlag {
		return watchAndExtract(ctx, cfg, args[0])
	}

	reporter := NewProgressReporter(quietFlag || len(args) < 2)
	reporter.OnStart(len(args))

	var docs []*manifest.Package
	for _, dir := range args {
		pkg, err := extractPackage(ctx, cfg, dir)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Warning: %s: %v", dir, err)
			reporter.OnPackageDone(dir)
			continue
		}
		docs = append(docs, pkg)
		if verbose {
			log.Printf("Extracted %s: %d plugins", dir, len(pkg.Plugins))
		}
		reporter.OnPackageDone(dir)
	}
	reporter.OnComplete(len(docs))

	if len(docs) == 0 {
		return fmt.Errorf("no manifests extracted from %d package(s)", len(args))
	}

	return writeManifests(docs)
}

// extractPackage runs one extraction with the configured options.
func extractPackage(ctx context.Context, cfg *config.Config, dir string) (*manifest.Package, error) {
	name := nameFlag
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}

	strategy := cfg.Discovery.Strategy
	if strategyFlag != "" {
		strategy = strategyFlag
	}

	extractor, err := extract.New(extract.Options{
		PackageName:     name,
		PackageRoot:     dir,
		EntryCandidates: cfg.Discovery.EntryCandidates,
		EnvRoot:         cfg.Discovery.EnvRoot,
		PackageVersion:  versionFlag,
		Strategy:        extract.Strategy(strategy),
		IgnorePatterns:  cfg.Scan.Ignore,
		ParallelScan:    cfg.Scan.Parallel,
		CacheCapacity:   cfg.Scan.CacheCapacity,
	})
	if err != nil {
		return nil, err
	}
	defer extractor.Close()

	return extractor.Extract(ctx)
}

// watchAndExtract extracts once, then re-extracts whenever a source file
// under the package changes, until the context is cancelled.
func watchAndExtract(ctx context.Context, cfg *config.Config, dir string) error {
	run := func() {
		pkg, err := extractPackage(ctx, cfg, dir)
		if err != nil {
			log.Printf("Warning: %s: %v", dir, err)
			return
		}
		if err := writeManifests([]*manifest.Package{pkg}); err != nil {
			log.Printf("Warning: writing manifest: %v", err)
		}
	}

	run()

	w, err := watcher.New([]string{dir}, []string{".py"})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	if err := w.Start(ctx, func(files []string) {
		if !quietFlag {
			log.Printf("Change detected (%d files), re-extracting %s", len(files), dir)
		}
		run()
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// writeManifests renders each package document to the configured output.
// Multiple documents are newline-separated.
func writeManifests(docs []*manifest.Package) error {
	out := os.Stdout
	if outputFlag != "" && outputFlag != "-" {
		f, err := os.Create(outputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	for _, doc := range docs {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	}
	return nil
}
