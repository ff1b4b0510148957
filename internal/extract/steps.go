package extract

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// registerStepAttr is the decorator method that declares an upgrade step.
const registerStepAttr = ".register_step("

// StepScanner discovers decorator-declared upgrade steps: methods annotated
// with @ClassName.register_step(...) anywhere under a package root.
type StepScanner struct {
	walker   *walker
	files    *fileCache
	parallel int
}

func newStepScanner(w *walker, files *fileCache, parallel int) *StepScanner {
	return &StepScanner{walker: w, files: files, parallel: parallel}
}

// Scan walks the tree under root collecting steps declared for className.
// Results from multiple files are concatenated in traversal order; order
// across subtrees is filesystem-dependent and not guaranteed stable. An
// empty result is returned as a NotFound error so the caller can decide
// whether the attribute access was mandatory.
func (s *StepScanner) Scan(ctx context.Context, className, root string) ([]manifest.UpgradeStep, error) {
	var steps []manifest.UpgradeStep
	var err error
	if s.parallel > 1 {
		steps, err = s.scanParallel(ctx, className, root)
	} else {
		steps, err = s.scanSequential(ctx, className, root, root)
	}
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, notFoundf("no %s.register_step decorators found under %s", className, root)
	}
	return steps, nil
}

// scanSequential walks walkRoot; step module paths are derived relative to
// moduleRoot, which stays the outer scan root even for subtree workers.
func (s *StepScanner) scanSequential(ctx context.Context, className, walkRoot, moduleRoot string) ([]manifest.UpgradeStep, error) {
	var steps []manifest.UpgradeStep
	err := s.walker.walkFiles(ctx, walkRoot, func(path string) error {
		steps = append(steps, s.scanFile(path, className, moduleRoot)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// scanParallel fans the walk out across root's direct subtrees. Subtrees
// are read-only and independent; per-subtree results are stitched back in
// subtree order.
func (s *StepScanner) scanParallel(ctx context.Context, className, root string) ([]manifest.UpgradeStep, error) {
	dirs, files := s.walker.subtrees(root)

	var topLevel []manifest.UpgradeStep
	for _, path := range files {
		topLevel = append(topLevel, s.scanFile(path, className, root)...)
	}

	results := make([][]manifest.UpgradeStep, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, dir := range dirs {
		g.Go(func() error {
			found, err := s.scanSequential(gctx, className, dir, root)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	steps := topLevel
	for _, found := range results {
		steps = append(steps, found...)
	}
	return steps, nil
}

// scanFile extracts every step declared in one source file. Unreadable
// files and malformed decorators are skipped; the scan continues.
func (s *StepScanner) scanFile(path, className, root string) []manifest.UpgradeStep {
	if filepath.Ext(path) != ".py" {
		return nil
	}
	data, err := s.files.read(path)
	if err != nil {
		return nil
	}

	module := modulePath(root, path)
	return stepsFromSource(string(data), className, module)
}

// stepsFromSource finds each @className.register_step( occurrence, matches
// the decorator's parentheses, and takes the next function definition's
// name as the step name.
func stepsFromSource(content, className, module string) []manifest.UpgradeStep {
	var steps []manifest.UpgradeStep
	pattern := "@" + className + registerStepAttr

	searchFrom := 0
	for {
		pos := strings.Index(content[searchFrom:], pattern)
		if pos < 0 {
			break
		}
		actual := searchFrom + pos
		searchFrom = actual + 1

		parenStart := actual + len(pattern) - 1
		parenEnd := findMatchingParen(content, parenStart)
		if parenEnd < 0 {
			continue
		}
		decoratorArgs := content[actual+len(pattern) : parenEnd]

		rest := content[parenEnd:]
		defPos := strings.Index(rest, "def ")
		if defPos < 0 {
			continue
		}
		nameStart := defPos + len("def ")
		parenPos := strings.IndexByte(rest[nameStart:], '(')
		if parenPos < 0 {
			continue
		}
		funcName := strings.TrimSpace(rest[nameStart : nameStart+parenPos])
		if funcName == "" {
			continue
		}

		steps = append(steps, buildStep(funcName, module, decoratorArgs))
	}

	return steps
}

// buildStep populates an upgrade step from decorator arguments. Decorator
// argument lists are flat key=value pairs; nested calls do not occur there,
// so a plain comma split suffices.
func buildStep(funcName, module, decoratorArgs string) manifest.UpgradeStep {
	step := manifest.UpgradeStep{
		Name:          funcName,
		Func:          manifest.NewCallable(module, funcName),
		TargetVersion: manifest.DefaultTargetVersion,
		Category:      manifest.StepFile,
		Priority:      manifest.DefaultStepPriority,
	}

	for _, arg := range strings.Split(decoratorArgs, ",") {
		arg = strings.TrimSpace(arg)
		eq := strings.IndexByte(arg, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(arg[:eq])
		value := strings.TrimSpace(arg[eq+1:])

		switch key {
		case "target_version":
			step.TargetVersion = unquote(value)
		case "upgrade_type":
			if dot := strings.LastIndexByte(value, '.'); dot >= 0 {
				step.Category = manifest.ParseStepCategory(strings.ToUpper(value[dot+1:]))
			}
		case "priority":
			if priority, err := strconv.Atoi(value); err == nil {
				step.Priority = priority
			}
		case "min_version":
			step.MinVersion = unquote(value)
		case "max_version":
			step.MaxVersion = unquote(value)
		}
	}

	return step
}

// unquote strips one layer of matching quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// modulePath derives the dotted module path of a source file relative to
// the scan root. Files outside the root fall back to their base name.
func modulePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, ".py")
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}
