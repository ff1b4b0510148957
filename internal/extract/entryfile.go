package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultEntryCandidates are the registration file names tried, in order,
// under a package root.
var DefaultEntryCandidates = []string{"plugins.py", "plugin.py"}

// entryPointsSection is the section of an installed package's
// entry_points.txt that registers its plugin module.
const entryPointsSection = "[pluginspect]"

// FindEntryFile locates the plugin registration file for a package. Each
// candidate name is tried directly under the package root, then one
// directory level down, which covers editable installs whose root points at
// a src/ directory.
func FindEntryFile(packageRoot string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultEntryCandidates
	}

	for _, name := range candidates {
		path := filepath.Join(packageRoot, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	entries, err := os.ReadDir(packageRoot)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			for _, name := range candidates {
				path := filepath.Join(packageRoot, entry.Name(), name)
				if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
					return path, nil
				}
			}
		}
	}

	return "", notFoundf("no registration file (%s) found under %s",
		strings.Join(candidates, ", "), packageRoot)
}

// FindEntryFileViaIndex resolves the registration file through the
// installed package's entry_points.txt, which is faster than probing
// candidates and also covers packages using nonstandard file names. Any
// failure is a NotFound error; callers fall back to FindEntryFile.
func FindEntryFileViaIndex(packageName, packageVersion, envRoot string) (string, error) {
	sitePackages, err := sitePackagesDir(envRoot)
	if err != nil {
		return "", err
	}

	normalized := strings.ReplaceAll(packageName, "-", "_")
	version := packageVersion
	if version == "" {
		version = "0.0.0"
	}
	entryPointsFile := filepath.Join(sitePackages,
		normalized+"-"+version+".dist-info", "entry_points.txt")

	data, err := os.ReadFile(entryPointsFile)
	if err != nil {
		return "", notFoundf("entry_points.txt not found for %s", packageName)
	}

	module, ok := parseEntryPoints(string(data))
	if !ok {
		return "", notFoundf("no %s entry point registered for %s", entryPointsSection, packageName)
	}

	path := filepath.Join(sitePackages, filepath.FromSlash(strings.ReplaceAll(module, ".", "/"))+".py")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", notFoundf("registered entry module %s has no file at %s", module, path)
	}
	return path, nil
}

// sitePackagesDir finds the environment's site-packages directory under
// lib/pythonX.Y.
func sitePackagesDir(envRoot string) (string, error) {
	lib := filepath.Join(envRoot, "lib")
	entries, err := os.ReadDir(lib)
	if err != nil {
		return "", notFoundf("environment has no lib directory at %s", lib)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "python") {
			return filepath.Join(lib, entry.Name(), "site-packages"), nil
		}
	}
	return "", notFoundf("no python directory under %s", lib)
}

// parseEntryPoints returns the module path of the first entry in the
// pluginspect section of an entry_points.txt, e.g. `plugins = pkg.mod:attr`.
func parseEntryPoints(content string) (string, bool) {
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == entryPointsSection {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		value := strings.TrimSpace(line[eq+1:])
		if colon := strings.IndexByte(value, ':'); colon >= 0 {
			value = value[:colon]
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, true
		}
	}
	return "", false
}
