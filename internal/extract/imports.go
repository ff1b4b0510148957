package extract

import "strings"

// Symbol is the resolution of one imported name: the module it comes from
// and its original name there. For `from m import B as C` the local symbol
// C resolves to Symbol{Module: "m", Name: "B"}.
type Symbol struct {
	Module string
	Name   string
}

// SymbolTable maps local symbols to their defining module and original
// name. It is built once per extraction from the entry file's import
// statements and is read-only afterwards.
type SymbolTable struct {
	symbols map[string]Symbol
}

// Resolve looks up a local symbol.
func (t *SymbolTable) Resolve(local string) (Symbol, bool) {
	sym, ok := t.symbols[local]
	return sym, ok
}

// Len returns the number of resolved symbols.
func (t *SymbolTable) Len() int { return len(t.symbols) }

// BuildSymbolTable scans source text for single-line import statements of
// the form `from MODULE import NAME[, NAME...]` and builds the symbol table.
//
// Only the single-line form is recognized. Parenthesized multi-line import
// lists produce no entries rather than wrong ones: the stray-bracket strip
// below discards the artifacts they leave on the matched line. Later imports
// of the same local symbol overwrite earlier ones, matching ordinary
// shadowing semantics. No filesystem checks are performed.
func BuildSymbolTable(source string) *SymbolTable {
	symbols := make(map[string]Symbol)

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "from ") {
			continue
		}
		importIdx := strings.Index(line, " import ")
		if importIdx < 0 {
			continue
		}

		module := strings.TrimSpace(line[len("from "):importIdx])
		importsPart := line[importIdx+len(" import "):]

		for _, spec := range strings.Split(importsPart, ",") {
			spec = strings.TrimSpace(spec)
			if spec == "" || strings.HasSuffix(spec, "\\") {
				continue
			}

			original := spec
			local := spec
			if asIdx := strings.Index(spec, " as "); asIdx >= 0 {
				original = strings.TrimSpace(spec[:asIdx])
				local = strings.TrimSpace(spec[asIdx+len(" as "):])
			}

			original = stripImportArtifacts(original)
			local = stripImportArtifacts(local)
			if local == "" || original == "" || strings.HasPrefix(local, "#") {
				continue
			}

			symbols[local] = Symbol{Module: module, Name: original}
		}
	}

	return &SymbolTable{symbols: symbols}
}

// stripImportArtifacts removes stray parentheses and commas left by
// partially matched parenthesized import lists.
func stripImportArtifacts(name string) string {
	return strings.TrimSpace(strings.Trim(name, "(),"))
}
