package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// ParamExtractor locates a callable's defining file and extracts its typed
// parameter descriptors. Parameters are enrichment: a missing file, class,
// or signature yields an empty result, never an error.
type ParamExtractor struct {
	language *sitter.Language
	walker   *walker
	files    *fileCache
}

func newParamExtractor(w *walker, files *fileCache) *ParamExtractor {
	return &ParamExtractor{
		language: sitter.NewLanguage(python.Language()),
		walker:   w,
		files:    files,
	}
}

// Extract finds the parameters of module.name. The defining file is assumed
// to be named after the module path's last segment and is searched for
// under each root in priority order; the first hit wins.
func (p *ParamExtractor) Extract(ctx context.Context, module, name string, roots []string) map[string]manifest.ParameterDescriptor {
	segments := strings.Split(module, ".")
	if len(segments) == 0 || module == "" {
		return map[string]manifest.ParameterDescriptor{}
	}
	fileName := segments[len(segments)-1] + ".py"

	for _, root := range roots {
		if root == "" {
			continue
		}
		source, ok := p.findFile(ctx, root, fileName)
		if !ok {
			continue
		}
		if params := p.signatureParams(source, name); params != nil {
			return params
		}
	}

	return map[string]manifest.ParameterDescriptor{}
}

// SearchRoots builds the standard root priority list: the package root,
// then the active environment, then the working directory.
func SearchRoots(packageRoot string) []string {
	roots := []string{packageRoot}
	if venv := os.Getenv("VIRTUAL_ENV"); venv != "" {
		roots = append(roots, venv)
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	return roots
}

// findFile walks root for the first file with the given name.
func (p *ParamExtractor) findFile(ctx context.Context, root, fileName string) ([]byte, bool) {
	var found string
	err := p.walker.walkFiles(ctx, root, func(path string) error {
		if filepath.Base(path) == fileName {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil || found == "" {
		return nil, false
	}
	data, readErr := p.files.read(found)
	if readErr != nil {
		return nil, false
	}
	return data, true
}

// signatureParams parses the source and extracts the parameters of the
// named callable: the __init__ method when name is a class, the function's
// own parameter list when it is a top-level function. Returns nil when the
// callable is not defined in this source.
func (p *ParamExtractor) signatureParams(source []byte, name string) map[string]manifest.ParameterDescriptor {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var paramsNode *sitter.Node
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if paramsNode != nil {
			return false
		}
		switch n.Kind() {
		case "class_definition":
			if nodeText(n.ChildByFieldName("name"), source) != name {
				return false
			}
			paramsNode = constructorParams(n, source)
			return false
		case "function_definition":
			if nodeText(n.ChildByFieldName("name"), source) == name {
				paramsNode = n.ChildByFieldName("parameters")
				return false
			}
		}
		return true
	})
	if paramsNode == nil {
		return nil
	}

	return parameterDescriptors(paramsNode, source)
}

// constructorParams finds the __init__ method's parameter list in a class
// body.
func constructorParams(classNode *sitter.Node, source []byte) *sitter.Node {
	bodyNode := classNode.ChildByFieldName("body")
	if bodyNode == nil {
		return nil
	}
	var paramsNode *sitter.Node
	walkTree(bodyNode, func(n *sitter.Node) bool {
		if paramsNode != nil {
			return false
		}
		if n.Kind() == "function_definition" && nodeText(n.ChildByFieldName("name"), source) == "__init__" {
			paramsNode = n.ChildByFieldName("parameters")
			return false
		}
		return true
	})
	return paramsNode
}

// parameterDescriptors converts the typed entries of a parameter list into
// descriptors. Untyped parameters (self, bare *args/**kwargs) carry no
// annotation to report and are skipped, matching the catalog's contract.
func parameterDescriptors(paramsNode *sitter.Node, source []byte) map[string]manifest.ParameterDescriptor {
	params := map[string]manifest.ParameterDescriptor{}

	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(uint(i))
		kind := child.Kind()
		if kind != "typed_parameter" && kind != "typed_default_parameter" {
			continue
		}

		text := nodeText(child, source)
		colon := strings.IndexByte(text, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(text[:colon])
		rest := strings.TrimSpace(text[colon+1:])

		annotation, defaultValue, hasDefault := splitAnnotationDefault(rest)

		params[name] = manifest.ParameterDescriptor{
			Annotation: annotation,
			Default:    defaultValue,
			Required:   !hasDefault,
		}
	}

	return params
}

// splitAnnotationDefault splits `annotation = default` at the first
// top-level equals sign. Defaults may nest parens, brackets, and strings;
// the annotation boundary itself never does.
func splitAnnotationDefault(rest string) (annotation, defaultValue string, hasDefault bool) {
	depth := 0
	var inString bool
	var stringChar byte
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if inString {
			if c == stringChar {
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			stringChar = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth == 0 {
				return strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+1:]), true
			}
		}
	}
	return strings.TrimSpace(rest), "", false
}
