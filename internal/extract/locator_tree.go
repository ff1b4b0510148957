package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// treeLocator finds registration calls by walking the parsed syntax tree
// for call expressions whose callee is a recognized plugin constructor.
type treeLocator struct {
	language     *sitter.Language
	constructors map[string]bool
}

func newTreeLocator() *treeLocator {
	constructors := make(map[string]bool)
	for _, name := range manifest.ConstructorNames() {
		constructors[name] = true
	}
	return &treeLocator{
		language:     sitter.NewLanguage(python.Language()),
		constructors: constructors,
	}
}

func (l *treeLocator) Locate(source []byte) ([]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(l.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, syntaxf("failed to parse registration file")
	}
	defer tree.Close()

	var calls []string
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		fnNode := n.ChildByFieldName("function")
		if fnNode == nil || !l.constructors[nodeText(fnNode, source)] {
			return true
		}
		calls = append(calls, nodeText(n, source))
		// The argument list of a registration call never nests another
		// registration call.
		return false
	})

	if len(calls) == 0 {
		return nil, errNoRegistrations()
	}
	return calls, nil
}

// nodeText extracts the source text covered by a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits nodes depth-first in file order. Returning false from the
// visitor prunes the node's subtree.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
