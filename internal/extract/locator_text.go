package extract

import (
	"sort"
	"strings"

	"github.com/mvp-joe/pluginspect/internal/manifest"
)

// registrationFunc is the function whose body declares the package's
// plugins, and pluginsKeyword the list-valued argument holding them.
const (
	registrationFunc = "def register_plugin("
	pluginsKeyword   = "plugins="
)

// textLocator is the textual fallback strategy. It delimits the
// registration function body by indentation, finds the plugins list by
// bracket matching, and carves out each recognized constructor call through
// its matching closing parenthesis.
type textLocator struct {
	constructors []string
}

func newTextLocator() *textLocator {
	return &textLocator{constructors: manifest.ConstructorNames()}
}

func (l *textLocator) Locate(source []byte) ([]string, error) {
	body, err := registrationBody(string(source))
	if err != nil {
		return nil, err
	}

	listText, ok := pluginsList(body)
	if !ok {
		return nil, errNoRegistrations()
	}

	calls := l.carveCalls(listText)
	if len(calls) == 0 {
		return nil, errNoRegistrations()
	}
	return calls, nil
}

// registrationBody extracts the registration function's body text. The
// first non-blank line after the definition sets the base indentation; a
// later non-blank line with lesser indentation ends the body.
func registrationBody(content string) (string, error) {
	start := strings.Index(content, registrationFunc)
	if start < 0 {
		return "", errNoRegistrations()
	}
	colon := strings.IndexByte(content[start:], ':')
	if colon < 0 {
		return "", syntaxf("malformed registration function definition")
	}

	var (
		bodyLines  []string
		baseIndent = -1
	)
	for _, line := range strings.Split(content[start+colon+1:], "\n") {
		if len(bodyLines) == 0 && isBlank(line) {
			continue
		}
		if !isBlank(line) {
			indent := indentOf(line)
			if baseIndent < 0 {
				baseIndent = indent
			}
			if indent < baseIndent {
				break
			}
		}
		bodyLines = append(bodyLines, line)
	}

	return strings.Join(bodyLines, "\n"), nil
}

// pluginsList returns the text between the brackets of the plugins=[...]
// assignment inside the function body.
func pluginsList(body string) (string, bool) {
	idx := strings.Index(body, pluginsKeyword)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(pluginsKeyword):]
	offset := len(rest) - len(strings.TrimLeft(rest, " \t\n\r"))
	if offset >= len(rest) || rest[offset] != '[' {
		return "", false
	}
	end := findMatchingBracket(rest, offset)
	if end < 0 {
		return "", false
	}
	return rest[offset+1 : end], true
}

// carveCalls finds each occurrence of a recognized constructor token and
// carves out the call through its matching closing parenthesis. Results are
// ordered by position so both locator strategies agree on call order.
func (l *textLocator) carveCalls(listText string) []string {
	type located struct {
		pos  int
		text string
	}

	var found []located
	seen := make(map[string]bool)

	for _, name := range l.constructors {
		searchFrom := 0
		for {
			pos := strings.Index(listText[searchFrom:], name)
			if pos < 0 {
				break
			}
			actual := searchFrom + pos
			searchFrom = actual + 1

			parenOffset := strings.IndexByte(listText[actual:], '(')
			if parenOffset < 0 {
				break
			}
			parenStart := actual + parenOffset
			parenEnd := findMatchingParen(listText, parenStart)
			if parenEnd < 0 {
				continue
			}

			callText := listText[actual : parenEnd+1]
			if callText != "" && !seen[callText] {
				seen[callText] = true
				found = append(found, located{pos: actual, text: callText})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	calls := make([]string, len(found))
	for i, f := range found {
		calls[i] = f.text
	}
	return calls
}
