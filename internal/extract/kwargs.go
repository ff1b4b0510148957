package extract

import "strings"

// RawKeyValue is one keyword argument as it appears in the call text: the
// key and the unparsed value span. Pairs are transient; they are discarded
// once the value classifier has typed them.
type RawKeyValue struct {
	Key   string
	Value string
}

// ParseKwargs splits one call's argument list into ordered key/value pairs.
// callText is the full call expression including the constructor name and
// its parentheses.
//
// The scan is a single left-to-right pass tracking paren, bracket, and brace
// depth, an in-string flag with the opening quote character, and whether the
// scanner is currently reading a key or a value. A comma at all-zero depth
// outside a string ends the current pair. The call's own closing parenthesis
// ends the scan; closing parens of nested calls only decrement a positive
// depth. Quoted strings are copied verbatim and closed only by an unescaped
// matching quote, so commas and parens inside them never split a pair.
func ParseKwargs(callText string) ([]RawKeyValue, error) {
	parenStart := strings.IndexByte(callText, '(')
	if parenStart < 0 {
		return nil, syntaxf("no opening parenthesis in call text %q", firstLine(callText))
	}
	content := callText[parenStart+1:]

	var (
		pairs        []RawKeyValue
		key          strings.Builder
		value        strings.Builder
		inKey        = true
		parenDepth   int
		bracketDepth int
		braceDepth   int
		inString     bool
		stringChar   byte
		escaped      bool
	)

	flush := func() {
		k := strings.TrimSpace(key.String())
		v := strings.TrimSpace(value.String())
		if k != "" && v != "" {
			pairs = append(pairs, RawKeyValue{Key: cleanKey(k), Value: v})
		}
		key.Reset()
		value.Reset()
		inKey = true
	}

	for i := 0; i < len(content); i++ {
		c := content[i]

		if inString {
			value.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == stringChar:
				inString = false
			}
			continue
		}

		// Leading whitespace before a key carries no information.
		if inKey && key.Len() == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r') {
			continue
		}

		switch c {
		case '"', '\'':
			inString = true
			stringChar = c
			value.WriteByte(c)
		case '=':
			if inKey {
				inKey = false
			} else {
				value.WriteByte(c)
			}
		case '(':
			parenDepth++
			value.WriteByte(c)
		case ')':
			if parenDepth > 0 {
				parenDepth--
				value.WriteByte(c)
				continue
			}
			// The call's own closing paren: final pair, end of scan.
			flush()
			if inString {
				return nil, syntaxf("unterminated string in call text %q", firstLine(callText))
			}
			return pairs, nil
		case '[':
			bracketDepth++
			value.WriteByte(c)
		case ']':
			bracketDepth--
			value.WriteByte(c)
		case '{':
			braceDepth++
			value.WriteByte(c)
		case '}':
			braceDepth--
			value.WriteByte(c)
		case ',':
			if parenDepth == 0 && bracketDepth == 0 && braceDepth == 0 {
				flush()
			} else {
				value.WriteByte(c)
			}
		default:
			if inKey {
				key.WriteByte(c)
			} else {
				value.WriteByte(c)
			}
		}
	}

	return nil, syntaxf("unbalanced parentheses in call text %q", firstLine(callText))
}

// cleanKey reduces a qualified key like `config: SomeAlias` or a
// dict-unpacked `prefix:name` to its final segment.
func cleanKey(key string) string {
	if idx := strings.LastIndexByte(key, ':'); idx >= 0 {
		return strings.TrimSpace(key[idx+1:])
	}
	return key
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
