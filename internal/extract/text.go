package extract

// findMatchingDelim returns the index of the closing delimiter matching the
// opening one at start, or -1. start must point at the opening delimiter.
func findMatchingDelim(content string, start int, open, close byte) int {
	if start < 0 || start >= len(content) || content[start] != open {
		return -1
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func findMatchingParen(content string, start int) int {
	return findMatchingDelim(content, start, '(', ')')
}

func findMatchingBracket(content string, start int) int {
	return findMatchingDelim(content, start, '[', ']')
}

// indentOf returns the leading-whitespace width of a line.
func indentOf(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return len(line)
}

func isBlank(line string) bool {
	return indentOf(line) == len(line)
}
