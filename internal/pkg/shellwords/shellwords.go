// Package shellwords splits a shell command line into words and
// redirections for policy inspection. The scanner is deliberately lenient:
// unbalanced quotes consume the rest of the input instead of failing, so
// classifiers can still inspect malformed commands. Strict syntax
// validation is a separate concern.
package shellwords

import "strings"

// Redirect is one output/input redirection found in the command line.
type Redirect struct {
	// Op is the redirection operator, e.g. ">", ">>", "<".
	Op string
	// Target is the unquoted redirection operand. Empty for fd
	// duplications like ">&2".
	Target string
}

// Parsed is the scanner output.
type Parsed struct {
	// Segments holds one argv per simple command; pipelines and command
	// lists are split on |, ; and &.
	Segments [][]string
	// Redirects holds every filesystem redirection in the command line.
	Redirects []Redirect
}

// Words returns all argv words across segments, in order.
func (p Parsed) Words() []string {
	var words []string
	for _, seg := range p.Segments {
		words = append(words, seg...)
	}
	return words
}

// Split scans a command line into words and redirections. Quoting is
// honored ('' and "" produce a single word, including the empty word) and
// backslash escapes the next character.
func Split(command string) Parsed {
	runes := []rune(command)
	var parsed Parsed
	var current []string

	endSegment := func() {
		if len(current) > 0 {
			parsed.Segments = append(parsed.Segments, current)
			current = nil
		}
	}

	i := 0
	for i < len(runes) {
		switch ch := runes[i]; {
		case ch == ' ' || ch == '\t' || ch == '\n':
			i++
		case ch == ';' || ch == '|':
			endSegment()
			i++
		case ch == '&':
			if i+1 < len(runes) && runes[i+1] == '>' {
				op, target, next := scanRedirect(runes, i+1)
				if target != "" {
					parsed.Redirects = append(parsed.Redirects, Redirect{Op: "&" + op, Target: target})
				}
				i = next
				continue
			}
			endSegment()
			i++
		case ch == '>' || ch == '<':
			op, target, next := scanRedirect(runes, i)
			if target != "" {
				parsed.Redirects = append(parsed.Redirects, Redirect{Op: op, Target: target})
			}
			i = next
		default:
			word, sawQuote, next := scanWord(runes, i)
			// A bare digit run immediately before a redirect operator is a
			// file descriptor (2>), not an argument.
			if !sawQuote && word != "" && allDigits(word) &&
				next < len(runes) && (runes[next] == '>' || runes[next] == '<') {
				i = next
				continue
			}
			if word != "" || sawQuote {
				current = append(current, word)
			}
			i = next
		}
	}
	endSegment()
	return parsed
}

// scanWord consumes one word starting at i, honoring quotes and escapes.
// sawQuote reports whether any quoting occurred, which distinguishes the
// explicit empty word '' from no word at all.
func scanWord(runes []rune, i int) (word string, sawQuote bool, next int) {
	var b strings.Builder
	for i < len(runes) {
		switch ch := runes[i]; ch {
		case ' ', '\t', '\n', ';', '|', '&', '>', '<':
			return b.String(), sawQuote, i
		case '\\':
			if i+1 < len(runes) {
				b.WriteRune(runes[i+1])
				i += 2
			} else {
				i++
			}
		case '\'':
			sawQuote = true
			i++
			for i < len(runes) && runes[i] != '\'' {
				b.WriteRune(runes[i])
				i++
			}
			if i < len(runes) {
				i++
			}
		case '"':
			sawQuote = true
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				b.WriteRune(runes[i])
				i++
			}
			if i < len(runes) {
				i++
			}
		default:
			b.WriteRune(ch)
			i++
		}
	}
	return b.String(), sawQuote, i
}

// scanRedirect consumes a redirection operator plus its operand.
func scanRedirect(runes []rune, i int) (op string, target string, next int) {
	var b strings.Builder
	for i < len(runes) && (runes[i] == '>' || runes[i] == '<') {
		b.WriteRune(runes[i])
		i++
	}
	if i < len(runes) && runes[i] == '|' {
		b.WriteRune(runes[i])
		i++
	}
	if i < len(runes) && runes[i] == '&' {
		// fd duplication (>&2); no filesystem target
		i++
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		}
		return b.String(), "", i
	}
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
		i++
	}
	word, _, next := scanWord(runes, i)
	return b.String(), word, next
}

// ExtractPath pulls a path candidate out of a word. Flags are skipped
// unless they carry a value (--file=../x); URLs are never paths.
func ExtractPath(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	if strings.Contains(word, "://") {
		return "", false
	}
	if strings.HasPrefix(word, "-") {
		eq := strings.IndexByte(word, '=')
		if eq < 0 {
			return "", false
		}
		word = word[eq+1:]
	}
	if !pathLike(word) {
		return "", false
	}
	return word, true
}

func pathLike(word string) bool {
	switch {
	case word == "" || word == "-":
		return false
	case word == "..", word == ".":
		return true
	case strings.HasPrefix(word, "~"):
		return true
	case strings.HasPrefix(word, "$HOME"), strings.HasPrefix(word, "${HOME}"):
		return true
	default:
		return strings.Contains(word, "/")
	}
}

// ExpandHome rewrites a leading ~, $HOME or ${HOME} to the given home
// directory. Other expansions are left alone.
func ExpandHome(word, home string) string {
	switch {
	case word == "~" || word == "$HOME" || word == "${HOME}":
		return home
	case strings.HasPrefix(word, "~/"):
		return home + word[1:]
	case strings.HasPrefix(word, "$HOME/"):
		return home + word[len("$HOME"):]
	case strings.HasPrefix(word, "${HOME}/"):
		return home + word[len("${HOME}"):]
	default:
		return word
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
