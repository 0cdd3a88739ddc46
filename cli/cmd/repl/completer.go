package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// commandPrefix introduces a REPL command instead of an expression.
const commandPrefix = ":"

// commands are the REPL commands offered for completion.
var commands = []string{":clear", ":help", ":quit", ":vars"}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// wordBounds returns the identifier around cursor and its byte boundaries
// in input. The word is empty when cursor is not touching an identifier.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset falls inside a quoted string literal of
// input, where completion is suppressed.
func inString(input string, offset int) bool {
	quoted := false

	for i := 0; i < offset && i < len(input); i++ {
		switch input[i] {
		case '\\':
			if quoted {
				i++
			}
		case '\'':
			quoted = !quoted
		}
	}

	return quoted
}

// completion is the result of matching the input at the cursor against the
// known names.
type completion struct {
	matches    fuzzy.Matches
	start, end int // byte bounds of the text a candidate replaces
}

// complete matches the word at cursor against the bound names, or against
// the REPL commands when input starts with [commandPrefix].
func complete(input string, cursor int, names []string) completion {
	if strings.HasPrefix(input, commandPrefix) {
		word := strings.TrimSpace(input)
		if strings.ContainsRune(word, ' ') {
			return completion{}
		}

		return completion{
			matches: fuzzy.Find(word, commands),
			start:   0,
			end:     len(input),
		}
	}

	word, start, end := wordBounds(input, cursor)
	if word == "" || len(names) == 0 || inString(input, start) {
		return completion{start: start, end: end}
	}

	if r, _ := utf8.DecodeRuneInString(word); unicode.IsDigit(r) {
		return completion{start: start, end: end}
	}

	return completion{matches: fuzzy.Find(word, names), start: start, end: end}
}

// candidateNames merges variables and functions into one sorted list.
func candidateNames(variables, functions []string) []string {
	names := slices.Concat(variables, functions)
	slices.Sort(names)

	return slices.Compact(names)
}

// renderCandidateBar renders matches on one line, ellipsized to width. The
// selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	cycling bool,
	functions map[string]bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, cycling && i == selected, functions[match.Str])

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += sepWidth
		}

		if i > 0 && used+w+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters in
// bold. Functions get a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base := suggestionStyle
	highlight := matchStyle

	if selected {
		base = selectedStyle
		highlight = selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
