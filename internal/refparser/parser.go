package refparser

import (
	"strings"

	"github.com/prompy/prompy/internal/diagnostics"
)

func isSlugStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isSlugChar(c byte) bool {
	return isSlugStart(c) || (c >= '0' && c <= '9') || c == '.' || c == '/' || c == '-'
}

// parseSlug reads a slug starting at pos (which must be a valid slug-start
// byte) and returns it along with the offset immediately after it.
func parseSlug(text string, pos int) (slug string, next int) {
	start := pos
	pos++
	for pos < len(text) && isSlugChar(text[pos]) {
		pos++
	}
	return text[start:pos], pos
}

// findMatchingParen returns the offset of the ')' that closes the '(' at
// openPos, honoring quoted strings and nested parens (from nested
// references). It returns -1 if no matching close is found.
func findMatchingParen(text string, openPos int) int {
	depth := 0
	var quote byte
	for i := openPos; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(text) {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseOne parses a single reference starting at pos, where text[pos] must
// be '@'. It returns the token and the offset immediately after it.
func parseOne(text string, pos int) (*Token, int, error) {
	start := pos
	slugPos := pos + 1
	if slugPos >= len(text) || !isSlugStart(text[slugPos]) {
		return nil, 0, syntaxErr(text, pos, "expected a slug after '@'")
	}

	slug, afterSlug := parseSlug(text, slugPos)
	slugEnd := afterSlug

	if afterSlug >= len(text) || text[afterSlug] != '(' {
		return &Token{Slug: slug, Start: start, SlugEnd: slugEnd, End: afterSlug}, afterSlug, nil
	}

	closeParen := findMatchingParen(text, afterSlug)
	if closeParen == -1 {
		return nil, 0, syntaxErr(text, start, "unbalanced parentheses in argument list for @"+slug)
	}

	inner := text[afterSlug+1 : closeParen]
	positional, keyword, err := parseArgs(inner)
	if err != nil {
		return nil, 0, err
	}

	end := closeParen + 1
	return &Token{
		Slug:       slug,
		Positional: positional,
		Keyword:    keyword,
		Start:      start,
		SlugEnd:    slugEnd,
		End:        end,
	}, end, nil
}

// splitArgs splits raw on top-level commas, respecting quotes and nested
// parens, and ignoring leading/trailing whitespace around each piece.
func splitArgs(raw string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0

	flush := func(end int) {
		piece := strings.TrimSpace(raw[start:end])
		if piece != "" {
			parts = append(parts, piece)
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(raw) {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(raw))
	return parts
}

// splitKeyword splits "name=value" on the first top-level '=', returning ok
// = false if there is no top-level '=' (a positional argument).
func splitKeyword(piece string) (name, value string, ok bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(piece); i++ {
		c := piece[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(piece) {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '=' && depth == 0:
			name = strings.TrimSpace(piece[:i])
			value = strings.TrimSpace(piece[i+1:])
			if isValidIdentifier(name) {
				return name, value, true
			}
			return "", "", false
		}
	}
	return "", "", false
}

func isValidIdentifier(s string) bool {
	if s == "" || !isSlugStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(isSlugStart(c) || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func parseArgs(raw string) ([]ArgValue, []KeywordArg, error) {
	var positional []ArgValue
	keywordOrder := make([]string, 0)
	keywordByName := make(map[string]ArgValue)

	for _, piece := range splitArgs(raw) {
		if name, valueText, ok := splitKeyword(piece); ok {
			val, err := parseValue(valueText)
			if err != nil {
				return nil, nil, err
			}
			if _, seen := keywordByName[name]; !seen {
				keywordOrder = append(keywordOrder, name)
			}
			keywordByName[name] = val
			continue
		}

		val, err := parseValue(piece)
		if err != nil {
			return nil, nil, err
		}
		positional = append(positional, val)
	}

	keyword := make([]KeywordArg, 0, len(keywordOrder))
	for _, name := range keywordOrder {
		keyword = append(keyword, KeywordArg{Name: name, Value: keywordByName[name]})
	}

	return positional, keyword, nil
}

func parseValue(raw string) (ArgValue, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ArgValue{}, syntaxErr(raw, 0, "expected a value, found nothing")
	}

	if raw[0] == '\'' || raw[0] == '"' {
		return parseQuoted(raw)
	}

	if raw[0] == '@' {
		tok, next, err := parseOne(raw, 0)
		if err != nil {
			return ArgValue{}, err
		}
		if next != len(raw) {
			return ArgValue{}, syntaxErr(raw, next, "unexpected trailing text after nested reference")
		}
		return ArgValue{Kind: Reference, Reference: tok}, nil
	}

	if !isValidIdentifier(raw) {
		return ArgValue{}, syntaxErr(raw, 0, "invalid argument value '"+raw+"'")
	}
	return ArgValue{Kind: Identifier, Text: raw}, nil
}

func parseQuoted(raw string) (ArgValue, error) {
	quote := raw[0]
	var b strings.Builder
	i := 1
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) && raw[i+1] == quote {
			b.WriteByte(quote)
			i += 2
			continue
		}
		if c == quote {
			if i != len(raw)-1 {
				return ArgValue{}, syntaxErr(raw, i, "unexpected text after closing quote")
			}
			return ArgValue{Kind: Literal, Text: b.String()}, nil
		}
		b.WriteByte(c)
		i++
	}
	return ArgValue{}, syntaxErr(raw, 0, "unterminated string literal")
}

func syntaxErr(text string, offset int, detail string) error {
	return &diagnostics.SyntaxError{
		Offset:  offset,
		Detail:  detail,
		Snippet: snippet(text, offset),
	}
}

func snippet(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return text
	}
	return text[:offset] + "<-here-> " + text[offset:]
}

// IsReference reports whether the entirety of text (after trimming
// surrounding whitespace) is a single @slug(...) reference, with nothing
// before or after it. This is how the evaluator decides whether a
// "{{ ... }}" body should be delegated to the resolver instead of being
// parsed as a general template expression.
func IsReference(text string) (*Token, bool, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed[0] != '@' {
		return nil, false, nil
	}

	tok, next, err := parseOne(trimmed, 0)
	if err != nil {
		return nil, false, err
	}
	if next != len(trimmed) {
		return nil, false, nil
	}
	return tok, true, nil
}

// FindAll scans text left to right for every top-level @slug(...)
// occurrence, skipping escaped "@@" sequences. It is used by the catalog's
// static cycle check and by the rename refactorer, both of which need every
// reference in a whole file, not just a single classification.
func FindAll(text string) ([]*Token, error) {
	var tokens []*Token
	i := 0
	for i < len(text) {
		if text[i] != '@' {
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == '@' {
			i += 2
			continue
		}
		if i+1 >= len(text) || !isSlugStart(text[i+1]) {
			i++
			continue
		}

		tok, next, err := parseOne(text, i)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		i = next
	}
	return tokens, nil
}
