package sentiment

import (
	"strings"
	"unicode"
)

// Token is a lowercased word and the clause it belongs to.
// Clauses are split on sentence punctuation; context modifiers never cross them.
type Token struct {
	Text   string
	Clause int
}

// Tokenize lowercases text and splits it into word tokens.
// Letters, digits and inner apostrophes/hyphens are kept; everything else separates.
func Tokenize(text string) []Token {
	runes := []rune(text)
	tokens := make([]Token, 0, len(runes)/5+1)

	var (
		b      strings.Builder
		clause int
	)

	flush := func() {
		if b.Len() == 0 {
			return
		}
		word := strings.Trim(b.String(), "'-")
		b.Reset()
		if word != "" {
			tokens = append(tokens, Token{Text: word, Clause: clause})
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’' || r == '‘':
			if b.Len() > 0 {
				b.WriteRune('\'')
			}
		case r == '-':
			if b.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]) {
				b.WriteRune('-')
			} else {
				flush()
			}
		case isClauseBoundary(r):
			flush()
			clause++
		default:
			flush()
		}
	}
	flush()

	return tokens
}

func isClauseBoundary(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ',', ':', '\n', '…':
		return true
	}
	return false
}

// sameClause reports whether tokens[i:i+n] exist and share one clause.
func sameClause(tokens []Token, i, n int) bool {
	if i+n > len(tokens) {
		return false
	}
	c := tokens[i].Clause
	for j := i + 1; j < i+n; j++ {
		if tokens[j].Clause != c {
			return false
		}
	}
	return true
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func matchSequence(tokens []Token, i int, pattern []string) bool {
	if !sameClause(tokens, i, len(pattern)) {
		return false
	}
	for j, p := range pattern {
		if tokens[i+j].Text != p {
			return false
		}
	}
	return true
}
