package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for fuzzy comparison: letters are
// lower-cased and the separators '_', '-' and ' ' are dropped, so
// "Order_ID", "orderId" and "ORDERID" all normalize to "orderid".
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// TokenizeIdent splits a CamelCase or snake_case identifier into lower-case
// tokens: "getHTTPResponse" -> ["get", "http", "response"].
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports a lower-to-upper transition ("orderID" splits before
// 'I') or the end of an acronym ("XMLParser" splits before 'P').
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
