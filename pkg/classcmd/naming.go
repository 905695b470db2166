package classcmd

import (
	"strings"
	"unicode"
)

// splitWords splits a Go identifier into words: "HTTPStatusCode" becomes
// HTTP, Status, Code.
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		switch {
		case cur == '_':
			if i > start {
				words = append(words, string(runes[start:i]))
			}
			start = i + 1
		case unicode.IsUpper(cur) && unicode.IsLower(prev),
			unicode.IsUpper(cur) && unicode.IsDigit(prev),
			unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsLower(runes[i+1]):
			if i > start {
				words = append(words, string(runes[start:i]))
			}
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

func joinLower(name, sep string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// commandName is the default name of a slash command: "BanUser" becomes "ban-user".
func commandName(typeName string) string { return joinLower(typeName, "-") }

// parameterName is the default name of a parameter: "MaxCount" becomes "max_count".
func parameterName(field string) string { return joinLower(field, "_") }

// menuName is the default name of a context menu: "ReportMessage" becomes
// "Report Message".
func menuName(typeName string) string {
	words := splitWords(typeName)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
