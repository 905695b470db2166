package classcmd

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const (
	descriptionLimit = 100
	ellipsis         = "…"
)

// docEntry is the head of one documented argument:
//
//	:param name: text          (Sphinx)
//	name (type): text          (Google)
//	name : type                (NumPy, text on the following lines)
type docEntry struct {
	Sphinx bool     `parser:"(':' @'param')?"`
	Stars  []string `parser:"@'*'*"`
	Words  []string `parser:"@Ident+"`
	Type   []string `parser:"('(' (@~')')* ')')?"`
	Colon  bool     `parser:"@':'?"`

	EndPos lexer.Position
}

var (
	docLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
		{Name: "Punct", Pattern: `[():*]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})

	docParser = participle.MustBuild[docEntry](
		participle.Lexer(docLexer),
		participle.Elide("Whitespace"),
	)
)

// parseEntry parses the head of an argument line and returns the argument
// name and the text after it.
func parseEntry(line string) (*docEntry, string, bool) {
	e, err := docParser.ParseString("", line, participle.AllowTrailing(true))
	if err != nil || len(e.Words) == 0 {
		return nil, "", false
	}
	rest := ""
	if off := e.EndPos.Offset; off > 0 && off <= len(line) {
		rest = strings.TrimSpace(line[off:])
	}
	return e, rest, true
}

func (e *docEntry) name() string { return e.Words[len(e.Words)-1] }

type docSection int

const (
	sectionNone docSection = iota
	sectionGoogle
	sectionNumPy
)

var (
	googleHeaders = map[string]bool{"Args:": true, "Arguments:": true, "Parameters:": true, "Params:": true}
	numpyHeaders  = map[string]bool{"Args": true, "Arguments": true, "Parameters": true, "Params": true, "Other Parameters": true}
)

// parseDocArgs extracts argument descriptions from a doc comment written in
// Google, NumPy or Sphinx style. Continuation lines are joined with spaces.
func parseDocArgs(doc string) map[string]string {
	lines := dedent(strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n"))
	out := make(map[string]string)

	type pending struct {
		name   string
		indent int
		parts  []string
	}
	var cur *pending
	flush := func() {
		if cur == nil {
			return
		}
		if _, seen := out[cur.name]; !seen {
			out[cur.name] = strings.Join(cur.parts, " ")
		}
		cur = nil
	}

	section, sectionIndent := sectionNone, 0
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		indent := indentOf(line)

		if trimmed == "" {
			flush()
			continue
		}
		if cur != nil && indent > cur.indent {
			cur.parts = append(cur.parts, trimmed)
			continue
		}
		flush()

		if strings.HasPrefix(trimmed, ":param") {
			if e, rest, ok := parseEntry(trimmed); ok && e.Sphinx && e.Colon {
				cur = &pending{name: e.name(), indent: indent, parts: nonEmpty(rest)}
			}
			continue
		}

		switch {
		case googleHeaders[trimmed]:
			section, sectionIndent = sectionGoogle, indent
			continue
		case numpyHeaders[trimmed] && i+1 < len(lines) && isUnderline(lines[i+1]):
			section, sectionIndent = sectionNumPy, indent
			i++
			continue
		}

		switch section {
		case sectionGoogle:
			if indent <= sectionIndent {
				section = sectionNone
				continue
			}
			if e, rest, ok := parseEntry(trimmed); ok && !e.Sphinx && e.Colon && len(e.Words) == 1 {
				cur = &pending{name: e.name(), indent: indent, parts: nonEmpty(rest)}
			}
		case sectionNumPy:
			if indent < sectionIndent {
				section = sectionNone
				continue
			}
			if i+1 < len(lines) && isUnderline(lines[i+1]) {
				// next section header
				section = sectionNone
				continue
			}
			if e, _, ok := parseEntry(trimmed); ok && !e.Sphinx && len(e.Words) == 1 {
				cur = &pending{name: e.name(), indent: indent}
			}
		}
	}
	flush()

	for name, desc := range out {
		if desc == "" {
			delete(out, name)
		}
	}
	return out
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func isUnderline(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 3 && strings.Trim(t, "-") == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// dedent removes the indentation shared by all non-blank lines after the first.
func dedent(lines []string) []string {
	common := -1
	for i, l := range lines {
		if i == 0 || strings.TrimSpace(l) == "" {
			continue
		}
		if n := indentOf(l); common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case i == 0:
			out[i] = strings.TrimLeft(l, " \t")
		case common > 0 && len(l) >= common:
			out[i] = l[common:]
		default:
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

// shorten keeps the first paragraph of s, collapses whitespace and cuts it to
// 100 characters at a word boundary, marking the cut with "…".
func shorten(s string) string {
	if i := strings.Index(s, "\n\n"); i >= 0 {
		s = s[:i]
	}
	words := strings.Fields(s)
	if line := strings.Join(words, " "); utf8.RuneCountInString(line) <= descriptionLimit {
		return line
	}

	var b strings.Builder
	n := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		sep := 0
		if n > 0 {
			sep = 1
		}
		if n+sep+wl+utf8.RuneCountInString(ellipsis) > descriptionLimit {
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		n += sep + wl
	}
	return b.String() + ellipsis
}
