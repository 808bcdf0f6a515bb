package render

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
)

// SnippetText turns an email snippet, which may hold HTML markup or
// entities, into a single line of terminal-safe text
func SnippetText(snippet string) string {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return ""
	}
	text := snippet
	if strings.ContainsAny(snippet, "<&") {
		if rendered, err := renderHTMLToText(snippet); err == nil {
			text = rendered
		}
	}
	return strings.Join(strings.Fields(sanitizeForTerminal(text)), " ")
}

// renderHTMLToText parses HTML and emits its visible text
func renderHTMLToText(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	collectText(&b, doc)
	return normalizeNewlines(b.String()), nil
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "head", "title":
			return
		case "br":
			b.WriteByte('\n')
		case "p", "div", "li", "tr":
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collectText(b, c)
			}
			b.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// sanitizeForTerminal replaces common rich-text glyphs with ASCII-safe equivalents
func sanitizeForTerminal(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00A0', '\u202F': // NBSP, narrow NBSP
			b.WriteRune(' ')
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u034F', '\u2060', '\u00AD':
			// zero-width, BOM and soft hyphen → drop
		case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A':
			b.WriteRune(' ')
		case '\u2013', '\u2014':
			b.WriteRune('-')
		case '\u2022', '\u2043', '\u25AA', '\u25CF', '\u25E6':
			b.WriteString("- ")
		case '\u2018', '\u2019':
			b.WriteRune('\'')
		case '\u201C', '\u201D':
			b.WriteRune('"')
		case '\u2026':
			b.WriteString("...")
		default:
			// Skip control chars except newline/tab
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

var urlRe = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://\S+$`)

// WrapText wraps chat text to width. Code fences are kept verbatim, quote
// prefixes (> ) repeat on continuation lines and URLs are never split.
func WrapText(input string, width int) string {
	if width <= 0 {
		return input
	}
	lines := strings.Split(normalizeNewlines(input), "\n")
	out := make([]string, 0, len(lines))
	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			out = append(out, line)
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	prefix := ""
	rest := line
	for strings.HasPrefix(rest, "> ") {
		prefix += "> "
		rest = strings.TrimPrefix(rest, "> ")
	}
	// Keep list indentation on the first line only
	indent := rest[:len(rest)-len(strings.TrimLeft(rest, " "))]
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return []string{strings.TrimRight(prefix, " ")}
	}

	var out []string
	cur := prefix + indent
	base := displayLen(cur)
	for _, tok := range tokens {
		curLen := displayLen(cur)
		tokLen := displayLen(tok)
		switch {
		case curLen == base:
			cur += tok
		case curLen+1+tokLen <= width:
			cur += " " + tok
		default:
			out = append(out, cur)
			cur = prefix + tok
			base = displayLen(prefix)
		}
		// Hard cut tokens longer than a line, URLs excepted
		for displayLen(cur) > width && !urlRe.MatchString(tok) && width > displayLen(prefix)+1 {
			head := runewidth.Truncate(cur, width, "")
			if head == cur || displayLen(head) <= displayLen(prefix) {
				break
			}
			out = append(out, head)
			cur = prefix + cur[len(head):]
			base = displayLen(prefix)
		}
	}
	return append(out, cur)
}

// normalizeNewlines unifies line endings and collapses 3+ blank lines into 2
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

func displayLen(s string) int { return runewidth.StringWidth(s) }
