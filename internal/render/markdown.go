package render

import (
	"regexp"
	"strings"

	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/config"
)

var (
	boldRe    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicRe  = regexp.MustCompile(`(^|[^*])\*([^*\s][^*\n]*?)\*`)
	codeRe    = regexp.MustCompile("`([^`\n]+)`")
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
)

// MarkdownToTview converts the light markdown used in assistant replies into
// tview color tags. Input is escaped first so stray brackets cannot inject
// tags; fenced code blocks are colored but otherwise left intact.
func MarkdownToTview(text string, colors *config.ColorsConfig) string {
	if colors == nil {
		colors = config.DefaultColors()
	}
	code := colors.Chat.CodeColor.String()
	heading := colors.Chat.HeadingColor.String()

	lines := strings.Split(normalizeNewlines(text), "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		escaped := tview.Escape(line)
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			out = append(out, "["+code+"]"+escaped+"[-]")
			continue
		}
		if inFence {
			out = append(out, "["+code+"]"+escaped+"[-]")
			continue
		}
		if m := headingRe.FindStringSubmatch(escaped); m != nil {
			out = append(out, "["+heading+"::b]"+m[2]+"[-::-]")
			continue
		}
		if m := bulletRe.FindStringSubmatch(escaped); m != nil {
			escaped = m[1] + "• " + m[2]
		}
		out = append(out, inline(escaped, code))
	}
	return strings.Join(out, "\n")
}

func inline(line, code string) string {
	line = codeRe.ReplaceAllString(line, "["+code+"]$1[-]")
	line = boldRe.ReplaceAllString(line, "[::b]$1[::-]")
	line = italicRe.ReplaceAllString(line, "$1[::i]$2[::-]")
	return line
}
