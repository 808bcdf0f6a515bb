package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/mattn/go-runewidth"
)

// Placeholders for missing email fields
const (
	UnknownSender = "Unknown"
	NoSubject     = "(No Subject)"
	NoPreview     = "No preview available"
)

var (
	senderNameRe = regexp.MustCompile(`^(.+?)\s*<`)
	senderAddrRe = regexp.MustCompile(`<(.+?)>`)
)

// FormatSender extracts a display name from a From header:
// "Name <a@b>" gives Name, "<a@b>" gives a@b, empty gives Unknown
func FormatSender(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return UnknownSender
	}
	if m := senderNameRe.FindStringSubmatch(sender); m != nil {
		if name := strings.Trim(strings.TrimSpace(m[1]), `"`); name != "" {
			return name
		}
	}
	if m := senderAddrRe.FindStringSubmatch(sender); m != nil {
		return m[1]
	}
	return sender
}

// Initial returns the upper-cased first letter of the sender display name
func Initial(sender string) string {
	for _, r := range FormatSender(sender) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// EmailColorer picks row colors for inbox entries
type EmailColorer struct {
	UnreadColor tcell.Color
	ReadColor   tcell.Color
}

// NewEmailColorer creates a new email colorer with default colors
func NewEmailColorer() *EmailColorer {
	return &EmailColorer{
		UnreadColor: tcell.ColorOrange,
		ReadColor:   tcell.ColorGray,
	}
}

// UpdateFromStyles applies the inbox colors of a theme
func (ec *EmailColorer) UpdateFromStyles(colors *config.ColorsConfig) {
	if colors == nil {
		return
	}
	if colors.Inbox.UnreadColor != "" {
		ec.UnreadColor = colors.Inbox.UnreadColor.Color()
	}
	if colors.Inbox.ReadColor != "" {
		ec.ReadColor = colors.Inbox.ReadColor.Color()
	}
}

// Color returns the row color for email
func (ec *EmailColorer) Color(email agent.EmailSummary) tcell.Color {
	if email.IsUnread {
		return ec.UnreadColor
	}
	return ec.ReadColor
}

// Inbox row layout
const (
	minRowWidth  = 60
	senderWidth  = 22
	dateWidth    = 12
	unreadMarker = "●"
)

// InboxRow formats an email as a fixed-column line: marker, sender, subject
// with snippet, date. The result is exactly width cells wide.
func InboxRow(email agent.EmailSummary, width int) string {
	if width < minRowWidth {
		width = minRowWidth
	}

	marker := " "
	if email.IsUnread {
		marker = unreadMarker
	}

	subject := strings.TrimSpace(email.Subject)
	if subject == "" {
		subject = NoSubject
	}
	snippet := SnippetText(email.BodySnippet)
	if snippet == "" {
		snippet = NoPreview
	}

	// marker + space + sender + " | " + body + " | " + date
	bodyWidth := width - 2 - senderWidth - 3 - 3 - dateWidth
	body := subject + " - " + strings.Join(strings.Fields(snippet), " ")

	return fmt.Sprintf("%s %s | %s | %s",
		fitWidth(marker, 1),
		fitWidth(FormatSender(email.Sender), senderWidth),
		fitWidth(body, bodyWidth),
		rightFit(shortDate(email.Date), dateWidth))
}

// shortDate keeps the day and month of an RFC 2822 date header
func shortDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	fields := strings.Fields(date)
	// "Mon, 02 Jan 2006 15:04:05 -0700"
	if len(fields) >= 4 && strings.HasSuffix(fields[0], ",") {
		return fields[1] + " " + fields[2]
	}
	return date
}

// fitWidth truncates and pads on the right to fit a fixed width
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	// Truncate by display width with ellipsis
	s = runewidth.Truncate(s, width, "...")
	// Pad on the right to exact width
	pad := width - runewidth.StringWidth(s)
	if pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// rightFit truncates and right-aligns/pads to width
func rightFit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "")
	pad := width - runewidth.StringWidth(s)
	if pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}
