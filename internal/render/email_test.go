package render

import (
	"strings"
	"testing"

	"github.com/derailed/tcell/v2"
	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestFormatSender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana Silva <ana@example.com>", "Ana Silva"},
		{`"Bob" <bob@example.com>`, "Bob"},
		{"<noreply@example.com>", "noreply@example.com"},
		{"plain@example.com", "plain@example.com"},
		{"", UnknownSender},
		{"   ", UnknownSender},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSender(tt.in))
		})
	}
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "A", Initial("ana <ana@example.com>"))
	assert.Equal(t, "U", Initial(""))
	assert.Equal(t, "É", Initial("élodie <e@example.com>"))
}

func TestInboxRow(t *testing.T) {
	email := agent.EmailSummary{
		ID:          "m1",
		Sender:      "Ana Silva <ana@example.com>",
		Subject:     "Quarterly numbers",
		BodySnippet: "Please review &amp; reply",
		Date:        "Mon, 02 Jan 2006 15:04:05 -0700",
		IsUnread:    true,
	}

	row := InboxRow(email, 100)
	assert.Equal(t, 100, runewidth.StringWidth(row))
	assert.True(t, strings.HasPrefix(row, unreadMarker))
	assert.Contains(t, row, "Ana Silva")
	assert.Contains(t, row, "Quarterly numbers - Please review & reply")
	assert.True(t, strings.HasSuffix(row, "02 Jan"))

	email.IsUnread = false
	assert.True(t, strings.HasPrefix(InboxRow(email, 100), " "))
}

func TestInboxRow_Placeholders(t *testing.T) {
	row := InboxRow(agent.EmailSummary{ID: "m2"}, 120)
	assert.Contains(t, row, UnknownSender)
	assert.Contains(t, row, NoSubject)
	assert.Contains(t, row, NoPreview)
}

func TestInboxRow_NarrowWidthClamped(t *testing.T) {
	row := InboxRow(agent.EmailSummary{Subject: strings.Repeat("long ", 20)}, 5)
	assert.Equal(t, minRowWidth, runewidth.StringWidth(row))
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "", shortDate(""))
	assert.Equal(t, "2 Feb", shortDate("Tue, 2 Feb 2021 10:00:00 +0000"))
	assert.Equal(t, "yesterday", shortDate("yesterday"))
}

func TestEmailColorer(t *testing.T) {
	ec := NewEmailColorer()
	assert.Equal(t, tcell.ColorOrange, ec.Color(agent.EmailSummary{IsUnread: true}))
	assert.Equal(t, tcell.ColorGray, ec.Color(agent.EmailSummary{}))

	ec.UpdateFromStyles(nil)
	assert.Equal(t, tcell.ColorOrange, ec.UnreadColor)

	colors := config.LightColors()
	ec.UpdateFromStyles(colors)
	assert.Equal(t, colors.Inbox.UnreadColor.Color(), ec.Color(agent.EmailSummary{IsUnread: true}))
	assert.Equal(t, colors.Inbox.ReadColor.Color(), ec.Color(agent.EmailSummary{}))
}
