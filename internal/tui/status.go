package tui

import (
	"strings"

	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/services"
)

const keyHints = "Tab focus · ^R refresh · ^S settings · ^L clear · ^G insight · ^O logout · ^Q quit"

// renderStatus redraws the status bar from the session and settings
func (a *App) renderStatus() {
	sess := a.panel.Session.Current()
	model := a.panel.Settings.Model()
	colors := a.theme()
	line := statusLine(sess, model)
	a.status.SetText("[" + colors.Frame.TitleColor.String() + "]" + tview.Escape(line) + "[-]  [" +
		colors.Inbox.PlaceholderCol.String() + "]" + keyHints + "[-]")
}

func statusLine(sess services.Session, model services.Model) string {
	parts := make([]string, 0, 3)
	if sess.UserEmail != "" {
		parts = append(parts, "📧 "+sess.UserEmail)
	}
	parts = append(parts, "🧠 "+model.Label())
	if !sess.HasKey {
		parts = append(parts, "🔑 no API key")
	}
	return strings.Join(parts, " │ ")
}
