package tui

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/render"
	"github.com/eren-998/Email-assistant/internal/services"
)

const (
	insightPlaceholder = "Select an email to see an AI summary."
	insightNeedsKey    = "Add a Gemini API key in settings (Ctrl+S) to see summaries."
	inboxEmpty         = "No emails"
)

// refreshInbox reloads the inbox in the background; the service raises the toast
func (a *App) refreshInbox() {
	go func() {
		if err := a.panel.Inbox.Refresh(a.ctx); err != nil {
			a.logf("refreshInbox: %v", err)
		}
	}()
}

// renderInbox rebuilds the inbox list keeping the selected email when possible
func (a *App) renderInbox() {
	emails := a.panel.Inbox.Emails()
	selectedID := ""
	if idx := a.inbox.GetCurrentItem(); idx >= 0 && idx < len(a.emailIDs) {
		selectedID = a.emailIDs[idx]
	}

	_, _, width, _ := a.inbox.GetInnerRect()
	colors := a.theme()

	a.renderingList = true
	defer func() { a.renderingList = false }()

	a.inbox.Clear()
	a.emailIDs = a.emailIDs[:0]
	current := 0
	for i, e := range emails {
		a.emailIDs = append(a.emailIDs, e.ID)
		a.inbox.AddItem("["+colorTag(a.colorer.Color(e))+"]"+tview.Escape(render.InboxRow(e, width))+"[-]", e.ID, 0, nil)
		if e.ID == selectedID {
			current = i
		}
	}
	if len(emails) == 0 {
		a.inbox.AddItem("["+colors.Inbox.PlaceholderCol.String()+"]"+inboxEmpty+"[-]", "", 0, nil)
	} else {
		a.inbox.SetCurrentItem(current)
	}
	a.inbox.SetTitle(inboxTitle(len(emails), a.panel.Inbox.Loading()))
}

// colorTag renders c as a tview color tag value
func colorTag(c tcell.Color) string {
	if c == tcell.ColorDefault || c.Hex() < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

func inboxTitle(count int, loading bool) string {
	if loading {
		return " 📧 Inbox (loading...) "
	}
	if count == 0 {
		return " 📧 Inbox "
	}
	return fmt.Sprintf(" 📧 Inbox (%d) ", count)
}

// selectEmail points the insight controller at the email in row index
func (a *App) selectEmail(index int) {
	a.summarizeEmail(index, false)
}

// regenerateInsight forces a new summary for the selected email
func (a *App) regenerateInsight() {
	a.summarizeEmail(a.inbox.GetCurrentItem(), true)
}

// summarizeEmail claims the selection on the event loop, so the last row the
// user moved to wins, and fetches the summary in the background
func (a *App) summarizeEmail(index int, fresh bool) {
	if index < 0 || index >= len(a.emailIDs) {
		return
	}
	email, ok := a.panel.Inbox.Find(a.emailIDs[index])
	if !ok {
		return
	}
	pending := a.panel.Insight.Begin(&email, fresh)
	if pending == nil {
		return
	}
	go func() {
		if err := a.panel.Insight.Complete(a.ctx, pending); err != nil {
			a.logf("summarizeEmail: %s: %v", pending.EmailID(), err)
		}
	}()
}

// renderInsight redraws the insight pane for the selected email
func (a *App) renderInsight() {
	ins := a.panel.Insight.Current()
	subject := ""
	if email, ok := a.panel.Inbox.Find(ins.EmailID); ok {
		subject = email.Subject
	}
	hasKey := a.panel.Settings.ResolveAPIKey() != ""
	a.insight.SetText(formatInsight(ins, subject, hasKey, a.theme()))
	a.insight.ScrollToBeginning()
}

func formatInsight(ins services.Insight, subject string, hasKey bool, colors *config.ColorsConfig) string {
	if colors == nil {
		colors = config.DefaultColors()
	}
	muted := colors.Inbox.InsightMuted.String()
	if ins.EmailID == "" {
		return "[" + muted + "]" + insightPlaceholder + "[-]"
	}

	var b strings.Builder
	if s := strings.TrimSpace(subject); s != "" {
		b.WriteString("[" + colors.Frame.TitleColor.String() + "::b]" + tview.Escape(s) + "[-::-]\n\n")
	}
	switch {
	case ins.Loading:
		b.WriteString("[" + muted + "]Summarizing...[-]")
	case ins.Error != "":
		b.WriteString("[" + colors.Status.ErrorColor.String() + "]" + tview.Escape(ins.Error) + "[-]")
	case ins.Summary != "":
		b.WriteString("[" + colors.Inbox.InsightColor.String() + "]" + render.MarkdownToTview(ins.Summary, colors) + "[-]")
	case !hasKey:
		b.WriteString("[" + muted + "]" + insightNeedsKey + "[-]")
	}
	return b.String()
}
