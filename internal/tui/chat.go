package tui

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/render"
	"github.com/eren-998/Email-assistant/internal/services"
)

const chatPlaceholder = "Ask me to check, summarize or search your inbox. Try \"refresh my inbox\"."

// submitCommand sends the input line to the agent in the background
func (a *App) submitCommand() {
	if a.panel.Conversation.Sending() {
		return
	}
	text := a.input.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	a.input.SetText("")
	go a.runCommand(text)
}

// clampCommand cuts text to the longest command the agent accepts
func clampCommand(text string) string {
	if utf8.RuneCountInString(text) <= services.MaxCommandLength {
		return text
	}
	return string([]rune(text)[:services.MaxCommandLength])
}

// runCommand submits text and hands it back to the input when another turn
// got there first
func (a *App) runCommand(text string) {
	err := a.panel.Conversation.Submit(a.ctx, text)
	switch {
	case err == nil, errors.Is(err, services.ErrEmptyCommand):
	case errors.Is(err, services.ErrBusy):
		a.redraw(func() {
			if a.input.GetText() == "" {
				a.input.SetText(text)
			}
		})
		a.panel.Toasts.Info("Still working on the previous request")
	default:
		// The failure is already in the conversation log
		a.logf("submitCommand: %v", err)
	}
}

// clearHistory empties the conversation and its persisted copy
func (a *App) clearHistory() {
	go func() {
		if err := a.panel.Conversation.Clear(a.ctx); err != nil {
			a.errorHandler.HandleError(a.ctx, err, "Failed to clear history")
			return
		}
		a.panel.Toasts.Success("History cleared")
	}()
}

// renderChat redraws the conversation log and the input state
func (a *App) renderChat() {
	sending := a.panel.Conversation.Sending()
	text := formatConversation(a.panel.Conversation.Messages(), sending, a.theme(), a.chatWidth)
	a.chat.SetText(text)
	a.chat.ScrollToEnd()

	if sending {
		a.input.SetPlaceholder(sendingPlaceholder)
	} else {
		a.input.SetPlaceholder(inputPlaceholder)
	}
}

// formatConversation renders the log as tview markup. User text is escaped
// verbatim; assistant text goes through the markdown converter.
func formatConversation(msgs []services.Message, sending bool, colors *config.ColorsConfig, width int) string {
	if colors == nil {
		colors = config.DefaultColors()
	}
	muted := colors.Inbox.PlaceholderCol.String()
	if len(msgs) == 0 && !sending {
		return "[" + muted + "]" + tview.Escape(chatPlaceholder) + "[-]"
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case services.RoleUser:
			b.WriteString("[" + colors.Chat.UserColor.String() + "::b]You[-::-]\n")
			b.WriteString(tview.Escape(render.WrapText(m.Content, width)))
		default:
			b.WriteString("[" + colors.Chat.AssistantColor.String() + "::b]Agent[-::-]\n")
			b.WriteString(render.MarkdownToTview(render.WrapText(m.Content, width), colors))
		}
	}
	if sending {
		if len(msgs) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[" + muted + "]Thinking...[-]")
	}
	return b.String()
}
