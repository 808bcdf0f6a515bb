package tui

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/services"
)

const (
	inputPlaceholder   = "Type your message here..."
	sendingPlaceholder = "Agent is working..."
)

// initViews builds every page: login, main and the settings modal
func (a *App) initViews() {
	a.initMainPage()
	a.initLoginPage()
	a.initSettingsPage()
}

func (a *App) initMainPage() {
	a.chat = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	a.chat.SetBorder(true).SetTitle(" 🤖 Agent ").SetTitleAlign(tview.AlignLeft)

	a.input = tview.NewInputField().
		SetLabel("❯ ").
		SetPlaceholder(inputPlaceholder)
	// Over-long edits such as pastes are cut, not refused
	a.input.SetChangedFunc(func(text string) {
		if cut := clampCommand(text); cut != text {
			a.input.SetText(cut)
		}
	})
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submitCommand()
		}
	})
	a.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Swallow edits while a command is in flight
		if a.panel.Conversation.Sending() {
			return nil
		}
		return event
	})

	a.inbox = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	a.inbox.SetBorder(true).SetTitle(" 📧 Inbox ").SetTitleAlign(tview.AlignLeft)
	a.inbox.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if !a.renderingList {
			a.selectEmail(index)
		}
	})
	a.inbox.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		a.selectEmail(index)
	})

	a.insight = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	a.insight.SetBorder(true).SetTitle(" ✨ AI Insight ").SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().SetDynamicColors(true)
	a.flash = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight)

	bottom := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.inbox, 0, 3, false).
		AddItem(a.insight, 0, 2, false)

	footer := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.status, 0, 3, false).
		AddItem(a.flash, 0, 2, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chat, 0, 3, false).
		AddItem(a.input, 1, 0, true).
		AddItem(bottom, 0, 2, false).
		AddItem(footer, 1, 0, false)

	a.Pages.AddPage(pageMain, main, true, false)
}

func (a *App) initLoginPage() {
	a.loginEmail = tview.NewInputField().
		SetLabel("Gmail address ").
		SetPlaceholder("your@gmail.com").
		SetFieldWidth(36)
	a.loginPassword = tview.NewInputField().
		SetLabel("App password  ").
		SetPlaceholder("16 characters").
		SetMaskCharacter('*').
		SetFieldWidth(36)

	a.loginForm = tview.NewForm().
		AddFormItem(a.loginEmail).
		AddFormItem(a.loginPassword).
		AddButton("Sign In", a.submitLogin).
		AddButton("Quit", a.Quit)
	a.loginForm.SetBorder(true).SetTitle(" 📬 AI Email Assistant ").SetTitleAlign(tview.AlignCenter)

	a.Pages.AddPage(pageLogin, centered(a.loginForm, 56, 9), true, true)
}

func (a *App) initSettingsPage() {
	a.keyField = tview.NewInputField().
		SetLabel("Gemini API key ").
		SetPlaceholder("Enter your API key...").
		SetMaskCharacter('*').
		SetFieldWidth(40)
	// Typing updates the key draft, which commands use before the saved key
	a.keyField.SetChangedFunc(func(text string) {
		a.panel.Settings.SetKeyInput(text)
	})

	modelLabels := make([]string, 0, len(services.Models()))
	for _, m := range services.Models() {
		modelLabels = append(modelLabels, m.Label())
	}
	themeNames := make([]string, 0, len(services.Themes()))
	for _, t := range services.Themes() {
		themeNames = append(themeNames, string(t))
	}

	// Building the dropdowns fires their callbacks for the initial option
	a.syncingSettings = true
	defer func() { a.syncingSettings = false }()

	a.settingsForm = tview.NewForm().
		AddFormItem(a.keyField).
		AddDropDown("Model          ", modelLabels, 0, func(_ string, index int) {
			a.chooseModel(index)
		}).
		AddDropDown("Theme          ", themeNames, 0, func(option string, _ int) {
			a.chooseTheme(option)
		}).
		AddButton("Save", a.saveSettings).
		AddButton("Cancel", a.closeSettings)
	a.settingsForm.SetBorder(true).SetTitle(" ⚙ Settings ").SetTitleAlign(tview.AlignCenter)
	a.settingsForm.SetCancelFunc(a.closeSettings)

	a.Pages.AddPage(pageSettings, centered(a.settingsForm, 64, 11), true, false)
}

// centered wraps p in a fixed-size box in the middle of the screen
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// focusRing lists the focusable widgets of the main page in Tab order
func (a *App) focusRing() []string {
	return []string{focusInput, focusChat, focusInbox, focusInsight}
}

func (a *App) primitive(name string) tview.Primitive {
	switch name {
	case focusChat:
		return a.chat
	case focusInbox:
		return a.inbox
	case focusInsight:
		return a.insight
	default:
		return a.input
	}
}

// focus moves keyboard focus on the main page
func (a *App) focus(name string) {
	a.currentFocus = name
	a.SetFocus(a.primitive(name))
	a.updateFocusIndicators()
}

// toggleFocus advances to the next widget in the ring
func (a *App) toggleFocus() {
	a.focus(nextFocus(a.focusRing(), a.currentFocus))
}

func nextFocus(ring []string, current string) string {
	for i, name := range ring {
		if name == current {
			return ring[(i+1)%len(ring)]
		}
	}
	return ring[0]
}

// updateFocusIndicators highlights the border of the focused widget
func (a *App) updateFocusIndicators() {
	colors := a.theme()
	border := colors.Frame.BorderColor.Color()
	focused := colors.Frame.FocusColor.Color()
	for name, box := range map[string]*tview.Box{
		focusChat:    a.chat.Box,
		focusInbox:   a.inbox.Box,
		focusInsight: a.insight.Box,
	} {
		if name == a.currentFocus {
			box.SetBorderColor(focused)
		} else {
			box.SetBorderColor(border)
		}
	}
	if a.currentFocus == focusInput {
		a.input.SetLabelColor(focused)
	} else {
		a.input.SetLabelColor(colors.Chat.UserColor.Color())
	}
}
