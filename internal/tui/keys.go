package tui

import (
	"github.com/derailed/tcell/v2"
)

// bindKeys installs the global shortcuts
func (a *App) bindKeys() {
	a.SetInputCapture(a.handleKey)
}

// handleKey routes global shortcuts. Keys it does not consume fall through
// to the focused widget.
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlQ {
		a.Quit()
		return nil
	}

	// Login page and modals own every other key
	if name, _ := a.Pages.GetFrontPage(); name != pageMain || a.modalOpen {
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		a.toggleFocus()
		return nil
	case tcell.KeyCtrlR:
		a.refreshInbox()
		return nil
	case tcell.KeyCtrlS:
		a.openSettings()
		return nil
	case tcell.KeyCtrlL:
		a.clearHistory()
		return nil
	case tcell.KeyCtrlG:
		a.regenerateInsight()
		return nil
	case tcell.KeyCtrlO:
		a.confirmLogout()
		return nil
	case tcell.KeyEscape:
		if a.currentFocus != focusInput {
			a.focus(focusInput)
			return nil
		}
	}
	return event
}
