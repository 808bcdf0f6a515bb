package tui

import (
	"errors"

	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/services"
)

// openSettings shows the settings modal seeded from the current settings
func (a *App) openSettings() {
	if name, _ := a.Pages.GetFrontPage(); name == pageLogin {
		return
	}
	st := a.panel.Settings.Current()

	a.syncingSettings = true
	a.keyField.SetText(a.panel.Settings.KeyInput())
	if dd, ok := a.settingsForm.GetFormItem(1).(*tview.DropDown); ok {
		dd.SetCurrentOption(indexOf(services.Models(), st.Model))
	}
	if dd, ok := a.settingsForm.GetFormItem(2).(*tview.DropDown); ok {
		dd.SetCurrentOption(indexOf(services.Themes(), st.Theme))
	}
	a.syncingSettings = false

	a.modalOpen = true
	a.settingsForm.SetFocus(0)
	a.Pages.ShowPage(pageSettings)
	a.SetFocus(a.settingsForm)
}

// closeSettings hides the modal and drops an unsaved key draft
func (a *App) closeSettings() {
	a.modalOpen = false
	a.Pages.HidePage(pageSettings)
	a.focus(a.currentFocus)
	a.panel.Settings.Reset()
}

func (a *App) chooseModel(index int) {
	if a.syncingSettings {
		return
	}
	models := services.Models()
	if index < 0 || index >= len(models) {
		return
	}
	go func(m services.Model) {
		if err := a.panel.Settings.SetModel(a.ctx, string(m)); err != nil {
			a.errorHandler.HandleError(a.ctx, err, "Failed to save model")
		}
	}(models[index])
}

func (a *App) chooseTheme(name string) {
	if a.syncingSettings {
		return
	}
	go func() {
		if err := a.panel.Settings.SetTheme(a.ctx, name); err != nil {
			a.errorHandler.HandleError(a.ctx, err, "Failed to save theme")
		}
	}()
}

// saveSettings stores the API key on the backend and locally
func (a *App) saveSettings() {
	key := a.keyField.GetText()
	go func() {
		err := a.panel.SaveAPIKey(a.ctx, key)
		switch {
		case errors.Is(err, services.ErrEmptyAPIKey):
			a.QueueUpdateDraw(func() { a.showAlert("Please enter an API key") })
		case err != nil:
			// The panel already raised an error toast
			a.logf("saveSettings: %v", err)
		default:
			a.QueueUpdateDraw(func() {
				a.modalOpen = false
				a.Pages.HidePage(pageSettings)
				a.focus(focusInput)
			})
		}
	}()
}

// showAlert displays a blocking message with a single OK button
func (a *App) showAlert(text string) {
	front, _ := a.Pages.GetFrontPage()
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			a.Pages.RemovePage(pageAlert)
			a.restoreFocus(front)
		})
	colors := a.theme()
	modal.SetBackgroundColor(colors.Body.BgColor.Color())
	modal.SetTextColor(colors.Body.FgColor.Color())
	a.Pages.AddPage(pageAlert, modal, true, true)
	a.SetFocus(modal)
}

// restoreFocus returns focus to the page that was in front of a modal
func (a *App) restoreFocus(page string) {
	switch page {
	case pageLogin:
		a.SetFocus(a.loginForm)
	case pageSettings:
		a.SetFocus(a.settingsForm)
	default:
		a.focus(a.currentFocus)
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}
