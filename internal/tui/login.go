package tui

import (
	"strings"

	"github.com/derailed/tview"
)

const (
	loginFailedText = "Login failed! Check your App Password."
	signInLabel     = "Sign In"
	signingInLabel  = "Signing in..."
)

// submitLogin sends the credentials unless a login is already in flight
func (a *App) submitLogin() {
	if a.panel.Session.LoggingIn() {
		return
	}
	email := strings.TrimSpace(a.loginEmail.GetText())
	password := a.loginPassword.GetText()
	if email == "" || password == "" {
		a.showAlert("Enter your Gmail address and app password.")
		return
	}
	a.setLoginBusy(true)
	go func() {
		if err := a.panel.Session.Login(a.ctx, email, password); err != nil {
			a.logf("submitLogin: %v", err)
			a.QueueUpdateDraw(func() { a.showAlert(loginFailedText) })
			return
		}
		a.QueueUpdateDraw(func() { a.loginPassword.SetText("") })
	}()
}

// setLoginBusy relabels the submit button while a login is in flight
func (a *App) setLoginBusy(busy bool) {
	idx := a.loginForm.GetButtonIndex(signInLabel)
	if idx < 0 {
		idx = a.loginForm.GetButtonIndex(signingInLabel)
	}
	if idx < 0 {
		return
	}
	label := signInLabel
	if busy {
		label = signingInLabel
	}
	a.loginForm.GetButton(idx).SetLabel(label)
}

// logout ends the session; the session listener switches back to the login page
func (a *App) logout() {
	go func() {
		if err := a.panel.Logout(a.ctx); err != nil {
			a.logf("logout: %v", err)
		}
	}()
}

// confirmLogout asks before logging out
func (a *App) confirmLogout() {
	modal := tview.NewModal().
		SetText("Log out and clear this session?").
		AddButtons([]string{"Logout", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.Pages.RemovePage(pageAlert)
			a.modalOpen = false
			if label == "Logout" {
				a.logout()
				return
			}
			a.focus(a.currentFocus)
		})
	colors := a.theme()
	modal.SetBackgroundColor(colors.Body.BgColor.Color())
	modal.SetTextColor(colors.Body.FgColor.Color())
	a.modalOpen = true
	a.Pages.AddPage(pageAlert, modal, true, true)
	a.SetFocus(modal)
}
