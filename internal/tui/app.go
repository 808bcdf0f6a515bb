package tui

import (
	"context"
	"log"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/render"
	"github.com/eren-998/Email-assistant/internal/services"
)

// Page names
const (
	pageLogin    = "login"
	pageMain     = "main"
	pageSettings = "settings"
	pageAlert    = "alert"
)

// Focus ring targets on the main page
const (
	focusInput   = "input"
	focusChat    = "chat"
	focusInbox   = "inbox"
	focusInsight = "insight"
)

// App encapsulates the terminal UI around the agent panel services
type App struct {
	*tview.Application
	Pages *Pages

	panel  *services.Panel
	themes *config.ThemeLoader
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	mu        sync.RWMutex
	colors    *config.ColorsConfig
	colorer   *render.EmailColorer
	themeName string

	// Main page widgets
	chat    *tview.TextView
	input   *tview.InputField
	inbox   *tview.List
	insight *tview.TextView
	status  *tview.TextView
	flash   *tview.TextView

	// Login page widgets
	loginForm     *tview.Form
	loginEmail    *tview.InputField
	loginPassword *tview.InputField

	// Settings modal widgets
	settingsForm *tview.Form
	keyField     *tview.InputField

	errorHandler *ErrorHandler

	// State management
	emailIDs        []string
	renderingList   bool
	syncingSettings bool
	currentFocus    string
	modalOpen       bool
	chatWidth       int
}

// Pages manages the application pages and navigation
type Pages struct {
	*tview.Pages
}

// NewPages creates an empty page set
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// NewApp creates the terminal UI over an assembled panel
func NewApp(panel *services.Panel, themes *config.ThemeLoader, logger *log.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	if themes == nil {
		themes = config.NewThemeLoader("")
	}

	a := &App{
		Application:  tview.NewApplication(),
		Pages:        NewPages(),
		panel:        panel,
		themes:       themes,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
		colors:       config.DefaultColors(),
		colorer:      render.NewEmailColorer(),
		currentFocus: focusInput,
	}

	a.initViews()
	a.errorHandler = NewErrorHandler(a.Application, a.flash, panel.Toasts, logger)
	a.bindKeys()
	a.subscribe()
	a.applyTheme()

	// Recalculate wrapped content when the terminal is resized
	a.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		_, _, w, _ := a.chat.GetInnerRect()
		if w > 0 && w != a.chatWidth {
			a.chatWidth = w
			a.renderChat()
			a.renderInbox()
		}
		return false
	})

	return a
}

// subscribe redraws widgets whenever a service reports a change. Service
// callbacks may run on any goroutine, so every UI mutation is queued.
func (a *App) subscribe() {
	a.panel.Session.OnChange(func() { a.redraw(a.syncSession) })
	a.panel.Conversation.OnChange(func() { a.redraw(a.renderChat) })
	a.panel.Inbox.OnChange(func() { a.redraw(a.renderInbox) })
	a.panel.Insight.OnChange(func() { a.redraw(a.renderInsight) })
	a.panel.Settings.OnChange(func() {
		a.redraw(func() {
			if string(a.panel.Settings.Theme()) != a.themeName {
				a.applyTheme()
			}
			a.renderStatus()
		})
	})
	a.panel.Toasts.OnChange(func() {
		a.redraw(func() { a.errorHandler.renderToast(a.panel.Toasts.Current()) })
	})
}

// redraw queues fn on the event loop without waiting for it. Listeners fire
// from the loop itself (settings edits, focus changes) as well as from
// workers, and QueueUpdateDraw blocks until the loop runs fn.
func (a *App) redraw(fn func()) {
	go a.QueueUpdateDraw(fn)
}

// Run starts the panel in the background and blocks on the event loop
func (a *App) Run() error {
	defer a.cancel()
	a.SetRoot(a.Pages, true)
	a.Pages.SwitchToPage(pageLogin)

	go func() {
		if err := a.panel.Start(a.ctx); err != nil {
			a.errorHandler.HandleError(a.ctx, err, "Failed to load settings")
		}
	}()

	return a.Application.Run()
}

// Quit cancels in-flight requests and stops the event loop
func (a *App) Quit() {
	a.cancel()
	a.Stop()
}

// syncSession switches between the login and main pages
func (a *App) syncSession() {
	sess := a.panel.Session.Current()
	a.setLoginBusy(a.panel.Session.LoggingIn())
	if sess.Authenticated {
		if name, _ := a.Pages.GetFrontPage(); name == pageLogin {
			a.Pages.SwitchToPage(pageMain)
			a.focus(focusInput)
		}
	} else if !a.modalOpen {
		a.Pages.SwitchToPage(pageLogin)
		a.SetFocus(a.loginForm)
	}
	a.renderStatus()
	a.renderInsight()
}

// applyTheme loads the palette selected in settings and repaints borders
func (a *App) applyTheme() {
	name := string(a.panel.Settings.Theme())
	colors, err := a.themes.Load(name)
	if err != nil && a.logger != nil {
		a.logger.Printf("applyTheme: %s: %v", name, err)
	}

	a.mu.Lock()
	a.colors = colors
	a.themeName = name
	a.colorer.UpdateFromStyles(colors)
	a.mu.Unlock()
	a.errorHandler.SetColors(colors)

	bg := colors.Body.BgColor.Color()
	fg := colors.Body.FgColor.Color()
	for _, box := range []*tview.Box{a.chat.Box, a.insight.Box, a.inbox.Box, a.status.Box, a.flash.Box} {
		box.SetBackgroundColor(bg)
		box.SetBorderColor(colors.Frame.BorderColor.Color())
		box.SetTitleColor(colors.Frame.TitleColor.Color())
	}
	a.chat.SetTextColor(fg)
	a.insight.SetTextColor(fg)
	a.status.SetTextColor(fg)
	a.input.SetBackgroundColor(bg)
	a.input.SetFieldBackgroundColor(bg)
	a.input.SetFieldTextColor(fg)
	a.input.SetLabelColor(colors.Chat.UserColor.Color())
	a.inbox.SetMainTextColor(fg)
	a.inbox.SetSelectedTextColor(colors.Inbox.SelectedFg.Color())
	a.inbox.SetSelectedBackgroundColor(colors.Inbox.SelectedBg.Color())
	for _, form := range []*tview.Form{a.loginForm, a.settingsForm} {
		form.SetBackgroundColor(bg)
		form.SetBorderColor(colors.Frame.FocusColor.Color())
		form.SetTitleColor(colors.Frame.TitleColor.Color())
		form.SetLabelColor(fg)
		form.SetFieldBackgroundColor(colors.Frame.BorderColor.Color())
		form.SetFieldTextColor(fg)
		form.SetButtonBackgroundColor(colors.Frame.FocusColor.Color())
		form.SetButtonTextColor(bg)
	}
	a.updateFocusIndicators()
	a.renderChat()
	a.renderInbox()
	a.renderInsight()
}

func (a *App) theme() *config.ColorsConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.colors
}

func (a *App) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
