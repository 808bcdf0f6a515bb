package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/services"
)

// ErrorHandler provides consistent error handling and user feedback. Messages
// go through the toast emitter, which owns their lifetime; the handler only
// paints the current toast into the flash view.
type ErrorHandler struct {
	mu        sync.RWMutex
	app       *tview.Application
	flashView *tview.TextView
	notifier  services.Notifier
	logger    *log.Logger
	colors    *config.ColorsConfig
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(app *tview.Application, flashView *tview.TextView, notifier services.Notifier, logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{
		app:       app,
		flashView: flashView,
		notifier:  notifier,
		logger:    logger,
		colors:    config.DefaultColors(),
	}
}

// HandleError logs err and shows userMsg as an error toast
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}

	// Log the technical error
	if eh.logger != nil {
		eh.logger.Printf("ERROR: %v", err)
	}

	if userMsg == "" {
		userMsg = "An error occurred"
	}
	eh.ShowMessage(ctx, userMsg, services.ToastError)
}

// ShowMessage displays a message to the user
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, kind services.ToastKind) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	if eh.logger != nil {
		eh.logger.Printf("%s: %s", kindToString(kind), msg)
	}
	if eh.notifier == nil {
		return
	}
	switch kind {
	case services.ToastError:
		eh.notifier.Error(msg)
	case services.ToastSuccess:
		eh.notifier.Success(msg)
	default:
		eh.notifier.Info(msg)
	}
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, services.ToastInfo)
}

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, services.ToastError)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, services.ToastSuccess)
}

// SetColors switches the palette used for toast colors
func (eh *ErrorHandler) SetColors(colors *config.ColorsConfig) {
	if colors == nil {
		return
	}
	eh.mu.Lock()
	eh.colors = colors
	eh.mu.Unlock()
}

// renderToast paints the current toast, or clears the flash view when
// there is none. Must run on the UI goroutine.
func (eh *ErrorHandler) renderToast(t services.Toast, ok bool) {
	if eh.flashView == nil {
		return
	}
	if !ok {
		eh.flashView.SetText("")
		return
	}
	eh.flashView.SetText(formatToast(t))
	eh.flashView.SetTextColor(eh.kindToColor(t.Kind))
}

// formatToast prefixes the text with an icon unless it already carries one
func formatToast(t services.Toast) string {
	text := tview.Escape(t.Text)
	for _, icon := range []string{"✅", "❌", "ℹ️", "⚠️"} {
		if strings.HasPrefix(t.Text, icon) {
			return text
		}
	}
	return fmt.Sprintf("%s %s", kindToIcon(t.Kind), text)
}

func kindToIcon(kind services.ToastKind) string {
	switch kind {
	case services.ToastSuccess:
		return "✅"
	case services.ToastError:
		return "❌"
	case services.ToastInfo:
		return "ℹ️"
	default:
		return "•"
	}
}

func kindToString(kind services.ToastKind) string {
	switch kind {
	case services.ToastSuccess:
		return "SUCCESS"
	case services.ToastError:
		return "ERROR"
	case services.ToastInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// kindToColor converts a toast kind to a theme-aware color
func (eh *ErrorHandler) kindToColor(kind services.ToastKind) tcell.Color {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	switch kind {
	case services.ToastSuccess:
		return eh.colors.Status.SuccessColor.Color()
	case services.ToastError:
		return eh.colors.Status.ErrorColor.Color()
	default:
		return eh.colors.Status.InfoColor.Color()
	}
}
